package domain

import (
	"context"
	"time"
)

// --- Payment Intent Bridge ---
// Online payments run in two transactions: intent creation before the
// gateway redirect, order commit after signature verification. The
// intent row is the durable record between the two.

// CheckoutParams are the checkout inputs frozen onto an intent so the
// verify step commits exactly what the buyer saw.
type CheckoutParams struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
	CouponCode    string `json:"couponCode,omitempty"`
}

type PaymentIntent struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	GatewayOrderRef string         `json:"gatewayOrderRef"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	Status          string         `json:"status"`
	PaymentRef      string         `json:"paymentRef,omitempty"`
	FailureReason   string         `json:"failureReason,omitempty"`
	Checkout        CheckoutParams `json:"checkout"`
	OrderID         string         `json:"orderId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type PaymentIntentRepository interface {
	CreateIntent(ctx context.Context, intent *PaymentIntent) error
	GetByGatewayRef(ctx context.Context, gatewayOrderRef string) (*PaymentIntent, error)
	UpdateStatus(ctx context.Context, id, status, paymentRef, failureReason string) error
	AttachOrder(ctx context.Context, id, orderID string) error

	// ExpireStale marks intents still in the created state after the TTL
	// as expired and returns how many rows changed. Idempotent.
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// PaymentGateway is the trusted boundary to the hosted payment provider.
type PaymentGateway interface {
	// CreateOrder registers the amount with the gateway and returns its
	// order reference for the client-side payment flow.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)

	// VerifySignature checks the HMAC the gateway attached to a completed
	// payment.
	VerifySignature(gatewayOrderRef, paymentRef, signature string) bool
}
