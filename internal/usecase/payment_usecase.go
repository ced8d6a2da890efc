package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"vintage-backend/internal/domain"
)

type PaymentUsecase struct {
	intentRepo domain.PaymentIntentRepository
	gateway    domain.PaymentGateway
	checkout   *CheckoutUsecase
	intentTTL  time.Duration
}

func NewPaymentUsecase(intentRepo domain.PaymentIntentRepository, gateway domain.PaymentGateway, checkout *CheckoutUsecase, intentTTL time.Duration) *PaymentUsecase {
	return &PaymentUsecase{
		intentRepo: intentRepo,
		gateway:    gateway,
		checkout:   checkout,
		intentTTL:  intentTTL,
	}
}

// CreateIntent sizes the order from the live cart, registers it with the
// gateway and stores a durable intent carrying the checkout parameters.
// No order exists until the payment verifies.
func (u *PaymentUsecase) CreateIntent(ctx context.Context, userID string, req CheckoutReq) (*domain.PaymentIntent, error) {
	total, err := u.checkout.PreviewTotal(ctx, userID, req.CouponCode)
	if err != nil {
		return nil, err
	}

	gatewayRef, err := u.gateway.CreateOrder(ctx, total, "INR", userID)
	if err != nil {
		slog.Error("Usecase: CreateIntent - Gateway order failed", "user_id", userID, "error", err)
		return nil, err
	}

	intent := &domain.PaymentIntent{
		UserID:          userID,
		GatewayOrderRef: gatewayRef,
		Amount:          total,
		Currency:        "INR",
		Status:          domain.IntentStatusCreated,
		Checkout: domain.CheckoutParams{
			AddressID:     req.AddressID,
			PaymentMethod: domain.PaymentMethodOnline,
			CouponCode:    req.CouponCode,
		},
	}
	if err := u.intentRepo.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}

	slog.Info("Usecase: CreateIntent - Intent created",
		"user_id", userID, "gateway_ref", gatewayRef, "amount", total)
	return intent, nil
}

type VerifyPaymentReq struct {
	GatewayOrderRef string `json:"gatewayOrderId"`
	PaymentRef      string `json:"gatewayPaymentId"`
	Signature       string `json:"gatewaySignature"`
}

// VerifyAndPlace checks the gateway signature and, on success, commits
// the order in its own transaction and completes the intent.
func (u *PaymentUsecase) VerifyAndPlace(ctx context.Context, userID string, req VerifyPaymentReq) (*domain.Order, error) {
	intent, err := u.getOwnIntent(ctx, userID, req.GatewayOrderRef)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentStatusCreated {
		return nil, domain.Ef(domain.CodeAlreadyProcessed, "payment intent is already %s", intent.Status)
	}

	if !u.gateway.VerifySignature(req.GatewayOrderRef, req.PaymentRef, req.Signature) {
		if updErr := u.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusFailed, req.PaymentRef, "signature mismatch"); updErr != nil {
			slog.Error("Usecase: VerifyAndPlace - Failed to record intent failure", "error", updErr)
		}
		return nil, domain.E(domain.CodeSignatureMismatch, "payment signature verification failed")
	}

	// The order must commit at exactly the amount the gateway captured;
	// CommitPaid re-prices the cart and rejects any drift since the
	// intent was created.
	order, err := u.checkout.CommitPaid(ctx, userID, CheckoutReq{
		AddressID:  intent.Checkout.AddressID,
		CouponCode: intent.Checkout.CouponCode,
	}, req.PaymentRef, intent.Amount)
	if err != nil {
		// The money is captured but the order could not be placed; the
		// failed intent keeps the record for reconciliation.
		if updErr := u.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusFailed, req.PaymentRef, err.Error()); updErr != nil {
			slog.Error("Usecase: VerifyAndPlace - Failed to record intent failure", "error", updErr)
		}
		return nil, err
	}

	if err := u.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusCompleted, req.PaymentRef, ""); err != nil {
		return nil, err
	}
	if err := u.intentRepo.AttachOrder(ctx, intent.ID, order.ID); err != nil {
		return nil, err
	}

	slog.Info("Usecase: VerifyAndPlace - Order placed",
		"order_ref", order.OrderID, "gateway_ref", req.GatewayOrderRef)
	return order, nil
}

// CancelPayment records that the buyer abandoned the gateway flow. No
// order exists yet, so there is nothing else to reverse.
func (u *PaymentUsecase) CancelPayment(ctx context.Context, userID, gatewayOrderRef, reason string) error {
	intent, err := u.getOwnIntent(ctx, userID, gatewayOrderRef)
	if err != nil {
		return err
	}
	if intent.Status != domain.IntentStatusCreated {
		return domain.Ef(domain.CodeAlreadyProcessed, "payment intent is already %s", intent.Status)
	}
	return u.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusCancelled, "", reason)
}

// HandleFailure records a gateway-reported payment failure.
func (u *PaymentUsecase) HandleFailure(ctx context.Context, userID, gatewayOrderRef, reason string) error {
	intent, err := u.getOwnIntent(ctx, userID, gatewayOrderRef)
	if err != nil {
		return err
	}
	if intent.Status != domain.IntentStatusCreated {
		return domain.Ef(domain.CodeAlreadyProcessed, "payment intent is already %s", intent.Status)
	}
	return u.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusFailed, "", reason)
}

func (u *PaymentUsecase) getOwnIntent(ctx context.Context, userID, gatewayOrderRef string) (*domain.PaymentIntent, error) {
	intent, err := u.intentRepo.GetByGatewayRef(ctx, gatewayOrderRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "payment intent not found")
		}
		return nil, err
	}
	if intent.UserID != userID {
		return nil, domain.E(domain.CodeUnauthorized, "payment intent belongs to another user")
	}
	return intent, nil
}

// ExpireStale sweeps intents abandoned before verification.
func (u *PaymentUsecase) ExpireStale(ctx context.Context) error {
	n, err := u.intentRepo.ExpireStale(ctx, time.Now().Add(-u.intentTTL))
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Usecase: Payment sweep expired intents", "count", n)
	}
	return nil
}
