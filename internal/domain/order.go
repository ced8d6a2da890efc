package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page   int
	Limit  int
	Status string
	UserID string
	Search string
}

// --- Order Entities ---

// ShippingInfo embeds the address snapshot copied at checkout; later
// edits to the address book never touch committed orders.
type ShippingInfo struct {
	Address        Address `json:"address"`
	ShippingMethod string  `json:"shippingMethod"`
	DeliveryCharge int64   `json:"deliveryCharge"`
}

type PaymentInfo struct {
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	Amount        int64      `json:"amount"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
}

// Order money fields are integer minor units. Subtotal is the sum of
// line totals after product offers but before the coupon; TotalAmount is
// subtotal minus DiscountAmount plus shipping.
type Order struct {
	ID             string       `json:"id"`
	OrderID        string       `json:"orderId"`
	UserID         string       `json:"user"`
	Items          []OrderItem  `json:"items"`
	Shipping       ShippingInfo `json:"shipping"`
	Payment        PaymentInfo  `json:"payment"`
	OrderStatus    string       `json:"orderStatus"`
	Reason         string       `json:"reason,omitempty"`
	Subtotal       int64        `json:"subtotal"`
	ShippingCost   int64        `json:"shippingCost"`
	TotalAmount    int64        `json:"totalAmount"`
	CouponCode     string       `json:"couponCode,omitempty"`
	DiscountAmount int64        `json:"discountAmount"`
	TotalDiscount  int64        `json:"totalDiscount"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// OrderItem freezes unit price, discounted unit price and the line total
// (FinalPrice) at commit time. SavedAmount is the per-unit offer saving.
type OrderItem struct {
	ID                 string `json:"id"`
	OrderID            string `json:"orderId"`
	ProductID          string `json:"product"`
	ProductName        string `json:"productName"`
	VariantID          string `json:"sizeVariant"`
	Quantity           int    `json:"quantity"`
	Price              int64  `json:"price"`
	DiscountPrice      int64  `json:"discountPrice"`
	FinalPrice         int64  `json:"finalPrice"`
	SavedAmount        int64  `json:"savedAmount"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason,omitempty"`
	ReturnRequested    bool   `json:"returnRequested"`
	ReturnReason       string `json:"returnReason,omitempty"`
	ReturnDetails      string `json:"additionalDetails,omitempty"`
	ReturnStatus       string `json:"returnStatus,omitempty"`
	RejectionReason    string `json:"rejectionReason,omitempty"`
	ReturnProcessed    bool   `json:"returnProcessed"`
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*Order, error)
	GetByUserID(ctx context.Context, userID string, page, limit int) ([]Order, int64, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	UpdateOrderStatus(ctx context.Context, id, status, reason string) error
	UpdatePaymentStatus(ctx context.Context, id, status, transactionID string) error

	// AdvanceItemStatuses moves every item not in a terminal state to the
	// given status, keeping item lifecycles in step with the order.
	AdvanceItemStatuses(ctx context.Context, orderID, status string) error

	GetItem(ctx context.Context, orderID, itemID string) (*OrderItem, error)
	UpdateItem(ctx context.Context, item *OrderItem) error

	// MarkReturnProcessed is a conditional check-and-set; it reports false
	// when the item was already processed, making refunds at-most-once.
	MarkReturnProcessed(ctx context.Context, itemID string) (bool, error)

	ListReturnRequests(ctx context.Context, page, limit int) ([]Order, int64, error)
}
