package domain

// Order-level statuses. "Shiped" keeps the historical spelling the
// storefront clients already depend on.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shiped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Per-item statuses.
const (
	ItemStatusPending    = "pending"
	ItemStatusProcessing = "Processing"
	ItemStatusShipped    = "Shipped"
	ItemStatusDelivered  = "Delivered"
	ItemStatusCancelled  = "Cancelled"
	ItemStatusReturned   = "Returned"
)

// Return sub-statuses for an item with an open return request.
const (
	ReturnStatusPending  = "Return Pending"
	ReturnStatusApproved = "Return Approved"
	ReturnStatusRejected = "Return Rejected"
	ReturnStatusRefunded = "Refunded"
)

// Payment Statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusInitiated = "initiated"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRetry     = "retry_pending"
)

// Payment Methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
	PaymentMethodWallet = "wallet"
)

// Payment intent lifecycle (gateway bridge).
const (
	IntentStatusCreated   = "created"
	IntentStatusCompleted = "completed"
	IntentStatusFailed    = "failed"
	IntentStatusCancelled = "cancelled"
	IntentStatusExpired   = "expired"
)

// User roles carried in JWT claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Wallet transaction types.
const (
	WalletTxnCredit = "credit"
	WalletTxnDebit  = "debit"
)

// Inventory movement reasons recorded in the inventory log.
const (
	StockReasonOrder      = "order"
	StockReasonCancel     = "cancel"
	StockReasonReturn     = "return"
	StockReasonAdjustment = "adjustment"
	StockReasonPayment    = "payment_reversal"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var ItemStatuses = []string{
	ItemStatusPending,
	ItemStatusProcessing,
	ItemStatusShipped,
	ItemStatusDelivered,
	ItemStatusCancelled,
	ItemStatusReturned,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodOnline,
	PaymentMethodWallet,
}
