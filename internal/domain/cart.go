package domain

import (
	"context"
	"time"
)

// --- Cart Entities ---

type Cart struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Items        []CartItem `json:"items"`
	Subtotal     int64      `json:"subtotal"`
	ShippingCost int64      `json:"shippingCost"`
	Total        int64      `json:"total"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CartItem captures the unit price at add time; checkout re-resolves
// against the live variant before committing.
type CartItem struct {
	ID         string   `json:"id"`
	CartID     string   `json:"cartId"`
	VariantID  string   `json:"sizeVariant"`
	Variant    *Variant `json:"variant,omitempty"`
	Quantity   int      `json:"quantity"`
	Price      int64    `json:"price"`
	TotalPrice int64    `json:"totalPrice"`
}

type CartRepository interface {
	GetCartByUserID(ctx context.Context, userID string) (*Cart, error)
	CreateCart(ctx context.Context, userID string) (*Cart, error)
	GetCartWithItems(ctx context.Context, userID string) (*Cart, error)
	UpsertItem(ctx context.Context, cartID, variantID string, quantity int, unitPrice int64) error
	UpdateItemQuantity(ctx context.Context, cartID, variantID string, quantity int, unitPrice int64) error
	RemoveItem(ctx context.Context, cartID, variantID string) error
	UpdateTotals(ctx context.Context, cartID string, subtotal, shipping, total int64) error
	ClearCart(ctx context.Context, cartID string) error
}
