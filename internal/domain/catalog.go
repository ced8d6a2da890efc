package domain

import (
	"context"
	"time"
)

// --- Catalog Entities ---
// The catalog itself is managed elsewhere; the order subsystem only needs
// the sale-relevant slice of a product and its size variants.

type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsListed  bool   `json:"isListed"`
	IsBlocked bool   `json:"isBlocked"`
}

// Variant is a purchasable size/colour of a product. Price and
// DiscountPrice are integer minor units; DiscountPrice is nil when no
// offer applies.
type Variant struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	Size          string    `json:"size"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discountPrice"`
	Stock         int       `json:"stock"`
	IsBlocked     bool      `json:"isBlocked"`
	ActiveOfferID *string   `json:"activeOffer,omitempty"`
	Product       *Product  `json:"product,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SalePrice is the unit price a buyer pays right now.
func (v *Variant) SalePrice() int64 {
	if v.DiscountPrice != nil {
		return *v.DiscountPrice
	}
	return v.Price
}

// Available reports whether the variant can be sold at all (stock is
// checked separately, at reservation time).
func (v *Variant) Available() bool {
	if v.IsBlocked {
		return false
	}
	if v.Product != nil && (v.Product.IsBlocked || !v.Product.IsListed) {
		return false
	}
	return true
}

// InventoryLog is one append-only row per stock movement.
type InventoryLog struct {
	ID          int64     `json:"id"`
	VariantID   string    `json:"variantId"`
	Change      int       `json:"change"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"referenceId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CatalogRepository interface {
	GetVariantByID(ctx context.Context, id string) (*Variant, error)
	GetVariantsByIDs(ctx context.Context, ids []string) ([]Variant, error)

	// ReserveStock atomically decrements stock, failing with an
	// OUT_OF_STOCK error when fewer than qty units remain or the variant
	// is blocked. ReleaseStock is the unconditional counterpart. Both
	// append an inventory log row and honor an ambient transaction.
	ReserveStock(ctx context.Context, variantID string, qty int, reason, referenceID string) error
	ReleaseStock(ctx context.Context, variantID string, qty int, reason, referenceID string) error

	// AdjustStock is the admin correction path; delta may be negative.
	AdjustStock(ctx context.Context, variantID string, delta int, reason, referenceID string) error
	GetInventoryLogs(ctx context.Context, variantID string, page, limit int) ([]InventoryLog, int64, error)

	// Offer materialization.
	SetDiscountPrice(ctx context.Context, variantID string, discountPrice int64, offerID string) error
	ClearDiscountPrice(ctx context.Context, variantID string) error
	GetVariantsByProductIDs(ctx context.Context, productIDs []string) ([]Variant, error)
	GetVariantsByCategoryIDs(ctx context.Context, categoryIDs []string) ([]Variant, error)
	GetAllVariantIDs(ctx context.Context) ([]string, error)
}
