package usecase

import (
	"time"
	"vintage-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// PricingResolver is the single authority for checkout and refund money
// math. All inputs and outputs are integer minor units; decimals only
// live inside a computation and are rounded half-up exactly once per
// result.
type PricingResolver struct{}

func NewPricingResolver() *PricingResolver {
	return &PricingResolver{}
}

// LinePrice is the priced form of one order line.
type LinePrice struct {
	UnitPrice     int64 // catalog price per unit
	DiscountPrice int64 // effective per-unit price after any offer
	FinalPrice    int64 // line total: DiscountPrice * qty
	SavedAmount   int64 // per-unit offer saving
}

// PriceLine resolves a line against the live variant.
func (p *PricingResolver) PriceLine(v *domain.Variant, qty int) LinePrice {
	unit := v.Price
	discounted := v.SalePrice()
	return LinePrice{
		UnitPrice:     unit,
		DiscountPrice: discounted,
		FinalPrice:    discounted * int64(qty),
		SavedAmount:   unit - discounted,
	}
}

// CouponDiscount computes the discount a coupon grants on a subtotal.
// The caller has already validated the window and redemption state; a
// subtotal below the coupon minimum yields zero.
func (p *PricingResolver) CouponDiscount(c *domain.Coupon, subtotal int64) int64 {
	if subtotal < c.MinOrderAmount {
		return 0
	}
	switch c.DiscountType {
	case domain.CouponTypePercentage:
		d := decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(c.DiscountValue)).
			Div(decimal.NewFromInt(100))
		return d.Round(0).IntPart()
	case domain.CouponTypeFixed:
		if c.DiscountValue > subtotal {
			return subtotal
		}
		return c.DiscountValue
	}
	return 0
}

// ProportionalShare distributes a whole-order discount onto one line by
// its weight in the subtotal.
func (p *PricingResolver) ProportionalShare(lineTotal, subtotal, totalDiscount int64) int64 {
	if subtotal <= 0 || totalDiscount <= 0 {
		return 0
	}
	share := decimal.NewFromInt(totalDiscount).
		Mul(decimal.NewFromInt(lineTotal)).
		Div(decimal.NewFromInt(subtotal))
	return share.Round(0).IntPart()
}

// RefundAmount is what a returned line pays back: the original line
// total, less the offer discount already granted, less the line's share
// of the order coupon. The share is deducted for every returned line so
// the sum of refunds can never exceed what the buyer paid.
func (p *PricingResolver) RefundAmount(item *domain.OrderItem, order *domain.Order) int64 {
	if order.Subtotal <= 0 {
		return item.FinalPrice
	}
	refund := decimal.NewFromInt(item.FinalPrice)
	if order.DiscountAmount > 0 {
		share := decimal.NewFromInt(order.DiscountAmount).
			Mul(decimal.NewFromInt(item.FinalPrice)).
			Div(decimal.NewFromInt(order.Subtotal))
		refund = refund.Sub(share)
	}
	if refund.IsNegative() {
		return 0
	}
	return refund.Round(0).IntPart()
}

// OfferPrice materializes a percentage offer on a unit price.
func (p *PricingResolver) OfferPrice(price int64, discountPercentage int) int64 {
	d := decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(int64(discountPercentage))).
		Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(price).Sub(d).Round(0).IntPart()
}

// ShippingCost applies the flat fee below the free-shipping threshold.
func (p *PricingResolver) ShippingCost(subtotal, fee, freeThreshold int64) int64 {
	if subtotal > freeThreshold {
		return 0
	}
	return fee
}

// CouponUsable reports whether a coupon can be offered to this user for
// this subtotal at time t. Redemption state is checked separately.
func CouponUsable(c *domain.Coupon, subtotal int64, t time.Time) bool {
	return c.ActiveNow(t) && subtotal >= c.MinOrderAmount
}
