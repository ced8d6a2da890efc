package domain

import (
	"context"
	"time"
)

// Coupon discount types.
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Coupon windows are inclusive; IsExpired is materialized by the
// background sweep so listings never scan dates.
type Coupon struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	Description    string    `json:"description,omitempty"`
	DiscountType   string    `json:"discountType"`
	DiscountValue  int64     `json:"discountValue"`
	MinOrderAmount int64     `json:"minOrderAmount"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	IsExpired      bool      `json:"isExpired"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ActiveNow reports whether the coupon window covers t.
func (c *Coupon) ActiveNow(t time.Time) bool {
	return !c.IsExpired && !t.Before(c.StartDate) && !t.After(c.EndDate)
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, c *Coupon) error
	UpdateCoupon(ctx context.Context, c *Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
	GetCouponByID(ctx context.Context, id string) (*Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	ListCoupons(ctx context.Context, page, limit int) ([]Coupon, int64, error)

	// ListAvailableForUser returns in-window coupons the user has not
	// redeemed yet.
	ListAvailableForUser(ctx context.Context, userID string) ([]Coupon, error)
	HasRedeemed(ctx context.Context, couponID, userID string) (bool, error)

	// MarkRedeemed records the single allowed redemption; it reports false
	// when the user already holds one.
	MarkRedeemed(ctx context.Context, couponID, userID string) (bool, error)

	// ExpireOutdated flips is_expired on every coupon whose window has
	// closed and returns how many rows changed. Idempotent.
	ExpireOutdated(ctx context.Context, now time.Time) (int64, error)
}
