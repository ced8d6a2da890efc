package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"vintage-backend/internal/domain"
	"vintage-backend/pkg/cache"
)

type CouponUsecase struct {
	couponRepo domain.CouponRepository
	cache      cache.CacheService
	pricing    *PricingResolver
	cacheTTL   time.Duration
}

func NewCouponUsecase(couponRepo domain.CouponRepository, cacheService cache.CacheService, pricing *PricingResolver, cacheTTL time.Duration) *CouponUsecase {
	return &CouponUsecase{
		couponRepo: couponRepo,
		cache:      cacheService,
		pricing:    pricing,
		cacheTTL:   cacheTTL,
	}
}

// AvailableCoupons lists in-window coupons the user has not redeemed.
// Cached briefly; redemptions during the TTL surface at checkout anyway.
func (u *CouponUsecase) AvailableCoupons(ctx context.Context, userID string) ([]domain.Coupon, error) {
	cacheKey := "coupons:available:" + userID
	if cached, found := u.cache.Get(cacheKey); found {
		if coupons, ok := cached.([]domain.Coupon); ok {
			return coupons, nil
		}
	}

	coupons, err := u.couponRepo.ListAvailableForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.cache.Set(cacheKey, coupons, u.cacheTTL)
	return coupons, nil
}

// ApplyCouponResp previews a coupon against the current cart total.
type ApplyCouponResp struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discountAmount"`
	NewTotal       int64  `json:"newTotal"`
	Message        string `json:"message"`
}

func (u *CouponUsecase) ApplyPreview(ctx context.Context, userID, code string, cartTotal int64) (*ApplyCouponResp, error) {
	coupon, err := u.couponRepo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeCouponNotApplicable, "invalid coupon code")
		}
		return nil, err
	}

	now := time.Now()
	if !coupon.ActiveNow(now) {
		return nil, domain.E(domain.CodeCouponNotApplicable, "coupon is expired or not yet active")
	}
	if cartTotal < coupon.MinOrderAmount {
		return nil, domain.Ef(domain.CodeCouponNotApplicable,
			"minimum order amount for this coupon is %d", coupon.MinOrderAmount)
	}
	used, err := u.couponRepo.HasRedeemed(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.E(domain.CodeCouponNotApplicable, "coupon already used")
	}

	discount := u.pricing.CouponDiscount(coupon, cartTotal)
	return &ApplyCouponResp{
		Valid:          true,
		Code:           coupon.Code,
		DiscountAmount: discount,
		NewTotal:       cartTotal - discount,
		Message:        "Coupon applied successfully",
	}, nil
}

// --- Admin Usecase ---

func (u *CouponUsecase) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if err := u.couponRepo.CreateCoupon(ctx, c); err != nil {
		return err
	}
	u.cache.Flush()
	return nil
}

func (u *CouponUsecase) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if err := u.couponRepo.UpdateCoupon(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "coupon not found")
		}
		return err
	}
	u.cache.Flush()
	return nil
}

func (u *CouponUsecase) DeleteCoupon(ctx context.Context, id string) error {
	if err := u.couponRepo.DeleteCoupon(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "coupon not found")
		}
		return err
	}
	u.cache.Flush()
	return nil
}

func (u *CouponUsecase) ListCoupons(ctx context.Context, page, limit int) ([]domain.Coupon, int64, error) {
	return u.couponRepo.ListCoupons(ctx, page, limit)
}

func (u *CouponUsecase) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	coupon, err := u.couponRepo.GetCouponByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "coupon not found")
		}
		return nil, err
	}
	return coupon, nil
}

func validateCoupon(c *domain.Coupon) error {
	if c.Code == "" {
		return domain.E(domain.CodeInvalidInput, "coupon code is required")
	}
	if c.DiscountType != domain.CouponTypePercentage && c.DiscountType != domain.CouponTypeFixed {
		return domain.Ef(domain.CodeInvalidInput, "unknown discount type %q", c.DiscountType)
	}
	if c.DiscountValue <= 0 {
		return domain.E(domain.CodeInvalidAmount, "discount value must be positive")
	}
	if c.DiscountType == domain.CouponTypePercentage && c.DiscountValue > 100 {
		return domain.E(domain.CodeInvalidAmount, "percentage discount cannot exceed 100")
	}
	if c.EndDate.Before(c.StartDate) {
		return domain.E(domain.CodeInvalidInput, "end date precedes start date")
	}
	return nil
}

// ExpireOutdated runs the idempotent expiration sweep.
func (u *CouponUsecase) ExpireOutdated(ctx context.Context) error {
	n, err := u.couponRepo.ExpireOutdated(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Usecase: Coupon sweep expired coupons", "count", n)
		u.cache.Flush()
	}
	return nil
}
