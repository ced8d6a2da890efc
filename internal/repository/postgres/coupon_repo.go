package pgrepo

import (
	"context"
	"errors"
	"time"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{pool: pool}
}

const couponSelect = `
	SELECT id, code, description, discount_type, discount_value, min_order_amount,
	       start_date, end_date, is_expired, created_at
	FROM coupons`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount,
		&c.StartDate, &c.EndDate, &c.IsExpired, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	q := querier(ctx, r.pool)
	return q.QueryRow(ctx, `
		INSERT INTO coupons (code, description, discount_type, discount_value, min_order_amount, start_date, end_date)
		VALUES (upper($1), $2, $3, $4, $5, $6, $7)
		RETURNING id, code, created_at`,
		c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinOrderAmount, c.StartDate, c.EndDate,
	).Scan(&c.ID, &c.Code, &c.CreatedAt)
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE coupons
		SET code = upper($2), description = $3, discount_type = $4, discount_value = $5,
		    min_order_amount = $6, start_date = $7, end_date = $8, is_expired = $9
		WHERE id = $1`,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue,
		c.MinOrderAmount, c.StartDate, c.EndDate, c.IsExpired)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *couponRepository) DeleteCoupon(ctx context.Context, id string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *couponRepository) GetCouponByID(ctx context.Context, id string) (*domain.Coupon, error) {
	q := querier(ctx, r.pool)
	return scanCoupon(q.QueryRow(ctx, couponSelect+` WHERE id = $1`, id))
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	q := querier(ctx, r.pool)
	return scanCoupon(q.QueryRow(ctx, couponSelect+` WHERE code = upper($1)`, code))
}

func (r *couponRepository) ListCoupons(ctx context.Context, page, limit int) ([]domain.Coupon, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, couponSelect+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	coupons, err := collectCoupons(rows)
	return coupons, total, err
}

func (r *couponRepository) ListAvailableForUser(ctx context.Context, userID string) ([]domain.Coupon, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, couponSelect+`
		WHERE NOT is_expired
		  AND start_date <= now() AND end_date >= now()
		  AND id NOT IN (SELECT coupon_id FROM coupon_redemptions WHERE user_id = $1)
		ORDER BY end_date`, userID)
	if err != nil {
		return nil, err
	}
	return collectCoupons(rows)
}

func collectCoupons(rows pgx.Rows) ([]domain.Coupon, error) {
	defer rows.Close()
	var out []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *couponRepository) HasRedeemed(ctx context.Context, couponID, userID string) (bool, error) {
	q := querier(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2)`,
		couponID, userID).Scan(&exists)
	return exists, err
}

func (r *couponRepository) MarkRedeemed(ctx context.Context, couponID, userID string) (bool, error) {
	q := querier(ctx, r.pool)

	// The primary key makes a second redemption a no-op, reported to the
	// caller as false.
	tag, err := q.Exec(ctx, `
		INSERT INTO coupon_redemptions (coupon_id, user_id) VALUES ($1, $2)
		ON CONFLICT (coupon_id, user_id) DO NOTHING`, couponID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *couponRepository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE coupons SET is_expired = TRUE
		WHERE NOT is_expired AND end_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
