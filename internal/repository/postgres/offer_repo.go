package pgrepo

import (
	"context"
	"errors"
	"time"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type offerRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) domain.OfferRepository {
	return &offerRepository{pool: pool}
}

const offerSelect = `
	SELECT id, name, offer_type, discount_percentage, items,
	       start_date, end_date, is_active, created_at
	FROM offers`

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(
		&o.ID, &o.Name, &o.OfferType, &o.DiscountPercentage, &o.Items,
		&o.StartDate, &o.EndDate, &o.IsActive, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) CreateOffer(ctx context.Context, o *domain.Offer) error {
	q := querier(ctx, r.pool)
	return q.QueryRow(ctx, `
		INSERT INTO offers (name, offer_type, discount_percentage, items, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4::uuid[], $5, $6, $7)
		RETURNING id, created_at`,
		o.Name, o.OfferType, o.DiscountPercentage, o.Items, o.StartDate, o.EndDate, o.IsActive,
	).Scan(&o.ID, &o.CreatedAt)
}

func (r *offerRepository) UpdateOffer(ctx context.Context, o *domain.Offer) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE offers
		SET name = $2, offer_type = $3, discount_percentage = $4, items = $5::uuid[],
		    start_date = $6, end_date = $7, is_active = $8
		WHERE id = $1`,
		o.ID, o.Name, o.OfferType, o.DiscountPercentage, o.Items,
		o.StartDate, o.EndDate, o.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *offerRepository) DeleteOffer(ctx context.Context, id string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *offerRepository) GetOfferByID(ctx context.Context, id string) (*domain.Offer, error) {
	q := querier(ctx, r.pool)
	return scanOffer(q.QueryRow(ctx, offerSelect+` WHERE id = $1`, id))
}

func (r *offerRepository) ListOffers(ctx context.Context, page, limit int) ([]domain.Offer, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM offers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, offerSelect+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	offers, err := collectOffers(rows)
	return offers, total, err
}

func (r *offerRepository) ListActiveOffers(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, offerSelect+`
		WHERE is_active AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at DESC`, now)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]domain.Offer, error) {
	defer rows.Close()
	var out []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
