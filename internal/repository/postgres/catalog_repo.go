package pgrepo

import (
	"context"
	"errors"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepository{pool: pool}
}

const variantSelect = `
	SELECT v.id, v.product_id, p.name, v.size, v.price, v.discount_price,
	       v.stock, v.is_blocked, v.active_offer_id, v.updated_at,
	       p.is_listed, p.is_blocked
	FROM variants v
	JOIN products p ON p.id = v.product_id`

func scanVariant(row pgx.Row) (*domain.Variant, error) {
	var v domain.Variant
	var productListed, productBlocked bool
	err := row.Scan(
		&v.ID, &v.ProductID, &v.ProductName, &v.Size, &v.Price, &v.DiscountPrice,
		&v.Stock, &v.IsBlocked, &v.ActiveOfferID, &v.UpdatedAt,
		&productListed, &productBlocked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v.Product = &domain.Product{
		ID:        v.ProductID,
		Name:      v.ProductName,
		IsListed:  productListed,
		IsBlocked: productBlocked,
	}
	return &v, nil
}

func (r *catalogRepository) GetVariantByID(ctx context.Context, id string) (*domain.Variant, error) {
	q := querier(ctx, r.pool)
	return scanVariant(q.QueryRow(ctx, variantSelect+` WHERE v.id = $1`, id))
}

func (r *catalogRepository) GetVariantsByIDs(ctx context.Context, ids []string) ([]domain.Variant, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, variantSelect+` WHERE v.id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	return collectVariants(rows)
}

func collectVariants(rows pgx.Rows) ([]domain.Variant, error) {
	defer rows.Close()
	var out []domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *catalogRepository) ReserveStock(ctx context.Context, variantID string, qty int, reason, referenceID string) error {
	q := querier(ctx, r.pool)

	// Single conditional decrement; zero rows means either not enough
	// stock or a blocked variant.
	tag, err := q.Exec(ctx, `
		UPDATE variants SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2 AND NOT is_blocked`, variantID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.CodeOutOfStock, "insufficient stock")
	}
	return r.appendLog(ctx, variantID, -qty, reason, referenceID)
}

func (r *catalogRepository) ReleaseStock(ctx context.Context, variantID string, qty int, reason, referenceID string) error {
	q := querier(ctx, r.pool)
	if _, err := q.Exec(ctx, `
		UPDATE variants SET stock = stock + $2, updated_at = now()
		WHERE id = $1`, variantID, qty); err != nil {
		return err
	}
	return r.appendLog(ctx, variantID, qty, reason, referenceID)
}

func (r *catalogRepository) AdjustStock(ctx context.Context, variantID string, delta int, reason, referenceID string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE variants SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0`, variantID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.CodeInvalidAmount, "adjustment would drive stock negative")
	}
	return r.appendLog(ctx, variantID, delta, reason, referenceID)
}

func (r *catalogRepository) appendLog(ctx context.Context, variantID string, change int, reason, referenceID string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO inventory_logs (variant_id, change_amount, reason, reference_id)
		VALUES ($1, $2, $3, $4)`, variantID, change, reason, referenceID)
	return err
}

func (r *catalogRepository) GetInventoryLogs(ctx context.Context, variantID string, page, limit int) ([]domain.InventoryLog, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM inventory_logs WHERE variant_id = $1`, variantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, variant_id, change_amount, reason, reference_id, created_at
		FROM inventory_logs
		WHERE variant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, variantID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []domain.InventoryLog
	for rows.Next() {
		var l domain.InventoryLog
		if err := rows.Scan(&l.ID, &l.VariantID, &l.Change, &l.Reason, &l.ReferenceID, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *catalogRepository) SetDiscountPrice(ctx context.Context, variantID string, discountPrice int64, offerID string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE variants SET discount_price = $2, active_offer_id = $3, updated_at = now()
		WHERE id = $1`, variantID, discountPrice, offerID)
	return err
}

func (r *catalogRepository) ClearDiscountPrice(ctx context.Context, variantID string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE variants SET discount_price = NULL, active_offer_id = NULL, updated_at = now()
		WHERE id = $1`, variantID)
	return err
}

func (r *catalogRepository) GetVariantsByProductIDs(ctx context.Context, productIDs []string) ([]domain.Variant, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, variantSelect+` WHERE v.product_id = ANY($1::uuid[])`, productIDs)
	if err != nil {
		return nil, err
	}
	return collectVariants(rows)
}

func (r *catalogRepository) GetVariantsByCategoryIDs(ctx context.Context, categoryIDs []string) ([]domain.Variant, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, variantSelect+` WHERE p.category_id = ANY($1::uuid[])`, categoryIDs)
	if err != nil {
		return nil, err
	}
	return collectVariants(rows)
}

func (r *catalogRepository) GetAllVariantIDs(ctx context.Context) ([]string, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT id FROM variants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
