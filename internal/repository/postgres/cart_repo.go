package pgrepo

import (
	"context"
	"errors"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) domain.CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	q := querier(ctx, r.pool)
	var c domain.Cart
	err := q.QueryRow(ctx, `
		SELECT id, user_id, subtotal, shipping_cost, total, created_at, updated_at
		FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.Subtotal, &c.ShippingCost, &c.Total, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	q := querier(ctx, r.pool)
	var c domain.Cart
	err := q.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id, user_id, subtotal, shipping_cost, total, created_at, updated_at`, userID).
		Scan(&c.ID, &c.UserID, &c.Subtotal, &c.ShippingCost, &c.Total, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ci.price, ci.total_price,
		       v.id, v.product_id, p.name, v.size, v.price, v.discount_price,
		       v.stock, v.is_blocked, v.active_offer_id, v.updated_at,
		       p.is_listed, p.is_blocked
		FROM cart_items ci
		JOIN variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var v domain.Variant
		var productListed, productBlocked bool
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.VariantID, &item.Quantity, &item.Price, &item.TotalPrice,
			&v.ID, &v.ProductID, &v.ProductName, &v.Size, &v.Price, &v.DiscountPrice,
			&v.Stock, &v.IsBlocked, &v.ActiveOfferID, &v.UpdatedAt,
			&productListed, &productBlocked,
		); err != nil {
			return nil, err
		}
		v.Product = &domain.Product{ID: v.ProductID, Name: v.ProductName, IsListed: productListed, IsBlocked: productBlocked}
		item.Variant = &v
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, variantID string, quantity int, unitPrice int64) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO cart_items (cart_id, variant_id, quantity, price, total_price)
		VALUES ($1, $2, $3, $4, $3 * $4)
		ON CONFLICT (cart_id, variant_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity,
		    price = EXCLUDED.price,
		    total_price = (cart_items.quantity + EXCLUDED.quantity) * EXCLUDED.price`,
		cartID, variantID, quantity, unitPrice)
	return err
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, variantID string, quantity int, unitPrice int64) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE cart_items
		SET quantity = $3, price = $4, total_price = $3 * $4
		WHERE cart_id = $1 AND variant_id = $2`,
		cartID, variantID, quantity, unitPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, variantID string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`, cartID, variantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cartRepository) UpdateTotals(ctx context.Context, cartID string, subtotal, shipping, total int64) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE carts SET subtotal = $2, shipping_cost = $3, total = $4, updated_at = now()
		WHERE id = $1`, cartID, subtotal, shipping, total)
	return err
}

func (r *cartRepository) ClearCart(ctx context.Context, cartID string) error {
	q := querier(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
		UPDATE carts SET subtotal = 0, shipping_cost = 0, total = 0, updated_at = now()
		WHERE id = $1`, cartID)
	return err
}
