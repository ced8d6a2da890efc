package pgrepo

import (
	"context"
	"encoding/json"
	"errors"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{pool: pool}
}

const orderSelect = `
	SELECT id, order_ref, user_id, order_status, reason,
	       shipping_address, shipping_method, delivery_charge,
	       payment_method, payment_status, transaction_id, payment_amount, payment_date,
	       subtotal, shipping_cost, total_amount,
	       coupon_code, discount_amount, total_discount,
	       created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var addressJSON []byte
	err := row.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.OrderStatus, &o.Reason,
		&addressJSON, &o.Shipping.ShippingMethod, &o.Shipping.DeliveryCharge,
		&o.Payment.Method, &o.Payment.Status, &o.Payment.TransactionID, &o.Payment.Amount, &o.Payment.PaymentDate,
		&o.Subtotal, &o.ShippingCost, &o.TotalAmount,
		&o.CouponCode, &o.DiscountAmount, &o.TotalDiscount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &o.Shipping.Address); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	q := querier(ctx, r.pool)

	addressJSON, err := json.Marshal(order.Shipping.Address)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO orders (
			order_ref, user_id, order_status, reason,
			shipping_address, shipping_method, delivery_charge,
			payment_method, payment_status, transaction_id, payment_amount, payment_date,
			subtotal, shipping_cost, total_amount,
			coupon_code, discount_amount, total_discount
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, created_at, updated_at`,
		order.OrderID, order.UserID, order.OrderStatus, order.Reason,
		addressJSON, order.Shipping.ShippingMethod, order.Shipping.DeliveryCharge,
		order.Payment.Method, order.Payment.Status, order.Payment.TransactionID, order.Payment.Amount, order.Payment.PaymentDate,
		order.Subtotal, order.ShippingCost, order.TotalAmount,
		order.CouponCode, order.DiscountAmount, order.TotalDiscount,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := q.QueryRow(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, variant_id, quantity,
				price, discount_price, final_price, saved_amount, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id`,
			order.ID, item.ProductID, item.ProductName, item.VariantID, item.Quantity,
			item.Price, item.DiscountPrice, item.FinalPrice, item.SavedAmount, item.Status,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := querier(ctx, r.pool)
	order, err := scanOrder(q.QueryRow(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	q := querier(ctx, r.pool)
	order, err := scanOrder(q.QueryRow(ctx, orderSelect+` WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string, page, limit int) ([]domain.Order, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, orderSelect+`
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	orders, err := r.collectWithItems(ctx, rows)
	return orders, total, err
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := querier(ctx, r.pool)

	where := ` WHERE ($1 = '' OR order_status = $1)
	             AND ($2 = '' OR user_id::text = $2)
	             AND ($3 = '' OR order_ref ILIKE '%' || $3 || '%')`

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM orders`+where,
		filter.Status, filter.UserID, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, orderSelect+where+`
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		filter.Status, filter.UserID, filter.Search, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	orders, err := r.collectWithItems(ctx, rows)
	return orders, total, err
}

func (r *orderRepository) collectWithItems(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

const itemSelect = `
	SELECT id, order_id, product_id, product_name, variant_id, quantity,
	       price, discount_price, final_price, saved_amount, status,
	       cancellation_reason, return_requested, return_reason, return_details,
	       return_status, rejection_reason, return_processed
	FROM order_items`

func scanItem(row pgx.Row) (*domain.OrderItem, error) {
	var it domain.OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.VariantID, &it.Quantity,
		&it.Price, &it.DiscountPrice, &it.FinalPrice, &it.SavedAmount, &it.Status,
		&it.CancellationReason, &it.ReturnRequested, &it.ReturnReason, &it.ReturnDetails,
		&it.ReturnStatus, &it.RejectionReason, &it.ReturnProcessed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	q := querier(ctx, r.pool)

	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := q.Query(ctx, itemSelect+` WHERE order_id = ANY($1::uuid[]) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, *it)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id, status, reason string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE orders SET order_status = $2, reason = $3, updated_at = now()
		WHERE id = $1`, id, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id, status, transactionID string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2,
		    transaction_id = CASE WHEN $3 = '' THEN transaction_id ELSE $3 END,
		    payment_date = CASE WHEN $2 = 'completed' THEN now() ELSE payment_date END,
		    updated_at = now()
		WHERE id = $1`, id, status, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) AdvanceItemStatuses(ctx context.Context, orderID, status string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE order_items SET status = $2
		WHERE order_id = $1 AND status NOT IN ('Cancelled', 'Returned')`, orderID, status)
	return err
}

func (r *orderRepository) GetItem(ctx context.Context, orderID, itemID string) (*domain.OrderItem, error) {
	q := querier(ctx, r.pool)
	return scanItem(q.QueryRow(ctx, itemSelect+` WHERE order_id = $1 AND id = $2`, orderID, itemID))
}

func (r *orderRepository) UpdateItem(ctx context.Context, item *domain.OrderItem) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE order_items
		SET status = $2, cancellation_reason = $3,
		    return_requested = $4, return_reason = $5, return_details = $6,
		    return_status = $7, rejection_reason = $8
		WHERE id = $1`,
		item.ID, item.Status, item.CancellationReason,
		item.ReturnRequested, item.ReturnReason, item.ReturnDetails,
		item.ReturnStatus, item.RejectionReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) MarkReturnProcessed(ctx context.Context, itemID string) (bool, error) {
	q := querier(ctx, r.pool)

	// Conditional check-and-set keeps refunds at-most-once even under
	// concurrent approvals.
	tag, err := q.Exec(ctx, `
		UPDATE order_items SET return_processed = TRUE
		WHERE id = $1 AND NOT return_processed`, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) ListReturnRequests(ctx context.Context, page, limit int) ([]domain.Order, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx, `
		SELECT count(DISTINCT o.id)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.return_requested`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, orderSelect+`
		WHERE id IN (SELECT DISTINCT order_id FROM order_items WHERE return_requested)
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	orders, err := r.collectWithItems(ctx, rows)
	return orders, total, err
}
