package pgrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type paymentIntentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentIntentRepository(pool *pgxpool.Pool) domain.PaymentIntentRepository {
	return &paymentIntentRepository{pool: pool}
}

func (r *paymentIntentRepository) CreateIntent(ctx context.Context, intent *domain.PaymentIntent) error {
	q := querier(ctx, r.pool)

	checkoutJSON, err := json.Marshal(intent.Checkout)
	if err != nil {
		return err
	}

	return q.QueryRow(ctx, `
		INSERT INTO payment_intents (user_id, gateway_order_ref, amount, currency, status, checkout)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		intent.UserID, intent.GatewayOrderRef, intent.Amount, intent.Currency, intent.Status, checkoutJSON,
	).Scan(&intent.ID, &intent.CreatedAt, &intent.UpdatedAt)
}

func (r *paymentIntentRepository) GetByGatewayRef(ctx context.Context, gatewayOrderRef string) (*domain.PaymentIntent, error) {
	q := querier(ctx, r.pool)
	var in domain.PaymentIntent
	var checkoutJSON []byte
	var orderID *string
	err := q.QueryRow(ctx, `
		SELECT id, user_id, gateway_order_ref, amount, currency, status,
		       payment_ref, failure_reason, checkout, order_id, created_at, updated_at
		FROM payment_intents WHERE gateway_order_ref = $1`, gatewayOrderRef).
		Scan(&in.ID, &in.UserID, &in.GatewayOrderRef, &in.Amount, &in.Currency, &in.Status,
			&in.PaymentRef, &in.FailureReason, &checkoutJSON, &orderID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if orderID != nil {
		in.OrderID = *orderID
	}
	if len(checkoutJSON) > 0 {
		if err := json.Unmarshal(checkoutJSON, &in.Checkout); err != nil {
			return nil, err
		}
	}
	return &in, nil
}

func (r *paymentIntentRepository) UpdateStatus(ctx context.Context, id, status, paymentRef, failureReason string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE payment_intents
		SET status = $2,
		    payment_ref = CASE WHEN $3 = '' THEN payment_ref ELSE $3 END,
		    failure_reason = $4,
		    updated_at = now()
		WHERE id = $1`, id, status, paymentRef, failureReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentIntentRepository) AttachOrder(ctx context.Context, id, orderID string) error {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE payment_intents SET order_id = $2, updated_at = now()
		WHERE id = $1`, id, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentIntentRepository) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	q := querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE payment_intents SET status = 'expired', updated_at = now()
		WHERE status = 'created' AND created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
