package pgrepo

import (
	"context"
	"errors"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type walletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) domain.WalletRepository {
	return &walletRepository{pool: pool}
}

func (r *walletRepository) EnsureWallet(ctx context.Context, userID string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO wallets (user_id, balance) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (r *walletRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	q := querier(ctx, r.pool)
	var w domain.Wallet
	err := q.QueryRow(ctx, `
		SELECT user_id, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1`, userID).
		Scan(&w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID string, amount int64, description string) error {
	q := querier(ctx, r.pool)
	if err := r.EnsureWallet(ctx, userID); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `
		UPDATE wallets SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1`, userID, amount); err != nil {
		return err
	}
	return r.appendTransaction(ctx, userID, domain.WalletTxnCredit, amount, description)
}

func (r *walletRepository) Debit(ctx context.Context, userID string, amount int64, description string) (bool, error) {
	q := querier(ctx, r.pool)

	// Conditional decrement; zero rows means the balance cannot cover the
	// amount (or no wallet exists, which is the same thing).
	tag, err := q.Exec(ctx, `
		UPDATE wallets SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2`, userID, amount)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := r.appendTransaction(ctx, userID, domain.WalletTxnDebit, amount, description); err != nil {
		return false, err
	}
	return true, nil
}

func (r *walletRepository) appendTransaction(ctx context.Context, userID, txnType string, amount int64, description string) error {
	q := querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO wallet_transactions (user_id, type, amount, description)
		VALUES ($1, $2, $3, $4)`, userID, txnType, amount, description)
	return err
}

func (r *walletRepository) GetTransactions(ctx context.Context, userID string, page, limit int) ([]domain.WalletTransaction, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, user_id, type, amount, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}

func (r *walletRepository) GetAllTransactions(ctx context.Context, page, limit int) ([]domain.WalletTransactionView, int64, error) {
	q := querier(ctx, r.pool)

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM wallet_transactions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT wt.id, wt.user_id, wt.type, wt.amount, wt.description, wt.created_at,
		       u.first_name || ' ' || u.last_name, u.email
		FROM wallet_transactions wt
		JOIN users u ON u.id = wt.user_id
		ORDER BY wt.created_at DESC
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var views []domain.WalletTransactionView
	for rows.Next() {
		var v domain.WalletTransactionView
		if err := rows.Scan(&v.ID, &v.UserID, &v.Type, &v.Amount, &v.Description, &v.CreatedAt,
			&v.UserName, &v.UserEmail); err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, rows.Err()
}
