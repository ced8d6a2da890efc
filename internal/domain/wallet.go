package domain

import (
	"context"
	"time"
)

// --- Wallet Entities ---

// Wallet rows are created lazily on first read or credit. Balance is
// integer minor units and never goes negative; the repository enforces
// that with a conditional debit.
type Wallet struct {
	UserID    string    `json:"userId"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WalletTransaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"date"`
}

// WalletTransactionView is the admin listing row with the owning user
// joined in.
type WalletTransactionView struct {
	WalletTransaction
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

type WalletRepository interface {
	// EnsureWallet creates the zero-balance row if missing.
	EnsureWallet(ctx context.Context, userID string) error
	GetWallet(ctx context.Context, userID string) (*Wallet, error)

	// Credit unconditionally increments the balance. Debit decrements only
	// when the balance covers the amount and reports false otherwise. Both
	// insert exactly one transaction row in the same ambient transaction.
	Credit(ctx context.Context, userID string, amount int64, description string) error
	Debit(ctx context.Context, userID string, amount int64, description string) (bool, error)

	GetTransactions(ctx context.Context, userID string, page, limit int) ([]WalletTransaction, int64, error)
	GetAllTransactions(ctx context.Context, page, limit int) ([]WalletTransactionView, int64, error)
}
