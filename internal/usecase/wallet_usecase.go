package usecase

import (
	"context"
	"errors"
	"log/slog"
	"vintage-backend/internal/domain"
)

type WalletUsecase struct {
	walletRepo domain.WalletRepository
	pageSize   int
}

func NewWalletUsecase(walletRepo domain.WalletRepository, pageSize int) *WalletUsecase {
	return &WalletUsecase{walletRepo: walletRepo, pageSize: pageSize}
}

// WalletView is the wallet endpoint payload: balance plus one page of
// transactions, newest first.
type WalletView struct {
	Balance      int64                      `json:"balance"`
	Transactions []domain.WalletTransaction `json:"transactions"`
	Pagination   domain.Pagination          `json:"pagination"`
}

func (u *WalletUsecase) GetWallet(ctx context.Context, userID string, page int) (*WalletView, error) {
	if page < 1 {
		page = 1
	}

	wallet, err := u.walletRepo.GetWallet(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// First visit: create the empty wallet.
		if err := u.walletRepo.EnsureWallet(ctx, userID); err != nil {
			return nil, err
		}
		wallet, err = u.walletRepo.GetWallet(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	txns, total, err := u.walletRepo.GetTransactions(ctx, userID, page, u.pageSize)
	if err != nil {
		return nil, err
	}

	return &WalletView{
		Balance:      wallet.Balance,
		Transactions: txns,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      u.pageSize,
			TotalItems: total,
			TotalPages: pageCount(total, u.pageSize),
		},
	}, nil
}

// Credit adds money to a wallet. Used by admins for goodwill credits;
// order flows credit through their own transactions.
func (u *WalletUsecase) Credit(ctx context.Context, userID string, amount int64, description string) error {
	if amount <= 0 {
		return domain.E(domain.CodeInvalidAmount, "credit amount must be positive")
	}
	if err := u.walletRepo.Credit(ctx, userID, amount, description); err != nil {
		return err
	}
	slog.Info("Usecase: Wallet credited", "user_id", userID, "amount", amount)
	return nil
}

// Debit takes money out, failing when the balance cannot cover it.
func (u *WalletUsecase) Debit(ctx context.Context, userID string, amount int64, description string) error {
	if amount <= 0 {
		return domain.E(domain.CodeInvalidAmount, "debit amount must be positive")
	}
	ok, err := u.walletRepo.Debit(ctx, userID, amount, description)
	if err != nil {
		return err
	}
	if !ok {
		return domain.E(domain.CodeInsufficientBalance, "wallet balance does not cover the amount")
	}
	slog.Info("Usecase: Wallet debited", "user_id", userID, "amount", amount)
	return nil
}

// --- Admin Usecase ---

func (u *WalletUsecase) GetAllTransactions(ctx context.Context, page, limit int) ([]domain.WalletTransactionView, *domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	views, total, err := u.walletRepo.GetAllTransactions(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return views, &domain.Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: pageCount(total, limit),
	}, nil
}

func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
