package usecase

import (
	"context"
	"testing"
	"vintage-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWallet_CreatesOnFirstVisit(t *testing.T) {
	repo := newStubWalletRepo()
	uc := NewWalletUsecase(repo, 5)

	view, err := uc.GetWallet(context.Background(), "user-1", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(0), view.Balance)
	assert.Empty(t, view.Transactions)
	assert.Contains(t, repo.balances, "user-1")
}

func TestGetWallet_PaginatesTransactions(t *testing.T) {
	repo := newStubWalletRepo()
	repo.balances["user-1"] = 700
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Credit(context.Background(), "user-1", 100, "topup"))
	}
	uc := NewWalletUsecase(repo, 5)

	view, err := uc.GetWallet(context.Background(), "user-1", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(7), view.Pagination.TotalItems)
	assert.Equal(t, 2, view.Pagination.TotalPages)
	assert.Equal(t, 5, view.Pagination.Limit)
}

func TestWalletCredit_RejectsNonPositiveAmounts(t *testing.T) {
	uc := NewWalletUsecase(newStubWalletRepo(), 5)

	err := uc.Credit(context.Background(), "user-1", 0, "nope")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAmount))

	err = uc.Credit(context.Background(), "user-1", -50, "nope")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAmount))
}

func TestWalletDebit(t *testing.T) {
	repo := newStubWalletRepo()
	repo.balances["user-1"] = 300
	uc := NewWalletUsecase(repo, 5)

	require.NoError(t, uc.Debit(context.Background(), "user-1", 200, "order"))
	assert.Equal(t, int64(100), repo.balances["user-1"])

	err := uc.Debit(context.Background(), "user-1", 200, "order")
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientBalance))
	assert.Equal(t, int64(100), repo.balances["user-1"])
}

func TestWalletCreditAndDebit_RecordLedgerRows(t *testing.T) {
	repo := newStubWalletRepo()
	uc := NewWalletUsecase(repo, 5)

	require.NoError(t, uc.Credit(context.Background(), "user-1", 500, "goodwill"))
	require.NoError(t, uc.Debit(context.Background(), "user-1", 200, "order payment"))

	require.Len(t, repo.txns, 2)
	assert.Equal(t, domain.WalletTxnCredit, repo.txns[0].Type)
	assert.Equal(t, domain.WalletTxnDebit, repo.txns[1].Type)
	assert.Equal(t, int64(300), repo.balances["user-1"])
}
