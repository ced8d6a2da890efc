package usecase

import (
	"context"
	"errors"
	"log/slog"
	"vintage-backend/internal/domain"
)

// InventoryUsecase is the admin-facing slice of the stock ledger:
// manual corrections and the movement history. Order flows move stock
// through their own transactions.
type InventoryUsecase struct {
	catalogRepo domain.CatalogRepository
}

func NewInventoryUsecase(catalogRepo domain.CatalogRepository) *InventoryUsecase {
	return &InventoryUsecase{catalogRepo: catalogRepo}
}

func (u *InventoryUsecase) AdjustStock(ctx context.Context, variantID string, delta int, reason, adminID string) (*domain.Variant, error) {
	if delta == 0 {
		return nil, domain.E(domain.CodeInvalidAmount, "delta must be non-zero")
	}
	if reason == "" {
		reason = domain.StockReasonAdjustment
	}

	if err := u.catalogRepo.AdjustStock(ctx, variantID, delta, reason, adminID); err != nil {
		return nil, err
	}
	slog.Info("Usecase: AdjustStock", "variant_id", variantID, "delta", delta, "admin_id", adminID)

	variant, err := u.catalogRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "variant not found")
		}
		return nil, err
	}
	return variant, nil
}

func (u *InventoryUsecase) GetLogs(ctx context.Context, variantID string, page, limit int) ([]domain.InventoryLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return u.catalogRepo.GetInventoryLogs(ctx, variantID, page, limit)
}
