package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"vintage-backend/internal/domain"
)

type OfferUsecase struct {
	offerRepo   domain.OfferRepository
	catalogRepo domain.CatalogRepository
	pricing     *PricingResolver
	txManager   domain.TransactionManager
}

func NewOfferUsecase(offerRepo domain.OfferRepository, catalogRepo domain.CatalogRepository, pricing *PricingResolver, txManager domain.TransactionManager) *OfferUsecase {
	return &OfferUsecase{
		offerRepo:   offerRepo,
		catalogRepo: catalogRepo,
		pricing:     pricing,
		txManager:   txManager,
	}
}

func (u *OfferUsecase) CreateOffer(ctx context.Context, o *domain.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	if err := u.offerRepo.CreateOffer(ctx, o); err != nil {
		return err
	}
	return u.RecomputeDiscountPrices(ctx)
}

func (u *OfferUsecase) UpdateOffer(ctx context.Context, o *domain.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	if err := u.offerRepo.UpdateOffer(ctx, o); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "offer not found")
		}
		return err
	}
	return u.RecomputeDiscountPrices(ctx)
}

func (u *OfferUsecase) DeleteOffer(ctx context.Context, id string) error {
	if err := u.offerRepo.DeleteOffer(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "offer not found")
		}
		return err
	}
	return u.RecomputeDiscountPrices(ctx)
}

func (u *OfferUsecase) ListOffers(ctx context.Context, page, limit int) ([]domain.Offer, int64, error) {
	return u.offerRepo.ListOffers(ctx, page, limit)
}

func (u *OfferUsecase) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	offer, err := u.offerRepo.GetOfferByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "offer not found")
		}
		return nil, err
	}
	return offer, nil
}

func validateOffer(o *domain.Offer) error {
	if o.Name == "" {
		return domain.E(domain.CodeInvalidInput, "offer name is required")
	}
	if o.OfferType != domain.OfferTypeProduct && o.OfferType != domain.OfferTypeCategory {
		return domain.Ef(domain.CodeInvalidInput, "unknown offer type %q", o.OfferType)
	}
	if o.DiscountPercentage <= 0 || o.DiscountPercentage >= 100 {
		return domain.E(domain.CodeInvalidAmount, "discount percentage must be between 1 and 99")
	}
	if len(o.Items) == 0 {
		return domain.E(domain.CodeInvalidInput, "offer must target at least one item")
	}
	if o.EndDate.Before(o.StartDate) {
		return domain.E(domain.CodeInvalidInput, "end date precedes start date")
	}
	return nil
}

// RecomputeDiscountPrices materializes discount prices across the whole
// catalog in one transactional pass. The newest active offer covering a
// variant wins; variants no active offer reaches get their discount
// cleared.
func (u *OfferUsecase) RecomputeDiscountPrices(ctx context.Context) error {
	offers, err := u.offerRepo.ListActiveOffers(ctx, time.Now())
	if err != nil {
		return err
	}

	type assignment struct {
		offerID       string
		discountPrice int64
	}
	assigned := make(map[string]assignment)

	// ListActiveOffers returns newest first, so first assignment wins.
	for _, offer := range offers {
		var variants []domain.Variant
		switch offer.OfferType {
		case domain.OfferTypeProduct:
			variants, err = u.catalogRepo.GetVariantsByProductIDs(ctx, offer.Items)
		case domain.OfferTypeCategory:
			variants, err = u.catalogRepo.GetVariantsByCategoryIDs(ctx, offer.Items)
		}
		if err != nil {
			return err
		}
		for _, v := range variants {
			if _, taken := assigned[v.ID]; taken {
				continue
			}
			assigned[v.ID] = assignment{
				offerID:       offer.ID,
				discountPrice: u.pricing.OfferPrice(v.Price, offer.DiscountPercentage),
			}
		}
	}

	allIDs, err := u.catalogRepo.GetAllVariantIDs(ctx)
	if err != nil {
		return err
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, id := range allIDs {
			if a, ok := assigned[id]; ok {
				if err := u.catalogRepo.SetDiscountPrice(txCtx, id, a.discountPrice, a.offerID); err != nil {
					return err
				}
			} else {
				if err := u.catalogRepo.ClearDiscountPrice(txCtx, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Usecase: RecomputeDiscountPrices failed", "error", err)
		return err
	}

	slog.Info("Usecase: RecomputeDiscountPrices - Done",
		"active_offers", len(offers), "discounted_variants", len(assigned))
	return nil
}
