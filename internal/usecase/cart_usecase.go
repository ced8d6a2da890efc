package usecase

import (
	"context"
	"errors"
	"log/slog"
	"vintage-backend/internal/domain"
)

type CartUsecase struct {
	cartRepo    domain.CartRepository
	catalogRepo domain.CatalogRepository
	pricing     *PricingResolver

	maxQuantity           int
	shippingFee           int64
	freeShippingThreshold int64
}

func NewCartUsecase(cartRepo domain.CartRepository, catalogRepo domain.CatalogRepository, pricing *PricingResolver, maxQuantity int, shippingFee, freeShippingThreshold int64) *CartUsecase {
	return &CartUsecase{
		cartRepo:              cartRepo,
		catalogRepo:           catalogRepo,
		pricing:               pricing,
		maxQuantity:           maxQuantity,
		shippingFee:           shippingFee,
		freeShippingThreshold: freeShippingThreshold,
	}
}

func (u *CartUsecase) GetMyCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.cartRepo.GetCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return u.cartRepo.CreateCart(ctx, userID)
		}
		return nil, err
	}
	return cart, nil
}

func (u *CartUsecase) AddToCart(ctx context.Context, userID, variantID string, quantity int) (*domain.Cart, error) {
	slog.Info("Usecase: AddToCart", "user_id", userID, "variant_id", variantID, "quantity", quantity)

	if quantity <= 0 {
		return nil, domain.E(domain.CodeInvalidInput, "quantity must be positive")
	}

	variant, err := u.catalogRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "variant not found")
		}
		return nil, err
	}
	if !variant.Available() {
		return nil, domain.Ef(domain.CodeItemUnavailable, "%s is unavailable", variant.ProductName)
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing := 0
	for _, item := range cart.Items {
		if item.VariantID == variantID {
			existing = item.Quantity
			break
		}
	}
	newQty := existing + quantity
	if newQty > u.maxQuantity {
		return nil, domain.Ef(domain.CodeInvalidInput, "maximum %d units per item", u.maxQuantity)
	}
	if newQty > variant.Stock {
		return nil, domain.E(domain.CodeOutOfStock, "insufficient stock")
	}

	if err := u.cartRepo.UpsertItem(ctx, cart.ID, variantID, quantity, variant.SalePrice()); err != nil {
		slog.Error("Usecase: AddToCart - UpsertItem failed", "error", err)
		return nil, err
	}
	return u.refreshTotals(ctx, userID, cart.ID)
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.Cart, error) {
	slog.Info("Usecase: UpdateQuantity", "user_id", userID, "variant_id", variantID, "quantity", quantity)

	if quantity <= 0 {
		return u.RemoveFromCart(ctx, userID, variantID)
	}
	if quantity > u.maxQuantity {
		return nil, domain.Ef(domain.CodeInvalidInput, "maximum %d units per item", u.maxQuantity)
	}

	variant, err := u.catalogRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "variant not found")
		}
		return nil, err
	}
	if !variant.Available() {
		return nil, domain.Ef(domain.CodeItemUnavailable, "%s is unavailable", variant.ProductName)
	}
	if quantity > variant.Stock {
		return nil, domain.E(domain.CodeOutOfStock, "insufficient stock")
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.cartRepo.UpdateItemQuantity(ctx, cart.ID, variantID, quantity, variant.SalePrice()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "item not in cart")
		}
		return nil, err
	}
	return u.refreshTotals(ctx, userID, cart.ID)
}

func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID, variantID string) (*domain.Cart, error) {
	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.cartRepo.RemoveItem(ctx, cart.ID, variantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "item not in cart")
		}
		return nil, err
	}
	return u.refreshTotals(ctx, userID, cart.ID)
}

// refreshTotals rederives subtotal, shipping and total from the current
// lines and persists them on the cart row.
func (u *CartUsecase) refreshTotals(ctx context.Context, userID, cartID string) (*domain.Cart, error) {
	cart, err := u.cartRepo.GetCartWithItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range cart.Items {
		subtotal += item.TotalPrice
	}
	shipping := int64(0)
	if len(cart.Items) > 0 {
		shipping = u.pricing.ShippingCost(subtotal, u.shippingFee, u.freeShippingThreshold)
	}
	total := subtotal + shipping

	if err := u.cartRepo.UpdateTotals(ctx, cartID, subtotal, shipping, total); err != nil {
		return nil, err
	}
	cart.Subtotal = subtotal
	cart.ShippingCost = shipping
	cart.Total = total
	return cart, nil
}
