package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"vintage-backend/internal/domain"
	"vintage-backend/pkg/utils"
)

// CheckoutConfig carries the business rules the orchestrator enforces.
// Monetary values are minor units.
type CheckoutConfig struct {
	CODCeiling            int64
	ShippingFee           int64
	FreeShippingThreshold int64
}

type CheckoutUsecase struct {
	cartRepo    domain.CartRepository
	catalogRepo domain.CatalogRepository
	orderRepo   domain.OrderRepository
	walletRepo  domain.WalletRepository
	couponRepo  domain.CouponRepository
	userRepo    domain.UserRepository
	pricing     *PricingResolver
	txManager   domain.TransactionManager
	cfg         CheckoutConfig
}

func NewCheckoutUsecase(
	cartRepo domain.CartRepository,
	catalogRepo domain.CatalogRepository,
	orderRepo domain.OrderRepository,
	walletRepo domain.WalletRepository,
	couponRepo domain.CouponRepository,
	userRepo domain.UserRepository,
	pricing *PricingResolver,
	txManager domain.TransactionManager,
	cfg CheckoutConfig,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		walletRepo:  walletRepo,
		couponRepo:  couponRepo,
		userRepo:    userRepo,
		pricing:     pricing,
		txManager:   txManager,
		cfg:         cfg,
	}
}

type CheckoutReq struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
	CouponCode    string `json:"couponCode,omitempty"`
}

// Checkout places an order paid by COD or wallet. Online payments go
// through the payment flow, which calls CommitPaid after the gateway
// confirms.
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID string, req CheckoutReq) (*domain.Order, error) {
	switch req.PaymentMethod {
	case domain.PaymentMethodCOD, domain.PaymentMethodWallet:
	case domain.PaymentMethodOnline:
		return nil, domain.E(domain.CodePaymentMethodNotAllowed, "online payments must be completed through the payment flow")
	default:
		return nil, domain.Ef(domain.CodePaymentMethodNotAllowed, "unknown payment method %q", req.PaymentMethod)
	}
	return u.commit(ctx, userID, req, "", 0)
}

// CommitPaid places the order for an already-verified online payment.
// capturedAmount is what the gateway actually charged; the commit fails
// when the cart no longer prices to it.
func (u *CheckoutUsecase) CommitPaid(ctx context.Context, userID string, req CheckoutReq, transactionID string, capturedAmount int64) (*domain.Order, error) {
	req.PaymentMethod = domain.PaymentMethodOnline
	return u.commit(ctx, userID, req, transactionID, capturedAmount)
}

// PreviewTotal prices the current cart with the given coupon without
// committing anything. The payment flow uses it to size the intent.
func (u *CheckoutUsecase) PreviewTotal(ctx context.Context, userID, couponCode string) (int64, error) {
	cart, err := u.cartRepo.GetCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.E(domain.CodeEmptyCart, "cart is empty")
		}
		return 0, err
	}
	priced, err := u.priceCart(ctx, userID, cart, couponCode)
	if err != nil {
		return 0, err
	}
	return priced.total, nil
}

type pricedCart struct {
	items          []domain.OrderItem
	subtotal       int64
	discountAmount int64
	totalDiscount  int64
	shipping       int64
	total          int64
	coupon         *domain.Coupon
}

// priceCart re-validates every line against the live catalog and
// resolves all totals. Cart snapshots are never trusted.
func (u *CheckoutUsecase) priceCart(ctx context.Context, userID string, cart *domain.Cart, couponCode string) (*pricedCart, error) {
	if len(cart.Items) == 0 {
		return nil, domain.E(domain.CodeEmptyCart, "cart is empty")
	}

	var pc pricedCart
	var offerDiscount int64
	for _, item := range cart.Items {
		variant, err := u.catalogRepo.GetVariantByID(ctx, item.VariantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.E(domain.CodeItemUnavailable, "an item in your cart no longer exists")
			}
			return nil, err
		}
		if !variant.Available() {
			return nil, domain.Ef(domain.CodeItemUnavailable, "%s is no longer available", variant.ProductName)
		}
		if item.Quantity > variant.Stock {
			return nil, domain.Ef(domain.CodeOutOfStock, "insufficient stock for %s", variant.ProductName)
		}

		line := u.pricing.PriceLine(variant, item.Quantity)
		pc.items = append(pc.items, domain.OrderItem{
			ProductID:     variant.ProductID,
			ProductName:   variant.ProductName,
			VariantID:     variant.ID,
			Quantity:      item.Quantity,
			Price:         line.UnitPrice,
			DiscountPrice: line.DiscountPrice,
			FinalPrice:    line.FinalPrice,
			SavedAmount:   line.SavedAmount,
			Status:        domain.ItemStatusPending,
		})
		pc.subtotal += line.FinalPrice
		offerDiscount += line.SavedAmount * int64(item.Quantity)
	}

	if couponCode != "" {
		coupon, err := u.resolveCoupon(ctx, userID, couponCode, pc.subtotal)
		if err != nil {
			return nil, err
		}
		if coupon != nil {
			pc.coupon = coupon
			pc.discountAmount = u.pricing.CouponDiscount(coupon, pc.subtotal)
		}
	}

	pc.totalDiscount = offerDiscount + pc.discountAmount
	pc.shipping = u.pricing.ShippingCost(pc.subtotal, u.cfg.ShippingFee, u.cfg.FreeShippingThreshold)
	pc.total = pc.subtotal - pc.discountAmount + pc.shipping
	return &pc, nil
}

// resolveCoupon soft-fails: an invalid or already-used coupon is dropped
// with a warning rather than blocking the purchase.
func (u *CheckoutUsecase) resolveCoupon(ctx context.Context, userID, code string, subtotal int64) (*domain.Coupon, error) {
	coupon, err := u.couponRepo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("Usecase: Checkout - Unknown coupon dropped", "code", code, "user_id", userID)
			return nil, nil
		}
		return nil, err
	}
	if !CouponUsable(coupon, subtotal, time.Now()) {
		slog.Warn("Usecase: Checkout - Inapplicable coupon dropped", "code", code, "user_id", userID)
		return nil, nil
	}
	used, err := u.couponRepo.HasRedeemed(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		slog.Warn("Usecase: Checkout - Already-used coupon dropped", "code", code, "user_id", userID)
		return nil, nil
	}
	return coupon, nil
}

func (u *CheckoutUsecase) commit(ctx context.Context, userID string, req CheckoutReq, transactionID string, capturedAmount int64) (*domain.Order, error) {
	cart, err := u.cartRepo.GetCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeEmptyCart, "cart is empty")
		}
		return nil, err
	}

	address, err := u.userRepo.GetAddressByID(ctx, req.AddressID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeAddressNotFound, "shipping address not found")
		}
		return nil, err
	}

	priced, err := u.priceCart(ctx, userID, cart, req.CouponCode)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod == domain.PaymentMethodOnline && priced.total != capturedAmount {
		return nil, domain.Ef(domain.CodeInvalidAmount,
			"order total %d no longer matches the captured payment amount %d", priced.total, capturedAmount)
	}

	if req.PaymentMethod == domain.PaymentMethodCOD && priced.total > u.cfg.CODCeiling {
		return nil, domain.Ef(domain.CodePaymentMethodNotAllowed,
			"cash on delivery is not available for orders above %d", u.cfg.CODCeiling)
	}

	now := time.Now()
	order := &domain.Order{
		OrderID: utils.GenerateOrderID(now),
		UserID:  userID,
		Items:   priced.items,
		Shipping: domain.ShippingInfo{
			Address:        *address,
			ShippingMethod: "standard",
			DeliveryCharge: priced.shipping,
		},
		Payment: domain.PaymentInfo{
			Method: req.PaymentMethod,
			Status: domain.PaymentStatusPending,
			Amount: priced.total,
		},
		OrderStatus:    domain.OrderStatusPending,
		Subtotal:       priced.subtotal,
		ShippingCost:   priced.shipping,
		TotalAmount:    priced.total,
		DiscountAmount: priced.discountAmount,
		TotalDiscount:  priced.totalDiscount,
	}
	if priced.coupon != nil {
		order.CouponCode = priced.coupon.Code
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodWallet:
		order.Payment.Status = domain.PaymentStatusCompleted
		order.Payment.TransactionID = utils.GenerateTransactionID("wal")
		order.Payment.PaymentDate = &now
	case domain.PaymentMethodOnline:
		order.Payment.Status = domain.PaymentStatusCompleted
		order.Payment.TransactionID = transactionID
		order.Payment.PaymentDate = &now
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if req.PaymentMethod == domain.PaymentMethodWallet {
			ok, err := u.walletRepo.Debit(txCtx, userID, priced.total, "Order payment "+order.OrderID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.E(domain.CodeInsufficientBalance, "wallet balance does not cover the order total")
			}
		}

		if err := u.orderRepo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := u.catalogRepo.ReserveStock(txCtx, item.VariantID, item.Quantity, domain.StockReasonOrder, order.OrderID); err != nil {
				return err
			}
		}

		if priced.coupon != nil {
			ok, err := u.couponRepo.MarkRedeemed(txCtx, priced.coupon.ID, userID)
			if err != nil {
				return err
			}
			if !ok {
				// Lost a race with another checkout holding the same code.
				return domain.E(domain.CodeCouponNotApplicable, "coupon already used")
			}
		}

		return u.cartRepo.ClearCart(txCtx, cart.ID)
	})
	if err != nil {
		slog.Error("Usecase: Checkout - Commit failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Usecase: Checkout - Order placed",
		"order_ref", order.OrderID, "user_id", userID,
		"total", order.TotalAmount, "method", req.PaymentMethod)
	return order, nil
}
