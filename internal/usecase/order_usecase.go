package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"vintage-backend/internal/domain"
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	catalogRepo domain.CatalogRepository
	walletRepo  domain.WalletRepository
	pricing     *PricingResolver
	txManager   domain.TransactionManager
}

func NewOrderUsecase(orderRepo domain.OrderRepository, catalogRepo domain.CatalogRepository, walletRepo domain.WalletRepository, pricing *PricingResolver, txManager domain.TransactionManager) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		walletRepo:  walletRepo,
		pricing:     pricing,
		txManager:   txManager,
	}
}

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string, page, limit int) ([]domain.Order, int64, error) {
	return u.orderRepo.GetByUserID(ctx, userID, page, limit)
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeOrderNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels a whole order before it ships: stock goes back,
// captured payments come back as wallet credit.
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	order, err := u.GetMyOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := u.cancel(ctx, order, reason); err != nil {
		return nil, err
	}
	return u.orderRepo.GetByID(ctx, orderID)
}

func (u *OrderUsecase) cancel(ctx context.Context, order *domain.Order, reason string) error {
	if order.OrderStatus != domain.OrderStatusPending && order.OrderStatus != domain.OrderStatusProcessing {
		return domain.Ef(domain.CodeInvalidTransition, "cannot cancel an order in status %q", order.OrderStatus)
	}

	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, item := range order.Items {
			if item.Status == domain.ItemStatusCancelled || item.Status == domain.ItemStatusReturned {
				continue
			}
			if err := u.catalogRepo.ReleaseStock(txCtx, item.VariantID, item.Quantity, domain.StockReasonCancel, order.OrderID); err != nil {
				return err
			}
		}

		if err := u.orderRepo.AdvanceItemStatuses(txCtx, order.ID, domain.ItemStatusCancelled); err != nil {
			return err
		}
		if err := u.orderRepo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusCancelled, reason); err != nil {
			return err
		}

		// Captured money flows back to the wallet; COD never captured.
		paid := order.Payment.Method == domain.PaymentMethodOnline || order.Payment.Method == domain.PaymentMethodWallet
		if paid && order.Payment.Status == domain.PaymentStatusCompleted {
			if err := u.walletRepo.Credit(txCtx, order.UserID, order.Payment.Amount,
				"Refund for cancelled order "+order.OrderID); err != nil {
				return err
			}
			if err := u.orderRepo.UpdatePaymentStatus(txCtx, order.ID, domain.PaymentStatusCancelled, ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Usecase: CancelOrder failed", "order_ref", order.OrderID, "error", err)
		return err
	}

	slog.Info("Usecase: CancelOrder - Order cancelled", "order_ref", order.OrderID, "reason", reason)
	return nil
}

// RequestReturn opens a return request on a delivered item.
func (u *OrderUsecase) RequestReturn(ctx context.Context, userID, orderID, itemID, reason, details string) error {
	order, err := u.GetMyOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	item, err := u.orderRepo.GetItem(ctx, order.ID, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "order item not found")
		}
		return err
	}
	if item.Status != domain.ItemStatusDelivered {
		return domain.E(domain.CodeInvalidTransition, "only delivered items can be returned")
	}
	if item.ReturnRequested {
		return domain.E(domain.CodeReturnAlreadyRequested, "a return was already requested for this item")
	}

	item.ReturnRequested = true
	item.ReturnReason = reason
	item.ReturnDetails = details
	item.ReturnStatus = domain.ReturnStatusPending
	if err := u.orderRepo.UpdateItem(ctx, item); err != nil {
		return err
	}

	slog.Info("Usecase: RequestReturn - Return requested", "order_ref", order.OrderID, "item_id", itemID)
	return nil
}

// --- Admin Usecase ---

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeOrderNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

// Forward-only weights for the order lifecycle. Cancellation is handled
// separately because it carries side effects.
var orderStatusWeights = map[string]int{
	domain.OrderStatusPending:    10,
	domain.OrderStatusProcessing: 20,
	domain.OrderStatusShipped:    30,
	domain.OrderStatusDelivered:  40,
}

// Item statuses follow order statuses, modulo the legacy order-level
// spelling of "Shiped".
var itemStatusForOrder = map[string]string{
	domain.OrderStatusPending:    domain.ItemStatusPending,
	domain.OrderStatusProcessing: domain.ItemStatusProcessing,
	domain.OrderStatusShipped:    domain.ItemStatusShipped,
	domain.OrderStatusDelivered:  domain.ItemStatusDelivered,
}

// UpdateOrderStatus is the admin transition. Forward-only; moving to
// Cancelled reuses the cancellation path with its compensations.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, reason string) error {
	order, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if newStatus == domain.OrderStatusCancelled {
		return u.cancel(ctx, order, reason)
	}

	currentWeight, okCurrent := orderStatusWeights[order.OrderStatus]
	newWeight, okNew := orderStatusWeights[newStatus]
	if !okNew {
		return domain.Ef(domain.CodeInvalidTransition, "unknown order status %q", newStatus)
	}
	if !okCurrent {
		return domain.Ef(domain.CodeInvalidTransition, "order is already %s", order.OrderStatus)
	}
	if newWeight <= currentWeight {
		return domain.Ef(domain.CodeInvalidTransition,
			"cannot move from %q to %q", order.OrderStatus, newStatus)
	}

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdateOrderStatus(txCtx, orderID, newStatus, reason); err != nil {
			return err
		}
		if err := u.orderRepo.AdvanceItemStatuses(txCtx, orderID, itemStatusForOrder[newStatus]); err != nil {
			return err
		}
		// COD money is collected at the door.
		if newStatus == domain.OrderStatusDelivered && order.Payment.Method == domain.PaymentMethodCOD {
			return u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusCompleted, "")
		}
		return nil
	})
}

func (u *OrderUsecase) ListReturnRequests(ctx context.Context, page, limit int) ([]domain.Order, int64, error) {
	return u.orderRepo.ListReturnRequests(ctx, page, limit)
}

// ResolveReturn approves or rejects a pending return. Approval releases
// stock and refunds the line to the wallet, at most once per item.
func (u *OrderUsecase) ResolveReturn(ctx context.Context, orderID, itemID string, approve bool, rejectionReason string) error {
	order, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	item, err := u.orderRepo.GetItem(ctx, order.ID, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "order item not found")
		}
		return err
	}
	if !item.ReturnRequested || item.ReturnStatus != domain.ReturnStatusPending {
		return domain.E(domain.CodeInvalidTransition, "item has no pending return request")
	}

	if !approve {
		item.ReturnStatus = domain.ReturnStatusRejected
		item.RejectionReason = rejectionReason
		return u.orderRepo.UpdateItem(ctx, item)
	}

	refund := u.pricing.RefundAmount(item, order)

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		ok, err := u.orderRepo.MarkReturnProcessed(txCtx, item.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.E(domain.CodeAlreadyProcessed, "return was already refunded")
		}
		// UpdateItem below does not touch return_processed; keep the
		// in-memory item consistent with the row just flagged.
		item.ReturnProcessed = true

		if err := u.catalogRepo.ReleaseStock(txCtx, item.VariantID, item.Quantity, domain.StockReasonReturn, order.OrderID); err != nil {
			return err
		}

		if refund > 0 {
			desc := fmt.Sprintf("Refund for returned item %s (order %s)", item.ProductName, order.OrderID)
			if err := u.walletRepo.Credit(txCtx, order.UserID, refund, desc); err != nil {
				return err
			}
		}

		item.Status = domain.ItemStatusReturned
		item.ReturnStatus = domain.ReturnStatusRefunded
		return u.orderRepo.UpdateItem(txCtx, item)
	})
	if err != nil {
		slog.Error("Usecase: ResolveReturn failed", "order_ref", order.OrderID, "item_id", itemID, "error", err)
		return err
	}

	slog.Info("Usecase: ResolveReturn - Return refunded",
		"order_ref", order.OrderID, "item_id", itemID, "refund", refund)
	return nil
}
