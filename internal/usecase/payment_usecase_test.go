package usecase

import (
	"context"
	"testing"
	"time"
	"vintage-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIntentRepo struct {
	intents []*domain.PaymentIntent
}

func (r *stubIntentRepo) CreateIntent(_ context.Context, intent *domain.PaymentIntent) error {
	cp := *intent
	cp.ID = cp.GatewayOrderRef + "-intent"
	intent.ID = cp.ID
	r.intents = append(r.intents, &cp)
	return nil
}

func (r *stubIntentRepo) GetByGatewayRef(_ context.Context, gatewayOrderRef string) (*domain.PaymentIntent, error) {
	for _, in := range r.intents {
		if in.GatewayOrderRef == gatewayOrderRef {
			cp := *in
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubIntentRepo) UpdateStatus(_ context.Context, id, status, paymentRef, failureReason string) error {
	for _, in := range r.intents {
		if in.ID == id {
			in.Status = status
			if paymentRef != "" {
				in.PaymentRef = paymentRef
			}
			in.FailureReason = failureReason
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubIntentRepo) AttachOrder(_ context.Context, id, orderID string) error {
	for _, in := range r.intents {
		if in.ID == id {
			in.OrderID = orderID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubIntentRepo) ExpireStale(_ context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, in := range r.intents {
		if in.Status == domain.IntentStatusCreated && in.CreatedAt.Before(olderThan) {
			in.Status = domain.IntentStatusExpired
			n++
		}
	}
	return n, nil
}

type stubGateway struct {
	validSignature string
	createErr      error
	orders         int
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	g.orders++
	return "order_rzp_1", nil
}

func (g *stubGateway) VerifySignature(gatewayOrderRef, paymentRef, signature string) bool {
	return signature == g.validSignature
}

type paymentFixture struct {
	checkout *checkoutFixture
	intents  *stubIntentRepo
	gateway  *stubGateway
	uc       *PaymentUsecase
}

func newPaymentFixture() *paymentFixture {
	cfx := newCheckoutFixture()
	cfx.largeCart()
	intents := &stubIntentRepo{}
	gw := &stubGateway{validSignature: "good-sig"}
	return &paymentFixture{
		checkout: cfx,
		intents:  intents,
		gateway:  gw,
		uc:       NewPaymentUsecase(intents, gw, cfx.uc, 30*time.Minute),
	}
}

func TestCreateIntent(t *testing.T) {
	fx := newPaymentFixture()

	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodOnline, CouponCode: "FLAT100",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_rzp_1", intent.GatewayOrderRef)
	assert.Equal(t, int64(1200), intent.Amount)
	assert.Equal(t, domain.IntentStatusCreated, intent.Status)
	// Checkout parameters are frozen for the verify step.
	assert.Equal(t, "addr-1", intent.Checkout.AddressID)
	assert.Equal(t, "FLAT100", intent.Checkout.CouponCode)
	assert.Equal(t, domain.PaymentMethodOnline, intent.Checkout.PaymentMethod)

	// The cart is untouched until verification.
	cart, _ := fx.checkout.carts.GetCartByUserID(context.Background(), "user-1")
	assert.Len(t, cart.Items, 2)
}

func TestCreateIntent_EmptyCart(t *testing.T) {
	fx := newPaymentFixture()
	fx.checkout.carts.setCart("user-1")

	_, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	assert.True(t, domain.IsCode(err, domain.CodeEmptyCart))
	assert.Empty(t, fx.intents.intents)
}

func TestVerifyAndPlace(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", CouponCode: "FLAT100",
	})
	require.NoError(t, err)

	order, err := fx.uc.VerifyAndPlace(context.Background(), "user-1", VerifyPaymentReq{
		GatewayOrderRef: intent.GatewayOrderRef,
		PaymentRef:      "pay_42",
		Signature:       "good-sig",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentMethodOnline, order.Payment.Method)
	assert.Equal(t, domain.PaymentStatusCompleted, order.Payment.Status)
	assert.Equal(t, "pay_42", order.Payment.TransactionID)
	assert.Equal(t, int64(1200), order.TotalAmount)

	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusCompleted, stored.Status)
	assert.Equal(t, order.ID, stored.OrderID)

	// Stock moved and the cart cleared only now.
	v1, _ := fx.checkout.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 8, v1.Stock)
	cart, _ := fx.checkout.carts.GetCartByUserID(context.Background(), "user-1")
	assert.Empty(t, cart.Items)
}

func TestVerifyAndPlace_BadSignature(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-1", VerifyPaymentReq{
		GatewayOrderRef: intent.GatewayOrderRef,
		PaymentRef:      "pay_42",
		Signature:       "forged",
	})
	assert.True(t, domain.IsCode(err, domain.CodeSignatureMismatch))

	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusFailed, stored.Status)

	v1, _ := fx.checkout.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 10, v1.Stock)
}

func TestVerifyAndPlace_ReplayRejected(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	req := VerifyPaymentReq{GatewayOrderRef: intent.GatewayOrderRef, PaymentRef: "pay_42", Signature: "good-sig"}
	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-1", req)
	require.NoError(t, err)

	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-1", req)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyProcessed))
}

func TestVerifyAndPlace_OtherUsersIntent(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-2", VerifyPaymentReq{
		GatewayOrderRef: intent.GatewayOrderRef, PaymentRef: "pay_42", Signature: "good-sig",
	})
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
}

func TestVerifyAndPlace_CommitFailureKeepsIntentForReconciliation(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	// Cart emptied between redirect and verification.
	fx.checkout.carts.setCart("user-1")

	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-1", VerifyPaymentReq{
		GatewayOrderRef: intent.GatewayOrderRef, PaymentRef: "pay_42", Signature: "good-sig",
	})
	assert.True(t, domain.IsCode(err, domain.CodeEmptyCart))

	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusFailed, stored.Status)
	assert.Equal(t, "pay_42", stored.PaymentRef)
	assert.NotEmpty(t, stored.FailureReason)
}

func TestVerifyAndPlace_CartGrewSinceCapture(t *testing.T) {
	fx := newPaymentFixture()
	fx.checkout.carts.setCart("user-1", domain.CartItem{VariantID: "v1", Quantity: 2})

	// Intent captures 400 + 50 shipping.
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)
	require.Equal(t, int64(450), intent.Amount)

	// Cart grows to 1300 before the buyer returns from the gateway.
	fx.checkout.largeCart()

	_, err = fx.uc.VerifyAndPlace(context.Background(), "user-1", VerifyPaymentReq{
		GatewayOrderRef: intent.GatewayOrderRef, PaymentRef: "pay_42", Signature: "good-sig",
	})
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAmount))

	// No order committed for an amount the gateway never captured; the
	// failed intent keeps the captured payment for reconciliation.
	assert.Empty(t, fx.checkout.orders.orders)
	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusFailed, stored.Status)
	assert.Equal(t, "pay_42", stored.PaymentRef)
}

func TestCancelPayment(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	require.NoError(t, fx.uc.CancelPayment(context.Background(), "user-1", intent.GatewayOrderRef, "closed the tab"))

	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusCancelled, stored.Status)
	assert.Equal(t, "closed the tab", stored.FailureReason)

	err = fx.uc.CancelPayment(context.Background(), "user-1", intent.GatewayOrderRef, "again")
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyProcessed))
}

func TestExpireStale(t *testing.T) {
	fx := newPaymentFixture()
	intent, err := fx.uc.CreateIntent(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1"})
	require.NoError(t, err)

	fx.intents.intents[0].CreatedAt = time.Now().Add(-time.Hour)

	require.NoError(t, fx.uc.ExpireStale(context.Background()))

	stored, _ := fx.intents.GetByGatewayRef(context.Background(), intent.GatewayOrderRef)
	assert.Equal(t, domain.IntentStatusExpired, stored.Status)
}
