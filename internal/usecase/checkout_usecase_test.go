package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"vintage-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	catalog *stubCatalogRepo
	carts   *stubCartRepo
	orders  *stubOrderRepo
	wallet  *stubWalletRepo
	coupons *stubCouponRepo
	users   *stubUserRepo
	uc      *CheckoutUsecase
}

func newCheckoutFixture() *checkoutFixture {
	catalog := newStubCatalogRepo()
	catalog.addVariant(domain.Variant{ID: "v1", ProductID: "p1", ProductName: "Denim Jacket", Size: "M", Price: 200, Stock: 10})
	catalog.addVariant(domain.Variant{ID: "v2", ProductID: "p2", ProductName: "Leather Boots", Size: "42", Price: 1000, DiscountPrice: int64p(900), Stock: 5})

	coupons := newStubCouponRepo()
	coupons.addCoupon(domain.Coupon{
		ID: "c1", Code: "FLAT100",
		DiscountType: domain.CouponTypeFixed, DiscountValue: 100, MinOrderAmount: 500,
		StartDate: time.Now().Add(-time.Hour), EndDate: time.Now().Add(time.Hour),
	})

	users := newStubUserRepo()
	users.addresses["addr-1"] = domain.Address{
		ID: "addr-1", UserID: "user-1", FullName: "Asha Rahman",
		Street: "12 Lake Road", City: "Dhaka", Country: "BD", PostalCode: "1207",
	}

	carts := newStubCartRepo()
	orders := newStubOrderRepo()
	wallet := newStubWalletRepo()
	tx := newStubTxManager(catalog, carts, orders, wallet, coupons)

	uc := NewCheckoutUsecase(carts, catalog, orders, wallet, coupons, users, NewPricingResolver(), tx,
		CheckoutConfig{CODCeiling: 1000, ShippingFee: 50, FreeShippingThreshold: 500})

	return &checkoutFixture{catalog: catalog, carts: carts, orders: orders, wallet: wallet, coupons: coupons, users: users, uc: uc}
}

func (fx *checkoutFixture) smallCart() {
	// Subtotal 400, below the free-shipping threshold.
	fx.carts.setCart("user-1", domain.CartItem{VariantID: "v1", Quantity: 2})
}

func (fx *checkoutFixture) largeCart() {
	// 2x200 + 1x900 = 1300 subtotal, shipping waived.
	fx.carts.setCart("user-1",
		domain.CartItem{VariantID: "v1", Quantity: 2},
		domain.CartItem{VariantID: "v2", Quantity: 1},
	)
}

func TestCheckout_EmptyCart(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodeEmptyCart))

	fx.carts.setCart("user-1")
	_, err = fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodeEmptyCart))
}

func TestCheckout_COD(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()

	order, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, int64(400), order.Subtotal)
	assert.Equal(t, int64(50), order.ShippingCost)
	assert.Equal(t, int64(450), order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderID, "ORD-"))

	// Address is snapshotted onto the order.
	assert.Equal(t, "Asha Rahman", order.Shipping.Address.FullName)

	// Stock reserved, cart cleared.
	v1, _ := fx.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 8, v1.Stock)
	cart, _ := fx.carts.GetCartByUserID(context.Background(), "user-1")
	assert.Empty(t, cart.Items)

	logs, _, _ := fx.catalog.GetInventoryLogs(context.Background(), "v1", 1, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.StockReasonOrder, logs[0].Reason)
	assert.Equal(t, order.OrderID, logs[0].ReferenceID)
}

func TestCheckout_CODCeiling(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodePaymentMethodNotAllowed))

	v1, _ := fx.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 10, v1.Stock)
}

func TestCheckout_OnlineGoesThroughPaymentFlow(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodOnline})
	assert.True(t, domain.IsCode(err, domain.CodePaymentMethodNotAllowed))

	_, err = fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: "bitcoin"})
	assert.True(t, domain.IsCode(err, domain.CodePaymentMethodNotAllowed))
}

func TestCheckout_WalletPayment(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()
	fx.wallet.balances["user-1"] = 1500

	order, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodWallet, CouponCode: "FLAT100",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1300), order.Subtotal)
	assert.Equal(t, int64(100), order.DiscountAmount)
	// 100 offer saving on the boots plus the coupon.
	assert.Equal(t, int64(200), order.TotalDiscount)
	assert.Equal(t, int64(0), order.ShippingCost)
	assert.Equal(t, int64(1200), order.TotalAmount)
	assert.Equal(t, "FLAT100", order.CouponCode)

	assert.Equal(t, domain.PaymentStatusCompleted, order.Payment.Status)
	assert.True(t, strings.HasPrefix(order.Payment.TransactionID, "wal"))
	require.NotNil(t, order.Payment.PaymentDate)

	assert.Equal(t, int64(300), fx.wallet.balances["user-1"])
	redeemed, _ := fx.coupons.HasRedeemed(context.Background(), "c1", "user-1")
	assert.True(t, redeemed)
}

func TestCheckout_WalletInsufficient(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()
	fx.wallet.balances["user-1"] = 100

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodWallet})
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientBalance))

	// Nothing committed.
	assert.Equal(t, int64(100), fx.wallet.balances["user-1"])
	v1, _ := fx.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 10, v1.Stock)
	cart, _ := fx.carts.GetCartByUserID(context.Background(), "user-1")
	assert.Len(t, cart.Items, 1)
	assert.Empty(t, fx.orders.orders)
}

func TestCheckout_UnknownCouponDropped(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()

	order, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD, CouponCode: "NOPE",
	})
	require.NoError(t, err)
	assert.Empty(t, order.CouponCode)
	assert.Equal(t, int64(0), order.DiscountAmount)
}

func TestCheckout_AlreadyUsedCouponDropped(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()
	fx.coupons.redemptions["c1|user-1"] = true
	fx.wallet.balances["user-1"] = 1500

	order, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodWallet, CouponCode: "FLAT100",
	})
	require.NoError(t, err)
	assert.Empty(t, order.CouponCode)
	assert.Equal(t, int64(1300), order.TotalAmount)
}

func TestCheckout_CouponRaceRollsBackEverything(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()
	fx.wallet.balances["user-1"] = 1500
	// Another checkout holding the same code wins the redemption row.
	fx.coupons.denyRedeem = true

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodWallet, CouponCode: "FLAT100",
	})
	assert.True(t, domain.IsCode(err, domain.CodeCouponNotApplicable))

	assert.Equal(t, int64(1500), fx.wallet.balances["user-1"])
	v1, _ := fx.catalog.GetVariantByID(context.Background(), "v1")
	v2, _ := fx.catalog.GetVariantByID(context.Background(), "v2")
	assert.Equal(t, 10, v1.Stock)
	assert.Equal(t, 5, v2.Stock)
	cart, _ := fx.carts.GetCartByUserID(context.Background(), "user-1")
	assert.Len(t, cart.Items, 2)
	assert.Empty(t, fx.orders.orders)
}

func TestCheckout_PersistFailureRollsBackDebit(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()
	fx.wallet.balances["user-1"] = 1000
	fx.orders.createErr = errors.New("connection reset")

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodWallet})
	require.Error(t, err)

	assert.Equal(t, int64(1000), fx.wallet.balances["user-1"])
	assert.Empty(t, fx.wallet.txns)
}

func TestCheckout_OutOfStock(t *testing.T) {
	fx := newCheckoutFixture()
	fx.carts.setCart("user-1", domain.CartItem{VariantID: "v1", Quantity: 20})

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))
}

func TestCheckout_BlockedItemUnavailable(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()
	fx.catalog.variants["v1"].IsBlocked = true

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-1", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodeItemUnavailable))
}

func TestCheckout_AddressNotFound(t *testing.T) {
	fx := newCheckoutFixture()
	fx.smallCart()

	_, err := fx.uc.Checkout(context.Background(), "user-1", CheckoutReq{AddressID: "addr-404", PaymentMethod: domain.PaymentMethodCOD})
	assert.True(t, domain.IsCode(err, domain.CodeAddressNotFound))
}

func TestCommitPaid(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()

	order, err := fx.uc.CommitPaid(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodOnline,
	}, "pay_9f2k1", 1300)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentMethodOnline, order.Payment.Method)
	assert.Equal(t, domain.PaymentStatusCompleted, order.Payment.Status)
	assert.Equal(t, "pay_9f2k1", order.Payment.TransactionID)
}

func TestCommitPaid_CartChangedSinceCapture(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()

	// The gateway captured 450 but the cart now prices to 1300.
	_, err := fx.uc.CommitPaid(context.Background(), "user-1", CheckoutReq{
		AddressID: "addr-1", PaymentMethod: domain.PaymentMethodOnline,
	}, "pay_9f2k1", 450)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAmount))

	// Nothing committed.
	v2, _ := fx.catalog.GetVariantByID(context.Background(), "v2")
	assert.Equal(t, 5, v2.Stock)
	assert.Empty(t, fx.orders.orders)
}

func TestPreviewTotal(t *testing.T) {
	fx := newCheckoutFixture()
	fx.largeCart()

	total, err := fx.uc.PreviewTotal(context.Background(), "user-1", "FLAT100")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), total)

	// Preview commits nothing.
	v1, _ := fx.catalog.GetVariantByID(context.Background(), "v1")
	assert.Equal(t, 10, v1.Stock)
}
