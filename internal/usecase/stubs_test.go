package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"vintage-backend/internal/domain"
)

// In-memory fakes for the repository interfaces. Each mutable fake can
// snapshot and restore its state so the fake transaction manager can
// mimic a rollback.

type snapshotter interface {
	snapshot() any
	restore(any)
}

type stubTxManager struct {
	stores []snapshotter
}

func newStubTxManager(stores ...snapshotter) *stubTxManager {
	return &stubTxManager{stores: stores}
}

func (m *stubTxManager) Do(ctx context.Context, fn func(context.Context) error) error {
	snaps := make([]any, len(m.stores))
	for i, s := range m.stores {
		snaps[i] = s.snapshot()
	}
	if err := fn(ctx); err != nil {
		for i, s := range m.stores {
			s.restore(snaps[i])
		}
		return err
	}
	return nil
}

// --- Catalog ---

type stubCatalogRepo struct {
	variants map[string]*domain.Variant
	logs     []domain.InventoryLog
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{variants: make(map[string]*domain.Variant)}
}

func (r *stubCatalogRepo) addVariant(v domain.Variant) {
	if v.Product == nil {
		v.Product = &domain.Product{ID: v.ProductID, Name: v.ProductName, IsListed: true}
	}
	r.variants[v.ID] = &v
}

func (r *stubCatalogRepo) snapshot() any {
	vs := make(map[string]*domain.Variant, len(r.variants))
	for id, v := range r.variants {
		cp := *v
		vs[id] = &cp
	}
	return struct {
		variants map[string]*domain.Variant
		logs     []domain.InventoryLog
	}{vs, append([]domain.InventoryLog(nil), r.logs...)}
}

func (r *stubCatalogRepo) restore(s any) {
	st := s.(struct {
		variants map[string]*domain.Variant
		logs     []domain.InventoryLog
	})
	r.variants, r.logs = st.variants, st.logs
}

func (r *stubCatalogRepo) GetVariantByID(_ context.Context, id string) (*domain.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubCatalogRepo) GetVariantsByIDs(ctx context.Context, ids []string) ([]domain.Variant, error) {
	var out []domain.Variant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) ReserveStock(_ context.Context, variantID string, qty int, reason, referenceID string) error {
	v, ok := r.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.IsBlocked || v.Stock < qty {
		return domain.Ef(domain.CodeOutOfStock, "insufficient stock for %s", v.ProductName)
	}
	v.Stock -= qty
	r.logs = append(r.logs, domain.InventoryLog{VariantID: variantID, Change: -qty, Reason: reason, ReferenceID: referenceID})
	return nil
}

func (r *stubCatalogRepo) ReleaseStock(_ context.Context, variantID string, qty int, reason, referenceID string) error {
	v, ok := r.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	v.Stock += qty
	r.logs = append(r.logs, domain.InventoryLog{VariantID: variantID, Change: qty, Reason: reason, ReferenceID: referenceID})
	return nil
}

func (r *stubCatalogRepo) AdjustStock(_ context.Context, variantID string, delta int, reason, referenceID string) error {
	v, ok := r.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.Stock+delta < 0 {
		return domain.E(domain.CodeOutOfStock, "stock cannot go negative")
	}
	v.Stock += delta
	r.logs = append(r.logs, domain.InventoryLog{VariantID: variantID, Change: delta, Reason: reason, ReferenceID: referenceID})
	return nil
}

func (r *stubCatalogRepo) GetInventoryLogs(_ context.Context, variantID string, page, limit int) ([]domain.InventoryLog, int64, error) {
	var out []domain.InventoryLog
	for _, l := range r.logs {
		if l.VariantID == variantID {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCatalogRepo) SetDiscountPrice(_ context.Context, variantID string, discountPrice int64, offerID string) error {
	v, ok := r.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	v.DiscountPrice = &discountPrice
	v.ActiveOfferID = &offerID
	return nil
}

func (r *stubCatalogRepo) ClearDiscountPrice(_ context.Context, variantID string) error {
	v, ok := r.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	v.DiscountPrice = nil
	v.ActiveOfferID = nil
	return nil
}

func (r *stubCatalogRepo) GetVariantsByProductIDs(_ context.Context, productIDs []string) ([]domain.Variant, error) {
	var out []domain.Variant
	for _, v := range r.variants {
		for _, pid := range productIDs {
			if v.ProductID == pid {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) GetVariantsByCategoryIDs(context.Context, []string) ([]domain.Variant, error) {
	return nil, nil
}

func (r *stubCatalogRepo) GetAllVariantIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.variants))
	for id := range r.variants {
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Cart ---

type stubCartRepo struct {
	carts map[string]*domain.Cart // by user ID
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *stubCartRepo) setCart(userID string, items ...domain.CartItem) *domain.Cart {
	cart := &domain.Cart{ID: "cart-" + userID, UserID: userID, Items: items}
	r.carts[userID] = cart
	return cart
}

func (r *stubCartRepo) snapshot() any {
	cs := make(map[string]*domain.Cart, len(r.carts))
	for id, c := range r.carts {
		cp := *c
		cp.Items = append([]domain.CartItem(nil), c.Items...)
		cs[id] = &cp
	}
	return cs
}

func (r *stubCartRepo) restore(s any) { r.carts = s.(map[string]*domain.Cart) }

func (r *stubCartRepo) GetCartByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *stubCartRepo) CreateCart(_ context.Context, userID string) (*domain.Cart, error) {
	return r.setCart(userID), nil
}

func (r *stubCartRepo) GetCartWithItems(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.GetCartByUserID(ctx, userID)
}

func (r *stubCartRepo) UpsertItem(_ context.Context, cartID, variantID string, quantity int, unitPrice int64) error {
	c := r.byID(cartID)
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity += quantity
			c.Items[i].Price = unitPrice
			c.Items[i].TotalPrice = unitPrice * int64(c.Items[i].Quantity)
			return nil
		}
	}
	c.Items = append(c.Items, domain.CartItem{
		CartID: cartID, VariantID: variantID, Quantity: quantity,
		Price: unitPrice, TotalPrice: unitPrice * int64(quantity),
	})
	return nil
}

func (r *stubCartRepo) UpdateItemQuantity(_ context.Context, cartID, variantID string, quantity int, unitPrice int64) error {
	c := r.byID(cartID)
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity = quantity
			c.Items[i].Price = unitPrice
			c.Items[i].TotalPrice = unitPrice * int64(quantity)
		}
	}
	return nil
}

func (r *stubCartRepo) RemoveItem(_ context.Context, cartID, variantID string) error {
	c := r.byID(cartID)
	out := c.Items[:0]
	for _, it := range c.Items {
		if it.VariantID != variantID {
			out = append(out, it)
		}
	}
	c.Items = out
	return nil
}

func (r *stubCartRepo) UpdateTotals(_ context.Context, cartID string, subtotal, shipping, total int64) error {
	c := r.byID(cartID)
	c.Subtotal, c.ShippingCost, c.Total = subtotal, shipping, total
	return nil
}

func (r *stubCartRepo) ClearCart(_ context.Context, cartID string) error {
	c := r.byID(cartID)
	c.Items = nil
	c.Subtotal, c.ShippingCost, c.Total = 0, 0, 0
	return nil
}

func (r *stubCartRepo) byID(cartID string) *domain.Cart {
	for _, c := range r.carts {
		if c.ID == cartID {
			return c
		}
	}
	return &domain.Cart{ID: cartID}
}

// --- Orders ---

type stubOrderRepo struct {
	orders    []*domain.Order
	seq       int
	createErr error
}

func newStubOrderRepo() *stubOrderRepo { return &stubOrderRepo{} }

func (r *stubOrderRepo) add(order domain.Order) *domain.Order {
	r.seq++
	if order.ID == "" {
		order.ID = fmt.Sprintf("order-%d", r.seq)
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = fmt.Sprintf("item-%d-%d", r.seq, i+1)
		}
		order.Items[i].OrderID = order.ID
	}
	r.orders = append(r.orders, &order)
	return &order
}

func (r *stubOrderRepo) snapshot() any {
	out := make([]*domain.Order, len(r.orders))
	for i, o := range r.orders {
		cp := *o
		cp.Items = append([]domain.OrderItem(nil), o.Items...)
		out[i] = &cp
	}
	return struct {
		orders []*domain.Order
		seq    int
	}{out, r.seq}
}

func (r *stubOrderRepo) restore(s any) {
	st := s.(struct {
		orders []*domain.Order
		seq    int
	})
	r.orders, r.seq = st.orders, st.seq
}

func (r *stubOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	stored := r.add(*order)
	order.ID = stored.ID
	for i := range order.Items {
		order.Items[i].ID = stored.Items[i].ID
		order.Items[i].OrderID = stored.ID
	}
	return nil
}

func (r *stubOrderRepo) find(id string) *domain.Order {
	for _, o := range r.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

func (r *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if o := r.find(id); o != nil {
		return copyOrder(o), nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubOrderRepo) GetByIDForUser(_ context.Context, id, userID string) (*domain.Order, error) {
	if o := r.find(id); o != nil && o.UserID == userID {
		return copyOrder(o), nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubOrderRepo) GetByUserID(_ context.Context, userID string, page, limit int) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) GetAll(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.OrderStatus != filter.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateOrderStatus(_ context.Context, id, status, reason string) error {
	o := r.find(id)
	if o == nil {
		return domain.ErrNotFound
	}
	o.OrderStatus, o.Reason = status, reason
	return nil
}

func (r *stubOrderRepo) UpdatePaymentStatus(_ context.Context, id, status, transactionID string) error {
	o := r.find(id)
	if o == nil {
		return domain.ErrNotFound
	}
	o.Payment.Status = status
	if transactionID != "" {
		o.Payment.TransactionID = transactionID
	}
	if status == domain.PaymentStatusCompleted {
		now := time.Now()
		o.Payment.PaymentDate = &now
	}
	return nil
}

func (r *stubOrderRepo) AdvanceItemStatuses(_ context.Context, orderID, status string) error {
	o := r.find(orderID)
	if o == nil {
		return domain.ErrNotFound
	}
	for i := range o.Items {
		if o.Items[i].Status == domain.ItemStatusCancelled || o.Items[i].Status == domain.ItemStatusReturned {
			continue
		}
		o.Items[i].Status = status
	}
	return nil
}

func (r *stubOrderRepo) GetItem(_ context.Context, orderID, itemID string) (*domain.OrderItem, error) {
	o := r.find(orderID)
	if o == nil {
		return nil, domain.ErrNotFound
	}
	for _, it := range o.Items {
		if it.ID == itemID {
			cp := it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubOrderRepo) UpdateItem(_ context.Context, item *domain.OrderItem) error {
	o := r.find(item.OrderID)
	if o == nil {
		return domain.ErrNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			// The SQL update never writes return_processed; only
			// MarkReturnProcessed flips it.
			processed := o.Items[i].ReturnProcessed
			o.Items[i] = *item
			o.Items[i].ReturnProcessed = processed
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubOrderRepo) MarkReturnProcessed(_ context.Context, itemID string) (bool, error) {
	for _, o := range r.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				if o.Items[i].ReturnProcessed {
					return false, nil
				}
				o.Items[i].ReturnProcessed = true
				return true, nil
			}
		}
	}
	return false, domain.ErrNotFound
}

func (r *stubOrderRepo) ListReturnRequests(_ context.Context, page, limit int) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range r.orders {
		for _, it := range o.Items {
			if it.ReturnRequested {
				out = append(out, *copyOrder(o))
				break
			}
		}
	}
	return out, int64(len(out)), nil
}

// --- Wallet ---

type stubWalletRepo struct {
	balances map[string]int64
	txns     []domain.WalletTransaction
}

func newStubWalletRepo() *stubWalletRepo {
	return &stubWalletRepo{balances: make(map[string]int64)}
}

func (r *stubWalletRepo) snapshot() any {
	bs := make(map[string]int64, len(r.balances))
	for k, v := range r.balances {
		bs[k] = v
	}
	return struct {
		balances map[string]int64
		txns     []domain.WalletTransaction
	}{bs, append([]domain.WalletTransaction(nil), r.txns...)}
}

func (r *stubWalletRepo) restore(s any) {
	st := s.(struct {
		balances map[string]int64
		txns     []domain.WalletTransaction
	})
	r.balances, r.txns = st.balances, st.txns
}

func (r *stubWalletRepo) EnsureWallet(_ context.Context, userID string) error {
	if _, ok := r.balances[userID]; !ok {
		r.balances[userID] = 0
	}
	return nil
}

func (r *stubWalletRepo) GetWallet(_ context.Context, userID string) (*domain.Wallet, error) {
	b, ok := r.balances[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Wallet{UserID: userID, Balance: b}, nil
}

func (r *stubWalletRepo) Credit(_ context.Context, userID string, amount int64, description string) error {
	r.balances[userID] += amount
	r.txns = append(r.txns, domain.WalletTransaction{
		ID: fmt.Sprintf("txn-%d", len(r.txns)+1), UserID: userID,
		Type: domain.WalletTxnCredit, Amount: amount, Description: description,
	})
	return nil
}

func (r *stubWalletRepo) Debit(_ context.Context, userID string, amount int64, description string) (bool, error) {
	if r.balances[userID] < amount {
		return false, nil
	}
	r.balances[userID] -= amount
	r.txns = append(r.txns, domain.WalletTransaction{
		ID: fmt.Sprintf("txn-%d", len(r.txns)+1), UserID: userID,
		Type: domain.WalletTxnDebit, Amount: amount, Description: description,
	})
	return true, nil
}

func (r *stubWalletRepo) GetTransactions(_ context.Context, userID string, page, limit int) ([]domain.WalletTransaction, int64, error) {
	var out []domain.WalletTransaction
	for _, t := range r.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubWalletRepo) GetAllTransactions(_ context.Context, page, limit int) ([]domain.WalletTransactionView, int64, error) {
	out := make([]domain.WalletTransactionView, 0, len(r.txns))
	for _, t := range r.txns {
		out = append(out, domain.WalletTransactionView{WalletTransaction: t})
	}
	return out, int64(len(out)), nil
}

// --- Coupons ---

type stubCouponRepo struct {
	coupons     map[string]*domain.Coupon // by ID
	redemptions map[string]bool           // couponID|userID
	denyRedeem  bool
}

func newStubCouponRepo() *stubCouponRepo {
	return &stubCouponRepo{
		coupons:     make(map[string]*domain.Coupon),
		redemptions: make(map[string]bool),
	}
}

func (r *stubCouponRepo) addCoupon(c domain.Coupon) {
	c.Code = strings.ToUpper(c.Code)
	r.coupons[c.ID] = &c
}

func (r *stubCouponRepo) snapshot() any {
	cs := make(map[string]*domain.Coupon, len(r.coupons))
	for id, c := range r.coupons {
		cp := *c
		cs[id] = &cp
	}
	rd := make(map[string]bool, len(r.redemptions))
	for k, v := range r.redemptions {
		rd[k] = v
	}
	return struct {
		coupons     map[string]*domain.Coupon
		redemptions map[string]bool
	}{cs, rd}
}

func (r *stubCouponRepo) restore(s any) {
	st := s.(struct {
		coupons     map[string]*domain.Coupon
		redemptions map[string]bool
	})
	r.coupons, r.redemptions = st.coupons, st.redemptions
}

func (r *stubCouponRepo) CreateCoupon(_ context.Context, c *domain.Coupon) error {
	if c.ID == "" {
		c.ID = fmt.Sprintf("coupon-%d", len(r.coupons)+1)
	}
	r.addCoupon(*c)
	return nil
}

func (r *stubCouponRepo) UpdateCoupon(_ context.Context, c *domain.Coupon) error {
	if _, ok := r.coupons[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.addCoupon(*c)
	return nil
}

func (r *stubCouponRepo) DeleteCoupon(_ context.Context, id string) error {
	if _, ok := r.coupons[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.coupons, id)
	return nil
}

func (r *stubCouponRepo) GetCouponByID(_ context.Context, id string) (*domain.Coupon, error) {
	c, ok := r.coupons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCouponRepo) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	code = strings.ToUpper(code)
	for _, c := range r.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCouponRepo) ListCoupons(_ context.Context, page, limit int) ([]domain.Coupon, int64, error) {
	var out []domain.Coupon
	for _, c := range r.coupons {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCouponRepo) ListAvailableForUser(_ context.Context, userID string) ([]domain.Coupon, error) {
	now := time.Now()
	var out []domain.Coupon
	for _, c := range r.coupons {
		if c.ActiveNow(now) && !r.redemptions[c.ID+"|"+userID] {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCouponRepo) HasRedeemed(_ context.Context, couponID, userID string) (bool, error) {
	return r.redemptions[couponID+"|"+userID], nil
}

func (r *stubCouponRepo) MarkRedeemed(_ context.Context, couponID, userID string) (bool, error) {
	if r.denyRedeem {
		return false, nil
	}
	key := couponID + "|" + userID
	if r.redemptions[key] {
		return false, nil
	}
	r.redemptions[key] = true
	return true, nil
}

func (r *stubCouponRepo) ExpireOutdated(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, c := range r.coupons {
		if !c.IsExpired && now.After(c.EndDate) {
			c.IsExpired = true
			n++
		}
	}
	return n, nil
}

// --- Users ---

type stubUserRepo struct {
	users     map[string]*domain.User
	addresses map[string]domain.Address
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     make(map[string]*domain.User),
		addresses: make(map[string]domain.Address),
	}
}

func (r *stubUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetAddressByID(_ context.Context, id, userID string) (*domain.Address, error) {
	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *stubUserRepo) ListAddresses(_ context.Context, userID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}
