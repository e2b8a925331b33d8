package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	"storefront/internal/infra/memory"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	store *memory.Store
	cart  *CartUsecase
	uc    *OrderUsecase
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	s := seededStore(t)
	ids := &seqIDs{}
	return orderFixture{
		store: s,
		cart:  NewCartUsecase(s.Carts(), s.Products(), ids),
		uc:    NewOrderUsecase(s, s.Orders(), ids, newClock(), testLog),
	}
}

func (f orderFixture) fill(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, userID, dto.AddCartItemRequest{ProductID: "p-shoes", Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, userID, dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1})
	require.NoError(t, err)
}

func (f orderFixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

var placeReq = dto.PlaceOrderRequest{
	ShippingAddress: "Ada, 1 Main St, Springfield, IL 62701, US",
	ShippingMethod:  "standard",
	PaymentMethod:   "card",
}

func TestOrder_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.fill(t, "u-1")

	o, created, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dto.OrderStatusPending, o.Status)
	assert.True(t, money("229.97").Equal(o.Total), o.Total.String())
	assert.Equal(t, placeReq.ShippingAddress, o.BillingAddress)
	require.Len(t, o.Items, 2)
	assert.Equal(t, vendorA, o.Items[0].VendorID)
	assert.True(t, money("179.98").Equal(o.Items[0].Subtotal))

	// 在庫が減り、カートは空
	assert.Equal(t, int64(3), f.stock(t, "p-shoes"))
	assert.Equal(t, int64(9), f.stock(t, "p-cap"))
	cart, err := f.cart.GetCart(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// 同じキーは同じ注文
	again, created, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, o.ID, again.ID)
	assert.Equal(t, int64(3), f.stock(t, "p-shoes"))

	mine, err := f.uc.ListMyOrders(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	got, err := f.uc.GetMyOrderDetail(ctx, "u-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.uc.GetMyOrderDetail(ctx, "u-2", o.ID)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestOrder_PlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	_, _, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	noAddr := placeReq
	noAddr.ShippingAddress = " "
	_, _, err = f.uc.PlaceOrder(ctx, "u-1", noAddr, "k")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, _, err = f.uc.PlaceOrder(ctx, "u-1", placeReq, "k")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, _, err = f.uc.PlaceOrder(ctx, "", placeReq, "k")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestOrder_PlaceOrderOutOfStockRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.fill(t, "u-1")

	// カート投入後に在庫が減った
	ok, err := f.store.Inventory().DecreaseStockIfEnough(ctx, "p-cap", 10)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	assert.Equal(t, int64(5), f.stock(t, "p-shoes"))
	cart, err := f.cart.GetCart(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), cart.TotalItems)
}

func TestOrder_UpdateStatusFlow(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.fill(t, "u-1")

	o, _, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	require.NoError(t, err)

	vendor := Actor{UserID: vendorA, Role: model.RoleVendor}
	other := Actor{UserID: "vendor-z", Role: model.RoleVendor}
	admin := Actor{UserID: "admin-1", Role: model.RoleAdmin}
	customer := Actor{UserID: "u-1", Role: model.RoleCustomer}

	_, err = f.uc.UpdateStatus(ctx, customer, o.ID, dto.OrderStatusProcessing)
	assertHTTPStatus(t, err, http.StatusForbidden)

	_, err = f.uc.UpdateStatus(ctx, other, o.ID, dto.OrderStatusProcessing)
	assertHTTPStatus(t, err, http.StatusForbidden)

	_, err = f.uc.UpdateStatus(ctx, vendor, o.ID, dto.OrderStatusDelivered)
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.UpdateStatus(ctx, vendor, o.ID, "BOGUS")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.UpdateStatus(ctx, vendor, "missing", dto.OrderStatusProcessing)
	assertHTTPStatus(t, err, http.StatusNotFound)

	updated, err := f.uc.UpdateStatus(ctx, vendor, o.ID, dto.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, dto.OrderStatusProcessing, updated.Status)

	updated, err = f.uc.UpdateStatus(ctx, admin, o.ID, dto.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, dto.OrderStatusShipped, updated.Status)

	// SHIPPEDからは取消できない
	_, err = f.uc.UpdateStatus(ctx, admin, o.ID, dto.OrderStatusCancelled)
	assertHTTPStatus(t, err, http.StatusBadRequest)

	updated, err = f.uc.UpdateStatus(ctx, vendor, o.ID, dto.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, dto.OrderStatusDelivered, updated.Status)

	logs, err := f.store.AuditLogs().List(ctx, repo.AuditLogFilter{ResourceID: o.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, `{"status":"SHIPPED"}`, logs[0].BeforeJSON)
	assert.Equal(t, `{"status":"DELIVERED"}`, logs[0].AfterJSON)
	assert.Equal(t, vendorA, logs[0].ActorUserID)
}

func TestOrder_CancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.fill(t, "u-1")

	o, _, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), f.stock(t, "p-shoes"))

	_, err = f.uc.UpdateStatus(ctx, Actor{UserID: "admin-1", Role: model.RoleAdmin}, o.ID, dto.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.stock(t, "p-shoes"))
	assert.Equal(t, int64(10), f.stock(t, "p-cap"))
}

func TestOrder_AdminAndVendorLists(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	f.fill(t, "u-1")
	_, _, err := f.uc.PlaceOrder(ctx, "u-1", placeReq, "key-1")
	require.NoError(t, err)

	_, err = f.cart.AddToCart(ctx, "u-2", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1})
	require.NoError(t, err)
	_, _, err = f.uc.PlaceOrder(ctx, "u-2", placeReq, "key-1")
	require.NoError(t, err)

	all, err := f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Len(t, all.Items, 2)

	mine, err := f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 50, UserID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	a, err := f.uc.VendorList(ctx, vendorA)
	require.NoError(t, err)
	assert.Len(t, a, 1)
	b, err := f.uc.VendorList(ctx, vendorB)
	require.NoError(t, err)
	assert.Len(t, b, 2)

	_, err = f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 0, Limit: 50})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	_, err = f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 101})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	_, err = f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 10, Status: "PAID"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.uc.AdminList(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 10, From: &from, To: &to})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// mocks（UpdateStatusの分岐だけを見る）
// =====================

type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders repo.OrderRepository
	audit  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository        { return r.orders }
func (r *TxReposMock) Carts() repo.CartRepository          { return nil }
func (r *TxReposMock) Products() repo.ProductRepository    { return nil }
func (r *TxReposMock) Inventory() repo.InventoryRepository { return nil }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository  { return r.audit }
func (r *TxReposMock) Settings() repo.SettingsRepository   { return nil }

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	panic("not used")
}

func (m *OrderRepoMock) ListByVendorID(ctx context.Context, vendorID string) ([]model.Order, error) {
	panic("not used")
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	panic("not used")
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error) {
	panic("not used")
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used")
}

func TestOrder_UpdateStatus_SameStatusNoOp(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	audit := new(AuditRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, audit: audit}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{
		ID:     "o-1",
		Status: model.OrderStatusProcessing,
	}, nil)

	uc := NewOrderUsecase(tx, orders, &seqIDs{}, newClock(), testLog)
	out, err := uc.UpdateStatus(ctx, Actor{UserID: "admin-1", Role: model.RoleAdmin}, "o-1", dto.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, dto.OrderStatusProcessing, out.Status)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.AssertExpectations(t)
}

func TestOrder_UpdateStatus_AuditFailureFails(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	audit := new(AuditRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, audit: audit}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusPending}, nil)
	orders.On("UpdateStatus", mock.Anything, "o-1", model.OrderStatusProcessing).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus && l.ResourceID == "o-1" && l.ActorUserID == "admin-1"
	})).Return(assert.AnError)

	uc := NewOrderUsecase(tx, orders, &seqIDs{}, newClock(), testLog)
	_, err := uc.UpdateStatus(ctx, Actor{UserID: "admin-1", Role: model.RoleAdmin}, "o-1", dto.OrderStatusProcessing)
	assertHTTPStatus(t, err, http.StatusInternalServerError)

	orders.AssertExpectations(t)
	audit.AssertExpectations(t)
}
