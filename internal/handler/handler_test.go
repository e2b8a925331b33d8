package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/dto"
	"storefront/internal/logger"
	"storefront/internal/seed"
	"storefront/internal/server"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = config.Config{
	JWTSecret:       "test-secret",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: time.Hour,
	BcryptCost:      4,
}

type testServer struct {
	e *echo.Echo
	f seed.Fixtures
}

func newServer(t *testing.T) testServer {
	t.Helper()
	e, f, err := server.NewInMemory(context.Background(), testCfg, logger.Discard())
	require.NoError(t, err)
	return testServer{e: e, f: f}
}

type call struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (s testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s testServer) login(t *testing.T, email string) dto.LoginResponse {
	t.Helper()
	rec := s.do(t, call{method: http.MethodPost, path: "/auth/login", body: dto.LoginRequest{Email: email, Password: seed.DemoPassword}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.LoginResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, rec).Message
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/auth/register", body: dto.RegisterRequest{Email: "New@Example.com", Password: "password123", Name: "New"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[struct {
		User dto.User `json:"user"`
	}](t, rec)
	assert.Equal(t, "new@example.com", reg.User.Email)
	assert.Equal(t, dto.RoleCustomer, reg.User.Role)

	// 同じemailは409
	rec = s.do(t, call{method: http.MethodPost, path: "/auth/register", body: dto.RegisterRequest{Email: "new@example.com", Password: "password123"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	login := s.login(t, "new@example.com")
	assert.NotEmpty(t, login.Token.AccessToken)
	assert.NotEmpty(t, login.Token.RefreshToken)
	assert.Equal(t, 900, login.Token.ExpiresIn)

	rec = s.do(t, call{method: http.MethodGet, path: "/auth/me", token: login.Token.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reg.User.ID, decode[dto.User](t, rec).ID)
}

func TestAuth_Errors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		c    call
		want int
		msg  string
	}{
		{"short password", call{method: http.MethodPost, path: "/auth/register", body: dto.RegisterRequest{Email: "x@example.com", Password: "short"}}, http.StatusBadRequest, ""},
		{"wrong password", call{method: http.MethodPost, path: "/auth/login", body: dto.LoginRequest{Email: "customer@example.com", Password: "nope-nope"}}, http.StatusUnauthorized, ""},
		{"blank refresh", call{method: http.MethodPost, path: "/auth/refresh-token", body: dto.RefreshRequest{}}, http.StatusUnauthorized, ""},
		{"unknown refresh", call{method: http.MethodPost, path: "/auth/refresh-token", body: dto.RefreshRequest{RefreshToken: "garbage"}}, http.StatusUnauthorized, "invalid refresh token"},
		{"me without token", call{method: http.MethodGet, path: "/auth/me"}, http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.c)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errorMessage(t, rec))
			}
		})
	}
}

func TestAuth_RefreshRotatesAndLogoutIsIdempotent(t *testing.T) {
	s := newServer(t)
	login := s.login(t, "customer@example.com")

	rec := s.do(t, call{method: http.MethodPost, path: "/auth/refresh-token", body: dto.RefreshRequest{RefreshToken: login.Token.RefreshToken}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[dto.TokenPair](t, rec)
	assert.NotEqual(t, login.Token.RefreshToken, pair.RefreshToken)

	for range 2 {
		rec = s.do(t, call{method: http.MethodPost, path: "/auth/logout", body: dto.LogoutRequest{RefreshToken: pair.RefreshToken}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "logout success", decode[dto.MessageResponse](t, rec).Message)
	}

	rec = s.do(t, call{method: http.MethodPost, path: "/auth/refresh-token", body: dto.RefreshRequest{RefreshToken: pair.RefreshToken}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProducts(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/products"})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ProductList](t, rec)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)

	rec = s.do(t, call{method: http.MethodGet, path: "/products?vendor_id=" + s.f.VendorB.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[dto.ProductList](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, s.f.Cap.ID, list.Items[0].ID)

	rec = s.do(t, call{method: http.MethodGet, path: "/products?page=abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid page", errorMessage(t, rec))

	rec = s.do(t, call{method: http.MethodGet, path: "/products?limit=101"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/products/" + s.f.Shoes.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[dto.Product](t, rec)
	assert.Equal(t, "89.99", p.Price.StringFixed(2))
	assert.Len(t, p.Variations, 3)

	rec = s.do(t, call{method: http.MethodGet, path: "/products/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "customer@example.com").Token.AccessToken

	rec := s.do(t, call{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/cart", token: token, body: dto.AddCartItemRequest{ProductID: s.f.Shoes.ID, Quantity: 1, VariationID: "size-42"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, call{method: http.MethodPost, path: "/cart", token: token, body: dto.AddCartItemRequest{ProductID: s.f.Cap.ID, Quantity: 1}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cart := decode[dto.Cart](t, rec)
	assert.Equal(t, "139.98", cart.Total.StringFixed(2))
	require.Len(t, cart.Groups, 2)
	capItem := cart.Groups[1].Items[0]

	rec = s.do(t, call{method: http.MethodPut, path: "/cart/items/" + capItem.ID, token: token, body: dto.UpdateCartItemRequest{Quantity: 3}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decode[dto.Cart](t, rec)
	assert.Equal(t, int64(4), cart.TotalItems)

	rec = s.do(t, call{method: http.MethodPost, path: "/cart", token: token, body: dto.AddCartItemRequest{ProductID: s.f.Cap.ID, Quantity: 1000}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "stock exceeded", errorMessage(t, rec))

	// 他人のアイテムは404
	other := s.login(t, "beta@example.com").Token.AccessToken
	rec = s.do(t, call{method: http.MethodDelete, path: "/cart/items/" + capItem.ID, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/cart/items/" + capItem.ID, token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.Cart](t, rec).Groups, 1)

	rec = s.do(t, call{method: http.MethodDelete, path: "/cart", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.Cart](t, rec).IsEmpty())
}

func TestWishlists(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "customer@example.com").Token.AccessToken

	rec := s.do(t, call{method: http.MethodPost, path: "/wishlists", token: token, body: dto.CreateWishlistRequest{}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wl := decode[dto.Wishlist](t, rec)
	assert.Equal(t, "My Wishlist", wl.Name)

	path := "/wishlists/" + wl.ID + "/products/" + s.f.Cap.ID
	for range 2 {
		rec = s.do(t, call{method: http.MethodPost, path: path, token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	wl = decode[dto.Wishlist](t, rec)
	require.Len(t, wl.Items, 1)
	assert.Equal(t, "Canvas Cap", wl.Items[0].ProductName)

	rec = s.do(t, call{method: http.MethodPost, path: "/wishlists/" + wl.ID + "/products/missing", token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: path, token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.Wishlist](t, rec).Items)

	rec = s.do(t, call{method: http.MethodGet, path: "/wishlists", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.Wishlist](t, rec), 1)

	// 他人のリストは404
	other := s.login(t, "alpha@example.com").Token.AccessToken
	rec = s.do(t, call{method: http.MethodPost, path: path, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrders_IdempotentPlacement(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "customer@example.com").Token.AccessToken

	rec := s.do(t, call{method: http.MethodPost, path: "/cart", token: token, body: dto.AddCartItemRequest{ProductID: s.f.Cap.ID, Quantity: 2}})
	require.Equal(t, http.StatusOK, rec.Code)

	place := dto.PlaceOrderRequest{ShippingAddress: "1 Market St", ShippingMethod: "standard", PaymentMethod: "paypal"}

	rec = s.do(t, call{method: http.MethodPost, path: "/orders", token: token, body: place})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	key := map[string]string{"X-Idempotency-Key": "order-key-1"}
	rec = s.do(t, call{method: http.MethodPost, path: "/orders", token: token, body: place, headers: key})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[dto.Order](t, rec)
	assert.Equal(t, "99.98", first.Total.StringFixed(2))
	assert.Equal(t, "1 Market St", first.BillingAddress)

	// 同じキーで再送すると同じ注文（カートは空でもよい）
	rec = s.do(t, call{method: http.MethodPost, path: "/orders", token: token, body: place, headers: key})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, first.ID, decode[dto.Order](t, rec).ID)

	// 別キーだとカートが空
	rec = s.do(t, call{method: http.MethodPost, path: "/orders", token: token, body: place, headers: map[string]string{"X-Idempotency-Key": "order-key-2"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart empty", errorMessage(t, rec))

	rec = s.do(t, call{method: http.MethodGet, path: "/orders", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.Order](t, rec), 1)

	rec = s.do(t, call{method: http.MethodGet, path: "/orders/" + first.ID, token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	other := s.login(t, "alpha@example.com").Token.AccessToken
	rec = s.do(t, call{method: http.MethodGet, path: "/orders/" + first.ID, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVendorAndAdminRoutes(t *testing.T) {
	s := newServer(t)
	customer := s.login(t, "customer@example.com").Token.AccessToken
	vendorB := s.login(t, "beta@example.com").Token.AccessToken
	vendorA := s.login(t, "alpha@example.com").Token.AccessToken
	admin := s.login(t, "admin@example.com").Token.AccessToken

	rec := s.do(t, call{method: http.MethodPost, path: "/cart", token: customer, body: dto.AddCartItemRequest{ProductID: s.f.Cap.ID, Quantity: 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, call{method: http.MethodPost, path: "/orders", token: customer,
		body:    dto.PlaceOrderRequest{ShippingAddress: "1 Market St", ShippingMethod: "standard", PaymentMethod: "paypal"},
		headers: map[string]string{"X-Idempotency-Key": "k"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[dto.Order](t, rec)

	statusPath := "/vendor/orders/" + order.ID + "/status"

	tests := []struct {
		name  string
		token string
		c     call
		want  int
	}{
		{"customer cannot list vendor orders", customer, call{method: http.MethodGet, path: "/vendor/orders"}, http.StatusForbidden},
		{"customer cannot list admin orders", customer, call{method: http.MethodGet, path: "/admin/orders"}, http.StatusForbidden},
		{"vendor cannot read settings", vendorB, call{method: http.MethodGet, path: "/admin/settings"}, http.StatusForbidden},
		{"other vendor cannot update", vendorA, call{method: http.MethodPut, path: statusPath, body: dto.UpdateOrderStatusRequest{Status: dto.OrderStatusProcessing}}, http.StatusForbidden},
		{"invalid transition", vendorB, call{method: http.MethodPut, path: statusPath, body: dto.UpdateOrderStatusRequest{Status: dto.OrderStatusDelivered}}, http.StatusBadRequest},
		{"owning vendor updates", vendorB, call{method: http.MethodPut, path: statusPath, body: dto.UpdateOrderStatusRequest{Status: dto.OrderStatusProcessing}}, http.StatusOK},
		{"admin updates any", admin, call{method: http.MethodPut, path: statusPath, body: dto.UpdateOrderStatusRequest{Status: dto.OrderStatusShipped}}, http.StatusOK},
		{"admin bad from", admin, call{method: http.MethodGet, path: "/admin/orders?from=yesterday"}, http.StatusBadRequest},
		{"admin bad status", admin, call{method: http.MethodGet, path: "/admin/orders?status=LOST"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			c.token = tt.token
			rec := s.do(t, c)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec = s.do(t, call{method: http.MethodGet, path: "/vendor/orders", token: vendorB})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.Order](t, rec), 1)

	rec = s.do(t, call{method: http.MethodGet, path: "/vendor/orders", token: vendorA})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]dto.Order](t, rec))

	rec = s.do(t, call{method: http.MethodGet, path: "/admin/orders?status=SHIPPED&user_id=" + s.f.Customer.ID, token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.OrderList](t, rec)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 50, list.Limit)

	// ステータス変更は2回とも監査ログに残る
	rec = s.do(t, call{method: http.MethodGet, path: "/admin/audit-logs?resource_type=order&resource_id=" + order.ID, token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logs := decode[[]dto.AuditLog](t, rec)
	require.Len(t, logs, 2)
	assert.Equal(t, s.f.Admin.ID, logs[0].ActorUserID)
	assert.JSONEq(t, `{"status":"SHIPPED"}`, string(logs[0].After))

	rec = s.do(t, call{method: http.MethodGet, path: "/admin/audit-logs", token: vendorB})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminSettings(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@example.com").Token.AccessToken

	rec := s.do(t, call{method: http.MethodGet, path: "/admin/settings", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[dto.StoreSettings](t, rec)
	assert.Equal(t, "USD", st.Currency)

	st.StoreName = "  Demo Store "
	st.SupportEmail = "help@example.com"
	rec = s.do(t, call{method: http.MethodPut, path: "/admin/settings", token: admin, body: st})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Demo Store", decode[dto.StoreSettings](t, rec).StoreName)

	st.SupportEmail = "not-an-email"
	rec = s.do(t, call{method: http.MethodPut, path: "/admin/settings", token: admin, body: st})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid support_email", errorMessage(t, rec))
}
