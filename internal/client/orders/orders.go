// Package orders は注文APIの薄いラッパー。
// 注文のライフサイクルはサーバーが持ち、クライアントは明示的な操作でだけ遷移させる。
package orders

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/client/api"
	"storefront/internal/domain/dto"
)

const (
	PathOrders       = "/orders"
	PathAdminOrders  = "/admin/orders"
	PathVendorOrders = "/vendor/orders"

	HeaderIdempotencyKey = "X-Idempotency-Key"
)

var (
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrInvalidStatus          = errors.New("invalid order status")
)

type Client struct {
	api api.Doer
}

func New(c api.Doer) *Client {
	return &Client{api: c}
}

// List は自分の注文
func (c *Client) List(ctx context.Context) ([]dto.Order, error) {
	var out []dto.Order
	if err := c.api.Do(ctx, api.Get(PathOrders), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (dto.Order, error) {
	var out dto.Order
	if err := c.api.Do(ctx, api.Get(PathOrders+"/"+url.PathEscape(id)), &out); err != nil {
		return dto.Order{}, err
	}
	return out, nil
}

// Place は注文を作る。同じキーで再送しても注文は1つ。
func (c *Client) Place(ctx context.Context, req dto.PlaceOrderRequest, idempotencyKey string) (dto.Order, error) {
	if idempotencyKey == "" {
		return dto.Order{}, ErrIdempotencyKeyRequired
	}

	var out dto.Order
	r := api.Post(PathOrders, req).WithHeader(HeaderIdempotencyKey, idempotencyKey)
	if err := c.api.Do(ctx, r, &out); err != nil {
		return dto.Order{}, err
	}
	return out, nil
}

// AdminFilter は管理画面の注文検索条件。ゼロ値の項目は送らない。
type AdminFilter struct {
	Page   int
	Limit  int
	Status dto.OrderStatus
	UserID string
	From   time.Time
	To     time.Time
}

func (f AdminFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.UserID != "" {
		q.Set("user_id", f.UserID)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.UTC().Format(time.RFC3339))
	}
	return q
}

func (c *Client) AdminList(ctx context.Context, f AdminFilter) (dto.OrderList, error) {
	if f.Status != "" && !f.Status.Valid() {
		return dto.OrderList{}, ErrInvalidStatus
	}

	path := PathAdminOrders
	if q := f.query().Encode(); q != "" {
		path += "?" + q
	}

	var out dto.OrderList
	if err := c.api.Do(ctx, api.Get(path), &out); err != nil {
		return dto.OrderList{}, err
	}
	return out, nil
}

// VendorList は自分の商品を含む注文
func (c *Client) VendorList(ctx context.Context) ([]dto.Order, error) {
	var out []dto.Order
	if err := c.api.Do(ctx, api.Get(PathVendorOrders), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status dto.OrderStatus) (dto.Order, error) {
	if !status.Valid() {
		return dto.Order{}, ErrInvalidStatus
	}

	var out dto.Order
	path := PathVendorOrders + "/" + url.PathEscape(id) + "/status"
	if err := c.api.Do(ctx, api.Put(path, dto.UpdateOrderStatusRequest{Status: status}), &out); err != nil {
		return dto.Order{}, err
	}
	return out, nil
}

func (c *Client) MarkShipped(ctx context.Context, id string) (dto.Order, error) {
	return c.UpdateStatus(ctx, id, dto.OrderStatusShipped)
}

func (c *Client) MarkDelivered(ctx context.Context, id string) (dto.Order, error) {
	return c.UpdateStatus(ctx, id, dto.OrderStatusDelivered)
}
