// Package catalog は公開商品の一覧と詳細。
package catalog

import (
	"context"
	"net/url"
	"strconv"

	"storefront/internal/client/api"
	"storefront/internal/domain/dto"
)

const PathProducts = "/products"

// Query は一覧の検索条件。ゼロ値は送らない。
type Query struct {
	Q        string
	VendorID string
	Page     int
	Limit    int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.VendorID != "" {
		v.Set("vendor_id", q.VendorID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type Client struct {
	api api.Doer
}

func New(c api.Doer) *Client {
	return &Client{api: c}
}

func (c *Client) List(ctx context.Context, q Query) (dto.ProductList, error) {
	path := PathProducts
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}

	var out dto.ProductList
	if err := c.api.Do(ctx, api.Get(path), &out); err != nil {
		return dto.ProductList{}, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (dto.Product, error) {
	var out dto.Product
	if err := c.api.Do(ctx, api.Get(PathProducts+"/"+url.PathEscape(id)), &out); err != nil {
		return dto.Product{}, err
	}
	return out, nil
}
