// Package settings は管理画面のストア設定。
package settings

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront/internal/client/api"
	"storefront/internal/domain/dto"
)

const PathSettings = "/admin/settings"

var (
	ErrStoreNameRequired = errors.New("store name is required")
	ErrInvalidEmail      = errors.New("support email is invalid")
	ErrInvalidCurrency   = errors.New("currency must be a 3-letter code")
	ErrNegativeAmount    = errors.New("tax rate and free shipping threshold must not be negative")
)

type Client struct {
	api api.Doer
}

func New(c api.Doer) *Client {
	return &Client{api: c}
}

func (c *Client) Get(ctx context.Context) (dto.StoreSettings, error) {
	var out dto.StoreSettings
	if err := c.api.Do(ctx, api.Get(PathSettings), &out); err != nil {
		return dto.StoreSettings{}, err
	}
	return out, nil
}

// Update は送る前にフォームの検証をする
func (c *Client) Update(ctx context.Context, s dto.StoreSettings) (dto.StoreSettings, error) {
	if err := Validate(s); err != nil {
		return dto.StoreSettings{}, err
	}

	var out dto.StoreSettings
	if err := c.api.Do(ctx, api.Put(PathSettings, s), &out); err != nil {
		return dto.StoreSettings{}, err
	}
	return out, nil
}

func Validate(s dto.StoreSettings) error {
	if strings.TrimSpace(s.StoreName) == "" {
		return ErrStoreNameRequired
	}
	if s.SupportEmail != "" {
		if _, err := mail.ParseAddress(s.SupportEmail); err != nil {
			return ErrInvalidEmail
		}
	}
	if len(s.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if s.TaxRate.IsNegative() || s.FreeShippingThreshold.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
