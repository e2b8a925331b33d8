package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type StoreSettings struct {
	StoreName             string          `json:"store_name"`
	SupportEmail          string          `json:"support_email"`
	Currency              string          `json:"currency"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	MaintenanceMode       bool            `json:"maintenance_mode"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
