package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ストア設定は1行だけ
const StoreSettingsID = 1

type StoreSettings struct {
	ID                    int             `gorm:"primaryKey"`
	StoreName             string          `gorm:"type:varchar(255);not null"`
	SupportEmail          string          `gorm:"type:varchar(255);not null;default:''"`
	Currency              string          `gorm:"type:varchar(3);not null"`
	TaxRate               decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MaintenanceMode       bool            `gorm:"not null;default:false"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// DefaultStoreSettings は未保存のときに返す値
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ID:                    StoreSettingsID,
		StoreName:             "Storefront",
		Currency:              "USD",
		TaxRate:               decimal.Zero,
		FreeShippingThreshold: decimal.NewFromInt(50),
	}
}
