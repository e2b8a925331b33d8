package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID                  string          `gorm:"type:uuid;primaryKey"`
	OrderID             string          `gorm:"type:uuid;not null;index"`
	ProductID           string          `gorm:"type:uuid;not null;index"`
	VendorID            string          `gorm:"type:uuid;not null;index"`
	VariationID         string          `gorm:"type:varchar(64);not null;default:''"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity            int64           `gorm:"not null"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime"`
}
