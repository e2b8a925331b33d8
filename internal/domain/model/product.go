package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 色・サイズなどのバリエーション
type Variation struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	VendorID    string          `gorm:"type:uuid;not null;index"`
	VendorName  string          `gorm:"type:varchar(255);not null"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int64           `gorm:"not null"`
	Variations  []Variation     `gorm:"serializer:json;type:jsonb"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

func (p Product) FindVariation(id string) (Variation, bool) {
	for _, v := range p.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}
