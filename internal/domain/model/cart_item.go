package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。ユーザーごとに持ち、読むときに出品者でまとめる。
// 追加時点の価格を必ず保存。
type CartItem struct {
	ID                string          `gorm:"type:uuid;primaryKey"`
	UserID            string          `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_line"`
	ProductID         string          `gorm:"type:uuid;not null;uniqueIndex:ux_cart_line"`
	VariationID       string          `gorm:"type:varchar(64);not null;default:'';uniqueIndex:ux_cart_line"`
	Quantity          int64           `gorm:"not null"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime"`
}
