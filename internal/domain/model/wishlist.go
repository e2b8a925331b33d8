package model

import "time"

type Wishlist struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"type:uuid;not null;index"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime"`
}

// 同じリストに同じ商品は1つ
type WishlistItem struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	WishlistID string    `gorm:"type:uuid;not null;uniqueIndex:ux_wishlist_product"`
	ProductID  string    `gorm:"type:uuid;not null;uniqueIndex:ux_wishlist_product"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}
