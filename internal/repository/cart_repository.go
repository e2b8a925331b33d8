package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)
	FindItem(ctx context.Context, itemID string) (model.CartItem, error)
	// 同じ商品・バリエーションの行があれば数量を足す
	Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID string, qty int64) error
	DeleteItem(ctx context.Context, itemID string) error
	ClearByUserID(ctx context.Context, userID string) error
}
