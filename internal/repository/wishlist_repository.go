package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	// 作成順。Itemsも読む
	ListByUserID(ctx context.Context, userID string) ([]model.Wishlist, error)
	FindByID(ctx context.Context, wishlistID string) (model.Wishlist, error)
	Create(ctx context.Context, w model.Wishlist) (model.Wishlist, error)
	// 既に入っていればErrConflict
	AddItem(ctx context.Context, item model.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID string) error
}
