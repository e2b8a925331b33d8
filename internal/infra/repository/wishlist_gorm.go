package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc").Order("id asc")
	})
}

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Wishlist, error) {
	lists := []model.Wishlist{}
	err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").Order("id asc").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *WishlistGormRepository) FindByID(ctx context.Context, wishlistID string) (model.Wishlist, error) {
	var w model.Wishlist
	if err := r.withItems(ctx).Where("id = ?", wishlistID).First(&w).Error; err != nil {
		return model.Wishlist{}, mapErr(err)
	}
	return w, nil
}

func (r *WishlistGormRepository) Create(ctx context.Context, w model.Wishlist) (model.Wishlist, error) {
	w.Items = nil
	if err := r.db.WithContext(ctx).Create(&w).Error; err != nil {
		return model.Wishlist{}, mapErr(err)
	}
	w.Items = []model.WishlistItem{}
	return w, nil
}

func (r *WishlistGormRepository) AddItem(ctx context.Context, item model.WishlistItem) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Wishlist{}).Where("id = ?", item.WishlistID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return mapErr(gorm.ErrRecordNotFound)
	}
	return mapErr(r.db.WithContext(ctx).Create(&item).Error)
}

func (r *WishlistGormRepository) RemoveItem(ctx context.Context, wishlistID, productID string) error {
	return affected(r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{}))
}
