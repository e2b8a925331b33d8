package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartGormRepository) FindItem(ctx context.Context, itemID string) (model.CartItem, error) {
	var it model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&it).Error; err != nil {
		return model.CartItem{}, mapErr(err)
	}
	return it, nil
}

// 同一行（user, product, variation）は数量を加算
func (r *CartGormRepository) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variation_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&item).Error
	if err != nil {
		return model.CartItem{}, mapErr(err)
	}

	var out model.CartItem
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variation_id = ?", item.UserID, item.ProductID, item.VariationID).
		First(&out).Error
	if err != nil {
		return model.CartItem{}, mapErr(err)
	}
	return out, nil
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, itemID string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)
	return affected(res)
}

func (r *CartGormRepository) DeleteItem(ctx context.Context, itemID string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&model.CartItem{}))
}

func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID string) error {
	return mapErr(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error)
}
