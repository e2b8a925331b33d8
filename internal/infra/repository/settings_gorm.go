package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) Get(ctx context.Context) (model.StoreSettings, error) {
	var s model.StoreSettings
	if err := r.db.WithContext(ctx).Where("id = ?", model.StoreSettingsID).First(&s).Error; err != nil {
		return model.StoreSettings{}, mapErr(err)
	}
	return s, nil
}

// 1行だけなのでupsert
func (r *SettingsGormRepository) Save(ctx context.Context, s model.StoreSettings) error {
	s.ID = model.StoreSettingsID
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	return mapErr(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&s).Error)
}
