package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type SettingsRepository interface {
	// 未保存ならErrNotFound
	Get(ctx context.Context) (model.StoreSettings, error)
	Save(ctx context.Context, s model.StoreSettings) error
}
