package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type SettingsUsecase struct {
	tx       repo.TransactionManager
	settings repo.SettingsRepository
	clock    Clock
}

func NewSettingsUsecase(tx repo.TransactionManager, settings repo.SettingsRepository, clock Clock) *SettingsUsecase {
	return &SettingsUsecase{tx: tx, settings: settings, clock: clock}
}

// Get は保存済みの設定。まだなければ既定値。
func (u *SettingsUsecase) Get(ctx context.Context) (dto.StoreSettings, error) {
	s, err := u.settings.Get(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return toSettingsDTO(model.DefaultStoreSettings()), nil
	}
	if err != nil {
		return dto.StoreSettings{}, errDB()
	}
	return toSettingsDTO(s), nil
}

// Update は設定を丸ごと置き換え、監査ログを残す。
func (u *SettingsUsecase) Update(ctx context.Context, actorUserID string, in dto.StoreSettings) (dto.StoreSettings, error) {
	if actorUserID == "" {
		return dto.StoreSettings{}, errUnauthorized()
	}
	if err := validateSettings(&in); err != nil {
		return dto.StoreSettings{}, err
	}

	var out dto.StoreSettings

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Settings().Get(ctx)
		if errors.Is(err, repo.ErrNotFound) {
			before = model.DefaultStoreSettings()
		} else if err != nil {
			return errDB()
		}

		now := u.clock.Now()
		next := model.StoreSettings{
			ID:                    model.StoreSettingsID,
			StoreName:             in.StoreName,
			SupportEmail:          in.SupportEmail,
			Currency:              in.Currency,
			TaxRate:               in.TaxRate,
			FreeShippingThreshold: in.FreeShippingThreshold,
			MaintenanceMode:       in.MaintenanceMode,
			UpdatedAt:             now,
		}
		if err := r.Settings().Save(ctx, next); err != nil {
			return errDB()
		}

		beforeJSON, _ := json.Marshal(toSettingsDTO(before))
		afterJSON, _ := json.Marshal(toSettingsDTO(next))
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateSettings,
			ResourceType: model.AuditResourceSettings,
			ResourceID:   "store",
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    now,
		}); err != nil {
			return errDB()
		}

		out = toSettingsDTO(next)
		return nil
	})
	if err != nil {
		return dto.StoreSettings{}, err
	}
	return out, nil
}

func validateSettings(in *dto.StoreSettings) error {
	in.StoreName = strings.TrimSpace(in.StoreName)
	in.SupportEmail = strings.TrimSpace(in.SupportEmail)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	if in.StoreName == "" || len(in.StoreName) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid store_name")
	}
	if in.SupportEmail != "" {
		if _, err := mail.ParseAddress(in.SupportEmail); err != nil {
			return NewHTTPError(http.StatusBadRequest, "invalid support_email")
		}
	}
	if len(in.Currency) != 3 {
		return NewHTTPError(http.StatusBadRequest, "invalid currency")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewHTTPError(http.StatusBadRequest, "tax_rate must be between 0 and 1")
	}
	if in.FreeShippingThreshold.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "free_shipping_threshold must be >= 0")
	}
	return nil
}

func toSettingsDTO(s model.StoreSettings) dto.StoreSettings {
	return dto.StoreSettings{
		StoreName:             s.StoreName,
		SupportEmail:          s.SupportEmail,
		Currency:              s.Currency,
		TaxRate:               s.TaxRate,
		FreeShippingThreshold: s.FreeShippingThreshold,
		MaintenanceMode:       s.MaintenanceMode,
		UpdatedAt:             s.UpdatedAt,
	}
}
