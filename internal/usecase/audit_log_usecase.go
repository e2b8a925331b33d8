package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]dto.AuditLog, error) {
	if f.Limit < 1 || f.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, errDB()
	}

	out := make([]dto.AuditLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, toAuditLogDTO(l))
	}
	return out, nil
}

func toAuditLogDTO(l model.AuditLog) dto.AuditLog {
	return dto.AuditLog{
		ID:           l.ID,
		ActorUserID:  l.ActorUserID,
		Action:       string(l.Action),
		ResourceType: string(l.ResourceType),
		ResourceID:   l.ResourceID,
		Before:       rawJSON(l.BeforeJSON),
		After:        rawJSON(l.AfterJSON),
		CreatedAt:    l.CreatedAt,
	}
}

// 壊れたJSONは出さない
func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
