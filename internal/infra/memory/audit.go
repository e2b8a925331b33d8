package memory

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type settingsRepo struct{ s *Store }

func (r *settingsRepo) Get(ctx context.Context) (model.StoreSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.d.settings == nil {
		return model.StoreSettings{}, repo.ErrNotFound
	}
	return *r.s.d.settings, nil
}

func (r *settingsRepo) Save(ctx context.Context, st model.StoreSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st.ID = model.StoreSettingsID
	r.s.stamp(&st.UpdatedAt)
	r.s.d.settings = &st
	return nil
}

type auditLogRepo struct{ s *Store }

func (r *auditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.d.auditSeq++
	log.ID = r.s.d.auditSeq
	r.s.stamp(&log.CreatedAt)
	r.s.d.auditLogs = append(r.s.d.auditLogs, log)
	return nil
}

func (r *auditLogRepo) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.AuditLog{}
	// 新しい順
	for i := len(r.s.d.auditLogs) - 1; i >= 0; i-- {
		l := r.s.d.auditLogs[i]
		switch {
		case f.ActorUserID != "" && l.ActorUserID != f.ActorUserID,
			f.Action != "" && l.Action != f.Action,
			f.ResourceType != "" && l.ResourceType != f.ResourceType,
			f.ResourceID != "" && l.ResourceID != f.ResourceID,
			f.CreatedFrom != nil && l.CreatedAt.Before(*f.CreatedFrom),
			f.CreatedTo != nil && l.CreatedAt.After(*f.CreatedTo):
			continue
		}
		out = append(out, l)
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []model.AuditLog{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
