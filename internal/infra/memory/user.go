package memory

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.users[user.ID]; ok {
		return repo.ErrConflict
	}
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repo.ErrConflict
		}
	}
	r.s.stamp(&user.CreatedAt)
	r.s.stamp(&user.UpdatedAt)
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.d.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.users[user.ID]; !ok {
		return repo.ErrNotFound
	}
	user.UpdatedAt = r.s.now()
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) IncrementTokenVersion(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.d.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.TokenVersion++
	r.s.d.users[userID] = u
	return nil
}

type refreshTokenRepo struct{ s *Store }

func (r *refreshTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.d.refreshTokens {
		if t.TokenHash == token.TokenHash {
			return repo.ErrConflict
		}
	}
	r.s.stamp(&token.CreatedAt)
	r.s.stamp(&token.UpdatedAt)
	r.s.d.refreshTokens[token.ID] = *token
	return nil
}

func (r *refreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.d.refreshTokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *refreshTokenRepo) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.d.refreshTokens[tokenID]
	if !ok || t.UsedAt != nil || t.RevokedAt != nil {
		return repo.ErrNotFound
	}
	t.UsedAt = &usedAt
	t.UpdatedAt = usedAt
	r.s.d.refreshTokens[tokenID] = t
	return nil
}

func (r *refreshTokenRepo) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.d.refreshTokens[tokenID]
	if !ok || t.RevokedAt != nil {
		return repo.ErrNotFound
	}
	t.RevokedAt = &revokedAt
	t.UpdatedAt = revokedAt
	r.s.d.refreshTokens[tokenID] = t
	return nil
}

func (r *refreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.d.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil {
			at := revokedAt
			t.RevokedAt = &at
			t.UpdatedAt = revokedAt
			r.s.d.refreshTokens[id] = t
		}
	}
	return nil
}
