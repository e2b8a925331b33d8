// Package tokenstore はアクセストークン/リフレッシュトークンの保存先。
// ブラウザのlocalStorageに相当する。
package tokenstore

import (
	"context"
	"sync"
)

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// IsZero はどちらのトークンも無いか
func (t Tokens) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// トークンが無いときのLoadはゼロ値とnilを返す
type Store interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

type Memory struct {
	mu     sync.RWMutex
	tokens Tokens
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (Tokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens, nil
}

func (m *Memory) Save(ctx context.Context, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	return nil
}
