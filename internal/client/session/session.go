// Package session はログイン状態を持つ。
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storefront/internal/client/api"
	"storefront/internal/client/tokenstore"
	"storefront/internal/domain/dto"

	"github.com/sirupsen/logrus"
)

var ErrCredentialsRequired = errors.New("email and password are required")

type Session struct {
	api *api.Client
	log *logrus.Logger

	mu       sync.RWMutex
	identity *Identity
}

// New はAPIクライアントのトークン変更を購読する
func New(c *api.Client, log *logrus.Logger) *Session {
	s := &Session{api: c, log: log}
	c.Subscribe(s.onTokens)
	return s
}

// Restore は保存済みトークンからログイン状態を復元する
func (s *Session) Restore(ctx context.Context) (*Identity, error) {
	t, err := s.api.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	s.onTokens(t)
	return s.Identity(), nil
}

func (s *Session) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Identity{}, ErrCredentialsRequired
	}

	var resp dto.LoginResponse
	if err := s.api.Do(ctx, api.Post(api.PathLogin, dto.LoginRequest{Email: email, Password: password}), &resp); err != nil {
		return Identity{}, err
	}

	id, err := DecodeIdentity(resp.Token.AccessToken)
	if err != nil {
		return Identity{}, err
	}

	if err := s.api.SetTokens(ctx, tokenstore.Tokens{
		AccessToken:  resp.Token.AccessToken,
		RefreshToken: resp.Token.RefreshToken,
	}); err != nil {
		return Identity{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": id.ID, "role": id.Role}).Info("signed in")
	return id, nil
}

type registerResponse struct {
	User dto.User `json:"user"`
}

func (s *Session) Register(ctx context.Context, req dto.RegisterRequest) (dto.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return dto.User{}, ErrCredentialsRequired
	}

	var resp registerResponse
	if err := s.api.Do(ctx, api.Post(api.PathRegister, req), &resp); err != nil {
		return dto.User{}, err
	}
	return resp.User, nil
}

// Logout はサーバー側のrefresh失効を試み、結果に関わらずローカルのトークンを消す
func (s *Session) Logout(ctx context.Context) error {
	t, err := s.api.Tokens(ctx)
	if err != nil {
		s.log.WithError(err).Warn("load tokens on logout failed")
	}

	if t.RefreshToken != "" {
		if err := s.api.Do(ctx, api.Post(api.PathLogout, dto.LogoutRequest{RefreshToken: t.RefreshToken}), nil); err != nil {
			s.log.WithError(err).Warn("server logout failed")
		}
	}

	return s.api.ClearTokens(ctx)
}

// Identity は現在のユーザー（未ログインならnil）
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) IsAuthenticated() bool {
	return s.Identity() != nil
}

func (s *Session) HasRole(roles ...dto.Role) bool {
	id := s.Identity()
	if id == nil {
		return false
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// Gate はRouterに渡す遷移フック
func (s *Session) Gate(route string) string {
	return Gate(s.Identity(), route)
}

func (s *Session) onTokens(t tokenstore.Tokens) {
	var next *Identity
	if t.AccessToken != "" {
		id, err := DecodeIdentity(t.AccessToken)
		if err != nil {
			s.log.WithError(err).Warn("stored access token could not be decoded")
		} else {
			next = &id
		}
	}

	s.mu.Lock()
	s.identity = next
	s.mu.Unlock()
}
