// Package api はバックエンドREST APIの呼び出しをまとめる。
// 全リクエストにJSONヘッダーとBearerトークンを付け、401のときだけ1回refreshして再送する。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"storefront/internal/client/nav"
	"storefront/internal/client/tokenstore"
	"storefront/internal/domain/dto"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathRefresh  = "/auth/refresh-token"
	PathLogout   = "/auth/logout"
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokenstore.Store
	nav     nav.Navigator
	log     *logrus.Logger

	mu        sync.RWMutex
	listeners []func(tokenstore.Tokens)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log }
}

// refresh失敗時にログイン画面へ飛ばす先
func WithNavigator(n nav.Navigator) Option {
	return func(c *Client) { c.nav = n }
}

func New(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// タイムアウトは付けない（ctxで止める）
		http:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens: tokens,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe はトークンの更新/破棄を受け取る
func (c *Client) Subscribe(fn func(tokenstore.Tokens)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Tokens は保存済みトークン
func (c *Client) Tokens(ctx context.Context) (tokenstore.Tokens, error) {
	return c.tokens.Load(ctx)
}

// SetTokens はログイン直後などにトークンを保存して通知する
func (c *Client) SetTokens(ctx context.Context, t tokenstore.Tokens) error {
	if err := c.tokens.Save(ctx, t); err != nil {
		return fmt.Errorf("api: save tokens: %w", err)
	}
	c.notify(t)
	return nil
}

// ClearTokens はトークンを全部消して通知する
func (c *Client) ClearTokens(ctx context.Context) error {
	err := c.tokens.Clear(ctx)
	c.notify(tokenstore.Tokens{})
	if err != nil {
		return fmt.Errorf("api: clear tokens: %w", err)
	}
	return nil
}

// Do はリクエストを送り、2xxならoutへJSONをデコードする。
// outがnilならボディは読み捨てる。
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	payload, err := encodeBody(req.Body)
	if err != nil {
		return fmt.Errorf("api: encode %s %s: %w", req.Method, req.Path, err)
	}

	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("api: load tokens: %w", err)
	}

	resp, err := c.send(ctx, req, payload, tokens.AccessToken)
	if err != nil {
		return err
	}

	//401なら1回だけrefreshして再送
	if resp.StatusCode == http.StatusUnauthorized && refreshable(req.Path) {
		drain(resp)

		fresh, rerr := c.refresh(ctx, tokens.RefreshToken)
		if rerr != nil {
			// 呼び出し側のキャンセルではトークンを消さない
			if ctx.Err() != nil {
				return rerr
			}
			c.expire(ctx, rerr)
			return fmt.Errorf("%w: %w", ErrSessionExpired, rerr)
		}

		resp, err = c.send(ctx, req, payload, fresh.AccessToken)
		if err != nil {
			return err
		}
	}
	defer drain(resp)

	return decodeResponse(req, resp, out)
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, accessToken string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", req.Method, req.Path, err)
	}

	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if accessToken != "" {
		hreq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}

	c.log.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.Path,
		"status": resp.StatusCode,
	}).Debug("api request")

	return resp, nil
}

// refreshは保存済みrefresh tokenで新しいペアを取得して保存する
func (c *Client) refresh(ctx context.Context, refreshToken string) (tokenstore.Tokens, error) {
	if refreshToken == "" {
		return tokenstore.Tokens{}, ErrNoRefreshToken
	}

	req := Post(PathRefresh, dto.RefreshRequest{RefreshToken: refreshToken})
	payload, err := encodeBody(req.Body)
	if err != nil {
		return tokenstore.Tokens{}, err
	}

	resp, err := c.send(ctx, req, payload, "")
	if err != nil {
		return tokenstore.Tokens{}, err
	}
	defer drain(resp)

	var pair dto.TokenPair
	if err := decodeResponse(req, resp, &pair); err != nil {
		return tokenstore.Tokens{}, err
	}
	if pair.AccessToken == "" {
		return tokenstore.Tokens{}, errors.New("api: refresh returned no access token")
	}

	next := tokenstore.Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = refreshToken
	}

	if err := c.SetTokens(ctx, next); err != nil {
		return tokenstore.Tokens{}, err
	}
	return next, nil
}

// refresh失敗: トークン破棄→ログイン画面
func (c *Client) expire(ctx context.Context, cause error) {
	c.log.WithError(cause).Warn("token refresh failed, signing out")

	if err := c.ClearTokens(ctx); err != nil {
		c.log.WithError(err).Error("clear tokens failed")
	}
	if c.nav != nil {
		c.nav.Navigate(nav.RouteLogin)
	}
}

func (c *Client) notify(t tokenstore.Tokens) {
	c.mu.RLock()
	ls := make([]func(tokenstore.Tokens), len(c.listeners))
	copy(ls, c.listeners)
	c.mu.RUnlock()

	for _, fn := range ls {
		fn(t)
	}
}

// 認証系のAPIは401でもrefreshしない
func refreshable(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch path {
	case PathLogin, PathRegister, PathRefresh:
		return false
	}
	return true
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func decodeResponse(req Request, resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(req, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// backendのmessage → error → ステータス文言の順で使う
func newAPIError(req Request, resp *http.Response) error {
	ae := &APIError{
		Status: resp.StatusCode,
		Method: req.Method,
		Path:   req.Path,
	}

	data, _ := io.ReadAll(resp.Body)

	var body dto.ErrorResponse
	if json.Unmarshal(data, &body) == nil {
		ae.Message = body.Message
		if ae.Message == "" {
			ae.Message = body.Error
		}
	}
	if ae.Message == "" {
		ae.Message = statusMessage(resp.StatusCode)
	}
	return ae
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
