// Package app はクライアントの各ストアを組み立てて寿命を管理する。
// 起動時に初期化し、ログアウトでストアを捨てる。
package app

import (
	"context"
	"fmt"

	"storefront/internal/client/api"
	"storefront/internal/client/cart"
	"storefront/internal/client/catalog"
	"storefront/internal/client/checkout"
	"storefront/internal/client/nav"
	"storefront/internal/client/orders"
	"storefront/internal/client/session"
	"storefront/internal/client/settings"
	"storefront/internal/client/tokenstore"
	"storefront/internal/client/wishlist"
	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Log      *logrus.Logger
	Router   *nav.Router
	API      *api.Client
	Session  *session.Session
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Orders   *orders.Client
	Settings *settings.Client
	Catalog  *catalog.Client

	closers []func() error
}

// New は設定からトークン保存先を選び、全ストアを組み立てる。
// optsはAPIクライアントにそのまま渡す（テストのHTTPクライアント差し替えなど）。
func New(cfg config.ClientConfig, log *logrus.Logger, opts ...api.Option) (*App, error) {
	a := &App{Log: log}

	tokens, err := a.tokenStore(cfg)
	if err != nil {
		return nil, err
	}

	a.Router = nav.NewRouter()
	base := []api.Option{api.WithLogger(log), api.WithNavigator(a.Router)}
	a.API = api.New(cfg.APIBaseURL, tokens, append(base, opts...)...)

	a.Session = session.New(a.API, log)
	a.Router.SetGate(a.Session.Gate)

	a.Cart = cart.New(a.API, log)
	a.Wishlist = wishlist.New(a.API, log)
	a.Orders = orders.New(a.API)
	a.Settings = settings.New(a.API)
	a.Catalog = catalog.New(a.API)

	// トークンが消えたら（ログアウト/refresh失敗）ユーザーのデータを捨てる
	a.API.Subscribe(func(t tokenstore.Tokens) {
		if t.AccessToken == "" {
			a.Cart.Reset()
			a.Wishlist.Reset()
		}
	})

	return a, nil
}

func (a *App) tokenStore(cfg config.ClientConfig) (tokenstore.Store, error) {
	switch cfg.TokenStore {
	case "", config.TokenStoreMemory:
		return tokenstore.NewMemory(), nil
	case config.TokenStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		a.closers = append(a.closers, rdb.Close)
		return tokenstore.NewRedis(rdb, cfg.TokenProfile, cfg.RedisTokenTTL), nil
	}
	return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}

// Start は保存済みトークンからセッションを戻し、ログイン済みならカートとウィッシュリストを読む
func (a *App) Start(ctx context.Context) error {
	id, err := a.Session.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if id == nil {
		a.Log.Info("started without session")
		return nil
	}

	a.Log.WithFields(logrus.Fields{"user_id": id.ID, "role": id.Role}).Info("session restored")
	return a.preload(ctx)
}

func (a *App) Login(ctx context.Context, email, password string) (session.Identity, error) {
	id, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}

	if err := a.preload(ctx); err != nil {
		a.Log.WithError(err).Warn("preload after login failed")
	}
	a.Router.Navigate(nav.RouteHome)
	return id, nil
}

// Logout はトークンを消し（購読でストアも空になる）、ログイン画面へ
func (a *App) Logout(ctx context.Context) error {
	err := a.Session.Logout(ctx)
	a.Cart.Reset()
	a.Wishlist.Reset()
	a.Router.Navigate(nav.RouteLogin)
	return err
}

// NewCheckout はチェックアウトを住所ステップから始める
func (a *App) NewCheckout() *checkout.Controller {
	return checkout.New(a.Orders, a.Cart, a.Router, a.Log)
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// カートとウィッシュリストは独立しているので並行に読む
func (a *App) preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.Cart.Get(ctx)
		return err
	})
	g.Go(func() error {
		_, err := a.Wishlist.Load(ctx)
		return err
	})
	return g.Wait()
}
