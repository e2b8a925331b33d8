// Package server は開発用APIサーバー（echo）を組み立てる。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/memory"
	"storefront/internal/middleware"
	"storefront/internal/seed"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// New はusecaseとhandlerを作ってルートを登録したechoを返す
func New(cfg config.Config, log *logrus.Logger, r Repos) *echo.Echo {
	//usecaseに渡す部品
	idGen := usecase.UUIDGenerator{}
	clock := usecase.SystemClock{}
	hasher := usecase.NewBcryptPasswordHasher(cfg.BcryptCost)
	issuer := usecase.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	authUC := usecase.NewAuthUsecase(
		r.Users, r.RefreshTokens,
		validator.NewAuthValidator(r.Users),
		hasher, usecase.BcryptPasswordVerifier{}, issuer,
		idGen, clock, cfg.RefreshTokenTTL, log,
	)
	productUC := usecase.NewProductUsecase(r.Products)
	cartUC := usecase.NewCartUsecase(r.Carts, r.Products, idGen)
	wishlistUC := usecase.NewWishlistUsecase(r.Wishlists, r.Products, idGen)
	orderUC := usecase.NewOrderUsecase(r.Tx, r.Orders, idGen, clock, log)
	settingsUC := usecase.NewSettingsUsecase(r.Tx, r.Settings, clock)
	auditUC := usecase.NewAuditLogUsecase(r.AuditLogs)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	handler.NewAuthHandler(authUC).RegisterRoutes(e, cfg, r.Users)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg, r.Users)
	handler.NewWishlistHandler(wishlistUC).RegisterRoutes(e, cfg, r.Users)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg, r.Users)
	handler.NewAdminHandler(orderUC, settingsUC, auditUC).RegisterRoutes(e, cfg, r.Users)
	handler.NewVendorHandler(orderUC).RegisterRoutes(e, cfg, r.Users)

	return e
}

// Seed はデモデータを入れる
func Seed(ctx context.Context, cfg config.Config, r Repos) (seed.Fixtures, error) {
	return seed.New(r.Users, r.Products, usecase.NewBcryptPasswordHasher(cfg.BcryptCost), usecase.UUIDGenerator{}).Run(ctx)
}

// NewInMemory はインメモリストアにデモデータを入れたサーバー（テスト・ローカル用）
func NewInMemory(ctx context.Context, cfg config.Config, log *logrus.Logger) (*echo.Echo, seed.Fixtures, error) {
	r := MemoryRepos(memory.New())
	f, err := Seed(ctx, cfg, r)
	if err != nil {
		return nil, seed.Fixtures{}, err
	}
	return New(cfg, log, r), f, nil
}

// Start はctxが終わるまでサーバーを動かす
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	}
}
