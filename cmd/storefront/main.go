package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/client/app"
	"storefront/internal/client/nav"
	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("build app")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("close app")
		}
	}()

	if err := a.Start(ctx); err != nil {
		log.WithError(err).Error("start app")
		return
	}
	if id := a.Session.Identity(); id != nil {
		log.WithFields(logrus.Fields{"user_id": id.ID, "role": id.Role}).Info("signed in")
	} else {
		a.Router.Navigate(nav.RouteLogin)
	}
	log.WithField("route", a.Router.Current()).Info("storefront ready")

	<-ctx.Done()
	log.Info("storefront stopped")
}
