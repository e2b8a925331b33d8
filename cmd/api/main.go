package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/memory"
	"storefront/internal/logger"
	"storefront/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DATABASE_URLがあればPostgreSQL、なければインメモリ
	var repos server.Repos
	if cfg.DatabaseURL != "" {
		gormDB, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("connect db")
		}
		if err := db.AutoMigrate(gormDB); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		repos = server.GormRepos(gormDB)
		log.Info("using postgres")
	} else {
		repos = server.MemoryRepos(memory.New())
		log.Info("using in-memory store")
	}

	if cfg.SeedDemo {
		f, err := server.Seed(ctx, cfg, repos)
		if err != nil {
			log.WithError(err).Fatal("seed")
		}
		log.WithFields(logrus.Fields{
			"customer": f.Customer.Email,
			"vendors":  []string{f.VendorA.Email, f.VendorB.Email},
			"admin":    f.Admin.Email,
		}).Info("demo data seeded")
	}

	e := server.New(cfg, log, repos)

	log.WithField("addr", cfg.Addr()).Info("api server starting")
	if err := server.Start(ctx, e, cfg.Addr()); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("api server stopped")
}
