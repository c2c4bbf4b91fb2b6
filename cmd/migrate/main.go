package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/config"
	"github.com/careflow/appointment-engine/internal/db"
	"github.com/careflow/appointment-engine/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.Env)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := db.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		log.Fatal("migrator init failed", zap.Error(err))
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	v, err := migrator.Version(ctx)
	if err != nil {
		log.Fatal("read migration version", zap.Error(err))
	}
	log.Info("migrations applied", zap.Int64("version", v))
}
