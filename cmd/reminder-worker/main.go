package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/config"
	"github.com/careflow/appointment-engine/internal/db"
	"github.com/careflow/appointment-engine/internal/logging"
	redisclient "github.com/careflow/appointment-engine/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.Env)
	defer log.Sync()

	log.Info("reminder-worker starting",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.ReminderInterval),
		zap.Duration("lead", cfg.ReminderLead))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("connected to Redis")

	repo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewBookingLocker(rdb, cfg.LockTTL)
	ledger := appointment.NewLedger(repo, locker, log)

	// Run once at startup, then on every tick.
	runOnce(rootCtx, ledger, cfg.ReminderLead, log)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, ledger, cfg.ReminderLead, log)
		}
	}
}

func runOnce(ctx context.Context, ledger *appointment.Ledger, lead time.Duration, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	sent, err := ledger.SendDueReminders(runCtx, time.Now().UTC(), lead)
	if err != nil {
		log.Error("reminder run failed", zap.Error(err))
		return
	}
	log.Info("reminder run complete",
		zap.Int("sent", sent),
		zap.Duration("took", time.Since(start)))
}
