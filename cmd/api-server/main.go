package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/api"
	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/booking"
	"github.com/careflow/appointment-engine/internal/config"
	"github.com/careflow/appointment-engine/internal/db"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/leave"
	"github.com/careflow/appointment-engine/internal/logging"
	redisclient "github.com/careflow/appointment-engine/internal/redis"
	"github.com/careflow/appointment-engine/internal/schedule"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.Env)
	defer log.Sync()

	log.Info("api-server starting",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("demo_mode", cfg.DemoMode))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pgPool *pgxpool.Pool
		rdb    *redis.Client

		dirRepo   directory.Repository
		schedRepo schedule.Repository
		leaveRepo leave.Repository
		apptRepo  appointment.Repository
		locker    redisclient.Locker
	)

	if cfg.DemoMode {
		log.Info("demo mode: in-memory stores, no Postgres or Redis")
		dirRepo = directory.NewMemoryRepository()
		schedRepo = schedule.NewMemoryRepository()
		leaveRepo = leave.NewMemoryRepository()
		apptRepo = appointment.NewMemoryRepository()
		locker = redisclient.NewLocalBookingLocker()
	} else {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pgPool.Close()
		log.Info("connected to Postgres")

		migrator, err := db.NewMigrator(pgPool, cfg.MigrationsDir)
		if err != nil {
			log.Fatal("migrator init failed", zap.Error(err))
		}
		if err := migrator.Up(rootCtx); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		if v, err := migrator.Version(rootCtx); err == nil {
			log.Info("migrations applied", zap.Int64("version", v))
		}
		_ = migrator.Close()

		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("connected to Redis")

		dirRepo = directory.NewPgRepository(pgPool)
		schedRepo = schedule.NewPgRepository(pgPool)
		leaveRepo = leave.NewPgRepository(pgPool)
		apptRepo = appointment.NewPgRepository(pgPool)
		locker = redisclient.NewBookingLocker(rdb, cfg.LockTTL)
	}

	dirSvc := directory.NewService(dirRepo)
	schedSvc := schedule.NewService(schedRepo, leaveRepo, apptRepo)
	leaveSvc := leave.NewService(leaveRepo, appointment.NewLeaveWarningSource(apptRepo))
	ledger := appointment.NewLedger(apptRepo, locker, log)
	orch := booking.NewOrchestrator(schedSvc, ledger, dirRepo, log)

	router := api.NewRouter(api.RouterConfig{
		Directory:    dirSvc,
		Schedules:    schedSvc,
		Leaves:       leaveSvc,
		Appointments: apptRepo,
		Bookings:     orch,
		PgPool:       pgPool,
		Redis:        rdb,
		Log:          log,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatal("server failed", zap.Error(err))
	case <-rootCtx.Done():
	}

	log.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
