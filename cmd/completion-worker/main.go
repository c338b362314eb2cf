package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/db"
	"github.com/hackgods/gym-member-schedule/internal/metrics"
	redisclient "github.com/hackgods/gym-member-schedule/internal/redis"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("cmd", "completion-worker")
	logger.Info("completion-worker starting up", "env", cfg.Env, "interval", cfg.WorkerInterval, "grace", cfg.CompletionGrace)

	if cfg.DataSource != config.DataSourcePostgres {
		logger.Error("completion-worker needs DATA_SOURCE=postgres", "data_source", cfg.DataSource)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 2, ApplicationName: "completion-worker"}, logger)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	// the API caches whole days; settled days must be dropped from that cache
	var dayCache appointment.DayCache
	if cfg.RedisEnabled() {
		var rdb *redis.Client
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Error("redis connection error", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", "error", err)
			}
		}()
		dayCache = redisclient.NewDayCache(rdb, cfg.CacheTTL, cfg.Location)
	}

	m := metrics.NewScheduleMetrics(prometheus.DefaultRegisterer)
	repo := appointment.NewPgRepository(pgPool, cfg.Location)
	svc := appointment.NewService(repo, dayCache, cfg, m, logger)

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping completion worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger *logging.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	completed, cancelled, err := svc.SettlePastAppointments(runCtx)
	if err != nil {
		logger.Error("completion run error", "error", err)
		return
	}
	logger.Info("completion run complete",
		"completed", completed,
		"no_shows", cancelled,
		"duration", time.Since(start),
	)
}
