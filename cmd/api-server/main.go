package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/gym-member-schedule/internal/api"
	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/checkin"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/db"
	"github.com/hackgods/gym-member-schedule/internal/metrics"
	redisclient "github.com/hackgods/gym-member-schedule/internal/redis"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("cmd", "api-server")
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort, "data_source", cfg.DataSource)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, cfg, logger); err != nil {
		logger.Error("api-server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("api-server shut down cleanly")
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	var pgPool *pgxpool.Pool
	if cfg.DataSource == config.DataSourcePostgres {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{MaxConns: int32(2 * cfg.DaysToShow)}, logger)
		cancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		pgPool = pool
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		client, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("error closing redis", "error", err)
			}
		}()
		rdb = client
		logger.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewScheduleMetrics(reg)

	repo := newRepository(cfg, pgPool)

	var dayCache appointment.DayCache
	var locker redisclient.Locker
	var history checkin.History
	if rdb != nil {
		dayCache = redisclient.NewDayCache(rdb, cfg.CacheTTL, cfg.Location)
		locker = redisclient.NewRedisMemberLocker(rdb, cfg.LockTTL)
		history = checkin.NewRedisHistory(rdb)
	}

	appointments := appointment.NewService(repo, dayCache, cfg, m, logger)

	members, err := newMemberStore(cfg, pgPool)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}
	authSvc := auth.NewService(members, auth.NewTokenIssuer(secret, cfg.TokenTTL), logger)

	checkIns := checkin.NewService(cfg.CheckInLocations, locker, history, appointments, cfg.CheckInCooldown, m, logger)

	handler := api.NewRouter(api.RouterConfig{
		Appointments: appointments,
		Auth:         authSvc,
		CheckIn:      checkIns,
		PageOptions:  schedule.OptionsFromConfig(cfg),
		PgPool:       pgPool,
		Redis:        rdb,
		Gatherer:     reg,
		Logger:       logger,
		DataSource:   cfg.DataSource,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRepository(cfg config.Config, pgPool *pgxpool.Pool) appointment.Repository {
	switch cfg.DataSource {
	case config.DataSourcePostgres:
		return appointment.NewPgRepository(pgPool, cfg.Location)
	case config.DataSourceRemote:
		return appointment.NewHTTPRepository(cfg.RemoteBaseURL, cfg.RemoteToken, cfg.Location)
	default:
		return appointment.NewMemoryRepository(appointment.MockAppointments(cfg.Location), cfg.SimulatedLatency)
	}
}

// newMemberStore reads members from Postgres when it is the data source and
// otherwise serves the demo directory with DEMO_PASSWORD.
func newMemberStore(cfg config.Config, pgPool *pgxpool.Pool) (auth.MemberStore, error) {
	if pgPool != nil {
		return auth.NewPgMemberStore(pgPool), nil
	}
	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "password123"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return auth.NewMemoryMemberStore(auth.DemoMembers(hash)...), nil
}
