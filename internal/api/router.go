package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/checkin"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Auth         *auth.Service
	CheckIn      *checkin.Service
	PageOptions  schedule.Options
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Gatherer     prometheus.Gatherer
	Logger       *logging.Logger
	DataSource   string
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.DataSource, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Auth))

		r.Post("/auth/login", loginHandler(cfg.Auth))
		r.Get("/nav", navHandler())

		// the page runs its own guard and answers with a redirect
		r.Get("/schedule", scheduleHandler(cfg.Appointments, cfg.PageOptions, logger))
		r.Get("/schedule/{date}/{hour}", slotDetailsHandler(cfg.Appointments, cfg.PageOptions, logger))

		r.Group(func(r chi.Router) {
			r.Use(RequireMember)
			r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
			r.Post("/check-in", checkInHandler(cfg.CheckIn))
			r.Get("/check-in/history", checkInHistoryHandler(cfg.CheckIn))
		})
	})

	return r
}
