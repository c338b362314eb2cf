package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/db"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

const (
	memberCount  = 200
	trainerCount = 12

	// share of bookable hours that get an appointment
	bookingRate = 0.35
	pastDays    = 7
	futureDays  = 21
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("cmd", "seed")
	logger.Info("seed starting")

	if cfg.PostgresDSN == "" {
		logger.Error("POSTGRES_DSN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{ApplicationName: "seed"}, logger)
	cancel()
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "password123"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("hash password", "error", err)
		os.Exit(1)
	}

	bg := context.Background()
	memberIDs, err := seedMembers(bg, pool, hash, memberCount, logger)
	if err != nil {
		logger.Error("seed members", "error", err)
		os.Exit(1)
	}
	trainerIDs, err := seedTrainers(bg, pool, trainerCount, logger)
	if err != nil {
		logger.Error("seed trainers", "error", err)
		os.Exit(1)
	}
	if err := seedAppointments(bg, pool, cfg, memberIDs, trainerIDs, logger); err != nil {
		logger.Error("seed appointments", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete", "demo_login", "john.garcia@example.com")
}

// seedMembers inserts the demo members first so the demo login works, then
// count fake members. Every member shares the same password hash.
func seedMembers(ctx context.Context, pool *pgxpool.Pool, hash string, count int, logger *logging.Logger) ([]int64, error) {
	logger.Info("seeding members", "count", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	insert := func(name, email string) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO members (name, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			ON CONFLICT (lower(email)) DO UPDATE SET updated_at = now()
			RETURNING id
		`, name, email, hash).Scan(&id)
		return id, err
	}

	ids := make([]int64, 0, count+2)
	for _, m := range auth.DemoMembers(hash) {
		id, err := insert(m.Name, m.Email)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	for i := 0; i < count; i++ {
		id, err := insert(gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	logger.Info("members seeded", "total", len(ids))
	return ids, nil
}

func seedTrainers(ctx context.Context, pool *pgxpool.Pool, count int, logger *logging.Logger) ([]int64, error) {
	logger.Info("seeding trainers", "count", count)

	specialties := []string{
		"Strength",
		"Conditioning",
		"Mobility",
		"Boxing",
		"Pilates",
		"Rehabilitation",
		"Weight Loss",
		"Powerlifting",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO trainers (name, specialty, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			RETURNING id
		`, gofakeit.Name(), gofakeit.RandomString(specialties)).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	logger.Info("trainers seeded")
	return ids, nil
}

// seedAppointments books a share of every bookable hour from a week ago to
// three weeks ahead. Past bookings stay SCHEDULED so the completion worker
// has work; some of them carry a check-in.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, members, trainers []int64, logger *logging.Logger) error {
	today := appointment.DateOf(time.Now().In(cfg.Location))
	hours := cfg.TimeSlots()
	now := time.Now()

	total := 0
	for offset := -pastDays; offset <= futureDays; offset++ {
		day := today.AddDays(offset)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for _, hour := range hours {
			if gofakeit.Float64Range(0, 1) >= bookingRate {
				continue
			}
			at := day.At(hour, cfg.Location)

			var checkIn *time.Time
			if at.Before(now) && gofakeit.Bool() {
				t := at.Add(-time.Duration(gofakeit.Number(0, 10)) * time.Minute)
				checkIn = &t
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (appointment_time, check_in_time, status, member_id, pt_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, at, checkIn, string(appointment.StatusScheduled),
				members[gofakeit.Number(0, len(members)-1)],
				trainers[gofakeit.Number(0, len(trainers)-1)],
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
			total++
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	logger.Info("appointments seeded", "total", total, "from", today.AddDays(-pastDays).Key(), "to", today.AddDays(futureDays).Key())
	return nil
}
