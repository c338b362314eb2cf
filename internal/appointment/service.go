package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/metrics"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

// DayCache stores raw (member independent) appointment lists per day.
type DayCache interface {
	Get(ctx context.Context, day Date) ([]Appointment, bool, error)
	Set(ctx context.Context, day Date, list []Appointment) error
	Invalidate(ctx context.Context, days ...Date) error
}

type Service struct {
	repo    Repository
	cache   DayCache
	cfg     config.Config
	metrics *metrics.ScheduleMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewService wires the schedule data service. cache and m may be nil.
func NewService(repo Repository, cache DayCache, cfg config.Config, m *metrics.ScheduleMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "appointment_service"),
		now:     time.Now,
	}
}

func (s *Service) source() string {
	if n, ok := s.repo.(SourceName); ok {
		return n.Source()
	}
	return "unknown"
}

// GetAppointments returns every appointment on day, whoever booked it, with
// IsOwnAppointment set for memberID. Any failure comes back wrapped in
// ErrDataAccess.
func (s *Service) GetAppointments(ctx context.Context, memberID int64, day Date) ([]Appointment, error) {
	if day.IsZero() {
		return nil, fmt.Errorf("%w: %w", ErrDataAccess, ErrInvalidDate)
	}

	start := time.Now()
	raw, err := s.loadDay(ctx, day)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveFetch(s.source(), "error", elapsed)
		s.logger.Warn("appointment fetch failed", "date", day.Key(), "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrDataAccess, day, err)
	}
	s.metrics.ObserveFetch(s.source(), "ok", elapsed)

	out := make([]Appointment, 0, len(raw))
	for _, a := range raw {
		// a remote or cached source may hand back neighbours; the contract is this day only
		if a.Date() != day {
			continue
		}
		out = append(out, a.ForMember(memberID))
	}
	return out, nil
}

// GetAppointmentsForDates fetches every day concurrently and returns them
// keyed by YYYY-MM-DD. Either all days load or the call fails.
func (s *Service) GetAppointmentsForDates(ctx context.Context, memberID int64, days ...Date) (map[string][]Appointment, error) {
	result := make(map[string][]Appointment, len(days))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, day := range days {
		g.Go(func() error {
			list, err := s.GetAppointments(gctx, memberID, day)
			if err != nil {
				return err
			}
			mu.Lock()
			result[day.Key()] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) loadDay(ctx context.Context, day Date) ([]Appointment, error) {
	if s.cache != nil {
		list, ok, err := s.cache.Get(ctx, day)
		if err != nil {
			s.logger.Warn("day cache read failed", "date", day.Key(), "error", err)
		} else {
			s.metrics.ObserveCache(ok)
			if ok {
				return list, nil
			}
		}
	}

	list, err := s.fetchWithRetry(ctx, day)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, day, list); err != nil {
			s.logger.Warn("day cache write failed", "date", day.Key(), "error", err)
		}
	}
	return list, nil
}

func (s *Service) fetchWithRetry(ctx context.Context, day Date) ([]Appointment, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryBackoff
	b.MaxInterval = 8 * s.cfg.RetryBackoff

	attempt := 0
	return backoff.Retry(ctx, func() ([]Appointment, error) {
		attempt++
		if attempt > 1 {
			s.metrics.ObserveRetry()
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()

		list, err := s.repo.ListByDate(callCtx, day)
		if err != nil {
			if errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrReadOnlySource) {
				return nil, backoff.Permanent(err)
			}
			s.logger.Debug("appointment fetch attempt failed", "date", day.Key(), "attempt", attempt, "error", err)
			return nil, err
		}
		return list, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(s.cfg.RetryAttempts)))
}

// MarkCheckedIn stamps the member's appointment starting at the hour of at,
// if there is one. It returns ErrAppointmentNotFound for a walk-in.
func (s *Service) MarkCheckedIn(ctx context.Context, memberID int64, at time.Time) (*Appointment, error) {
	local := at.In(s.cfg.Location)
	slot := DateOf(local).At(local.Hour(), s.cfg.Location)

	appt, err := s.repo.FindMemberAppointmentAt(ctx, memberID, slot)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.MarkCheckedIn(ctx, appt.ID, local)
	if err != nil {
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	s.invalidate(ctx, updated.Date())

	return updated, nil
}

// SettlePastAppointments is intended to be called by the worker periodically.
// SCHEDULED appointments older than the grace period become COMPLETED when
// the member checked in and CANCELLED otherwise.
func (s *Service) SettlePastAppointments(ctx context.Context) (completed, cancelled int, err error) {
	cutoff := s.now().Add(-s.cfg.CompletionGrace)
	candidates, err := s.repo.FindPastScheduled(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("find past scheduled appointments: %w", err)
	}

	touched := make(map[Date]struct{})
	for _, appt := range candidates {
		to := StatusCancelled
		if appt.CheckInTime != nil {
			to = StatusCompleted
		}

		updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, to)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.logger.Error("failed to settle appointment", "appointment_id", appt.ID, "error", err)
			}
			continue
		}

		touched[updated.Date()] = struct{}{}
		s.metrics.ObserveSettled(string(to))
		s.logger.Info("appointment settled", "appointment_id", appt.ID, "status", to)
		if to == StatusCompleted {
			completed++
		} else {
			cancelled++
		}
	}

	days := make([]Date, 0, len(touched))
	for d := range touched {
		days = append(days, d)
	}
	s.invalidate(ctx, days...)

	return completed, cancelled, nil
}

func (s *Service) invalidate(ctx context.Context, days ...Date) {
	if s.cache == nil || len(days) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, days...); err != nil {
		s.logger.Warn("day cache invalidation failed", "error", err)
	}
}
