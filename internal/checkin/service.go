package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/metrics"
	redisclient "github.com/hackgods/gym-member-schedule/internal/redis"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

var (
	ErrUnknownLocation   = errors.New("unknown check-in code")
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrCheckInInProgress = errors.New("check-in already in progress")
)

// AppointmentMarker stamps the member's current appointment, if any.
// *appointment.Service satisfies it.
type AppointmentMarker interface {
	MarkCheckedIn(ctx context.Context, memberID int64, at time.Time) (*appointment.Appointment, error)
}

type Service struct {
	locations    map[string]string
	locker       redisclient.Locker
	history      History
	appointments AppointmentMarker
	cooldown     time.Duration
	metrics      *metrics.ScheduleMetrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewService wires check-in. appointments and m may be nil.
func NewService(
	locations map[string]string,
	locker redisclient.Locker,
	history History,
	appointments AppointmentMarker,
	cooldown time.Duration,
	m *metrics.ScheduleMetrics,
	logger *logging.Logger,
) *Service {
	if locker == nil {
		locker = redisclient.NewLocalLocker()
	}
	if history == nil {
		history = NewMemoryHistory()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		locations:    locations,
		locker:       locker,
		history:      history,
		appointments: appointments,
		cooldown:     cooldown,
		metrics:      m,
		logger:       logger.With("component", "checkin"),
		now:          time.Now,
	}
}

// CheckIn records a scan of code by memberID. A second scan inside the
// cooldown is rejected. When the member has an appointment starting this
// hour it is marked as checked in.
func (s *Service) CheckIn(ctx context.Context, memberID int64, code string) (*Record, error) {
	code = strings.TrimSpace(code)
	location, ok := s.locations[code]
	if !ok {
		s.metrics.ObserveCheckIn("unknown_location")
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, code)
	}

	var rec Record
	err := s.locker.WithMemberLock(ctx, memberID, func(ctx context.Context) error {
		now := s.now()

		recent, err := s.history.List(ctx, memberID, 1)
		if err != nil {
			return err
		}
		if len(recent) > 0 && now.Sub(recent[0].Timestamp) < s.cooldown {
			return ErrAlreadyCheckedIn
		}

		rec = Record{
			MemberID:  memberID,
			Timestamp: now,
			Code:      code,
			Location:  location,
		}

		if s.appointments != nil {
			appt, err := s.appointments.MarkCheckedIn(ctx, memberID, now)
			switch {
			case err == nil:
				rec.AppointmentID = &appt.ID
			case errors.Is(err, appointment.ErrAppointmentNotFound), errors.Is(err, appointment.ErrReadOnlySource):
				// walk-in
			default:
				s.logger.Warn("failed to mark appointment checked in", "member_id", memberID, "error", err)
			}
		}

		return s.history.Append(ctx, rec)
	})
	if err != nil {
		status := "error"
		switch {
		case errors.Is(err, ErrAlreadyCheckedIn):
			status = "duplicate"
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			status = "busy"
			err = ErrCheckInInProgress
		}
		s.metrics.ObserveCheckIn(status)
		return nil, err
	}

	s.metrics.ObserveCheckIn("ok")
	s.logger.Info("member checked in", "member_id", memberID, "location", location, "has_appointment", rec.AppointmentID != nil)
	return &rec, nil
}

// History returns the member's check-ins, newest first.
func (s *Service) History(ctx context.Context, memberID int64, limit int) ([]Record, error) {
	return s.history.List(ctx, memberID, limit)
}
