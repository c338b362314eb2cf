package appointment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInvalidDate         = errors.New("invalid calendar date")

	// ErrDataAccess wraps every failure that crosses the data service boundary.
	ErrDataAccess = errors.New("appointment data unavailable")
)

// Repository is the data source behind the schedule. Implementations return
// raw records; IsOwnAppointment is filled in by the Service.
type Repository interface {
	// ListByDate returns every appointment whose wall-clock date is day,
	// ordered by time then id.
	ListByDate(ctx context.Context, day Date) ([]Appointment, error)

	GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error)

	// FindMemberAppointmentAt returns the member's SCHEDULED appointment
	// starting at the given hour, used by check-in.
	FindMemberAppointmentAt(ctx context.Context, memberID int64, at time.Time) (*Appointment, error)
	MarkCheckedIn(ctx context.Context, id int64, at time.Time) (*Appointment, error)

	// Completion worker
	FindPastScheduled(ctx context.Context, before time.Time) ([]Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error)
}

// SourceName is reported in metrics and logs.
type SourceName interface {
	Source() string
}
