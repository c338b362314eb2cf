package appointment

import (
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Member struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

type Trainer struct {
	ID   int64
	Name string
}

// Appointment is one booked hour with a personal trainer. AppointmentTime
// carries the gym's location and always sits on the hour.
type Appointment struct {
	ID              int64      `json:"id"`
	AppointmentTime time.Time  `json:"appointmentTime"`
	CheckInTime     *time.Time `json:"checkInTime"`
	Status          Status     `json:"status"`
	MemberID        int64      `json:"memberId"`
	MemberName      string     `json:"memberName,omitempty"`
	PTID            int64      `json:"ptId"`
	PTName          string     `json:"ptName,omitempty"`

	// IsOwnAppointment is computed per query for the signed-in member.
	IsOwnAppointment bool `json:"isOwnAppointment"`
}

func (a Appointment) Date() Date {
	return DateOf(a.AppointmentTime)
}

func (a Appointment) Hour() int {
	return a.AppointmentTime.Hour()
}

// Masked strips everything identifying another member's booking; only the
// fact that the hour is taken survives.
func (a Appointment) Masked() Appointment {
	if a.IsOwnAppointment {
		return a
	}
	return Appointment{
		ID:              a.ID,
		AppointmentTime: a.AppointmentTime,
		Status:          a.Status,
	}
}

// Redacted is the wire form of a booking for a member other than its
// owner. The owner stays as an id so any consumer can recompute
// IsOwnAppointment for its own member; the name is dropped.
func (a Appointment) Redacted() Appointment {
	if a.IsOwnAppointment {
		return a
	}
	a.MemberName = ""
	return a
}

// ForMember returns a copy with IsOwnAppointment set for memberID.
func (a Appointment) ForMember(memberID int64) Appointment {
	a.IsOwnAppointment = memberID != 0 && a.MemberID == memberID
	return a
}
