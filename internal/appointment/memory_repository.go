package appointment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Sleeper waits for d or until ctx is done. Injected so tests never sleep.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MemoryRepository serves a fixed appointment list with an artificial
// latency standing in for the network.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments []Appointment
	latency      time.Duration
	sleep        Sleeper
}

func NewMemoryRepository(seed []Appointment, latency time.Duration) *MemoryRepository {
	cp := make([]Appointment, len(seed))
	copy(cp, seed)
	return &MemoryRepository{
		appointments: cp,
		latency:      latency,
		sleep:        Sleep,
	}
}

// WithSleeper swaps the delay implementation.
func (r *MemoryRepository) WithSleeper(s Sleeper) *MemoryRepository {
	r.sleep = s
	return r
}

func (r *MemoryRepository) Source() string { return "memory" }

func (r *MemoryRepository) wait(ctx context.Context) error {
	return r.sleep(ctx, r.latency)
}

func (r *MemoryRepository) ListByDate(ctx context.Context, day Date) ([]Appointment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.appointments {
		if a.Date() == day {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *MemoryRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.appointments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) FindMemberAppointmentAt(ctx context.Context, memberID int64, at time.Time) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.appointments {
		if a.MemberID == memberID && a.Status == StatusScheduled && a.AppointmentTime.Equal(at) {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.appointments {
		if r.appointments[i].ID == id {
			t := at
			r.appointments[i].CheckInTime = &t
			updated := r.appointments[i]
			return &updated, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) FindPastScheduled(ctx context.Context, before time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.appointments {
		if a.Status == StatusScheduled && a.AppointmentTime.Before(before) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.appointments {
		if r.appointments[i].ID == id && r.appointments[i].Status == from {
			r.appointments[i].Status = to
			updated := r.appointments[i]
			return &updated, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func sortAppointments(list []Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].AppointmentTime.Equal(list[j].AppointmentTime) {
			return list[i].AppointmentTime.Before(list[j].AppointmentTime)
		}
		return list[i].ID < list[j].ID
	})
}

// MockAppointments is the demo week: two bookings of member 20 and three
// other members' bookings that only mark hours as taken.
func MockAppointments(loc *time.Location) []Appointment {
	if loc == nil {
		loc = time.UTC
	}
	at := func(day, hour int) time.Time {
		return time.Date(2024, time.November, day, hour, 0, 0, 0, loc)
	}
	return []Appointment{
		{ID: 76, AppointmentTime: at(16, 11), Status: StatusScheduled, MemberID: 20, MemberName: "John Garcia", PTID: 4, PTName: "Personal Trainer"},
		{ID: 77, AppointmentTime: at(18, 13), Status: StatusScheduled, MemberID: 20, MemberName: "John Garcia", PTID: 4, PTName: "Personal Trainer"},
		{ID: 78, AppointmentTime: at(16, 9), Status: StatusScheduled, MemberID: 21, MemberName: "Maria Lopez", PTID: 5, PTName: "Strength Coach"},
		{ID: 79, AppointmentTime: at(17, 14), Status: StatusScheduled, MemberID: 22, MemberName: "Ahmet Yilmaz", PTID: 4, PTName: "Personal Trainer"},
		{ID: 80, AppointmentTime: at(19, 10), Status: StatusScheduled, MemberID: 23, MemberName: "Elif Demir", PTID: 5, PTName: "Strength Coach"},
	}
}
