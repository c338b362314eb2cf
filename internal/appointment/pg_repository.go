package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is the part of *pgxpool.Pool the repository needs.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool pgxQuerier
	loc  *time.Location
}

// NewPgRepository reads appointments whose wall clock is interpreted in loc.
func NewPgRepository(pool pgxQuerier, loc *time.Location) *PgRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PgRepository{pool: pool, loc: loc}
}

func (r *PgRepository) Source() string { return "postgres" }

const selectAppointment = `
	SELECT a.id, a.appointment_time, a.check_in_time, a.status,
	       a.member_id, m.name, a.pt_id, t.name
`

// Helpers

func (r *PgRepository) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	var checkIn *time.Time

	err := row.Scan(
		&a.ID,
		&a.AppointmentTime,
		&checkIn,
		&status,
		&a.MemberID,
		&a.MemberName,
		&a.PTID,
		&a.PTName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Status = Status(status)
	a.AppointmentTime = a.AppointmentTime.In(r.loc)
	if checkIn != nil {
		t := checkIn.In(r.loc)
		a.CheckInTime = &t
	}
	return &a, nil
}

func (r *PgRepository) collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Interface methods

func (r *PgRepository) ListByDate(ctx context.Context, day Date) ([]Appointment, error) {
	from := day.Midnight(r.loc)
	to := day.AddDays(1).Midnight(r.loc)

	rows, err := r.pool.Query(ctx, selectAppointment+`
		FROM appointments a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
		WHERE a.appointment_time >= $1
		  AND a.appointment_time < $2
		ORDER BY a.appointment_time, a.id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", day, err)
	}
	return r.collect(rows)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, selectAppointment+`
		FROM appointments a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
		WHERE a.id = $1
	`, id)
	return r.scanAppointment(row)
}

func (r *PgRepository) FindMemberAppointmentAt(ctx context.Context, memberID int64, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, selectAppointment+`
		FROM appointments a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
		WHERE a.member_id = $1
		  AND a.appointment_time = $2
		  AND a.status = 'SCHEDULED'
		ORDER BY a.id
		LIMIT 1
	`, memberID, at)
	return r.scanAppointment(row)
}

func (r *PgRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE appointments
			SET check_in_time = $2,
			    updated_at = now()
			WHERE id = $1
			RETURNING *
		)
	`+selectAppointment+`
		FROM updated a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
	`, id, at)
	return r.scanAppointment(row)
}

func (r *PgRepository) FindPastScheduled(ctx context.Context, before time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, selectAppointment+`
		FROM appointments a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
		WHERE a.status = 'SCHEDULED'
		  AND a.appointment_time < $1
		ORDER BY a.appointment_time, a.id
	`, before)
	if err != nil {
		return nil, fmt.Errorf("find past scheduled: %w", err)
	}
	return r.collect(rows)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE appointments
			SET status = $2,
			    updated_at = now()
			WHERE id = $1
			  AND status = $3
			RETURNING *
		)
	`+selectAppointment+`
		FROM updated a
		JOIN members m ON m.id = a.member_id
		JOIN trainers t ON t.id = a.pt_id
	`, id, string(to), string(from))
	return r.scanAppointment(row)
}
