package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appointmentColumns = []string{
	"id", "appointment_time", "check_in_time", "status",
	"member_id", "name", "pt_id", "name",
}

func TestPgRepositoryListByDateScansRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	istanbul := time.FixedZone("TRT", 3*60*60)
	day := NewDate(2024, time.November, 16)
	nine := time.Date(2024, time.November, 16, 6, 0, 0, 0, time.UTC) // 09:00 in Istanbul
	checkedIn := nine.Add(3 * time.Minute)

	mock.ExpectQuery("FROM appointments a").
		WithArgs(day.Midnight(istanbul), day.AddDays(1).Midnight(istanbul)).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).
			AddRow(int64(78), nine, &checkedIn, "SCHEDULED", int64(21), "Maria Lopez", int64(5), "Strength Coach").
			AddRow(int64(76), nine.Add(2*time.Hour), (*time.Time)(nil), "SCHEDULED", int64(20), "John Garcia", int64(4), "Personal Trainer"))

	repo := NewPgRepository(mock, istanbul)
	list, err := repo.ListByDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.EqualValues(t, 78, list[0].ID)
	assert.Equal(t, 9, list[0].Hour())
	assert.Equal(t, day, list[0].Date())
	require.NotNil(t, list[0].CheckInTime)
	assert.Equal(t, istanbul, list[0].CheckInTime.Location())
	assert.Equal(t, StatusScheduled, list[0].Status)

	assert.Equal(t, 11, list[1].Hour())
	assert.Nil(t, list[1].CheckInTime)
	assert.Equal(t, "John Garcia", list[1].MemberName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryListByDateWrapsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection refused")
	mock.ExpectQuery("FROM appointments a").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	repo := NewPgRepository(mock, nil)
	_, err = repo.ListByDate(context.Background(), NewDate(2024, time.November, 16))
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryGetAppointmentNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE a.id = ").
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows(appointmentColumns))

	repo := NewPgRepository(mock, nil)
	_, err = repo.GetAppointmentByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryUpdateStatusIsConditional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2024, time.November, 16, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE appointments").
		WithArgs(int64(76), "COMPLETED", "SCHEDULED").
		WillReturnRows(pgxmock.NewRows(appointmentColumns).
			AddRow(int64(76), at, &at, "COMPLETED", int64(20), "John Garcia", int64(4), "Personal Trainer"))

	repo := NewPgRepository(mock, nil)
	updated, err := repo.UpdateAppointmentStatus(context.Background(), 76, StatusScheduled, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryMarkCheckedIn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	slot := time.Date(2024, time.November, 16, 11, 0, 0, 0, time.UTC)
	at := slot.Add(2 * time.Minute)
	mock.ExpectQuery("SET check_in_time").
		WithArgs(int64(76), at).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).
			AddRow(int64(76), slot, &at, "SCHEDULED", int64(20), "John Garcia", int64(4), "Personal Trainer"))

	repo := NewPgRepository(mock, nil)
	updated, err := repo.MarkCheckedIn(context.Background(), 76, at)
	require.NoError(t, err)
	require.NotNil(t, updated.CheckInTime)
	assert.True(t, updated.CheckInTime.Equal(at))
	require.NoError(t, mock.ExpectationsWereMet())
}
