package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(calls *int) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		return ctx.Err()
	}
}

func TestMemoryRepositoryListByDateOnlyReturnsThatDay(t *testing.T) {
	var sleeps int
	repo := NewMemoryRepository(MockAppointments(time.UTC), 500*time.Millisecond).WithSleeper(noSleep(&sleeps))

	for _, day := range NewDate(2024, time.November, 14).Range(8) {
		list, err := repo.ListByDate(context.Background(), day)
		require.NoError(t, err)
		for _, a := range list {
			assert.Equal(t, day, a.Date(), "appointment %d leaked into %s", a.ID, day)
		}
	}
	assert.Equal(t, 8, sleeps)

	list, err := repo.ListByDate(context.Background(), NewDate(2024, time.November, 16))
	require.NoError(t, err)
	require.Len(t, list, 2)
	// ordered by time: 09:00 (78) before 11:00 (76)
	assert.EqualValues(t, 78, list[0].ID)
	assert.EqualValues(t, 76, list[1].ID)
}

func TestMemoryRepositoryHonoursCancelledContext(t *testing.T) {
	repo := NewMemoryRepository(MockAppointments(time.UTC), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListByDate(ctx, NewDate(2024, time.November, 16))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRepositoryCheckInAndSettle(t *testing.T) {
	var sleeps int
	repo := NewMemoryRepository(MockAppointments(time.UTC), 0).WithSleeper(noSleep(&sleeps))
	ctx := context.Background()
	slot := time.Date(2024, time.November, 16, 11, 0, 0, 0, time.UTC)

	found, err := repo.FindMemberAppointmentAt(ctx, 20, slot)
	require.NoError(t, err)
	assert.EqualValues(t, 76, found.ID)

	_, err = repo.FindMemberAppointmentAt(ctx, 21, slot)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	checked, err := repo.MarkCheckedIn(ctx, 76, slot.Add(5*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, checked.CheckInTime)

	past, err := repo.FindPastScheduled(ctx, time.Date(2024, time.November, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, past, 2)

	_, err = repo.UpdateAppointmentStatus(ctx, 76, StatusScheduled, StatusCompleted)
	require.NoError(t, err)
	_, err = repo.UpdateAppointmentStatus(ctx, 76, StatusScheduled, StatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentNotFound, "status transition must be conditional on the from state")
}

func TestAppointmentMaskedHidesOtherMembers(t *testing.T) {
	other := MockAppointments(time.UTC)[2].ForMember(20)
	masked := other.Masked()

	assert.False(t, masked.IsOwnAppointment)
	assert.Zero(t, masked.MemberID)
	assert.Empty(t, masked.MemberName)
	assert.Empty(t, masked.PTName)
	assert.Equal(t, other.AppointmentTime, masked.AppointmentTime)

	own := MockAppointments(time.UTC)[0].ForMember(20)
	assert.Equal(t, own, own.Masked())
}

func TestAppointmentRedactedKeepsOwnerID(t *testing.T) {
	other := MockAppointments(time.UTC)[2].ForMember(20)
	wire := other.Redacted()

	assert.EqualValues(t, 21, wire.MemberID)
	assert.Empty(t, wire.MemberName)
	assert.True(t, wire.ForMember(21).IsOwnAppointment)

	own := MockAppointments(time.UTC)[0].ForMember(20)
	assert.Equal(t, own, own.Redacted())
}
