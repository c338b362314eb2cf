package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

var nov16 = appointment.NewDate(2024, time.November, 16)

func booking(id int64, day appointment.Date, hour int, memberID int64) appointment.Appointment {
	return appointment.Appointment{
		ID:              id,
		AppointmentTime: day.At(hour, time.UTC),
		Status:          appointment.StatusScheduled,
		MemberID:        memberID,
		MemberName:      "Member " + day.Key(),
		PTID:            4,
		PTName:          "Personal Trainer",
	}
}

func hours9to21() []int {
	var out []int
	for h := 9; h <= 21; h++ {
		out = append(out, h)
	}
	return out
}

func TestClassify(t *testing.T) {
	own := booking(76, nov16, 11, 20).ForMember(20)
	other := booking(78, nov16, 9, 21).ForMember(20)
	cancelled := booking(81, nov16, 15, 20).ForMember(20)
	cancelled.Status = appointment.StatusCancelled

	candidates := []appointment.Appointment{own, other, cancelled}

	tests := []struct {
		name  string
		day   appointment.Date
		hour  int
		state SlotState
		id    int64
	}{
		{"empty hour", nov16, 10, SlotAvailable, 0},
		{"own booking", nov16, 11, SlotYourAppointment, 76},
		{"other member", nov16, 9, SlotUnavailable, 78},
		{"cancelled frees the slot", nov16, 15, SlotAvailable, 0},
		{"same hour other day", nov16.AddDays(1), 11, SlotAvailable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := Classify(tt.day, tt.hour, candidates)
			assert.Equal(t, tt.state, slot.State)
			assert.Equal(t, tt.day, slot.Day)
			assert.Equal(t, tt.hour, slot.Hour)
			if tt.id == 0 {
				assert.Nil(t, slot.Appointment)
				return
			}
			require.NotNil(t, slot.Appointment)
			assert.Equal(t, tt.id, slot.Appointment.ID)
		})
	}
}

func TestClassifyMasksOtherMembers(t *testing.T) {
	other := booking(78, nov16, 9, 21).ForMember(20)
	slot := Classify(nov16, 9, []appointment.Appointment{other})

	require.NotNil(t, slot.Appointment)
	assert.Zero(t, slot.Appointment.MemberID)
	assert.Empty(t, slot.Appointment.MemberName)
	assert.Empty(t, slot.Appointment.PTName)
}

func TestClassifyTieBreakLowestIDWins(t *testing.T) {
	// input order must not matter
	a := booking(90, nov16, 12, 21).ForMember(20)
	b := booking(85, nov16, 12, 20).ForMember(20)
	c := booking(88, nov16, 12, 22).ForMember(20)

	for _, order := range [][]appointment.Appointment{{a, b, c}, {c, a, b}, {b, c, a}} {
		slot := Classify(nov16, 12, order)
		require.NotNil(t, slot.Appointment)
		assert.EqualValues(t, 85, slot.Appointment.ID)
		assert.Equal(t, SlotYourAppointment, slot.State)
		assert.Equal(t, 2, slot.Conflicts)
	}
}

func TestBuildGridIsComplete(t *testing.T) {
	w := Window{Start: nov16, Days: 5}
	hours := hours9to21()
	byDay := map[string][]appointment.Appointment{
		"2024-11-16": {booking(76, nov16, 11, 20).ForMember(20), booking(78, nov16, 9, 21).ForMember(20)},
		"2024-11-17": {booking(79, nov16.AddDays(1), 14, 22).ForMember(20)},
	}

	g := BuildGrid(w, hours, byDay)

	require.Len(t, g.Slots, len(hours))
	seen := make(map[string]bool)
	for r, row := range g.Slots {
		require.Len(t, row, 5)
		for c, s := range row {
			assert.Equal(t, hours[r], s.Hour)
			assert.Equal(t, g.Days[c], s.Day)
			assert.Contains(t, []SlotState{SlotAvailable, SlotYourAppointment, SlotUnavailable}, s.State)

			key := fmt.Sprintf("%s@%d", s.Day.Key(), s.Hour)
			assert.False(t, seen[key], "duplicate cell %s", key)
			seen[key] = true
		}
	}
	assert.Len(t, seen, 5*len(hours))

	counts := g.Count()
	assert.Equal(t, 1, counts[SlotYourAppointment])
	assert.Equal(t, 2, counts[SlotUnavailable])
	assert.Equal(t, 5*len(hours)-3, counts[SlotAvailable])
	assert.Zero(t, g.Conflicts())
}

func TestGridAt(t *testing.T) {
	g := BuildGrid(Window{Start: nov16, Days: 2}, []int{9, 10}, nil)

	s, ok := g.At(nov16.AddDays(1), 10)
	require.True(t, ok)
	assert.Equal(t, SlotAvailable, s.State)

	_, ok = g.At(nov16.AddDays(2), 10)
	assert.False(t, ok)
	_, ok = g.At(nov16, 11)
	assert.False(t, ok)
}

func TestWindow(t *testing.T) {
	w := Window{Start: nov16, Days: 5}

	assert.Equal(t, "2024-11-20", w.End().Key())
	assert.True(t, w.Contains(nov16))
	assert.True(t, w.Contains(w.End()))
	assert.False(t, w.Contains(nov16.AddDays(5)))
	assert.False(t, w.Contains(nov16.AddDays(-1)))

	assert.Equal(t, w, w.Shift(5).Shift(-5))
	assert.Equal(t, "2024-11-21", w.Shift(5).Start.Key())
}

func TestRenderOnlyOwnCellsAreClickable(t *testing.T) {
	byDay := map[string][]appointment.Appointment{
		"2024-11-16": {booking(76, nov16, 11, 20).ForMember(20), booking(78, nov16, 9, 21).ForMember(20)},
	}
	view := Render(BuildGrid(Window{Start: nov16, Days: 1}, []int{9, 10, 11}, byDay), LookupLocale("en"))

	require.Len(t, view.Rows, 3)
	assert.Equal(t, "9:00 AM", view.Rows[0].Label)

	nine := view.Rows[0].Cells[0]
	assert.Equal(t, SlotUnavailable, nine.State)
	assert.False(t, nine.Clickable)
	assert.Zero(t, nine.AppointmentID)
	assert.Empty(t, nine.Trainer)
	assert.Equal(t, "Unavailable", nine.Label)

	eleven := view.Rows[2].Cells[0]
	assert.Equal(t, SlotYourAppointment, eleven.State)
	assert.True(t, eleven.Clickable)
	assert.EqualValues(t, 76, eleven.AppointmentID)
	assert.Equal(t, "Personal Trainer", eleven.Trainer)

	assert.Equal(t, StateReady, view.State)
	assert.Equal(t, "Saturday, November 16, 2024", view.RangeLabel)
}

func TestRenderDetails(t *testing.T) {
	a := booking(76, nov16, 11, 20).ForMember(20)
	checked := nov16.At(11, time.UTC).Add(4 * time.Minute)
	a.CheckInTime = &checked

	view := RenderDetails(a, LookupLocale("en"))
	assert.EqualValues(t, 76, view.AppointmentID)
	assert.Equal(t, "2024-11-16", view.Date)
	assert.Equal(t, []LabelValue{
		{Label: "Time", Value: "11:00 AM"},
		{Label: "Trainer", Value: "Personal Trainer"},
		{Label: "Status", Value: "Scheduled"},
		{Label: "Appointment ID", Value: "76"},
		{Label: "Checked In", Value: "11:04 AM"},
	}, view.Fields)
}
