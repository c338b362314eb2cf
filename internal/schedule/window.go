package schedule

import (
	"fmt"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

// Window is the run of consecutive calendar days on screen. There is no week
// alignment and weekends are not skipped.
type Window struct {
	Start appointment.Date
	Days  int
}

// Dates lists every day of the window in order.
func (w Window) Dates() []appointment.Date {
	return w.Start.Range(w.Days)
}

// End is the last visible day.
func (w Window) End() appointment.Date {
	if w.Days < 1 {
		return w.Start
	}
	return w.Start.AddDays(w.Days - 1)
}

// Shift moves the start by offset calendar days.
func (w Window) Shift(offset int) Window {
	w.Start = w.Start.AddDays(offset)
	return w
}

func (w Window) Contains(d appointment.Date) bool {
	return !d.Before(w.Start) && !w.End().Before(d)
}

func (w Window) String() string {
	return fmt.Sprintf("%s+%dd", w.Start, w.Days)
}
