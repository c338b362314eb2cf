package schedule

import (
	"sort"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

type SlotState string

const (
	SlotAvailable       SlotState = "available"
	SlotYourAppointment SlotState = "your-appointment"
	SlotUnavailable     SlotState = "unavailable"
)

// Slot is one (day, hour) cell of the grid.
type Slot struct {
	Day   appointment.Date
	Hour  int
	State SlotState

	// Appointment is the booking occupying the slot. For another member's
	// booking it is masked down to id and time.
	Appointment *appointment.Appointment

	// Conflicts counts extra bookings that matched the same cell and lost
	// the tie-break.
	Conflicts int
}

// Classify picks the booking for (day, hour) out of candidates. Cancelled
// bookings free the slot. When more than one booking matches, the lowest id
// wins and the rest are counted in Conflicts.
func Classify(day appointment.Date, hour int, candidates []appointment.Appointment) Slot {
	slot := Slot{Day: day, Hour: hour, State: SlotAvailable}

	var matches []appointment.Appointment
	for _, a := range candidates {
		if a.Status == appointment.StatusCancelled {
			continue
		}
		if a.Date() != day || a.Hour() != hour {
			continue
		}
		matches = append(matches, a)
	}
	if len(matches) == 0 {
		return slot
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	winner := matches[0]
	slot.Conflicts = len(matches) - 1

	if winner.IsOwnAppointment {
		slot.State = SlotYourAppointment
	} else {
		slot.State = SlotUnavailable
		winner = winner.Masked()
	}
	slot.Appointment = &winner
	return slot
}

// Grid holds one Slot per (hour, day) of a window. Rows are hours and
// columns are days.
type Grid struct {
	Window Window
	Days   []appointment.Date
	Hours  []int
	Slots  [][]Slot
}

// BuildGrid classifies every cell of w × hours. byDay is keyed by
// YYYY-MM-DD; days with no entry are fully available.
func BuildGrid(w Window, hours []int, byDay map[string][]appointment.Appointment) Grid {
	days := w.Dates()
	g := Grid{
		Window: w,
		Days:   days,
		Hours:  append([]int(nil), hours...),
		Slots:  make([][]Slot, len(hours)),
	}
	for r, hour := range hours {
		row := make([]Slot, len(days))
		for c, day := range days {
			row[c] = Classify(day, hour, byDay[day.Key()])
		}
		g.Slots[r] = row
	}
	return g
}

// At returns the slot for (day, hour), if the grid has one.
func (g Grid) At(day appointment.Date, hour int) (Slot, bool) {
	for r, h := range g.Hours {
		if h != hour {
			continue
		}
		for c, d := range g.Days {
			if d == day {
				return g.Slots[r][c], true
			}
		}
	}
	return Slot{}, false
}

// Conflicts sums Conflicts over every cell.
func (g Grid) Conflicts() int {
	n := 0
	for _, row := range g.Slots {
		for _, s := range row {
			n += s.Conflicts
		}
	}
	return n
}

// Count returns how many cells are in each state.
func (g Grid) Count() map[SlotState]int {
	out := make(map[SlotState]int, 3)
	for _, row := range g.Slots {
		for _, s := range row {
			out[s.State]++
		}
	}
	return out
}
