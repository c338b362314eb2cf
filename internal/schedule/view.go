package schedule

import (
	"strconv"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

// GridView is the presentation model handed to a Renderer. It carries only
// display data; no renderer needs to know about appointments.
type GridView struct {
	State      State       `json:"state"`
	Loading    bool        `json:"loading"`
	RangeLabel string      `json:"rangeLabel"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Error      string      `json:"error,omitempty"`
	Days       []DayColumn `json:"days"`
	Rows       []Row       `json:"rows"`
}

type DayColumn struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

type Row struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

type Cell struct {
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	State     SlotState `json:"state"`
	Label     string    `json:"label"`
	Clickable bool      `json:"clickable"`

	// set for the member's own booking only
	AppointmentID int64  `json:"appointmentId,omitempty"`
	Trainer       string `json:"trainer,omitempty"`

	Conflicts int `json:"conflicts,omitempty"`
}

// DetailView is the modal content for one of the member's own bookings.
type DetailView struct {
	AppointmentID int64        `json:"appointmentId"`
	Date          string       `json:"date"`
	Fields        []LabelValue `json:"fields"`
}

type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func columns(days []appointment.Date, loc Locale) []DayColumn {
	out := make([]DayColumn, len(days))
	for i, d := range days {
		out[i] = DayColumn{Date: d.Key(), Label: loc.FormatDay(d)}
	}
	return out
}

// Render turns a classified grid into its presentation model. Only the
// member's own bookings are clickable.
func Render(g Grid, loc Locale) GridView {
	view := GridView{
		State:      StateReady,
		RangeLabel: loc.FormatRange(g.Window),
		Start:      g.Window.Start.Key(),
		End:        g.Window.End().Key(),
		Days:       columns(g.Days, loc),
		Rows:       make([]Row, len(g.Hours)),
	}
	for r, hour := range g.Hours {
		row := Row{Hour: hour, Label: loc.FormatHour(hour), Cells: make([]Cell, len(g.Days))}
		for c, slot := range g.Slots[r] {
			cell := Cell{
				Date:      slot.Day.Key(),
				Hour:      slot.Hour,
				State:     slot.State,
				Label:     loc.StateLabel(slot.State),
				Conflicts: slot.Conflicts,
			}
			if slot.State == SlotYourAppointment && slot.Appointment != nil {
				cell.Clickable = true
				cell.AppointmentID = slot.Appointment.ID
				cell.Trainer = slot.Appointment.PTName
			}
			row.Cells[c] = cell
		}
		view.Rows[r] = row
	}
	return view
}

// RenderError is the view of a failed load: headers and a message, and no
// cells at all so nothing stale is shown as current.
func RenderError(w Window, loc Locale, message string) GridView {
	if message == "" {
		message = loc.LoadError
	}
	return GridView{
		State:      StateError,
		RangeLabel: loc.FormatRange(w),
		Start:      w.Start.Key(),
		End:        w.End().Key(),
		Error:      message,
		Days:       columns(w.Dates(), loc),
		Rows:       []Row{},
	}
}

// RenderDetails builds the modal for a booking.
func RenderDetails(a appointment.Appointment, loc Locale) DetailView {
	fields := []LabelValue{
		{Label: loc.TimeLabel, Value: loc.FormatHour(a.Hour())},
		{Label: loc.TrainerLabel, Value: a.PTName},
		{Label: loc.StatusLabel, Value: loc.FormatStatus(a.Status)},
		{Label: loc.IDLabel, Value: strconv.FormatInt(a.ID, 10)},
	}
	if a.CheckInTime != nil {
		fields = append(fields, LabelValue{Label: loc.CheckedInLabel, Value: loc.FormatClock(*a.CheckInTime)})
	}
	return DetailView{
		AppointmentID: a.ID,
		Date:          a.Date().Key(),
		Fields:        fields,
	}
}
