package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/hackgods/gym-member-schedule/internal/schedule"
)

var cellMarks = map[schedule.SlotState]string{
	schedule.SlotAvailable:       ".",
	schedule.SlotYourAppointment: "*",
	schedule.SlotUnavailable:     "x",
}

// textRenderer paints the schedule grid as an aligned table.
type textRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newTextRenderer(out io.Writer) *textRenderer {
	return &textRenderer{out: out}
}

func (t *textRenderer) SetLoading(loading bool) {
	if !loading {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "loading...")
}

func (t *textRenderer) RenderGrid(view schedule.GridView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n%s\n", view.RangeLabel)
	if view.Error != "" {
		fmt.Fprintf(t.out, "! %s\n", view.Error)
	}

	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(view.Days)+1)
	header = append(header, "")
	for _, d := range view.Days {
		header = append(header, d.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		line := make([]string, 0, len(row.Cells)+1)
		line = append(line, row.Label)
		for _, c := range row.Cells {
			mark := cellMarks[c.State]
			if c.Conflicts > 0 {
				mark += "!"
			}
			line = append(line, mark)
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	_ = tw.Flush()

	if len(view.Rows) > 0 {
		fmt.Fprintln(t.out, "* yours  x taken  . free")
	}
}

func (t *textRenderer) ShowDetails(view schedule.DetailView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\nAppointment %d (%s)\n", view.AppointmentID, view.Date)
	for _, f := range view.Fields {
		fmt.Fprintf(t.out, "  %s: %s\n", f.Label, f.Value)
	}
}

func (t *textRenderer) HideDetails() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "details closed")
}
