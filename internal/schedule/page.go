package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrNotOwnAppointment = errors.New("appointment belongs to another member")
	ErrSlotNotFound      = errors.New("slot not on the current grid")
	ErrNotReady          = errors.New("schedule not loaded")

	// ErrSuperseded is returned by a load whose window changed while it was
	// in flight. Its result is dropped.
	ErrSuperseded = errors.New("schedule load superseded")
)

const DefaultLoginPath = "/pages/auth/login.html"

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// DataSource is the day query the page depends on. *appointment.Service
// satisfies it.
type DataSource interface {
	GetAppointments(ctx context.Context, memberID int64, day appointment.Date) ([]appointment.Appointment, error)
}

// Renderer receives presentation models. Calls are made while the page lock
// is held, so a Renderer must not call back into the Page.
type Renderer interface {
	SetLoading(loading bool)
	RenderGrid(view GridView)
	ShowDetails(view DetailView)
	HideDetails()
}

type nopRenderer struct{}

func (nopRenderer) SetLoading(bool)        {}
func (nopRenderer) RenderGrid(GridView)    {}
func (nopRenderer) ShowDetails(DetailView) {}
func (nopRenderer) HideDetails()           {}

type Navigator interface {
	Redirect(path string)
}

type Session interface {
	IsAuthenticated() bool
	MemberID() int64
}

type Options struct {
	DaysToShow int
	TimeSlots  []int
	Locale     string
	LoginPath  string

	// Start is the first visible day; zero means today in Location.
	Start    appointment.Date
	Location *time.Location
	Now      func() time.Time
}

// OptionsFromConfig maps the service configuration onto page options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		DaysToShow: cfg.DaysToShow,
		TimeSlots:  cfg.TimeSlots(),
		Locale:     cfg.Locale,
		LoginPath:  DefaultLoginPath,
		Location:   cfg.Location,
	}
}

func (o Options) withDefaults() Options {
	if o.DaysToShow < 1 {
		o.DaysToShow = 5
	}
	if len(o.TimeSlots) == 0 {
		for h := 9; h <= 21; h++ {
			o.TimeSlots = append(o.TimeSlots, h)
		}
	}
	if o.LoginPath == "" {
		o.LoginPath = DefaultLoginPath
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Start.IsZero() {
		o.Start = appointment.DateOf(o.Now().In(o.Location))
	}
	return o
}

// Page is the schedule view-model. It owns the visible window and the last
// loaded appointments, and paints through a Renderer.
type Page struct {
	source   DataSource
	renderer Renderer
	nav      Navigator
	session  Session
	locale   Locale
	hours    []int
	login    string
	logger   *logging.Logger

	mu         sync.Mutex
	window     Window
	state      State
	byDay      map[string][]appointment.Appointment
	grid       *Grid
	lastErr    error
	generation uint64
	modal      *DetailView
}

func NewPage(source DataSource, renderer Renderer, nav Navigator, session Session, opts Options, logger *logging.Logger) *Page {
	opts = opts.withDefaults()
	if logger == nil {
		logger = logging.Default()
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Page{
		source:   source,
		renderer: renderer,
		nav:      nav,
		session:  session,
		locale:   LookupLocale(opts.Locale),
		hours:    append([]int(nil), opts.TimeSlots...),
		login:    opts.LoginPath,
		logger:   logger.With("component", "schedule_page"),
		window:   Window{Start: opts.Start, Days: opts.DaysToShow},
		state:    StateIdle,
	}
}

// Init runs the auth guard and performs the first load. An unauthenticated
// session is redirected to the login page before anything is fetched.
func (p *Page) Init(ctx context.Context) error {
	if p.session == nil || !p.session.IsAuthenticated() {
		p.logger.Info("redirecting unauthenticated visitor", "to", p.login)
		if p.nav != nil {
			p.nav.Redirect(p.login)
		}
		return ErrAuthRequired
	}
	return p.LoadAppointments(ctx)
}

// LoadAppointments fetches every visible day concurrently and paints once
// all of them have settled. Any failure puts the page in StateError with an
// empty grid and a visible message.
func (p *Page) LoadAppointments(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	w := p.window
	p.state = StateLoading
	p.renderer.SetLoading(true)
	p.mu.Unlock()

	memberID := int64(0)
	if p.session != nil {
		memberID = p.session.MemberID()
	}

	days := w.Dates()
	results := make([][]appointment.Appointment, len(days))

	g, gctx := errgroup.WithContext(ctx)
	for i, day := range days {
		g.Go(func() error {
			list, err := p.source.GetAppointments(gctx, memberID, day)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		p.logger.Debug("dropping stale schedule load", "window", w.String())
		return ErrSuperseded
	}

	p.renderer.SetLoading(false)

	if err != nil {
		p.state = StateError
		p.byDay = nil
		p.grid = nil
		p.lastErr = err
		p.logger.Error("failed to load appointments", "window", w.String(), "member_id", memberID, "error", err)
		p.renderer.RenderGrid(RenderError(w, p.locale, p.locale.LoadError))
		return fmt.Errorf("load schedule %s: %w", w, err)
	}

	byDay := make(map[string][]appointment.Appointment, len(days))
	for i, day := range days {
		byDay[day.Key()] = results[i]
	}
	grid := BuildGrid(w, p.hours, byDay)
	if n := grid.Conflicts(); n > 0 {
		p.logger.Warn("overlapping bookings on schedule, lowest id shown", "window", w.String(), "conflicts", n)
	}

	p.state = StateReady
	p.byDay = byDay
	p.grid = &grid
	p.lastErr = nil
	p.renderer.RenderGrid(Render(grid, p.locale))
	return nil
}

// ChangeDays moves the window by offset days and reloads.
func (p *Page) ChangeDays(ctx context.Context, offset int) error {
	p.ChangeWindow(offset)
	return p.LoadAppointments(ctx)
}

// ChangeWindow moves the window without fetching.
func (p *Page) ChangeWindow(offset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window = p.window.Shift(offset)
}

// Next pages forward by a whole window so consecutive windows never overlap.
func (p *Page) Next(ctx context.Context) error {
	return p.ChangeDays(ctx, p.Window().Days)
}

func (p *Page) Prev(ctx context.Context) error {
	return p.ChangeDays(ctx, -p.Window().Days)
}

// GoTo jumps to a window starting at day.
func (p *Page) GoTo(ctx context.Context, day appointment.Date) error {
	p.mu.Lock()
	p.window.Start = day
	p.mu.Unlock()
	return p.LoadAppointments(ctx)
}

// SelectSlot is the click on a cell. Only the member's own bookings open
// the detail view.
func (p *Page) SelectSlot(day appointment.Date, hour int) (DetailView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.grid == nil {
		return DetailView{}, ErrNotReady
	}
	slot, ok := p.grid.At(day, hour)
	if !ok {
		return DetailView{}, fmt.Errorf("%w: %s %02d:00", ErrSlotNotFound, day, hour)
	}
	if slot.State != SlotYourAppointment || slot.Appointment == nil {
		return DetailView{}, ErrNotOwnAppointment
	}
	return p.showDetailsLocked(*slot.Appointment), nil
}

// ShowAppointmentDetails opens the detail view for a booking.
func (p *Page) ShowAppointmentDetails(a appointment.Appointment) (DetailView, error) {
	if !a.IsOwnAppointment {
		return DetailView{}, ErrNotOwnAppointment
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showDetailsLocked(a), nil
}

func (p *Page) showDetailsLocked(a appointment.Appointment) DetailView {
	view := RenderDetails(a, p.locale)
	p.modal = &view
	p.renderer.ShowDetails(view)
	return view
}

// CloseModal hides the detail view. It is a no-op when nothing is open.
func (p *Page) CloseModal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modal == nil {
		return
	}
	p.modal = nil
	p.renderer.HideDetails()
}

func (p *Page) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Grid returns the last successfully loaded grid.
func (p *Page) Grid() (Grid, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.grid == nil {
		return Grid{}, false
	}
	return *p.grid, true
}

// AppointmentsByDay returns the appointments of the last successful load.
func (p *Page) AppointmentsByDay() map[string][]appointment.Appointment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string][]appointment.Appointment, len(p.byDay))
	for k, v := range p.byDay {
		out[k] = append([]appointment.Appointment(nil), v...)
	}
	return out
}

// Err is the error of the last load, nil after a success.
func (p *Page) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Modal returns the open detail view, if any.
func (p *Page) Modal() (DetailView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modal == nil {
		return DetailView{}, false
	}
	return *p.modal, true
}

// View re-renders the current state without fetching.
func (p *Page) View() GridView {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.grid != nil && p.state == StateReady:
		return Render(*p.grid, p.locale)
	case p.state == StateError:
		return RenderError(p.window, p.locale, p.locale.LoadError)
	default:
		return GridView{
			State:      p.state,
			Loading:    p.state == StateLoading,
			RangeLabel: p.locale.FormatRange(p.window),
			Start:      p.window.Start.Key(),
			End:        p.window.End().Key(),
			Days:       columns(p.window.Dates(), p.locale),
			Rows:       []Row{},
		}
	}
}
