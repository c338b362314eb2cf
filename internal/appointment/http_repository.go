package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrReadOnlySource = errors.New("data source is read-only")

// DayResponse is the wire shape of GET /api/appointments?date=YYYY-MM-DD.
type DayResponse struct {
	Success      bool          `json:"success"`
	Date         string        `json:"date,omitempty"`
	Appointments []Appointment `json:"appointments"`
	Error        string        `json:"error,omitempty"`
}

// HTTPRepository reads a day of appointments from another instance of this
// service. It only serves reads; check-ins and settlement stay with the owner
// of the data.
type HTTPRepository struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	loc     *time.Location
}

func NewHTTPRepository(baseURL, token string, loc *time.Location) *HTTPRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPRepository{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		loc:     loc,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

func (r *HTTPRepository) Source() string { return "remote" }

func (r *HTTPRepository) ListByDate(ctx context.Context, day Date) ([]Appointment, error) {
	u, err := url.Parse(r.BaseURL + "/api/appointments")
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	q := u.Query()
	q.Set("date", day.Key())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", day, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read remote body: %w", err)
	}

	var payload DayResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode remote body (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("remote source: %s", msg)
	}

	out := make([]Appointment, 0, len(payload.Appointments))
	for _, a := range payload.Appointments {
		a.AppointmentTime = a.AppointmentTime.In(r.loc)
		if a.Date() != day {
			continue
		}
		// ownership is relative to REMOTE_TOKEN's member; the service recomputes it
		a.IsOwnAppointment = false
		a.MemberName = ""
		out = append(out, a)
	}
	sortAppointments(out)
	return out, nil
}

func (r *HTTPRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	return nil, ErrReadOnlySource
}

func (r *HTTPRepository) FindMemberAppointmentAt(ctx context.Context, memberID int64, at time.Time) (*Appointment, error) {
	return nil, ErrReadOnlySource
}

func (r *HTTPRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) (*Appointment, error) {
	return nil, ErrReadOnlySource
}

func (r *HTTPRepository) FindPastScheduled(ctx context.Context, before time.Time) ([]Appointment, error) {
	return nil, ErrReadOnlySource
}

func (r *HTTPRepository) UpdateAppointmentStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error) {
	return nil, ErrReadOnlySource
}
