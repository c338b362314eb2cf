package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRepositoryListByDate(t *testing.T) {
	var gotAuth, gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDate = r.URL.Query().Get("date")
		assert.Equal(t, "/api/appointments", r.URL.Path)

		all := MockAppointments(time.UTC)
		_ = json.NewEncoder(w).Encode(DayResponse{
			Success: true,
			// a misbehaving server that returns the neighbours too
			Appointments: all,
		})
	}))
	defer srv.Close()

	repo := NewHTTPRepository(srv.URL+"/", "tok", time.UTC)
	list, err := repo.ListByDate(context.Background(), NewDate(2024, time.November, 16))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "2024-11-16", gotDate)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, "2024-11-16", a.Date().Key())
		assert.NotZero(t, a.MemberID)
		assert.Empty(t, a.MemberName)
		assert.False(t, a.IsOwnAppointment)
	}
}

func TestHTTPRepositoryUnsuccessfulPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(DayResponse{Success: false, Error: "Failed to load appointments"})
	}))
	defer srv.Close()

	repo := NewHTTPRepository(srv.URL, "", nil)
	_, err := repo.ListByDate(context.Background(), NewDate(2024, time.November, 16))
	assert.ErrorContains(t, err, "Failed to load appointments")
}

func TestHTTPRepositoryIsReadOnly(t *testing.T) {
	repo := NewHTTPRepository("http://example.invalid", "", nil)
	_, err := repo.MarkCheckedIn(context.Background(), 76, time.Now())
	assert.ErrorIs(t, err, ErrReadOnlySource)
	_, err = repo.FindPastScheduled(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrReadOnlySource)
}
