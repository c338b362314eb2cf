package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

func newTerminalPage(t *testing.T, out *bytes.Buffer) *schedule.Page {
	t.Helper()
	cfg := config.Config{FetchTimeout: time.Second, RetryAttempts: 1, Location: time.UTC}
	repo := appointment.NewMemoryRepository(appointment.MockAppointments(time.UTC), 0)
	svc := appointment.NewService(repo, nil, cfg, nil, logging.Discard())

	return schedule.NewPage(svc, newTextRenderer(out), printNavigator{out: out}, memberSession{id: 20}, schedule.Options{
		DaysToShow: 5,
		Locale:     "en",
		Location:   time.UTC,
		Start:      appointment.NewDate(2024, time.November, 16),
	}, logging.Discard())
}

func TestTextRendererDrawsGrid(t *testing.T) {
	var out bytes.Buffer
	page := newTerminalPage(t, &out)

	require.NoError(t, page.Init(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Nov 16 - Nov 20, 2024")
	assert.Contains(t, text, "Sat, Nov 16")

	var elevenAM string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "11:00 AM") {
			elevenAM = line
		}
	}
	require.NotEmpty(t, elevenAM)
	assert.Equal(t, []string{"11:00", "AM", "*", ".", ".", ".", "."}, strings.Fields(elevenAM))
}

func TestDispatch(t *testing.T) {
	var out bytes.Buffer
	page := newTerminalPage(t, &out)
	ctx := context.Background()
	require.NoError(t, page.Init(ctx))
	today := page.Window().Start

	quit, err := dispatch(ctx, page, today, "n")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "2024-11-21", page.Window().Start.Key())

	_, err = dispatch(ctx, page, today, "t")
	require.NoError(t, err)
	assert.Equal(t, today, page.Window().Start)

	out.Reset()
	_, err = dispatch(ctx, page, today, "s 2024-11-16 11")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Appointment 76")

	_, err = dispatch(ctx, page, today, "s 2024-11-16 9")
	assert.ErrorIs(t, err, schedule.ErrNotOwnAppointment)

	_, err = dispatch(ctx, page, today, "g 16/11/2024")
	assert.Error(t, err)

	_, err = dispatch(ctx, page, today, "bogus")
	assert.Error(t, err)

	quit, err = dispatch(ctx, page, today, "q")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestSignedOutTerminalIsRedirected(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Config{FetchTimeout: time.Second, RetryAttempts: 1, Location: time.UTC}
	svc := appointment.NewService(appointment.NewMemoryRepository(nil, 0), nil, cfg, nil, logging.Discard())
	page := schedule.NewPage(svc, newTextRenderer(&out), printNavigator{out: &out}, memberSession{}, schedule.Options{Location: time.UTC}, logging.Discard())

	err := page.Init(context.Background())
	assert.ErrorIs(t, err, schedule.ErrAuthRequired)
	assert.Contains(t, out.String(), schedule.DefaultLoginPath)
}
