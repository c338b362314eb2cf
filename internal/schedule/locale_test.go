package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

func TestFormatHour(t *testing.T) {
	en := LookupLocale("en")
	tr := LookupLocale("tr")

	tests := []struct {
		hour   int
		en, tr string
	}{
		{0, "12:00 AM", "00:00"},
		{9, "9:00 AM", "09:00"},
		{11, "11:00 AM", "11:00"},
		{12, "12:00 PM", "12:00"},
		{13, "1:00 PM", "13:00"},
		{21, "9:00 PM", "21:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.en, en.FormatHour(tt.hour), "en %d", tt.hour)
		assert.Equal(t, tt.tr, tr.FormatHour(tt.hour), "tr %d", tt.hour)
	}
}

func TestLookupLocaleFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "tr", LookupLocale("tr-TR").Tag)
	assert.Equal(t, "tr", LookupLocale(" TR ").Tag)
	assert.Equal(t, "en", LookupLocale("de").Tag)
	assert.Equal(t, "en", LookupLocale("").Tag)
}

func TestFormatRange(t *testing.T) {
	five := Window{Start: nov16, Days: 5}
	one := Window{Start: nov16, Days: 1}
	acrossYear := Window{Start: appointment.NewDate(2024, time.December, 30), Days: 5}

	en := LookupLocale("en")
	assert.Equal(t, "Nov 16 - Nov 20, 2024", en.FormatRange(five))
	assert.Equal(t, "Saturday, November 16, 2024", en.FormatRange(one))
	assert.Equal(t, "Dec 30 - Jan 3, 2025", en.FormatRange(acrossYear))
	assert.Equal(t, "Sat, Nov 16", en.FormatDay(nov16))

	tr := LookupLocale("tr")
	assert.Equal(t, "16 Kas - 20 Kas 2024", tr.FormatRange(five))
	assert.Equal(t, "16 Kasım 2024 Cumartesi", tr.FormatRange(one))
	assert.Equal(t, "Cmt, 16 Kas", tr.FormatDay(nov16))
}

func TestStatusAndStateLabels(t *testing.T) {
	tr := LookupLocale("tr")
	assert.Equal(t, "Müsait", tr.StateLabel(SlotAvailable))
	assert.Equal(t, "Randevunuz", tr.StateLabel(SlotYourAppointment))
	assert.Equal(t, "Dolu", tr.StateLabel(SlotUnavailable))
	assert.Equal(t, "Tamamlandı", tr.FormatStatus(appointment.StatusCompleted))
	assert.Equal(t, "UNKNOWN", tr.FormatStatus("UNKNOWN"))
}
