package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

// Locale holds the labels and date formats of one UI language.
type Locale struct {
	Tag string

	Available       string
	YourAppointment string
	Unavailable     string
	Loading         string
	LoadError       string

	TimeLabel      string
	TrainerLabel   string
	StatusLabel    string
	IDLabel        string
	CheckedInLabel string

	Statuses map[appointment.Status]string

	months      [12]string
	shortMonths [12]string
	weekdays    [7]string // Sunday first
	shortDays   [7]string
	clock12     bool
}

var english = Locale{
	Tag:             "en",
	Available:       "Available",
	YourAppointment: "Your Appointment",
	Unavailable:     "Unavailable",
	Loading:         "Loading...",
	LoadError:       "Failed to load appointments",
	TimeLabel:       "Time",
	TrainerLabel:    "Trainer",
	StatusLabel:     "Status",
	IDLabel:         "Appointment ID",
	CheckedInLabel:  "Checked In",
	Statuses: map[appointment.Status]string{
		appointment.StatusScheduled: "Scheduled",
		appointment.StatusCompleted: "Completed",
		appointment.StatusCancelled: "Cancelled",
	},
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	shortMonths: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	weekdays:    [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	shortDays:   [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	clock12:     true,
}

var turkish = Locale{
	Tag:             "tr",
	Available:       "Müsait",
	YourAppointment: "Randevunuz",
	Unavailable:     "Dolu",
	Loading:         "Yükleniyor...",
	LoadError:       "Randevular yüklenemedi",
	TimeLabel:       "Saat",
	TrainerLabel:    "Antrenör",
	StatusLabel:     "Durum",
	IDLabel:         "Randevu No",
	CheckedInLabel:  "Giriş Saati",
	Statuses: map[appointment.Status]string{
		appointment.StatusScheduled: "Planlandı",
		appointment.StatusCompleted: "Tamamlandı",
		appointment.StatusCancelled: "İptal Edildi",
	},
	months: [12]string{
		"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
		"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
	},
	shortMonths: [12]string{"Oca", "Şub", "Mar", "Nis", "May", "Haz", "Tem", "Ağu", "Eyl", "Eki", "Kas", "Ara"},
	weekdays:    [7]string{"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi"},
	shortDays:   [7]string{"Paz", "Pzt", "Sal", "Çar", "Per", "Cum", "Cmt"},
}

// LookupLocale returns the locale for tag ("en", "tr", "tr-TR", ...),
// falling back to English.
func LookupLocale(tag string) Locale {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
	if base == "tr" {
		return turkish
	}
	return english
}

// FormatHour renders a slot hour: "9:00 AM" in English, "09:00" in Turkish.
func (l Locale) FormatHour(hour int) string {
	if !l.clock12 {
		return fmt.Sprintf("%02d:00", hour)
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, period)
}

// FormatClock renders a timestamp as a wall clock time in its own location.
func (l Locale) FormatClock(t time.Time) string {
	if !l.clock12 {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FormatDay is the short column header of a day.
func (l Locale) FormatDay(d appointment.Date) string {
	wd := l.shortDays[d.Weekday()]
	mon := l.shortMonths[d.Month()-1]
	if l.clock12 {
		return fmt.Sprintf("%s, %s %d", wd, mon, d.Day())
	}
	return fmt.Sprintf("%s, %d %s", wd, d.Day(), mon)
}

// FormatLongDay is the heading used when a single day is shown.
func (l Locale) FormatLongDay(d appointment.Date) string {
	wd := l.weekdays[d.Weekday()]
	mon := l.months[d.Month()-1]
	if l.clock12 {
		return fmt.Sprintf("%s, %s %d, %d", wd, mon, d.Day(), d.Year())
	}
	return fmt.Sprintf("%d %s %d %s", d.Day(), mon, d.Year(), wd)
}

// FormatRange labels a window. A one-day window uses the long form.
func (l Locale) FormatRange(w Window) string {
	if w.Days <= 1 {
		return l.FormatLongDay(w.Start)
	}
	start, end := w.Start, w.End()
	if l.clock12 {
		return fmt.Sprintf("%s %d - %s %d, %d",
			l.shortMonths[start.Month()-1], start.Day(),
			l.shortMonths[end.Month()-1], end.Day(), end.Year())
	}
	return fmt.Sprintf("%d %s - %d %s %d",
		start.Day(), l.shortMonths[start.Month()-1],
		end.Day(), l.shortMonths[end.Month()-1], end.Year())
}

// StateLabel is the text shown inside a cell.
func (l Locale) StateLabel(s SlotState) string {
	switch s {
	case SlotYourAppointment:
		return l.YourAppointment
	case SlotUnavailable:
		return l.Unavailable
	default:
		return l.Available
	}
}

func (l Locale) FormatStatus(s appointment.Status) string {
	if label, ok := l.Statuses[s]; ok {
		return label
	}
	return string(s)
}
