package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/checkin"
	"github.com/hackgods/gym-member-schedule/internal/navbar"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := appointment.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, appointment.DayResponse{
				Success: false,
				Error:   "date must be YYYY-MM-DD",
			})
			return
		}

		memberID := auth.SessionFromContext(r.Context()).MemberID()
		list, err := svc.GetAppointments(r.Context(), memberID, day)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, appointment.DayResponse{
				Success: false,
				Date:    day.Key(),
				Error:   "Failed to load appointments",
			})
			return
		}

		// raw records with owner ids; the grid does the masking
		out := make([]appointment.Appointment, len(list))
		for i, a := range list {
			out[i] = a.Redacted()
		}

		writeJSON(w, http.StatusOK, appointment.DayResponse{
			Success:      true,
			Date:         day.Key(),
			Appointments: out,
		})
	}
}

func loginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleLoginError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func checkInHandler(svc *checkin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		memberID := auth.SessionFromContext(r.Context()).MemberID()
		rec, err := svc.CheckIn(r.Context(), memberID, req.QRCode)
		if err != nil {
			handleCheckInError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CheckInResponse{
			Success: true,
			Message: checkin.MessageSuccess,
			Record:  rec,
		})
	}
}

func checkInHistoryHandler(svc *checkin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			limit = n
		}

		memberID := auth.SessionFromContext(r.Context()).MemberID()
		history, err := svc.History(r.Context(), memberID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if history == nil {
			history = []checkin.Record{}
		}

		writeJSON(w, http.StatusOK, history)
	}
}

func navHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, navbar.Items(r.URL.Query().Get("path")))
	}
}

// scheduleHandler renders the grid for ?start=YYYY-MM-DD&offset=N&days=N by
// driving a schedule.Page against a capturing renderer.
func scheduleHandler(source schedule.DataSource, base schedule.Options, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := base
		q := r.URL.Query()

		if raw := q.Get("start"); raw != "" {
			start, err := appointment.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_start", "start must be YYYY-MM-DD")
				return
			}
			opts.Start = start
		}
		if raw := q.Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 14 {
				writeError(w, http.StatusBadRequest, "invalid_days", "days must be between 1 and 14")
				return
			}
			opts.DaysToShow = n
		}

		offset := 0
		if raw := q.Get("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
				return
			}
			offset = n
		}

		renderer := &captureRenderer{}
		nav := &redirectRecorder{}
		session := auth.SessionFromContext(r.Context())
		page := schedule.NewPage(source, renderer, nav, session, opts, logger)

		if offset != 0 {
			// paging an unloaded page only moves the window; Init does the one fetch
			page.ChangeWindow(offset)
		}

		err := page.Init(r.Context())
		if errors.Is(err, schedule.ErrAuthRequired) {
			writeJSON(w, http.StatusUnauthorized, ScheduleResponse{Success: false, Redirect: nav.path, Error: "login required"})
			return
		}

		view, ok := renderer.lastGrid()
		if !ok {
			view = page.View()
		}
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ScheduleResponse{Success: false, Schedule: &view, Error: view.Error})
			return
		}

		writeJSON(w, http.StatusOK, ScheduleResponse{Success: true, Schedule: &view})
	}
}

// slotDetailsHandler opens the detail view of /api/schedule/{date}/{hour}.
func slotDetailsHandler(source schedule.DataSource, base schedule.Options, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := appointment.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		hour, err := strconv.Atoi(chi.URLParam(r, "hour"))
		if err != nil || hour < 0 || hour > 23 {
			writeError(w, http.StatusBadRequest, "invalid_hour", "hour must be 0-23")
			return
		}

		opts := base
		opts.Start = day
		opts.DaysToShow = 1

		renderer := &captureRenderer{}
		nav := &redirectRecorder{}
		page := schedule.NewPage(source, renderer, nav, auth.SessionFromContext(r.Context()), opts, logger)

		if err := page.Init(r.Context()); err != nil {
			handleScheduleError(w, err, nav.path)
			return
		}

		details, err := page.SelectSlot(day, hour)
		if err != nil {
			handleScheduleError(w, err, nav.path)
			return
		}

		writeJSON(w, http.StatusOK, details)
	}
}

func handleScheduleError(w http.ResponseWriter, err error, redirect string) {
	switch {
	case errors.Is(err, schedule.ErrAuthRequired):
		writeJSON(w, http.StatusUnauthorized, ScheduleResponse{Success: false, Redirect: redirect, Error: "login required"})
	case errors.Is(err, schedule.ErrNotOwnAppointment):
		writeError(w, http.StatusForbidden, "not_own_appointment", "only your own appointments can be opened")
	case errors.Is(err, schedule.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, appointment.ErrDataAccess):
		writeError(w, http.StatusServiceUnavailable, "data_unavailable", "Failed to load appointments")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleLoginError(w http.ResponseWriter, err error) {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Details: verr.Message, Field: verr.Field})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Login failed. Please try again.")
	}
}

func handleCheckInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkin.ErrUnknownLocation):
		writeError(w, http.StatusBadRequest, "unknown_location", err.Error())
	case errors.Is(err, checkin.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, "already_checked_in", "you have just checked in")
	case errors.Is(err, checkin.ErrCheckInInProgress):
		writeError(w, http.StatusConflict, "check_in_in_progress", "check-in is being processed, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", checkin.MessageFailed)
	}
}
