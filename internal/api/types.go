package api

import (
	"github.com/hackgods/gym-member-schedule/internal/checkin"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckInRequest struct {
	QRCode string `json:"qrCode"`
}

type CheckInResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Record  *checkin.Record `json:"record,omitempty"`
}

type ScheduleResponse struct {
	Success  bool               `json:"success"`
	Redirect string             `json:"redirect,omitempty"`
	Schedule *schedule.GridView `json:"schedule,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}
