package appointments

import (
	"strings"
	"time"

	"github.com/veracare-health/booking-platform/internal/schedule"
)

// Appointment is a patient-initiated booking for one slot.
type Appointment struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"` // "2006-01-02", civil
	Time         string          `json:"time"` // "15:04", civil
	Method       schedule.Method `json:"method"`
	LocationID   string          `json:"location_id,omitempty"` // empty for online
	PatientName  string          `json:"patient_name"`
	PatientEmail string          `json:"patient_email,omitempty"`
	PatientPhone string          `json:"patient_phone,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LocationKey returns the normalized location dimension used for slot identity.
func (a *Appointment) LocationKey() string {
	return schedule.LocationKeyFor(a.Method, a.LocationID)
}

// BookRequest is the request body for creating an appointment.
type BookRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Method       string `json:"method"`
	LocationID   string `json:"location_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
	Notes        string `json:"notes"`
}

// Validate checks the request and returns the parsed method.
func (r *BookRequest) Validate() (schedule.Method, error) {
	if _, err := time.Parse(schedule.DateLayout, r.Date); err != nil {
		return "", ErrInvalidDate
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return "", ErrInvalidTime
	}
	method, err := schedule.ParseMethod(r.Method)
	if err != nil {
		return "", ErrInvalidMethod
	}
	if method == schedule.MethodOffline && strings.TrimSpace(r.LocationID) == "" {
		return "", ErrMissingLocation
	}
	if strings.TrimSpace(r.PatientName) == "" {
		return "", ErrInvalidPatientName
	}
	if strings.TrimSpace(r.PatientEmail) == "" && strings.TrimSpace(r.PatientPhone) == "" {
		return "", ErrMissingContact
	}
	return method, nil
}
