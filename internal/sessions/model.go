// Package sessions manages staff-created calendar holds. A session occupies a
// (date, time) pair on the provider's calendar and blocks that slot at every
// location and for both consultation methods at once. It is a hard hold on
// the provider's time, not a booking tied to a specific room. Admin tooling
// must present it that way.
package sessions

import (
	"errors"
	"strings"
	"time"

	"github.com/veracare-health/booking-platform/internal/schedule"
)

// Session is a staff hold on one timestamp. It carries no method or location
// dimension on purpose.
type Session struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // "2006-01-02", civil
	Time      string    `json:"time"` // "15:04", civil
	Title     string    `json:"title,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HeldSlot is the (date, time) pair of a session, as fetched for summary building.
type HeldSlot struct {
	Date string
	Time string
}

var (
	// ErrSlotHeld is returned when a session already exists at the timestamp.
	ErrSlotHeld = errors.New("a session already holds this time")

	// ErrInvalidDate is returned when the date is not a "2006-01-02" value.
	ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

	// ErrInvalidTime is returned when the time is not a "15:04" value.
	ErrInvalidTime = errors.New("time must be formatted HH:MM")

	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
)

// CreateRequest is the request body for creating a session.
type CreateRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}

// Validate checks date and time formats.
func (r *CreateRequest) Validate() error {
	if _, err := time.Parse(schedule.DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return ErrInvalidTime
	}
	r.Title = strings.TrimSpace(r.Title)
	return nil
}
