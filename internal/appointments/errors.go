package appointments

import "errors"

var (
	// ErrSlotTaken is returned when the requested slot is already consumed,
	// either by the pre-check or by the insert hitting the uniqueness
	// constraint. Callers treat both the same way.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrInvalidDate is returned when the date is not a "2006-01-02" value.
	ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

	// ErrInvalidTime is returned when the time is not a "15:04" value.
	ErrInvalidTime = errors.New("time must be formatted HH:MM")

	// ErrInvalidMethod is returned for methods other than online/offline.
	ErrInvalidMethod = errors.New("method must be online or offline")

	// ErrMissingLocation is returned for offline bookings without a center.
	ErrMissingLocation = errors.New("location_id is required for offline bookings")

	// ErrInvalidPatientName is returned when the patient name is empty.
	ErrInvalidPatientName = errors.New("patient_name is required")

	// ErrMissingContact is returned when both email and phone are missing.
	ErrMissingContact = errors.New("either patient_email or patient_phone is required")

	// ErrNotFound is returned when an appointment does not exist.
	ErrNotFound = errors.New("appointment not found")
)
