package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// Book handles POST /appointments requests
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode book request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			writeJSONError(w, http.StatusConflict, ErrSlotTaken.Error())
		case isValidationError(err):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to book appointment", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "could not book appointment")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

// ListForDateResponse is the response for listing appointments.
type ListForDateResponse struct {
	Date         string         `json:"date"`
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
}

// ListForDate handles GET /admin/appointments?date= requests
func (h *Handler) ListForDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrInvalidDate.Error())
		return
	}

	appts, err := h.repo.ListForDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "date", date)
		writeJSONError(w, http.StatusInternalServerError, "could not list appointments")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListForDateResponse{
		Date:         date,
		Appointments: appts,
		Count:        len(appts),
	})
}

func isValidationError(err error) bool {
	for _, v := range []error{
		ErrInvalidDate, ErrInvalidTime, ErrInvalidMethod,
		ErrMissingLocation, ErrInvalidPatientName, ErrMissingContact,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
