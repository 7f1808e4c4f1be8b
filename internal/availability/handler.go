package availability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// Handler exposes availability queries over HTTP.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates a new availability handler
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// SlotsResponse is the response for the available-slots query.
type SlotsResponse struct {
	Date       string   `json:"date"`
	Method     string   `json:"method"`
	LocationID string   `json:"location_id,omitempty"`
	Slots      []string `json:"slots"`
}

// GetSlots handles GET /availability/slots?date=&method=&location_id=
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date, method, locationID, ok := h.parseSlotQuery(w, r)
	if !ok {
		return
	}

	slots, err := h.engine.AvailableSlotsForDate(r.Context(), date, method, locationID)
	if err != nil {
		h.logger.Error("available slots query failed", "error", err, "date", date)
		writeJSONError(w, http.StatusServiceUnavailable, "could not determine availability")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SlotsResponse{
		Date:       date,
		Method:     string(method),
		LocationID: locationID,
		Slots:      slots,
	})
}

// CheckResponse is the response for the slot-free query.
type CheckResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// CheckSlot handles GET /availability/check?date=&time=&method=&location_id=
//
// This endpoint serves UI rendering and may answer from the TTL-bounded
// cache. Booking inserts run their own direct store check; a stale answer
// here can never cause a double-booking.
func (h *Handler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	date, method, locationID, ok := h.parseSlotQuery(w, r)
	if !ok {
		return
	}
	timeOfDay := r.URL.Query().Get("time")
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		writeJSONError(w, http.StatusBadRequest, "time must be formatted HH:MM")
		return
	}

	available := h.engine.IsSlotFreeCached(r.Context(), date, timeOfDay, method, locationID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CheckResponse{Date: date, Time: timeOfDay, Available: available})
}

// GetSummary handles GET /availability/summary?days=&method=&location_id=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 || parsed > 365 {
			writeJSONError(w, http.StatusBadRequest, "days must be a positive integer up to 365")
			return
		}
		days = parsed
	}

	var method *schedule.Method
	if methodStr := r.URL.Query().Get("method"); methodStr != "" {
		parsed, err := schedule.ParseMethod(methodStr)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "method must be online or offline")
			return
		}
		method = &parsed
	}
	locationID := strings.TrimSpace(r.URL.Query().Get("location_id"))

	summary, err := h.engine.Summarize(r.Context(), days, method, locationID)
	if err != nil {
		h.logger.Error("availability summary failed", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "could not build availability summary")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// BookingWindowRequest is the request body for updating the booking window.
type BookingWindowRequest struct {
	Days int `json:"days"`
}

// SetBookingWindow handles PUT /admin/booking-window requests
func (h *Handler) SetBookingWindow(w http.ResponseWriter, r *http.Request) {
	var req BookingWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.engine.SetBookingWindow(r.Context(), req.Days); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"days": h.engine.BookingWindowDays()})
}

func (h *Handler) parseSlotQuery(w http.ResponseWriter, r *http.Request) (date string, method schedule.Method, locationID string, ok bool) {
	q := r.URL.Query()
	date = q.Get("date")
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		writeJSONError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return "", "", "", false
	}
	method, err := schedule.ParseMethod(q.Get("method"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "method must be online or offline")
		return "", "", "", false
	}
	locationID = strings.TrimSpace(q.Get("location_id"))
	if method == schedule.MethodOffline && locationID == "" {
		writeJSONError(w, http.StatusBadRequest, "location_id is required for offline queries")
		return "", "", "", false
	}
	return date, method, locationID, true
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
