package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// Repository is the persistence surface the handler needs.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	ListRange(ctx context.Context, from, to string) ([]*Session, error)
}

// Handler handles admin HTTP requests for sessions.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new sessions handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /admin/sessions requests. The created hold blocks its
// timestamp across every location and method.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode session request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := &Session{
		Date:      req.Date,
		Time:      req.Time,
		Title:     req.Title,
		CreatedBy: req.CreatedBy,
	}
	if err := h.repo.Create(r.Context(), session); err != nil {
		if errors.Is(err, ErrSlotHeld) {
			writeJSONError(w, http.StatusConflict, ErrSlotHeld.Error())
			return
		}
		h.logger.Error("failed to create session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	h.logger.Info("session created", "id", session.ID, "date", session.Date, "time", session.Time)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

// Delete handles DELETE /admin/sessions/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing session id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Error("failed to delete session", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "could not delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListResponse is the response for listing sessions.
type ListResponse struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Sessions []*Session `json:"sessions"`
	Count    int        `json:"count"`
}

// List handles GET /admin/sessions?from=&to= requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if _, err := time.Parse(schedule.DateLayout, from); err != nil {
		writeJSONError(w, http.StatusBadRequest, "from "+ErrInvalidDate.Error())
		return
	}
	if _, err := time.Parse(schedule.DateLayout, to); err != nil {
		writeJSONError(w, http.StatusBadRequest, "to "+ErrInvalidDate.Error())
		return
	}

	sessions, err := h.repo.ListRange(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{From: from, To: to, Sessions: sessions, Count: len(sessions)})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
