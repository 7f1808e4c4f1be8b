package schedule

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veracare-health/booking-platform/pkg/logging"
)

// CacheInvalidator drops derived availability answers after a catalog change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler exposes the admin catalog endpoints.
type Handler struct {
	store       *Store
	invalidator CacheInvalidator
	logger      *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(store *Store, invalidator CacheInvalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, invalidator: invalidator, logger: logger}
}

// GetCatalog handles GET /admin/catalog requests
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load catalog", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load catalog")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalog)
}

// PutCatalog handles PUT /admin/catalog requests. Replacing the catalog
// invalidates cached availability answers, which were computed against the
// old slot universe.
func (h *Handler) PutCatalog(w http.ResponseWriter, r *http.Request) {
	var catalog Catalog
	if err := json.NewDecoder(r.Body).Decode(&catalog); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := catalog.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Set(r.Context(), &catalog); err != nil {
		h.logger.Error("failed to save catalog", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not save catalog")
		return
	}

	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(r.Context()); err != nil {
			h.logger.Error("failed to invalidate availability cache", "error", err)
		}
	}

	h.logger.Info("schedule catalog replaced", "locations", len(catalog.Locations))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&catalog)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
