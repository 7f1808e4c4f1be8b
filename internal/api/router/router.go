package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veracare-health/booking-platform/internal/appointments"
	"github.com/veracare-health/booking-platform/internal/availability"
	httpmiddleware "github.com/veracare-health/booking-platform/internal/http/middleware"
	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/internal/sessions"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	AppointmentsHandler *appointments.Handler
	SessionsHandler     *sessions.Handler
	CatalogHandler      *schedule.Handler
	AdminToken          string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (patient-facing plus health and metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AvailabilityHandler != nil {
			public.Route("/availability", func(r chi.Router) {
				r.Get("/slots", cfg.AvailabilityHandler.GetSlots)
				r.Get("/check", cfg.AvailabilityHandler.CheckSlot)
				r.Get("/summary", cfg.AvailabilityHandler.GetSummary)
			})
		}
		if cfg.AppointmentsHandler != nil {
			public.Post("/appointments", cfg.AppointmentsHandler.Book)
		}
	})

	// Admin routes (protected by the static admin token)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(requireAdminToken(cfg.AdminToken))
		if cfg.CatalogHandler != nil {
			admin.Get("/catalog", cfg.CatalogHandler.GetCatalog)
			admin.Put("/catalog", cfg.CatalogHandler.PutCatalog)
		}
		if cfg.SessionsHandler != nil {
			admin.Post("/sessions", cfg.SessionsHandler.Create)
			admin.Get("/sessions", cfg.SessionsHandler.List)
			admin.Delete("/sessions/{id}", cfg.SessionsHandler.Delete)
		}
		if cfg.AppointmentsHandler != nil {
			admin.Get("/appointments", cfg.AppointmentsHandler.ListForDate)
		}
		if cfg.AvailabilityHandler != nil {
			admin.Put("/booking-window", cfg.AvailabilityHandler.SetBookingWindow)
			admin.Get("/availability/summary", cfg.AvailabilityHandler.GetSummary)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
