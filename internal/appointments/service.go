package appointments

import (
	"context"
	"fmt"

	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// SlotChecker is the write-path availability predicate. The availability
// engine implements it with direct store queries and fail-closed semantics.
type SlotChecker interface {
	IsSlotFree(ctx context.Context, date, timeOfDay string, method schedule.Method, locationID string) bool
}

// CatalogSource provides the current schedule catalog.
type CatalogSource interface {
	Get(ctx context.Context) (*schedule.Catalog, error)
}

// Repository is the persistence surface the booking service needs.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListForDate(ctx context.Context, date string) ([]*Appointment, error)
}

// Service books appointments. The pre-check narrows the race window; the
// store's uniqueness constraint closes it. Both paths surface as ErrSlotTaken.
type Service struct {
	repo    Repository
	catalog CatalogSource
	checker SlotChecker
	logger  *logging.Logger
}

// NewService constructs a booking service.
func NewService(repo Repository, catalog CatalogSource, checker SlotChecker, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if catalog == nil {
		panic("appointments: catalog source required")
	}
	if checker == nil {
		panic("appointments: slot checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, catalog: catalog, checker: checker, logger: logger}
}

// Book validates the request, confirms the slot exists in the catalog and is
// still free, then inserts. A concurrent booker losing the insert race gets
// ErrSlotTaken from the constraint, same as a failed pre-check.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	method, err := req.Validate()
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: load catalog: %w", err)
	}
	if !slotInUniverse(catalog, method, req.LocationID, req.Date, req.Time) {
		return nil, ErrSlotTaken
	}

	if !s.checker.IsSlotFree(ctx, req.Date, req.Time, method, req.LocationID) {
		return nil, ErrSlotTaken
	}

	appt := &Appointment{
		Date:         req.Date,
		Time:         req.Time,
		Method:       method,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		Notes:        req.Notes,
	}
	if method == schedule.MethodOffline {
		appt.LocationID = req.LocationID
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		"id", appt.ID,
		"date", appt.Date,
		"time", appt.Time,
		"method", appt.Method,
		"location_key", appt.LocationKey(),
	)
	return appt, nil
}

func slotInUniverse(catalog *schedule.Catalog, method schedule.Method, locationID, date, timeOfDay string) bool {
	for _, slot := range catalog.SlotsFor(method, locationID, date) {
		if slot == timeOfDay {
			return true
		}
	}
	return false
}
