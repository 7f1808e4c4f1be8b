// Package availability computes which appointment slots remain bookable. It
// subtracts consumed bookings (patient appointments and staff session holds,
// two record kinds sharing one time axis) from the schedule catalog's slot
// universe, and aggregates counts across the rolling booking window.
package availability

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/veracare-health/booking-platform/internal/appointments"
	"github.com/veracare-health/booking-platform/internal/observability/metrics"
	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/internal/sessions"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

// SlotKey identifies one bookable unit. Online bookings share the "online"
// location key; offline bookings carry their center ID.
type SlotKey struct {
	Date        string
	Time        string
	Method      schedule.Method
	LocationKey string
}

// CatalogSource provides the current schedule catalog.
type CatalogSource interface {
	Get(ctx context.Context) (*schedule.Catalog, error)
}

// AppointmentSource is the appointment query surface the engine needs.
type AppointmentSource interface {
	TimesOn(ctx context.Context, date string, method schedule.Method, locationKey string) ([]string, error)
	InRange(ctx context.Context, dates []string) ([]appointments.BookedSlot, error)
	ExistsAt(ctx context.Context, date, timeOfDay string, method schedule.Method, locationKey string) (bool, error)
}

// SessionSource is the session query surface the engine needs. Sessions have
// no location dimension; a hold at (date, time) blocks every location and method.
type SessionSource interface {
	TimesOn(ctx context.Context, date string) ([]string, error)
	InRange(ctx context.Context, dates []string) ([]sessions.HeldSlot, error)
	ExistsAt(ctx context.Context, date, timeOfDay string) (bool, error)
}

// Engine answers slot availability queries. It holds no state between calls
// other than the optional read-path cache and the booking window length; all
// answers are computed fresh from the catalog and the stores.
type Engine struct {
	catalog  CatalogSource
	appts    AppointmentSource
	sessions SessionSource
	cache    *SlotCache
	metrics  *metrics.AvailabilityMetrics
	logger   *logging.Logger

	windowDays atomic.Int64

	// now anchors "today" for the rolling window, normally in the clinic's
	// timezone. Injectable for tests.
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache attaches the read-path slot cache.
func WithCache(cache *SlotCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.AvailabilityMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the clock used to anchor the rolling window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an availability engine with the given default booking
// window length.
func NewEngine(catalog CatalogSource, appts AppointmentSource, sess SessionSource, windowDays int, logger *logging.Logger, opts ...Option) *Engine {
	if catalog == nil {
		panic("availability: catalog source required")
	}
	if appts == nil {
		panic("availability: appointment source required")
	}
	if sess == nil {
		panic("availability: session source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		catalog:  catalog,
		appts:    appts,
		sessions: sess,
		logger:   logger,
		now:      time.Now,
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	e.windowDays.Store(int64(windowDays))
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BookingWindowDays returns the current rolling window length.
func (e *Engine) BookingWindowDays() int {
	return int(e.windowDays.Load())
}

// SetBookingWindow updates the rolling window length and invalidates the
// read-path cache wholesale, since every cached answer was computed against
// the old window configuration.
func (e *Engine) SetBookingWindow(ctx context.Context, days int) error {
	if days <= 0 {
		return fmt.Errorf("availability: booking window must be positive, got %d", days)
	}
	e.windowDays.Store(int64(days))
	if err := e.cache.Invalidate(ctx); err != nil {
		return err
	}
	e.logger.Info("booking window updated", "days", days)
	return nil
}

// AvailableSlotsForDate returns the ordered bookable times for one date,
// method and location: the catalog universe minus appointment bookings for
// the normalized location key minus session holds for the date. Closed days
// and unknown locations yield an empty list; store failures are errors, so
// callers can tell "nothing configured" from "could not determine".
func (e *Engine) AvailableSlotsForDate(ctx context.Context, date string, method schedule.Method, locationID string) ([]string, error) {
	start := time.Now()
	slots, err := e.availableSlots(ctx, date, method, locationID)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.ObserveQuery("slots_for_date", status, time.Since(start).Seconds())
	return slots, err
}

func (e *Engine) availableSlots(ctx context.Context, date string, method schedule.Method, locationID string) ([]string, error) {
	catalog, err := e.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability: load catalog: %w", err)
	}

	universe := catalog.SlotsFor(method, locationID, date)
	if len(universe) == 0 {
		return []string{}, nil
	}

	locationKey := schedule.LocationKeyFor(method, locationID)
	apptTimes, err := e.appts.TimesOn(ctx, date, method, locationKey)
	if err != nil {
		return nil, fmt.Errorf("availability: fetch appointments: %w", err)
	}
	sessionTimes, err := e.sessions.TimesOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("availability: fetch sessions: %w", err)
	}

	consumed := make(map[string]struct{}, len(apptTimes)+len(sessionTimes))
	for _, t := range apptTimes {
		consumed[t] = struct{}{}
	}
	for _, t := range sessionTimes {
		consumed[t] = struct{}{}
	}

	available := make([]string, 0, len(universe))
	for _, slot := range universe {
		if _, taken := consumed[slot]; !taken {
			available = append(available, slot)
		}
	}
	return available, nil
}

// IsSlotFree is the authoritative write-path check run immediately before a
// booking insert. It queries the store directly, never the cache, and fails
// closed: any query error answers "not available", because a stale yes here
// becomes a double-booking. The store's uniqueness constraint remains the
// true source of mutual exclusion between concurrent bookers.
func (e *Engine) IsSlotFree(ctx context.Context, date, timeOfDay string, method schedule.Method, locationID string) bool {
	start := time.Now()
	locationKey := schedule.LocationKeyFor(method, locationID)

	booked, err := e.appts.ExistsAt(ctx, date, timeOfDay, method, locationKey)
	if err != nil {
		e.failClosed(err, date, timeOfDay)
		e.metrics.ObserveQuery("slot_free", "error", time.Since(start).Seconds())
		return false
	}
	if booked {
		e.metrics.ObserveQuery("slot_free", "ok", time.Since(start).Seconds())
		return false
	}

	held, err := e.sessions.ExistsAt(ctx, date, timeOfDay)
	if err != nil {
		e.failClosed(err, date, timeOfDay)
		e.metrics.ObserveQuery("slot_free", "error", time.Since(start).Seconds())
		return false
	}

	e.metrics.ObserveQuery("slot_free", "ok", time.Since(start).Seconds())
	return !held
}

// IsSlotFreeCached is the read-path variant used for rendering availability
// badges. It consults the TTL-bounded cache first and backfills it on a miss.
// Staleness here is cosmetic and corrected on the next refresh; anything that
// accepts a booking must use IsSlotFree instead.
func (e *Engine) IsSlotFreeCached(ctx context.Context, date, timeOfDay string, method schedule.Method, locationID string) bool {
	key := SlotKey{Date: date, Time: timeOfDay, Method: method, LocationKey: schedule.LocationKeyFor(method, locationID)}

	if available, ok := e.cache.Get(ctx, key); ok {
		e.metrics.ObserveCache(true)
		return available
	}
	e.metrics.ObserveCache(false)

	available := e.IsSlotFree(ctx, date, timeOfDay, method, locationID)
	e.cache.Put(ctx, key, available)
	return available
}

func (e *Engine) failClosed(err error, date, timeOfDay string) {
	e.metrics.ObserveFailClosed()
	e.logger.Warn("slot check failed closed",
		"error", err,
		"date", date,
		"time", timeOfDay,
	)
}
