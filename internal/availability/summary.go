package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/veracare-health/booking-platform/internal/schedule"
)

// Counts is a total/booked/available triple. Booked + Available == Total.
type Counts struct {
	Total     int `json:"total"`
	Booked    int `json:"booked"`
	Available int `json:"available"`
}

// DateSummary breaks one date down by channel.
type DateSummary struct {
	Online  *Counts           `json:"online,omitempty"`
	Offline map[string]Counts `json:"offline,omitempty"`
}

// Summary is the aggregate availability report over the rolling window.
type Summary struct {
	WindowDays     int                     `json:"window_days"`
	Dates          []string                `json:"dates"`
	TotalSlots     int                     `json:"total_slots"`
	BookedSlots    int                     `json:"booked_slots"`
	AvailableSlots int                     `json:"available_slots"`
	ByDate         map[string]*DateSummary `json:"by_date"`
	ByLocation     map[string]*Counts      `json:"by_location"`
}

// slotContext is one countable column of the report: the online channel or a
// physical center. Each context has exactly one method.
type slotContext struct {
	method      schedule.Method
	locationID  string
	locationKey string
}

// Summarize builds the availability report for a days-long window starting
// today. A non-positive days uses the engine's configured booking window.
// The method filter keeps only that channel; the location filter keeps only
// that context ("online" or a center ID).
//
// The report is built from exactly two ranged store fetches (one for
// appointments, one for sessions) followed by a single in-memory pass over
// date × context. It must never issue per-date or per-location store queries.
func (e *Engine) Summarize(ctx context.Context, days int, method *schedule.Method, locationID string) (*Summary, error) {
	start := time.Now()
	summary, err := e.summarize(ctx, days, method, locationID)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.ObserveQuery("summary", status, time.Since(start).Seconds())
	return summary, err
}

func (e *Engine) summarize(ctx context.Context, days int, method *schedule.Method, locationID string) (*Summary, error) {
	if days <= 0 {
		days = e.BookingWindowDays()
	}
	dates := schedule.DatesInRange(days, e.now())

	catalog, err := e.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability: load catalog: %w", err)
	}

	bookedSlots, err := e.appts.InRange(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("availability: fetch appointment range: %w", err)
	}
	heldSlots, err := e.sessions.InRange(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("availability: fetch session range: %w", err)
	}

	physical := catalog.PhysicalLocationIDs()

	// One consumed-key set covers both record kinds. Appointments map to a
	// single key; each session hold expands to the online key plus one key
	// per physical center, since a session blocks the timestamp everywhere.
	consumed := make(map[SlotKey]struct{}, len(bookedSlots)+len(heldSlots)*(1+len(physical)))
	for _, b := range bookedSlots {
		consumed[SlotKey{Date: b.Date, Time: b.Time, Method: b.Method, LocationKey: b.LocationKey}] = struct{}{}
	}
	for _, h := range heldSlots {
		consumed[SlotKey{Date: h.Date, Time: h.Time, Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey}] = struct{}{}
		for _, id := range physical {
			consumed[SlotKey{Date: h.Date, Time: h.Time, Method: schedule.MethodOffline, LocationKey: id}] = struct{}{}
		}
	}

	contexts := buildContexts(physical, method, locationID)

	summary := &Summary{
		WindowDays: days,
		Dates:      dates,
		ByDate:     make(map[string]*DateSummary, len(dates)),
		ByLocation: make(map[string]*Counts, len(contexts)),
	}

	for _, date := range dates {
		ds := &DateSummary{}
		for _, sc := range contexts {
			universe := catalog.SlotsFor(sc.method, sc.locationID, date)
			counts := Counts{Total: len(universe)}
			for _, slot := range universe {
				key := SlotKey{Date: date, Time: slot, Method: sc.method, LocationKey: sc.locationKey}
				if _, taken := consumed[key]; taken {
					counts.Booked++
				}
			}
			counts.Available = counts.Total - counts.Booked

			if sc.method == schedule.MethodOnline {
				online := counts
				ds.Online = &online
			} else {
				if ds.Offline == nil {
					ds.Offline = make(map[string]Counts)
				}
				ds.Offline[sc.locationID] = counts
			}

			loc := summary.ByLocation[sc.locationKey]
			if loc == nil {
				loc = &Counts{}
				summary.ByLocation[sc.locationKey] = loc
			}
			loc.Total += counts.Total
			loc.Booked += counts.Booked
			loc.Available += counts.Available

			summary.TotalSlots += counts.Total
			summary.BookedSlots += counts.Booked
			summary.AvailableSlots += counts.Available
		}
		summary.ByDate[date] = ds
	}

	return summary, nil
}

func buildContexts(physical []string, method *schedule.Method, locationID string) []slotContext {
	var contexts []slotContext
	includeOnline := (method == nil || *method == schedule.MethodOnline) &&
		(locationID == "" || locationID == schedule.OnlineLocationKey)
	if includeOnline {
		contexts = append(contexts, slotContext{
			method:      schedule.MethodOnline,
			locationKey: schedule.OnlineLocationKey,
		})
	}
	if method != nil && *method == schedule.MethodOnline {
		return contexts
	}
	for _, id := range physical {
		if locationID != "" && locationID != id {
			continue
		}
		contexts = append(contexts, slotContext{
			method:      schedule.MethodOffline,
			locationID:  id,
			locationKey: id,
		})
	}
	return contexts
}
