package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format used across the platform. Dates are
// local clinic values, never UTC instants; parsing them directly keeps
// weekday derivation free of midnight-boundary drift.
const DateLayout = "2006-01-02"

// Catalog is the full bookable universe: the online channel's weekly schedule
// plus each physical center and its schedule. Read-only input to the
// availability engine; mutation happens through the admin API only.
type Catalog struct {
	Online    WeeklySchedule            `json:"online"`
	Locations []Location                `json:"locations"`
	Schedules map[string]WeeklySchedule `json:"schedules"`
}

// WeekdayOf derives the calendar weekday of a civil date string.
func WeekdayOf(date string) (time.Weekday, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("schedule: bad date %q: %w", date, err)
	}
	return t.Weekday(), nil
}

// SlotsFor returns the ordered slot list for a date, method and location.
// Closed days, unknown locations and malformed dates all yield an empty
// list; absence of configuration is "no availability", never an error.
func (c *Catalog) SlotsFor(method Method, locationID, date string) []string {
	weekday, err := WeekdayOf(date)
	if err != nil {
		return nil
	}

	var week *WeeklySchedule
	if method == MethodOnline {
		week = &c.Online
	} else {
		w, ok := c.Schedules[locationID]
		if !ok {
			return nil
		}
		week = &w
	}

	day := week.ForWeekday(weekday)
	if day == nil {
		return nil
	}
	out := make([]string, len(day.Slots))
	copy(out, day.Slots)
	return out
}

// PhysicalLocationIDs returns the IDs of every physical center, in catalog order.
func (c *Catalog) PhysicalLocationIDs() []string {
	ids := make([]string, 0, len(c.Locations))
	for _, loc := range c.Locations {
		if loc.Kind == KindPhysical {
			ids = append(ids, loc.ID)
		}
	}
	return ids
}

// LocationByID looks up a physical center.
func (c *Catalog) LocationByID(id string) (Location, bool) {
	for _, loc := range c.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}

// Validate checks the online schedule and every center schedule.
func (c *Catalog) Validate() error {
	if err := c.Online.Validate(); err != nil {
		return fmt.Errorf("online: %w", err)
	}
	for _, loc := range c.Locations {
		if loc.ID == "" {
			return fmt.Errorf("schedule: location with empty id")
		}
		if loc.Kind != KindPhysical {
			return fmt.Errorf("schedule: location %s must be physical", loc.ID)
		}
	}
	for id, week := range c.Schedules {
		if _, ok := c.LocationByID(id); !ok {
			return fmt.Errorf("schedule: schedule for unknown location %s", id)
		}
		if err := week.Validate(); err != nil {
			return fmt.Errorf("location %s: %w", id, err)
		}
	}
	return nil
}

// DatesInRange returns days consecutive civil dates starting at now's date.
// A window of 1 is exactly today.
func DatesInRange(days int, now time.Time) []string {
	if days <= 0 {
		return nil
	}
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// LocationKeyFor normalizes the location dimension of a slot: online bookings
// share the single "online" key, offline bookings use their center ID.
func LocationKeyFor(method Method, locationID string) string {
	if method == MethodOnline {
		return OnlineLocationKey
	}
	return locationID
}

// DefaultCatalog returns the catalog used until an admin configures one:
// the online channel open weekdays plus two physical centers.
func DefaultCatalog() *Catalog {
	weekdayHours := func(slots ...string) *DaySchedule {
		return &DaySchedule{Start: "09:00", End: "18:00", Slots: slots}
	}
	fullDay := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"12:00", "14:00", "14:30", "15:00", "15:30", "16:00",
		"16:30", "17:00", "17:30",
	}
	weekly := WeeklySchedule{
		Monday:    weekdayHours(fullDay...),
		Tuesday:   weekdayHours(fullDay...),
		Wednesday: weekdayHours(fullDay...),
		Thursday:  weekdayHours(fullDay...),
		Friday:    weekdayHours(fullDay...),
		Saturday:  &DaySchedule{Start: "09:00", End: "14:00", Slots: []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30"}},
		Sunday:    nil, // Closed
	}
	return &Catalog{
		Online: weekly,
		Locations: []Location{
			{ID: "center-koramangala", Kind: KindPhysical, Name: "Veracare Koramangala", Address: "80 Feet Rd, Koramangala, Bengaluru", Phone: "+91 80 4111 0101"},
			{ID: "center-indiranagar", Kind: KindPhysical, Name: "Veracare Indiranagar", Address: "100 Feet Rd, Indiranagar, Bengaluru", Phone: "+91 80 4111 0202"},
		},
		Schedules: map[string]WeeklySchedule{
			"center-koramangala": weekly,
			"center-indiranagar": weekly,
		},
	}
}
