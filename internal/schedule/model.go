// Package schedule defines where and when appointments can happen: the online
// consultation channel plus named physical centers, each with a per-weekday
// opening window broken into discrete bookable time slots.
package schedule

import (
	"fmt"
	"time"
)

// Method is the consultation channel for a booking.
type Method string

const (
	MethodOnline  Method = "online"
	MethodOffline Method = "offline"
)

// ParseMethod validates a method string from the API surface.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodOnline, MethodOffline:
		return Method(s), nil
	}
	return "", fmt.Errorf("schedule: invalid method %q", s)
}

// OnlineLocationKey is the location dimension used for online bookings, which
// have no physical center.
const OnlineLocationKey = "online"

// LocationKind distinguishes the online channel from physical centers.
type LocationKind string

const (
	KindOnline   LocationKind = "online"
	KindPhysical LocationKind = "physical"
)

// Location identifies a bookable context.
type Location struct {
	ID      string       `json:"id"`
	Kind    LocationKind `json:"kind"`
	Name    string       `json:"name"`
	Address string       `json:"address,omitempty"`
	Phone   string       `json:"phone,omitempty"`
}

// DaySchedule is an opening window with its fixed slot list.
// Slots must be "15:04" strings within [Start, End), strictly increasing.
type DaySchedule struct {
	Start string   `json:"start"` // "09:00" in 24-hour format
	End   string   `json:"end"`   // "18:00" in 24-hour format
	Slots []string `json:"slots"`
}

// WeeklySchedule maps weekdays to their day schedule.
// Nil means closed that day.
type WeeklySchedule struct {
	Monday    *DaySchedule `json:"monday,omitempty"`
	Tuesday   *DaySchedule `json:"tuesday,omitempty"`
	Wednesday *DaySchedule `json:"wednesday,omitempty"`
	Thursday  *DaySchedule `json:"thursday,omitempty"`
	Friday    *DaySchedule `json:"friday,omitempty"`
	Saturday  *DaySchedule `json:"saturday,omitempty"`
	Sunday    *DaySchedule `json:"sunday,omitempty"`
}

// ForWeekday returns the schedule for a given weekday, nil when closed.
func (w *WeeklySchedule) ForWeekday(day time.Weekday) *DaySchedule {
	switch day {
	case time.Sunday:
		return w.Sunday
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return nil
	}
}

// Validate checks every configured day: parseable window, slots inside
// [Start, End), strictly increasing, no duplicates.
func (w *WeeklySchedule) Validate() error {
	days := []struct {
		name string
		d    *DaySchedule
	}{
		{"monday", w.Monday},
		{"tuesday", w.Tuesday},
		{"wednesday", w.Wednesday},
		{"thursday", w.Thursday},
		{"friday", w.Friday},
		{"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
	for _, day := range days {
		if day.d == nil {
			continue
		}
		if err := day.d.validate(); err != nil {
			return fmt.Errorf("schedule: %s: %w", day.name, err)
		}
	}
	return nil
}

func (d *DaySchedule) validate() error {
	start, err := minutesOfDay(d.Start)
	if err != nil {
		return fmt.Errorf("bad start time %q", d.Start)
	}
	end, err := minutesOfDay(d.End)
	if err != nil {
		return fmt.Errorf("bad end time %q", d.End)
	}
	if end <= start {
		return fmt.Errorf("window %s-%s is empty", d.Start, d.End)
	}
	prev := -1
	for _, slot := range d.Slots {
		m, err := minutesOfDay(slot)
		if err != nil {
			return fmt.Errorf("bad slot time %q", slot)
		}
		if m < start || m >= end {
			return fmt.Errorf("slot %s outside window %s-%s", slot, d.Start, d.End)
		}
		if m <= prev {
			return fmt.Errorf("slot %s out of order or duplicated", slot)
		}
		prev = m
	}
	return nil
}

func minutesOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
