package schedule

import (
	"testing"
	"time"
)

func testCatalog() *Catalog {
	week := WeeklySchedule{
		Monday: &DaySchedule{Start: "09:00", End: "12:00", Slots: []string{"09:00", "09:30", "10:00"}},
		Friday: &DaySchedule{Start: "14:00", End: "16:00", Slots: []string{"14:00", "15:00"}},
	}
	return &Catalog{
		Online: week,
		Locations: []Location{
			{ID: "center-a", Kind: KindPhysical, Name: "Center A"},
		},
		Schedules: map[string]WeeklySchedule{
			"center-a": {
				Monday: &DaySchedule{Start: "10:00", End: "12:00", Slots: []string{"10:00", "11:00"}},
			},
		},
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2026-03-02 is a Monday.
	day, err := WeekdayOf("2026-03-02")
	if err != nil {
		t.Fatalf("WeekdayOf returned error: %v", err)
	}
	if day != time.Monday {
		t.Fatalf("expected Monday, got %s", day)
	}

	if _, err := WeekdayOf("02/03/2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSlotsFor(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name       string
		method     Method
		locationID string
		date       string
		want       []string
	}{
		{"online monday", MethodOnline, "", "2026-03-02", []string{"09:00", "09:30", "10:00"}},
		{"online ignores location id", MethodOnline, "center-a", "2026-03-02", []string{"09:00", "09:30", "10:00"}},
		{"offline monday", MethodOffline, "center-a", "2026-03-02", []string{"10:00", "11:00"}},
		{"closed day", MethodOnline, "", "2026-03-03", nil}, // Tuesday not configured
		{"offline closed day", MethodOffline, "center-a", "2026-03-06", nil},
		{"unknown location", MethodOffline, "center-x", "2026-03-02", nil},
		{"malformed date", MethodOnline, "", "not-a-date", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.SlotsFor(tt.method, tt.locationID, tt.date)
			if len(got) != len(tt.want) {
				t.Fatalf("SlotsFor = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("SlotsFor = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSlotsForReturnsCopy(t *testing.T) {
	catalog := testCatalog()
	slots := catalog.SlotsFor(MethodOnline, "", "2026-03-02")
	slots[0] = "mutated"
	again := catalog.SlotsFor(MethodOnline, "", "2026-03-02")
	if again[0] != "09:00" {
		t.Fatal("SlotsFor must not expose catalog internals")
	}
}

func TestDatesInRange(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC)

	dates := DatesInRange(3, now)
	want := []string{"2026-03-02", "2026-03-03", "2026-03-04"}
	if len(dates) != len(want) {
		t.Fatalf("DatesInRange(3) = %v, want %v", dates, want)
	}
	for i := range dates {
		if dates[i] != want[i] {
			t.Fatalf("DatesInRange(3) = %v, want %v", dates, want)
		}
	}

	// A window of 1 is exactly today.
	single := DatesInRange(1, now)
	if len(single) != 1 || single[0] != "2026-03-02" {
		t.Fatalf("DatesInRange(1) = %v, want [2026-03-02]", single)
	}

	if DatesInRange(0, now) != nil {
		t.Fatal("DatesInRange(0) should be empty")
	}
}

func TestDatesInRangeCrossesMonthBoundary(t *testing.T) {
	now := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	dates := DatesInRange(2, now)
	if dates[0] != "2026-01-31" || dates[1] != "2026-02-01" {
		t.Fatalf("expected month rollover, got %v", dates)
	}
}

func TestWeeklyScheduleValidate(t *testing.T) {
	tests := []struct {
		name    string
		day     *DaySchedule
		wantErr bool
	}{
		{"valid", &DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"09:00", "10:30"}}, false},
		{"slot before window", &DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"08:30"}}, true},
		{"slot at end boundary", &DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"11:00"}}, true},
		{"duplicate slot", &DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"09:00", "09:00"}}, true},
		{"out of order", &DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"10:00", "09:30"}}, true},
		{"empty window", &DaySchedule{Start: "11:00", End: "09:00", Slots: nil}, true},
		{"bad clock", &DaySchedule{Start: "9am", End: "11:00", Slots: nil}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := WeeklySchedule{Wednesday: tt.day}
			err := week.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCatalogValidateRejectsOrphanSchedule(t *testing.T) {
	catalog := testCatalog()
	catalog.Schedules["ghost"] = WeeklySchedule{}
	if err := catalog.Validate(); err == nil {
		t.Fatal("expected error for schedule without a location")
	}
}

func TestLocationKeyFor(t *testing.T) {
	if got := LocationKeyFor(MethodOnline, "center-a"); got != OnlineLocationKey {
		t.Fatalf("online key = %q, want %q", got, OnlineLocationKey)
	}
	if got := LocationKeyFor(MethodOffline, "center-a"); got != "center-a" {
		t.Fatalf("offline key = %q, want center-a", got)
	}
}

func TestParseMethod(t *testing.T) {
	if _, err := ParseMethod("online"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseMethod("walk-in"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	if err := DefaultCatalog().Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	if len(DefaultCatalog().PhysicalLocationIDs()) != 2 {
		t.Fatal("default catalog should have two physical centers")
	}
}
