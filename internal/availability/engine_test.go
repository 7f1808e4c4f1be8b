package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/veracare-health/booking-platform/internal/appointments"
	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/internal/sessions"
)

// monday is 2026-03-02.
const monday = "2026-03-02"

func fixedClock() time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}

type stubCatalog struct {
	catalog *schedule.Catalog
	err     error
}

func (s *stubCatalog) Get(context.Context) (*schedule.Catalog, error) {
	return s.catalog, s.err
}

type stubAppointments struct {
	booked     []appointments.BookedSlot
	err        error
	timesCalls int
	rangeCalls int
}

func (s *stubAppointments) TimesOn(_ context.Context, date string, method schedule.Method, locationKey string) ([]string, error) {
	s.timesCalls++
	if s.err != nil {
		return nil, s.err
	}
	var times []string
	for _, b := range s.booked {
		if b.Date == date && b.Method == method && b.LocationKey == locationKey {
			times = append(times, b.Time)
		}
	}
	return times, nil
}

func (s *stubAppointments) InRange(_ context.Context, dates []string) ([]appointments.BookedSlot, error) {
	s.rangeCalls++
	if s.err != nil {
		return nil, s.err
	}
	inWindow := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		inWindow[d] = struct{}{}
	}
	var out []appointments.BookedSlot
	for _, b := range s.booked {
		if _, ok := inWindow[b.Date]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubAppointments) ExistsAt(_ context.Context, date, timeOfDay string, method schedule.Method, locationKey string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, b := range s.booked {
		if b.Date == date && b.Time == timeOfDay && b.Method == method && b.LocationKey == locationKey {
			return true, nil
		}
	}
	return false, nil
}

type stubSessions struct {
	held       []sessions.HeldSlot
	err        error
	timesCalls int
	rangeCalls int
}

func (s *stubSessions) TimesOn(_ context.Context, date string) ([]string, error) {
	s.timesCalls++
	if s.err != nil {
		return nil, s.err
	}
	var times []string
	for _, h := range s.held {
		if h.Date == date {
			times = append(times, h.Time)
		}
	}
	return times, nil
}

func (s *stubSessions) InRange(_ context.Context, dates []string) ([]sessions.HeldSlot, error) {
	s.rangeCalls++
	if s.err != nil {
		return nil, s.err
	}
	inWindow := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		inWindow[d] = struct{}{}
	}
	var out []sessions.HeldSlot
	for _, h := range s.held {
		if _, ok := inWindow[h.Date]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubSessions) ExistsAt(_ context.Context, date, timeOfDay string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, h := range s.held {
		if h.Date == date && h.Time == timeOfDay {
			return true, nil
		}
	}
	return false, nil
}

func bookedOnline(date, timeOfDay string) appointments.BookedSlot {
	return appointments.BookedSlot{
		Date:        date,
		Time:        timeOfDay,
		Method:      schedule.MethodOnline,
		LocationKey: schedule.OnlineLocationKey,
	}
}

func engineCatalog() *schedule.Catalog {
	week := schedule.WeeklySchedule{
		Monday: &schedule.DaySchedule{Start: "09:00", End: "11:00", Slots: []string{"09:00", "09:30", "10:00"}},
	}
	return &schedule.Catalog{
		Online: week,
		Locations: []schedule.Location{
			{ID: "center-a", Kind: schedule.KindPhysical, Name: "Center A"},
			{ID: "center-b", Kind: schedule.KindPhysical, Name: "Center B"},
		},
		Schedules: map[string]schedule.WeeklySchedule{
			"center-a": week,
			"center-b": week,
		},
	}
}

func newTestEngine(appts *stubAppointments, sess *stubSessions, catalog *schedule.Catalog) *Engine {
	if catalog == nil {
		catalog = engineCatalog()
	}
	return NewEngine(&stubCatalog{catalog: catalog}, appts, sess, 30, nil, WithClock(fixedClock))
}

func assertSlots(t *testing.T, got, want []string) {
	t.Helper()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestAvailableSlotsClosedDayIgnoresBookings(t *testing.T) {
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: "2026-03-03", Time: "09:00", Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey},
	}}
	engine := newTestEngine(appts, &stubSessions{}, nil)

	// Tuesday is not configured, so the universe is empty whatever is booked.
	slots, err := engine.AvailableSlotsForDate(context.Background(), "2026-03-03", schedule.MethodOnline, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %v", slots)
	}
}

func TestAvailableSlotsSubtractsBookedAppointment(t *testing.T) {
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: monday, Time: "09:00", Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey},
	}}
	engine := newTestEngine(appts, &stubSessions{}, nil)

	slots, err := engine.AvailableSlotsForDate(context.Background(), monday, schedule.MethodOnline, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{"09:30", "10:00"})
}

func TestAvailableSlotsOnlineBookingDoesNotBlockOffline(t *testing.T) {
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: monday, Time: "09:00", Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey},
	}}
	engine := newTestEngine(appts, &stubSessions{}, nil)

	slots, err := engine.AvailableSlotsForDate(context.Background(), monday, schedule.MethodOffline, "center-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{"09:00", "09:30", "10:00"})
}

func TestAvailableSlotsSessionBlocksEveryLocation(t *testing.T) {
	sess := &stubSessions{held: []sessions.HeldSlot{{Date: monday, Time: "09:30"}}}
	engine := newTestEngine(&stubAppointments{}, sess, nil)
	ctx := context.Background()

	for _, q := range []struct {
		method     schedule.Method
		locationID string
	}{
		{schedule.MethodOnline, ""},
		{schedule.MethodOffline, "center-a"},
		{schedule.MethodOffline, "center-b"},
	} {
		slots, err := engine.AvailableSlotsForDate(ctx, monday, q.method, q.locationID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSlots(t, slots, []string{"09:00", "10:00"})
	}
}

func TestAvailableSlotsIdempotent(t *testing.T) {
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: monday, Time: "10:00", Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey},
	}}
	engine := newTestEngine(appts, &stubSessions{}, nil)
	ctx := context.Background()

	first, err := engine.AvailableSlotsForDate(ctx, monday, schedule.MethodOnline, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.AvailableSlotsForDate(ctx, monday, schedule.MethodOnline, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, second, first)
}

func TestAvailableSlotsPropagatesStoreErrors(t *testing.T) {
	engine := newTestEngine(&stubAppointments{err: errors.New("connection refused")}, &stubSessions{}, nil)

	_, err := engine.AvailableSlotsForDate(context.Background(), monday, schedule.MethodOnline, "")
	if err == nil {
		t.Fatal("expected store failure to propagate, not an empty list")
	}
}

func TestConcreteOnlineMondayScenario(t *testing.T) {
	// Online Monday schedule ["09:00","09:30"], one online booking at 09:00.
	catalog := &schedule.Catalog{
		Online: schedule.WeeklySchedule{
			Monday: &schedule.DaySchedule{Start: "09:00", End: "10:00", Slots: []string{"09:00", "09:30"}},
		},
	}
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: monday, Time: "09:00", Method: schedule.MethodOnline, LocationKey: schedule.OnlineLocationKey},
	}}
	engine := newTestEngine(appts, &stubSessions{}, catalog)

	slots, err := engine.AvailableSlotsForDate(context.Background(), monday, schedule.MethodOnline, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{"09:30"})
}

func TestIsSlotFree(t *testing.T) {
	appts := &stubAppointments{booked: []appointments.BookedSlot{
		{Date: monday, Time: "09:00", Method: schedule.MethodOffline, LocationKey: "center-a"},
	}}
	sess := &stubSessions{held: []sessions.HeldSlot{{Date: monday, Time: "09:30"}}}
	engine := newTestEngine(appts, sess, nil)
	ctx := context.Background()

	if engine.IsSlotFree(ctx, monday, "09:00", schedule.MethodOffline, "center-a") {
		t.Fatal("booked slot reported free")
	}
	if !engine.IsSlotFree(ctx, monday, "09:00", schedule.MethodOffline, "center-b") {
		t.Fatal("center-b 09:00 should be free")
	}
	if !engine.IsSlotFree(ctx, monday, "10:00", schedule.MethodOnline, "") {
		t.Fatal("online 10:00 should be free")
	}
}

func TestIsSlotFreeSessionBlocksOtherCenters(t *testing.T) {
	// A session at 09:30 with no appointment for center-a must still block
	// center-a offline.
	sess := &stubSessions{held: []sessions.HeldSlot{{Date: monday, Time: "09:30"}}}
	engine := newTestEngine(&stubAppointments{}, sess, nil)

	if engine.IsSlotFree(context.Background(), monday, "09:30", schedule.MethodOffline, "center-a") {
		t.Fatal("session hold must block every location and method")
	}
}

func TestIsSlotFreeFailsClosedOnStoreError(t *testing.T) {
	engine := newTestEngine(&stubAppointments{err: errors.New("timeout")}, &stubSessions{}, nil)
	if engine.IsSlotFree(context.Background(), monday, "09:00", schedule.MethodOnline, "") {
		t.Fatal("store error must answer not-available, never available")
	}

	engine = newTestEngine(&stubAppointments{}, &stubSessions{err: errors.New("timeout")}, nil)
	if engine.IsSlotFree(context.Background(), monday, "09:00", schedule.MethodOnline, "") {
		t.Fatal("session store error must answer not-available")
	}
}

func TestSetBookingWindowRejectsNonPositive(t *testing.T) {
	engine := newTestEngine(&stubAppointments{}, &stubSessions{}, nil)
	if err := engine.SetBookingWindow(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero window")
	}
	if err := engine.SetBookingWindow(context.Background(), 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.BookingWindowDays() != 60 {
		t.Fatalf("window = %d, want 60", engine.BookingWindowDays())
	}
}
