package hiring_test

import (
	"reflect"
	"testing"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// ── MinuteOfDay / ClockOfMinute ────────────────────────────────────────────

func TestMinuteOfDay(t *testing.T) {
	cases := []struct {
		clock string
		want  int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"10:30", 630},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := hiring.MinuteOfDay(c.clock)
		if err != nil {
			t.Errorf("MinuteOfDay(%q) returned unexpected error: %v", c.clock, err)
		}
		if got != c.want {
			t.Errorf("MinuteOfDay(%q) = %d, want %d", c.clock, got, c.want)
		}
	}
}

func TestMinuteOfDay_Invalid(t *testing.T) {
	for _, clock := range []string{"", "24:00", "9", "12:60", "ab:cd", "-1:00", "10:30xyz", "10:30 "} {
		if _, err := hiring.MinuteOfDay(clock); err == nil {
			t.Errorf("MinuteOfDay(%q) expected error, got nil", clock)
		}
	}
}

func TestClockOfMinute(t *testing.T) {
	if got := hiring.ClockOfMinute(630); got != "10:30" {
		t.Errorf("ClockOfMinute(630) = %q, want \"10:30\"", got)
	}
	if got := hiring.ClockOfMinute(0); got != "00:00" {
		t.Errorf("ClockOfMinute(0) = %q, want \"00:00\"", got)
	}
}

// ── Overlaps — intervals are half-open [start, end) ────────────────────────

func TestOverlaps_BackToBackDoNotConflict(t *testing.T) {
	// 10:00-10:30 followed by 10:30-11:00.
	if hiring.Overlaps(600, 630, 630, 660) {
		t.Error("back-to-back intervals should not overlap")
	}
	if hiring.Overlaps(630, 660, 600, 630) {
		t.Error("back-to-back intervals should not overlap (reversed order)")
	}
}

func TestOverlaps_PartialAndContained(t *testing.T) {
	cases := []struct {
		name                   string
		aStart, aEnd, bStart, bEnd int
		want                   bool
	}{
		{"partial overlap", 600, 630, 615, 645, true},
		{"contained", 600, 660, 615, 630, true},
		{"identical", 600, 630, 600, 630, true},
		{"disjoint", 600, 630, 700, 730, false},
	}
	for _, c := range cases {
		if got := hiring.Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
			t.Errorf("%s: Overlaps(%d,%d,%d,%d) = %v, want %v",
				c.name, c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
		}
	}
}

// ── FindConflict ───────────────────────────────────────────────────────────

func TestFindConflict(t *testing.T) {
	bookings := []hiring.Booking{
		{InterviewID: "iv-1", StartMinute: 600, DurationMinutes: 30}, // 10:00-10:30
		{InterviewID: "iv-2", StartMinute: 660, DurationMinutes: 60}, // 11:00-12:00
	}

	if id, ok := hiring.FindConflict(630, 30, bookings); ok {
		t.Errorf("10:30-11:00 should be free, conflicted with %s", id)
	}
	if id, ok := hiring.FindConflict(615, 30, bookings); !ok || id != "iv-1" {
		t.Errorf("10:15-10:45 should conflict with iv-1, got (%q, %v)", id, ok)
	}
	if id, ok := hiring.FindConflict(645, 30, bookings); !ok || id != "iv-2" {
		t.Errorf("10:45-11:15 should conflict with iv-2, got (%q, %v)", id, ok)
	}
}

func TestFindConflict_NoBookings(t *testing.T) {
	if _, ok := hiring.FindConflict(600, 30, nil); ok {
		t.Error("empty booking list should never conflict")
	}
}

// ── AvailableSlots ─────────────────────────────────────────────────────────

func TestAvailableSlots(t *testing.T) {
	window := hiring.Window{OpenMinute: 540, CloseMinute: 720} // 09:00-12:00
	bookings := []hiring.Booking{
		{InterviewID: "iv-1", StartMinute: 540, DurationMinutes: 30}, // 09:00-09:30
		{InterviewID: "iv-2", StartMinute: 600, DurationMinutes: 30}, // 10:00-10:30
	}

	got := hiring.AvailableSlots(bookings, 30, window)
	want := []string{"09:30", "10:30", "11:00", "11:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableSlots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_EmptyDay(t *testing.T) {
	window := hiring.Window{OpenMinute: 540, CloseMinute: 660} // 09:00-11:00
	got := hiring.AvailableSlots(nil, 60, window)
	want := []string{"09:00", "10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableSlots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_SlotMustFitInsideWindow(t *testing.T) {
	window := hiring.Window{OpenMinute: 540, CloseMinute: 630} // 09:00-10:30
	got := hiring.AvailableSlots(nil, 60, window)
	// The 10:00 candidate would run past the close.
	want := []string{"09:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableSlots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_FullyBooked(t *testing.T) {
	window := hiring.Window{OpenMinute: 540, CloseMinute: 600} // 09:00-10:00
	bookings := []hiring.Booking{
		{InterviewID: "iv-1", StartMinute: 540, DurationMinutes: 60},
	}
	if got := hiring.AvailableSlots(bookings, 30, window); len(got) != 0 {
		t.Errorf("AvailableSlots = %v, want empty", got)
	}
}
