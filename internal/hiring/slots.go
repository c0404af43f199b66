package hiring

import (
	"fmt"
	"sort"
	"time"
)

// The conflict resolver is a pure function over a snapshot of a company's
// existing bookings for one calendar day. Each booking is a half-open
// interval [start, start+duration) in minutes since midnight. Persistence
// re-runs the same predicate inside the guarded insert, so a clean verdict
// here is advisory and the write is the authority.

// Booking is an occupied interval belonging to an existing interview.
type Booking struct {
	InterviewID     string
	StartMinute     int
	DurationMinutes int
}

func (b Booking) end() int { return b.StartMinute + b.DurationMinutes }

// Window is the working-hours window slots are generated within.
type Window struct {
	OpenMinute  int
	CloseMinute int
}

// MinuteOfDay parses a 24h "15:04" clock into minutes since midnight.
// The whole string must be a clock; trailing text is rejected.
func MinuteOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockOfMinute formats minutes since midnight as a 24h "15:04" clock.
func ClockOfMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps reports whether two half-open minute intervals intersect.
// Touching boundaries ([10:00,10:30) then [10:30,11:00)) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// FindConflict returns the id of the first existing booking overlapping the
// candidate [start, start+duration) interval, scanning bookings in start
// order.
func FindConflict(start, duration int, bookings []Booking) (string, bool) {
	sorted := make([]Booking, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMinute < sorted[j].StartMinute })

	end := start + duration
	for _, b := range sorted {
		if b.StartMinute >= end {
			break
		}
		if Overlaps(start, end, b.StartMinute, b.end()) {
			return b.InterviewID, true
		}
	}
	return "", false
}

// AvailableSlots enumerates free start times for a slot of the given
// duration within the working-hours window, stepping every duration minutes
// and excluding any candidate that overlaps an existing booking. Starts are
// returned in order as "15:04" clocks.
func AvailableSlots(bookings []Booking, duration int, w Window) []string {
	slots := make([]string, 0)
	if duration <= 0 {
		return slots
	}
	for start := w.OpenMinute; start+duration <= w.CloseMinute; start += duration {
		if _, conflict := FindConflict(start, duration, bookings); conflict {
			continue
		}
		slots = append(slots, ClockOfMinute(start))
	}
	return slots
}
