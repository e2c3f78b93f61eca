package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall clock time expressed as minutes since midnight. Room
// availability windows are stored in this form so they can be projected onto
// any calendar date.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:mm" literal.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("scheduler: invalid time of day %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("scheduler: invalid time of day %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("scheduler: invalid time of day %q", value)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// String renders the "HH:mm" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On projects the clock time onto the calendar date of the reference time.
func (t TimeOfDay) On(reference time.Time) time.Time {
	return time.Date(reference.Year(), reference.Month(), reference.Day(), int(t)/60, int(t)%60, 0, 0, reference.Location())
}

// RoomInterval projects a room's daily availability window onto the calendar
// date of the reference time, producing absolute bounds for containment
// checks.
func RoomInterval(opens, closes TimeOfDay, reference time.Time) (time.Time, time.Time) {
	return opens.On(reference), closes.On(reference)
}

// Overlaps reports whether two closed intervals intersect. Shared boundaries
// count as overlap: a meeting ending at 10:00 conflicts with one starting at
// 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// IntervalContains reports whether [innerStart, innerEnd] lies entirely
// within [outerStart, outerEnd], bounds inclusive.
func IntervalContains(outerStart, outerEnd, innerStart, innerEnd time.Time) bool {
	return !innerStart.Before(outerStart) && !innerEnd.After(outerEnd)
}

// SameCalendarDay reports whether both instants fall on the same calendar
// date.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates an instant to midnight of its calendar date.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
