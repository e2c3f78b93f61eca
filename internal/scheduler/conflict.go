package scheduler

import (
	"time"

	"github.com/example/meeting-scheduler/internal/recurrence"
)

// Meeting carries the fields conflict evaluation needs: the absolute interval
// of the first occurrence and the recurrence kind of the series.
type Meeting struct {
	ID     string
	Start  time.Time
	End    time.Time
	Repeat recurrence.Kind
}

// Conflicts reports whether a candidate meeting collides with an existing
// commitment. The comparison strategy depends on the pairing of recurrence
// kinds:
//
//   - two one-off meetings conflict only when they share a calendar date and
//     their absolute intervals overlap;
//   - a repeating series against a one-off meeting conflicts when the one-off
//     date is on or after the series start, the series anchor (weekday or day
//     of month) matches that date, and the time-of-day slots overlap. The
//     rule is the same regardless of which side the series sits on;
//   - two series of the same kind conflict when their anchors match and their
//     time-of-day slots overlap;
//   - two series of different kinds are compared conservatively on
//     time-of-day alone, since the combined patterns coincide on some date.
func Conflicts(candidate, existing Meeting) bool {
	switch {
	case candidate.Repeat == recurrence.KindNone && existing.Repeat == recurrence.KindNone:
		return SameCalendarDay(candidate.Start, existing.Start) &&
			Overlaps(candidate.Start, candidate.End, existing.Start, existing.End)
	case candidate.Repeat == recurrence.KindNone:
		return seriesConflictsWithDate(existing, candidate)
	case existing.Repeat == recurrence.KindNone:
		return seriesConflictsWithDate(candidate, existing)
	case candidate.Repeat == existing.Repeat:
		return anchorsMatch(candidate.Repeat, candidate.Start, existing.Start) &&
			timeOfDayOverlaps(candidate, existing)
	default:
		return timeOfDayOverlaps(candidate, existing)
	}
}

// seriesConflictsWithDate compares a repeating series against a one-off
// meeting. The series occupies its slot forever from its own start date
// onward, so a one-off meeting dated before the series began cannot collide.
func seriesConflictsWithDate(series, dated Meeting) bool {
	if StartOfDay(series.Start).After(StartOfDay(dated.Start)) {
		return false
	}
	return anchorsMatch(series.Repeat, series.Start, dated.Start) &&
		timeOfDayOverlaps(series, dated)
}

func anchorsMatch(kind recurrence.Kind, a, b time.Time) bool {
	switch kind {
	case recurrence.KindWeekly:
		return a.Weekday() == b.Weekday()
	case recurrence.KindMonthly:
		return a.Day() == b.Day()
	}
	return true
}

func timeOfDayOverlaps(a, b Meeting) bool {
	aStart, aEnd := secondsIntoDay(a.Start), secondsIntoDay(a.End)
	bStart, bEnd := secondsIntoDay(b.Start), secondsIntoDay(b.End)
	return aStart <= bEnd && bStart <= aEnd
}

func secondsIntoDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
