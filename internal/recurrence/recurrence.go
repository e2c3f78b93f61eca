package recurrence

import (
	"errors"
	"strings"
	"time"
)

// Kind identifies how often a meeting repeats. A meeting either happens once
// (KindNone) or repeats indefinitely from its start date onward.
type Kind string

const (
	// KindNone marks a single dated occurrence.
	KindNone Kind = "none"
	// KindDaily repeats every day.
	KindDaily Kind = "daily"
	// KindWeekly repeats on the start date's weekday.
	KindWeekly Kind = "weekly"
	// KindMonthly repeats on the start date's day of month.
	KindMonthly Kind = "monthly"
)

// ErrInvalidKind indicates an unknown recurrence kind literal.
var ErrInvalidKind = errors.New("recurrence: invalid kind")

// BucketDateLayout formats the start date of a one-off meeting into its index
// bucket key.
const BucketDateLayout = "02-01-2006"

// Parse converts a caller supplied literal into a Kind. The empty string maps
// to KindNone.
func Parse(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case "", KindNone:
		return KindNone, nil
	case KindDaily:
		return KindDaily, nil
	case KindWeekly:
		return KindWeekly, nil
	case KindMonthly:
		return KindMonthly, nil
	}
	return KindNone, ErrInvalidKind
}

// Normalize lowercases and trims a literal without validating it. Unknown
// values survive so that validation layers can reject them explicitly.
func Normalize(value string) Kind {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return KindNone
	}
	return Kind(value)
}

// Valid reports whether the kind is one of the four supported literals.
func (k Kind) Valid() bool {
	switch k {
	case KindNone, KindDaily, KindWeekly, KindMonthly:
		return true
	}
	return false
}

// Repeats reports whether the kind describes a repeating series.
func (k Kind) Repeats() bool {
	return k == KindDaily || k == KindWeekly || k == KindMonthly
}

// BucketKey derives the index bucket key for a meeting: the kind literal for
// repeating series, or the formatted start date for one-off meetings.
func BucketKey(kind Kind, start time.Time) string {
	if kind.Repeats() {
		return string(kind)
	}
	return start.Format(BucketDateLayout)
}

// OccursOn reports whether a series that started at seriesStart has an
// occurrence on the calendar day of the reference time. A series never occurs
// before its own start date.
func OccursOn(kind Kind, seriesStart, reference time.Time) bool {
	startDay := dateOf(seriesStart)
	targetDay := dateOf(reference)
	if startDay.After(targetDay) {
		return false
	}
	switch kind {
	case KindNone:
		return startDay.Equal(targetDay)
	case KindDaily:
		return true
	case KindWeekly:
		return seriesStart.Weekday() == reference.Weekday()
	case KindMonthly:
		return seriesStart.Day() == reference.Day()
	}
	return false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
