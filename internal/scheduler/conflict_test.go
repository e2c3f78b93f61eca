package scheduler

import (
	"testing"
	"time"

	"github.com/example/meeting-scheduler/internal/recurrence"
)

func meetingAt(kind recurrence.Kind, year int, month time.Month, day, startHour, startMin, endHour, endMin int) Meeting {
	return Meeting{
		Start:  time.Date(year, month, day, startHour, startMin, 0, 0, time.UTC),
		End:    time.Date(year, month, day, endHour, endMin, 0, 0, time.UTC),
		Repeat: kind,
	}
}

func TestConflicts_OneOffPairs(t *testing.T) {
	t.Parallel()

	t.Run("overlapping intervals on the same date conflict", func(t *testing.T) {
		t.Parallel()
		a := meetingAt(recurrence.KindNone, 2024, time.June, 3, 10, 0, 11, 0)
		b := meetingAt(recurrence.KindNone, 2024, time.June, 3, 10, 30, 11, 30)
		if !Conflicts(a, b) || !Conflicts(b, a) {
			t.Fatal("expected conflict for overlapping one-off meetings")
		}
	})

	t.Run("same slot on different dates does not conflict", func(t *testing.T) {
		t.Parallel()
		a := meetingAt(recurrence.KindNone, 2024, time.June, 3, 10, 0, 11, 0)
		b := meetingAt(recurrence.KindNone, 2024, time.June, 4, 10, 0, 11, 0)
		if Conflicts(a, b) {
			t.Fatal("one-off meetings on different dates should not conflict")
		}
	})

	t.Run("touching endpoints conflict", func(t *testing.T) {
		t.Parallel()
		a := meetingAt(recurrence.KindNone, 2024, time.June, 3, 10, 0, 11, 0)
		b := meetingAt(recurrence.KindNone, 2024, time.June, 3, 11, 0, 12, 0)
		if !Conflicts(a, b) {
			t.Fatal("meetings sharing a boundary should conflict")
		}
	})
}

func TestConflicts_SeriesAgainstDated(t *testing.T) {
	t.Parallel()

	t.Run("dated meeting before the series start does not conflict", func(t *testing.T) {
		t.Parallel()
		daily := meetingAt(recurrence.KindDaily, 2024, time.May, 12, 10, 0, 11, 0)
		dated := meetingAt(recurrence.KindNone, 2024, time.May, 10, 10, 0, 11, 0)
		if Conflicts(dated, daily) || Conflicts(daily, dated) {
			t.Fatal("series has not begun by the dated meeting's date")
		}
	})

	t.Run("dated meeting after the series start conflicts on overlap", func(t *testing.T) {
		t.Parallel()
		daily := meetingAt(recurrence.KindDaily, 2024, time.May, 12, 10, 0, 11, 0)
		dated := meetingAt(recurrence.KindNone, 2024, time.May, 15, 10, 30, 11, 30)
		if !Conflicts(dated, daily) || !Conflicts(daily, dated) {
			t.Fatal("expected conflict once the series has begun")
		}
	})

	t.Run("weekly series only collides on its weekday", func(t *testing.T) {
		t.Parallel()
		// Monday series.
		weekly := meetingAt(recurrence.KindWeekly, 2024, time.May, 6, 10, 0, 11, 0)
		monday := meetingAt(recurrence.KindNone, 2024, time.May, 13, 10, 0, 11, 0)
		tuesday := meetingAt(recurrence.KindNone, 2024, time.May, 14, 10, 0, 11, 0)
		if !Conflicts(monday, weekly) {
			t.Fatal("dated Monday meeting should conflict with Monday series")
		}
		if Conflicts(tuesday, weekly) {
			t.Fatal("dated Tuesday meeting should not conflict with Monday series")
		}
	})

	t.Run("monthly series only collides on its day of month", func(t *testing.T) {
		t.Parallel()
		monthly := meetingAt(recurrence.KindMonthly, 2024, time.May, 6, 10, 0, 11, 0)
		sameDay := meetingAt(recurrence.KindNone, 2024, time.July, 6, 10, 0, 11, 0)
		otherDay := meetingAt(recurrence.KindNone, 2024, time.July, 7, 10, 0, 11, 0)
		if !Conflicts(sameDay, monthly) {
			t.Fatal("dated meeting on the anchor day should conflict")
		}
		if Conflicts(otherDay, monthly) {
			t.Fatal("dated meeting on a different day should not conflict")
		}
	})

	t.Run("non-overlapping time of day never conflicts", func(t *testing.T) {
		t.Parallel()
		daily := meetingAt(recurrence.KindDaily, 2024, time.May, 1, 9, 0, 10, 0)
		dated := meetingAt(recurrence.KindNone, 2024, time.May, 15, 10, 1, 11, 0)
		if Conflicts(dated, daily) {
			t.Fatal("disjoint time-of-day slots should not conflict")
		}
	})
}

func TestConflicts_SeriesPairs(t *testing.T) {
	t.Parallel()

	t.Run("two daily series conflict on slot overlap regardless of dates", func(t *testing.T) {
		t.Parallel()
		a := meetingAt(recurrence.KindDaily, 2024, time.January, 1, 10, 0, 11, 0)
		b := meetingAt(recurrence.KindDaily, 2025, time.December, 31, 10, 30, 11, 30)
		if !Conflicts(a, b) {
			t.Fatal("daily series with overlapping slots always conflict")
		}
		c := meetingAt(recurrence.KindDaily, 2024, time.January, 1, 12, 0, 13, 0)
		if Conflicts(a, c) {
			t.Fatal("daily series with disjoint slots never conflict")
		}
	})

	t.Run("weekly series require the same weekday", func(t *testing.T) {
		t.Parallel()
		monday := meetingAt(recurrence.KindWeekly, 2024, time.May, 6, 10, 0, 11, 0)
		tuesday := meetingAt(recurrence.KindWeekly, 2024, time.May, 7, 10, 0, 11, 0)
		otherMonday := meetingAt(recurrence.KindWeekly, 2024, time.May, 13, 10, 30, 11, 30)
		if Conflicts(monday, tuesday) {
			t.Fatal("weekly series on different weekdays should not conflict")
		}
		if !Conflicts(monday, otherMonday) {
			t.Fatal("weekly series on the same weekday with overlapping slots should conflict")
		}
	})

	t.Run("monthly series require the same day of month", func(t *testing.T) {
		t.Parallel()
		sixth := meetingAt(recurrence.KindMonthly, 2024, time.May, 6, 10, 0, 11, 0)
		seventh := meetingAt(recurrence.KindMonthly, 2024, time.June, 7, 10, 0, 11, 0)
		anotherSixth := meetingAt(recurrence.KindMonthly, 2024, time.August, 6, 10, 0, 11, 0)
		if Conflicts(sixth, seventh) {
			t.Fatal("monthly series on different days should not conflict")
		}
		if !Conflicts(sixth, anotherSixth) {
			t.Fatal("monthly series on the same day should conflict")
		}
	})

	t.Run("mixed kinds compare on time of day alone", func(t *testing.T) {
		t.Parallel()
		daily := meetingAt(recurrence.KindDaily, 2024, time.May, 1, 10, 0, 11, 0)
		weekly := meetingAt(recurrence.KindWeekly, 2024, time.May, 7, 10, 30, 11, 30)
		monthly := meetingAt(recurrence.KindMonthly, 2024, time.May, 20, 10, 45, 11, 45)
		if !Conflicts(daily, weekly) || !Conflicts(weekly, monthly) || !Conflicts(monthly, daily) {
			t.Fatal("series of different kinds with overlapping slots should conflict")
		}
		lateWeekly := meetingAt(recurrence.KindWeekly, 2024, time.May, 7, 14, 0, 15, 0)
		if Conflicts(daily, lateWeekly) {
			t.Fatal("series of different kinds with disjoint slots should not conflict")
		}
	})
}
