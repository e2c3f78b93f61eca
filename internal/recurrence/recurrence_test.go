package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "", want: KindNone},
		{input: "none", want: KindNone},
		{input: "Daily", want: KindDaily},
		{input: " weekly ", want: KindWeekly},
		{input: "MONTHLY", want: KindMonthly},
		{input: "yearly", wantErr: true},
		{input: "everyday", wantErr: true},
	}

	for _, tc := range cases {
		got, err := Parse(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidKind) {
				t.Fatalf("Parse(%q): expected ErrInvalidKind, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestBucketKey(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

	if got := BucketKey(KindNone, start); got != "03-06-2024" {
		t.Fatalf("expected dated bucket key 03-06-2024, got %q", got)
	}
	if got := BucketKey(KindDaily, start); got != "daily" {
		t.Fatalf("expected daily bucket key, got %q", got)
	}
	if got := BucketKey(KindWeekly, start); got != "weekly" {
		t.Fatalf("expected weekly bucket key, got %q", got)
	}
	if got := BucketKey(KindMonthly, start); got != "monthly" {
		t.Fatalf("expected monthly bucket key, got %q", got)
	}
}

func TestOccursOn(t *testing.T) {
	t.Parallel()

	// Monday 2024-05-06.
	seriesStart := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)

	t.Run("never before the series start", func(t *testing.T) {
		t.Parallel()
		before := seriesStart.AddDate(0, 0, -1)
		for _, kind := range []Kind{KindNone, KindDaily, KindWeekly, KindMonthly} {
			if OccursOn(kind, seriesStart, before) {
				t.Fatalf("%s series should not occur before its start date", kind)
			}
		}
	})

	t.Run("one-off occurs only on its own date", func(t *testing.T) {
		t.Parallel()
		if !OccursOn(KindNone, seriesStart, seriesStart.Add(5*time.Hour)) {
			t.Fatal("one-off should occur on its own date")
		}
		if OccursOn(KindNone, seriesStart, seriesStart.AddDate(0, 0, 1)) {
			t.Fatal("one-off should not occur on the next day")
		}
	})

	t.Run("daily occurs every day from the start", func(t *testing.T) {
		t.Parallel()
		if !OccursOn(KindDaily, seriesStart, seriesStart.AddDate(0, 0, 17)) {
			t.Fatal("daily series should occur on an arbitrary later day")
		}
	})

	t.Run("weekly requires the anchor weekday", func(t *testing.T) {
		t.Parallel()
		nextMonday := seriesStart.AddDate(0, 0, 7)
		if !OccursOn(KindWeekly, seriesStart, nextMonday) {
			t.Fatal("weekly series should occur a week later")
		}
		if OccursOn(KindWeekly, seriesStart, seriesStart.AddDate(0, 0, 3)) {
			t.Fatal("weekly series should not occur on a different weekday")
		}
	})

	t.Run("monthly requires the anchor day of month", func(t *testing.T) {
		t.Parallel()
		if !OccursOn(KindMonthly, seriesStart, time.Date(2024, time.July, 6, 12, 0, 0, 0, time.UTC)) {
			t.Fatal("monthly series should occur on the same day of a later month")
		}
		if OccursOn(KindMonthly, seriesStart, time.Date(2024, time.July, 7, 12, 0, 0, 0, time.UTC)) {
			t.Fatal("monthly series should not occur on a different day of month")
		}
	})
}
