package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Almaty")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestUpcomingStarts(t *testing.T) {
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	starts := UpcomingStarts(now)
	if len(starts) != 3 {
		t.Fatalf("expected 3 starts, got %d", len(starts))
	}
	want := []time.Time{
		time.Date(2026, 2, 4, 16, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 4, 22, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !starts[i].Equal(want[i]) {
			t.Fatalf("start %d: expected %s, got %s", i, want[i], starts[i])
		}
	}
}

func TestCalendarTimeConvertsToUTC(t *testing.T) {
	loc := mustLoadLoc(t)
	start := time.Date(2026, 2, 4, 15, 30, 0, 0, loc)
	want := start.UTC().Format("20060102T150405Z")
	if got := CalendarTime(start); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	utc := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	if got := CalendarTime(utc); got != "20260301T090507Z" {
		t.Fatalf("unexpected calendar time: %s", got)
	}
}

func TestCalendarDuration(t *testing.T) {
	if got := CalendarDuration(45); got != "PT45M" {
		t.Fatalf("expected PT45M, got %s", got)
	}
	if got := CalendarDuration(0); got != "PT30M" {
		t.Fatalf("expected default PT30M, got %s", got)
	}
}

func TestISOTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 4, 10, 0, 0, 123000000, time.UTC)
	if got := ISOTimestamp(ts); got != "2026-02-04T10:00:00.123Z" {
		t.Fatalf("unexpected timestamp: %s", got)
	}
}

func TestDisplayTime(t *testing.T) {
	if got := DisplayTime(time.Time{}, nil); got != "-" {
		t.Fatalf("expected placeholder for zero time, got %s", got)
	}
	ts := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	if got := DisplayTime(ts, nil); got != "2026-02-04 10:00" {
		t.Fatalf("unexpected display time: %s", got)
	}
}
