package schedule

import (
	"fmt"
	"time"
)

const SlotMinutes = 30

// SeedOffsets are the distances from seeding time of each expert's demo slots.
var SeedOffsets = []time.Duration{6 * time.Hour, 12 * time.Hour, 24 * time.Hour}

const (
	calendarLayout = "20060102T150405Z"
	displayLayout  = "2006-01-02 15:04"
	isoMillis      = "2006-01-02T15:04:05.000Z"
)

func UpcomingStarts(now time.Time) []time.Time {
	starts := make([]time.Time, 0, len(SeedOffsets))
	for _, offset := range SeedOffsets {
		starts = append(starts, now.Add(offset))
	}
	return starts
}

// CalendarTime encodes t as an iCalendar UTC date-time (basic format).
func CalendarTime(t time.Time) string {
	return t.UTC().Format(calendarLayout)
}

// CalendarDuration encodes minutes as an ISO-8601 duration. Non-positive
// values fall back to SlotMinutes.
func CalendarDuration(minutes int) string {
	if minutes <= 0 {
		minutes = SlotMinutes
	}
	return fmt.Sprintf("PT%dM", minutes)
}

// ISOTimestamp formats t in UTC with millisecond precision.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func DisplayTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayLayout)
}
