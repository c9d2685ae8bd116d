package booking

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"expertbook-backend/internal/models"
)

func TestEscapeCalendarText(t *testing.T) {
	got := EscapeCalendarText("a\\b\nc,d;e")
	want := `a\\b\nc\,d\;e`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildCalendar(t *testing.T) {
	almaty := time.FixedZone("ALMT", 5*3600)
	start := time.Date(2025, 3, 1, 15, 0, 0, 0, almaty)
	b := models.Booking{ID: "bk_abc1234"}
	slot := models.Slot{ID: "slot_1", StartsAt: start}

	export := BuildCalendar(b, slot, "Career, HR; Coach", "", start)

	if export.Filename != "meeting_bk_abc1234.ics" {
		t.Fatalf("unexpected filename: %s", export.Filename)
	}
	if export.ContentType != "text/calendar" {
		t.Fatalf("unexpected content type: %s", export.ContentType)
	}

	lines := strings.Split(export.Content, "\r\n")
	if lines[0] != "BEGIN:VCALENDAR" || lines[len(lines)-1] != "END:VCALENDAR" {
		t.Fatalf("unexpected envelope: %q ... %q", lines[0], lines[len(lines)-1])
	}
	for _, want := range []string{
		"DTSTART:20250301T100000Z",
		"DURATION:PT30M",
		"UID:bk_abc1234@expertbook.local",
		`SUMMARY:Meeting with expert Career\, HR\; Coach`,
		"DESCRIPTION:Meet link: https://meet.google.com/bka-bc1-234",
	} {
		if !strings.Contains(export.Content, want+"\r\n") {
			t.Fatalf("expected line %q in:\n%s", want, export.Content)
		}
	}

	prefix := "data:text/calendar;base64,"
	dataURL := export.DataURL()
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("unexpected data url prefix: %s", dataURL)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil || string(decoded) != export.Content {
		t.Fatalf("data url does not decode to content: %v", err)
	}
}

func TestBuildCalendarKeepsMeetURLAndFallbacks(t *testing.T) {
	b := models.Booking{ID: "bk_1", MeetURL: "https://meet.google.com/aaa-bbb-ccc"}
	slot := models.Slot{StartsAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), Minutes: 45}

	export := BuildCalendar(b, slot, "", "", time.Now())
	if !strings.Contains(export.Content, "DESCRIPTION:Meet link: https://meet.google.com/aaa-bbb-ccc") {
		t.Fatalf("expected stored meet url:\n%s", export.Content)
	}
	if !strings.Contains(export.Content, "DURATION:PT45M") {
		t.Fatalf("expected slot minutes")
	}
	if !strings.Contains(export.Content, "SUMMARY:Meeting with expert Expert") {
		t.Fatalf("expected placeholder expert name")
	}
}
