package booking

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/schedule"
)

const (
	CalendarContentType = "text/calendar"
	calendarUIDDomain   = "expertbook.local"
	calendarProdID      = "-//Expertbook//Booking//EN"
	unknownExpertName   = "Expert"
)

var calendarEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	",", `\,`,
	";", `\;`,
)

// CalendarExport is a downloadable .ics payload.
type CalendarExport struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"-"`
}

// DataURL embeds the payload as a base64 data URL.
func (c CalendarExport) DataURL() string {
	return "data:" + c.ContentType + ";base64," + base64.StdEncoding.EncodeToString([]byte(c.Content))
}

func EscapeCalendarText(s string) string {
	return calendarEscaper.Replace(s)
}

// BuildCalendar renders the event for a booking and its slot. An empty expert
// name is shown as "Expert"; a booking without a meeting link gets the
// generated placeholder.
func BuildCalendar(b models.Booking, slot models.Slot, expertName, meetBaseURL string, stamp time.Time) CalendarExport {
	if strings.TrimSpace(expertName) == "" {
		expertName = unknownExpertName
	}
	meet := b.MeetURL
	if meet == "" {
		meet = MeetingLink(b.ID, meetBaseURL)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + calendarProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + EscapeCalendarText(b.ID+"@"+calendarUIDDomain),
		"DTSTAMP:" + schedule.CalendarTime(stamp),
		"DTSTART:" + schedule.CalendarTime(slot.StartsAt),
		"DURATION:" + schedule.CalendarDuration(slot.Minutes),
		"SUMMARY:" + EscapeCalendarText("Meeting with expert "+expertName),
		"DESCRIPTION:" + EscapeCalendarText(fmt.Sprintf("Meet link: %s", meet)),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	return CalendarExport{
		Filename:    "meeting_" + b.ID + ".ics",
		ContentType: CalendarContentType,
		Content:     strings.Join(lines, "\r\n"),
	}
}
