package booking

import (
	"regexp"
	"strings"
)

const (
	DefaultMeetBaseURL = "https://meet.google.com/"

	meetCodeLength = 9
	meetFallbackID = "fallback"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// MeetingLink derives a stable placeholder video link from a booking id. The
// code is the id's alphanumerics, lower-cased, padded with 'x' to nine
// characters and cut there, grouped as xxx-xxx-xxx.
func MeetingLink(bookingID, baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultMeetBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	raw := bookingID
	if raw == "" {
		raw = meetFallbackID
	}
	code := strings.ToLower(nonAlnum.ReplaceAllString(raw, ""))
	if len(code) < meetCodeLength {
		code += strings.Repeat("x", meetCodeLength-len(code))
	}
	code = code[:meetCodeLength]

	return baseURL + code[0:3] + "-" + code[3:6] + "-" + code[6:9]
}
