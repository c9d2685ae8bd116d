package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/schedule"
)

const (
	CSVContentType  = "text/csv; charset=utf-8"
	JSONContentType = "application/json; charset=utf-8"

	filenameStamp = "2006-01-02-15-04-05"
)

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type exportRow struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	Detail    map[string]interface{} `json:"detail"`
	CreatedAt string                 `json:"createdAt"`
}

// ExportFilename is logs_<UTC timestamp>.<ext>.
func ExportFilename(now time.Time, ext string) string {
	return "logs_" + now.UTC().Format(filenameStamp) + "." + ext
}

// ExportCSV writes one row per event under an id,createdAt,event,detail
// header. The detail column is its JSON with quotes doubled, always quoted.
// Rows end with a bare "\n".
func ExportCSV(events []models.Event, now time.Time) (Export, error) {
	var buf bytes.Buffer
	buf.WriteString("id,createdAt,event,detail")
	for _, e := range events {
		detail, err := encodeDetail(e.Detail)
		if err != nil {
			return Export{}, err
		}
		buf.WriteByte('\n')
		buf.WriteString(e.ID)
		buf.WriteByte(',')
		buf.WriteString(schedule.ISOTimestamp(e.CreatedAt))
		buf.WriteByte(',')
		buf.WriteString(e.Event)
		buf.WriteString(`,"`)
		buf.WriteString(strings.ReplaceAll(detail, `"`, `""`))
		buf.WriteByte('"')
	}
	return Export{
		Filename:    ExportFilename(now, "csv"),
		ContentType: CSVContentType,
		Body:        buf.Bytes(),
	}, nil
}

// ExportJSON writes the events as an indented array.
func ExportJSON(events []models.Event, now time.Time) (Export, error) {
	rows := make([]exportRow, 0, len(events))
	for _, e := range events {
		detail := e.Detail
		if detail == nil {
			detail = map[string]interface{}{}
		}
		rows = append(rows, exportRow{
			ID:        e.ID,
			Event:     e.Event,
			Detail:    detail,
			CreatedAt: schedule.ISOTimestamp(e.CreatedAt),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return Export{}, err
	}
	return Export{
		Filename:    ExportFilename(now, "json"),
		ContentType: JSONContentType,
		Body:        bytes.TrimRight(buf.Bytes(), "\n"),
	}, nil
}

func encodeDetail(detail map[string]interface{}) (string, error) {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(detail); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
