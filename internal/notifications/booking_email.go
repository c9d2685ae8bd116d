package notifications

import (
	"bytes"
	"html/template"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/schedule"
	"expertbook-backend/internal/utils"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>Your session is paid and confirmed. Details:</p>
  <ul>
    <li>Expert: {{.ExpertName}}</li>
    <li>Starts: {{.StartsAt}}</li>
    <li>Duration: {{.Minutes}} minutes</li>
    <li>Price: {{.Price}} {{.Currency}}</li>
    <li>Booking number: {{.BookingID}}</li>
  </ul>
  {{if .MeetURL}}<p>Meeting link: <a href="{{.MeetURL}}">{{.MeetURL}}</a></p>{{end}}
  <p>Thank you.</p>
</body>
</html>`

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))

type bookingConfirmationData struct {
	Name       string
	ExpertName string
	StartsAt   string
	Minutes    int
	Price      string
	Currency   string
	BookingID  string
	MeetURL    string
}

func buildBookingConfirmationHTML(b models.Booking, expert models.Expert, slot models.Slot, loc *time.Location) (string, error) {
	data := bookingConfirmationData{
		Name:       b.ClientName,
		ExpertName: expert.Name,
		StartsAt:   schedule.DisplayTime(slot.StartsAt, loc),
		Minutes:    slot.Minutes,
		Price:      utils.FormatAmount(b.PriceKZT),
		Currency:   models.Currency,
		BookingID:  b.ID,
		MeetURL:    b.MeetURL,
	}
	if data.Name == "" {
		data.Name = b.ClientEmail
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
