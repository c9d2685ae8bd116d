package notifications

import (
	"bytes"
	"html/template"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/schedule"
	"expertbook-backend/internal/utils"
)

const leadNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New expert request</h3>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Topic:</strong> {{.Topic}}</p>
  <p><strong>Budget:</strong> {{.Price}} {{.Currency}}</p>
  <p><strong>Received:</strong> {{.CreatedAt}}</p>
  <p><strong>ID:</strong> {{.ID}}</p>
  {{if .Notes}}<p><strong>Notes:</strong><br/>{{.Notes}}</p>{{end}}
</body>
</html>`

const leadConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>We received your request and will match you with an expert.</p>
  <p><strong>Reference: {{.ID}}</strong></p>
  <ul>
    <li>Topic: {{.Topic}}</li>
    <li>Budget: {{.Price}} {{.Currency}}</li>
  </ul>
  <p>Thank you.</p>
</body>
</html>`

var (
	leadNotificationTmpl = template.Must(template.New("lead_notification").Parse(leadNotificationTemplate))
	leadConfirmationTmpl = template.Must(template.New("lead_confirmation").Parse(leadConfirmationTemplate))
)

type leadData struct {
	models.Lead
	Price     string
	Currency  string
	CreatedAt string
}

func newLeadData(lead models.Lead, loc *time.Location) leadData {
	return leadData{
		Lead:      lead,
		Price:     utils.FormatAmount(lead.PriceKZT),
		Currency:  models.Currency,
		CreatedAt: schedule.DisplayTime(lead.CreatedAt, loc),
	}
}

func buildLeadNotificationHTML(lead models.Lead, loc *time.Location) (string, error) {
	var buf bytes.Buffer
	if err := leadNotificationTmpl.Execute(&buf, newLeadData(lead, loc)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildLeadConfirmationHTML(lead models.Lead) (string, error) {
	var buf bytes.Buffer
	if err := leadConfirmationTmpl.Execute(&buf, newLeadData(lead, time.UTC)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
