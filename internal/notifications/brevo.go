package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expertbook-backend/internal/models"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var ErrNoOpsRecipient = errors.New("ops email not configured")

// BrevoClient sends transactional mail through the Brevo SMTP API.
type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	opsEmail    string
	sandbox     bool
	loc         *time.Location
	endpoint    string
	httpClient  *http.Client
}

type BrevoOptions struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	// OpsEmail receives new-lead alerts; empty disables them.
	OpsEmail string
	Sandbox  bool
	Location *time.Location
}

// NewBrevoClient returns nil when the API key or sender is missing.
func NewBrevoClient(opts BrevoOptions) *BrevoClient {
	if strings.TrimSpace(opts.APIKey) == "" || strings.TrimSpace(opts.SenderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(opts.SenderName) == "" {
		opts.SenderName = opts.SenderEmail
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &BrevoClient{
		apiKey:      opts.APIKey,
		senderEmail: opts.SenderEmail,
		senderName:  opts.SenderName,
		opsEmail:    strings.TrimSpace(opts.OpsEmail),
		sandbox:     opts.Sandbox,
		loc:         opts.Location,
		endpoint:    defaultBrevoEndpoint,
		httpClient:  &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *BrevoClient) SendBookingConfirmation(ctx context.Context, b models.Booking, expert models.Expert, slot models.Slot) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	subject := fmt.Sprintf("Booking confirmed - %s", expert.Name)
	htmlBody, err := buildBookingConfirmationHTML(b, expert, slot, c.loc)
	if err != nil {
		return "", err
	}
	return c.send(ctx, message{
		To:      recipient{Email: b.ClientEmail, Name: b.ClientName},
		Subject: subject,
		HTML:    htmlBody,
		Tag:     "booking-confirmation",
	})
}

// SendLeadNotification alerts the operations inbox about a new lead.
func (c *BrevoClient) SendLeadNotification(ctx context.Context, lead models.Lead) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	if c.opsEmail == "" {
		return "", ErrNoOpsRecipient
	}
	htmlBody, err := buildLeadNotificationHTML(lead, c.loc)
	if err != nil {
		return "", err
	}
	return c.send(ctx, message{
		To:      recipient{Email: c.opsEmail},
		ReplyTo: &recipient{Email: lead.Email, Name: lead.Name},
		Subject: fmt.Sprintf("New lead - %s", lead.Topic),
		HTML:    htmlBody,
		Tag:     "lead-notification",
	})
}

func (c *BrevoClient) SendLeadConfirmation(ctx context.Context, lead models.Lead) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	htmlBody, err := buildLeadConfirmationHTML(lead)
	if err != nil {
		return "", err
	}
	return c.send(ctx, message{
		To:      recipient{Email: lead.Email, Name: lead.Name},
		Subject: "We received your request",
		HTML:    htmlBody,
		Tag:     "lead-confirmation",
	})
}

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type message struct {
	To      recipient
	ReplyTo *recipient
	Subject string
	HTML    string
	// Tag groups messages in the Brevo statistics.
	Tag string
}

func (c *BrevoClient) send(ctx context.Context, msg message) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	if strings.TrimSpace(msg.To.Email) == "" {
		return "", errors.New("missing recipient email")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return "", errors.New("missing subject")
	}
	if strings.TrimSpace(msg.HTML) == "" {
		return "", errors.New("missing html body")
	}

	payload := brevoSendRequest{
		Sender:      recipient{Name: c.senderName, Email: c.senderEmail},
		To:          []recipient{msg.To},
		ReplyTo:     msg.ReplyTo,
		Subject:     msg.Subject,
		HtmlContent: msg.HTML,
	}
	if msg.Tag != "" {
		payload.Tags = []string{msg.Tag}
	}
	if c.sandbox {
		payload.Headers = map[string]string{
			"X-Sib-Sandbox": "drop",
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("brevo send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if strings.TrimSpace(out.MessageID) == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      recipient         `json:"sender"`
	To          []recipient       `json:"to"`
	ReplyTo     *recipient        `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}
