package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"propertyvoice_backend/platform/config"
)

// BrevoSender delivers email through the Brevo transactional HTTP API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

// NewBrevoSender creates a Brevo-backed sender.
func NewBrevoSender(cfg config.EmailConfig) *BrevoSender {
	return &BrevoSender{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BrevoSender) SendCallSummaryEmail(ctx context.Context, toEmail string, data CallSummaryData) error {
	content, err := renderEmailTemplate("call_summary.html", callSummaryTemplateData(data))
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, callSummarySubject(data), content)
}

func (b *BrevoSender) SendTicketFollowUpEmail(ctx context.Context, toEmail string, data TicketFollowUpData) error {
	content, err := renderEmailTemplate("ticket_follow_up.html", ticketFollowUpTemplateData(data))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectTicketFollowUpFmt, data.TicketNumber)
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendTourConfirmationEmail(ctx context.Context, toEmail string, data TourConfirmationData) error {
	content, err := renderEmailTemplate("tour_confirmation.html", tourConfirmationTemplateData(data))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectTourConfirmationFmt, data.ProspectName, data.TourDate)
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
