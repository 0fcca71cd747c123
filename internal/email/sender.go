package email

import (
	"context"
	"fmt"
	"time"

	"propertyvoice_backend/platform/config"
)

// CallSummaryData carries everything the call summary email needs.
type CallSummaryData struct {
	PropertyName     string
	ExternalCallID   string
	CallerName       string
	CallerPhone      string
	CallerEmail      string
	UnitNumber       string
	CallType         string
	Sentiment        string
	DurationSeconds  int
	StartedAt        time.Time
	Overview         string
	ActionItems      []string
	NextSteps        []string
	KeyDetails       []KeyDetail
	Highlights       []string
	RecordingURL     string
	RequiresCallback bool
	CallbackReason   string
	Emergency        bool
}

// KeyDetail is one labelled row in the key details table.
// A slice keeps the render order stable, unlike a map.
type KeyDetail struct {
	Label string
	Value string
}

// TicketFollowUpData carries the fields for a maintenance follow-up email.
type TicketFollowUpData struct {
	PropertyName   string
	TicketNumber   string
	Category       string
	Urgency        string
	Description    string
	UnitNumber     string
	ContactName    string
	ContactPhone   string
	ResolutionTime string
}

// TourConfirmationData carries the fields for a tour confirmation email.
type TourConfirmationData struct {
	PropertyName  string
	ProspectName  string
	ProspectPhone string
	ProspectEmail string
	TourDate      string
	TourTime      string
	UnitPref      string
}

type Sender interface {
	SendCallSummaryEmail(ctx context.Context, toEmail string, data CallSummaryData) error
	SendTicketFollowUpEmail(ctx context.Context, toEmail string, data TicketFollowUpData) error
	SendTourConfirmationEmail(ctx context.Context, toEmail string, data TourConfirmationData) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendCallSummaryEmail(ctx context.Context, toEmail string, data CallSummaryData) error {
	return nil
}

func (NoopSender) SendTicketFollowUpEmail(ctx context.Context, toEmail string, data TicketFollowUpData) error {
	return nil
}

func (NoopSender) SendTourConfirmationEmail(ctx context.Context, toEmail string, data TourConfirmationData) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// NewSender returns the configured sender implementation.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	case "brevo":
		return NewBrevoSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

// callSummarySubject builds the subject line for a call summary notification.
// Emergencies get an explicit URGENT prefix so they stand out in the inbox.
func callSummarySubject(data CallSummaryData) string {
	caller := data.CallerName
	if caller == "" {
		caller = data.CallerPhone
	}
	if caller == "" {
		caller = "Unknown"
	}

	subject := fmt.Sprintf(subjectCallSummaryFmt, titleCase(data.CallType), caller, data.PropertyName)
	if data.Emergency {
		subject = subjectUrgentPrefix + subject
	}
	return subject
}
