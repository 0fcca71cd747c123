// Package notification renders and delivers the post-call emails: the
// manager's call summary and the prospect's tour confirmation.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/email"
	"propertyvoice_backend/internal/events"
	"propertyvoice_backend/internal/maintenance"
	"propertyvoice_backend/internal/summarizer"
	"propertyvoice_backend/internal/tours"
	"propertyvoice_backend/platform/config"
	"propertyvoice_backend/platform/logger"
)

// DispatchInput bundles everything the call summary email is built from.
type DispatchInput struct {
	Record  calls.CallRecord
	Summary summarizer.Summary
	Contact contacts.Contact
	Known   bool
	Ticket  *maintenance.TicketResult
	Tour    *tours.ScheduleResult
}

// Dispatcher sends the call summary to the property manager and flips the
// email-sent flag once delivery is acknowledged.
type Dispatcher struct {
	sender       email.Sender
	calls        *calls.Repository
	propertyName string
	managerEmail string
	log          *logger.Logger
}

func NewDispatcher(sender email.Sender, callsRepo *calls.Repository, property config.PropertyConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender:       sender,
		calls:        callsRepo,
		propertyName: property.GetPropertyName(),
		managerEmail: property.GetManagerEmail(),
		log:          log,
	}
}

// DispatchCallSummary renders and sends the summary email. The email-sent
// flag is set only after the sender acknowledges delivery; on failure the
// flag stays unset so the call is visibly unnotified.
func (d *Dispatcher) DispatchCallSummary(ctx context.Context, in DispatchInput) error {
	if d.managerEmail == "" {
		return fmt.Errorf("manager email not configured")
	}
	if in.Record.EmailSent {
		return nil
	}

	data := d.buildCallSummaryData(in)
	if err := d.sender.SendCallSummaryEmail(ctx, d.managerEmail, data); err != nil {
		return fmt.Errorf("send call summary email: %w", err)
	}

	if err := d.calls.MarkEmailSent(ctx, in.Record.ID, time.Now().UTC()); err != nil {
		// The email went out; a failed flag update must not look like a
		// delivery failure to the orchestrator.
		d.log.DatabaseError("notification.DispatchCallSummary", err)
	}

	d.log.Info("call summary email sent",
		"externalCallId", in.Record.ExternalCallID,
		"to", d.managerEmail,
	)
	return nil
}

func (d *Dispatcher) buildCallSummaryData(in DispatchInput) email.CallSummaryData {
	data := email.CallSummaryData{
		PropertyName:     d.propertyName,
		ExternalCallID:   in.Record.ExternalCallID,
		CallerPhone:      in.Record.FromNumber,
		CallType:         in.Record.CallType,
		Sentiment:        in.Record.Sentiment,
		DurationSeconds:  in.Record.DurationSecs,
		StartedAt:        in.Record.StartedAt,
		Overview:         in.Summary.Overview,
		ActionItems:      in.Summary.ActionItems,
		NextSteps:        in.Summary.NextSteps,
		Highlights:       in.Summary.Highlights,
		RequiresCallback: in.Summary.RequiresCallback,
		CallbackReason:   in.Summary.CallbackReason,
	}

	if in.Record.RecordingURL != nil {
		data.RecordingURL = *in.Record.RecordingURL
	}

	if in.Known {
		if in.Contact.Name != nil {
			data.CallerName = *in.Contact.Name
		}
		if in.Contact.Email != nil {
			data.CallerEmail = *in.Contact.Email
		}
		if in.Contact.UnitNumber != nil {
			data.UnitNumber = *in.Contact.UnitNumber
		}
	}
	if data.CallerName == "" {
		data.CallerName = in.Summary.CallerInfo.Name
	}
	if data.UnitNumber == "" {
		data.UnitNumber = in.Summary.CallerInfo.UnitNumber
	}

	if in.Ticket != nil {
		t := in.Ticket.Ticket
		data.Emergency = t.Urgency == maintenance.UrgencyEmergency
		data.KeyDetails = append(data.KeyDetails,
			email.KeyDetail{Label: "Ticket Number", Value: t.TicketNumber},
			email.KeyDetail{Label: "Issue Category", Value: t.Category},
			email.KeyDetail{Label: "Urgency", Value: t.Urgency},
		)
		if t.UnitNumber != "" {
			data.KeyDetails = append(data.KeyDetails, email.KeyDetail{Label: "Unit", Value: t.UnitNumber})
		}
		data.KeyDetails = append(data.KeyDetails,
			email.KeyDetail{Label: "Estimated Resolution", Value: in.Ticket.Guidance.EstimatedResolution})

		for _, step := range in.Ticket.Guidance.Steps {
			data.NextSteps = append(data.NextSteps, "Troubleshooting: "+step)
		}
	}

	if in.Tour != nil {
		t := in.Tour.Tour
		data.KeyDetails = append(data.KeyDetails,
			email.KeyDetail{Label: "Tour Visitor", Value: t.VisitorName})
		if t.PreferredDate != "" {
			when := t.PreferredDate
			if t.PreferredTime != "" {
				when += " at " + t.PreferredTime
			}
			data.KeyDetails = append(data.KeyDetails, email.KeyDetail{Label: "Tour Scheduled", Value: when})
		}
	}

	for key, value := range in.Summary.KeyDetails {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		data.KeyDetails = append(data.KeyDetails, email.KeyDetail{Label: labelize(key), Value: s})
	}

	return data
}

// labelize turns a snake_case summary key into a display label.
func labelize(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SubscribeTourConfirmations sends a confirmation email to the prospect
// whenever a tour gets scheduled with an email address on file.
func (d *Dispatcher) SubscribeTourConfirmations(bus events.Bus) {
	bus.Subscribe("tours.scheduled", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		scheduled, ok := e.(events.TourScheduled)
		if !ok || scheduled.ProspectEmail == "" {
			return nil
		}

		err := d.sender.SendTourConfirmationEmail(ctx, scheduled.ProspectEmail, email.TourConfirmationData{
			PropertyName:  d.propertyName,
			ProspectName:  scheduled.ProspectName,
			ProspectPhone: scheduled.ProspectPhone,
			ProspectEmail: scheduled.ProspectEmail,
			TourDate:      scheduled.TourDate,
			TourTime:      scheduled.TourTime,
		})
		if err != nil {
			d.log.Warn("tour confirmation email failed",
				"tourId", scheduled.TourID,
				"error", err,
			)
		}
		return nil
	}))
}
