package scheduler

import (
	"context"
	"fmt"

	"propertyvoice_backend/internal/email"
	"propertyvoice_backend/internal/maintenance"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/config"
	"propertyvoice_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes scheduled jobs. Its only job type today is the ticket
// follow-up: when the follow-up time arrives and the ticket is still
// open, the property manager gets a reminder email.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	tickets      *maintenance.Repository
	sender       email.Sender
	propertyName string
	managerEmail string
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, property config.PropertyConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		tickets:      maintenance.NewRepository(pool),
		sender:       sender,
		propertyName: property.GetPropertyName(),
		managerEmail: property.GetManagerEmail(),
		log:          log,
	}

	mux.HandleFunc(TaskTicketFollowUp, w.handleTicketFollowUp)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleTicketFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTicketFollowUpPayload(task)
	if err != nil {
		return err
	}

	ticketID, err := uuid.Parse(payload.TicketID)
	if err != nil {
		return err
	}

	ticket, err := w.tickets.GetByID(ctx, ticketID)
	if err != nil {
		// A deleted ticket needs no follow-up; don't retry.
		if apperr.GetKind(err) == apperr.KindNotFound {
			w.log.Warn("follow-up for missing ticket", "ticketId", ticketID)
			return nil
		}
		return err
	}

	if !ticket.IsOpen() {
		w.log.Info("ticket resolved before follow-up", "ticketNumber", ticket.TicketNumber)
		return nil
	}

	if w.managerEmail == "" {
		w.log.Warn("manager email not configured, skipping follow-up", "ticketNumber", ticket.TicketNumber)
		return nil
	}

	data := email.TicketFollowUpData{
		PropertyName:   w.propertyName,
		TicketNumber:   ticket.TicketNumber,
		Category:       ticket.Category,
		Urgency:        ticket.Urgency,
		Description:    ticket.Description,
		UnitNumber:     ticket.UnitNumber,
		ContactName:    metadataString(ticket.Metadata, "caller_name"),
		ContactPhone:   metadataString(ticket.Metadata, "caller_phone"),
		ResolutionTime: resolutionWindow(ticket.Urgency),
	}

	if err := w.sender.SendTicketFollowUpEmail(ctx, w.managerEmail, data); err != nil {
		return fmt.Errorf("send ticket follow-up email: %w", err)
	}

	w.log.Info("ticket follow-up sent", "ticketNumber", ticket.TicketNumber, "to", w.managerEmail)
	return nil
}

func resolutionWindow(urgency string) string {
	switch urgency {
	case maintenance.UrgencyEmergency:
		return "0-2 hours"
	case maintenance.UrgencyUrgent:
		return "4-24 hours"
	default:
		return "1-3 business days"
	}
}

func metadataString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
