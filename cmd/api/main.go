package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/email"
	"propertyvoice_backend/internal/events"
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/internal/http/router"
	"propertyvoice_backend/internal/maintenance"
	"propertyvoice_backend/internal/notification"
	"propertyvoice_backend/internal/payments"
	"propertyvoice_backend/internal/recordings"
	"propertyvoice_backend/internal/scheduler"
	"propertyvoice_backend/internal/summarizer"
	"propertyvoice_backend/internal/tours"
	"propertyvoice_backend/internal/units"
	"propertyvoice_backend/internal/webhook"
	"propertyvoice_backend/platform/config"
	"propertyvoice_backend/platform/db"
	"propertyvoice_backend/platform/logger"
	"propertyvoice_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	followUpScheduler, closeScheduler := initFollowUpScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	callsModule := calls.NewModule(pool)
	contactsModule := contacts.NewModule(pool, val, log)
	unitsModule := units.NewModule(pool, log)
	maintenanceModule := maintenance.NewModule(pool, unitsModule.Repository(), followUpScheduler, eventBus, log)
	toursModule := tours.NewModule(pool, contactsModule.Repository(), eventBus, log)
	paymentsModule := payments.NewModule(log)

	// Manager notifications subscribe to domain events and are driven by
	// the webhook pipeline; not HTTP-facing.
	dispatcher := notification.NewDispatcher(sender, callsModule.Repository(), cfg, log)
	dispatcher.SubscribeTourConfirmations(eventBus)

	// AI transcript summarizer; the pipeline degrades to template summaries
	// when unconfigured.
	var sum summarizer.Summarizer
	if cfg.IsSummarizerEnabled() {
		agent, err := summarizer.NewAgent(cfg.GetMoonshotAPIKey(), cfg.GetSummarizerTimeout())
		if err != nil {
			log.Error("failed to initialize summarizer agent", "error", err)
			panic("failed to initialize summarizer agent: " + err.Error())
		}
		sum = agent
		log.Info("transcript summarizer initialized")
	} else {
		log.Warn("MOONSHOT_API_KEY not configured; using template call summaries")
	}

	webhookService := webhook.NewService(
		callsModule.Repository(),
		contactsModule.Resolver(),
		maintenanceModule.Service(),
		toursModule.Service(),
		sum,
		dispatcher,
		eventBus,
		log,
	)
	webhookModule := webhook.NewModule(webhookService, log)

	modules := []apphttp.Module{
		webhookModule,
		callsModule,
		contactsModule,
		unitsModule,
		maintenanceModule,
		toursModule,
		paymentsModule,
	}

	// Recording archival (MinIO) is optional; calls still carry the
	// platform recording URL when disabled.
	if cfg.IsMinIOEnabled() {
		store, err := recordings.NewStore(cfg)
		if err != nil {
			log.Error("failed to initialize recording storage", "error", err)
			panic("failed to initialize recording storage: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure recordings bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure recordings bucket exists", "error", err)
			panic("failed to ensure recordings bucket exists: " + err.Error())
		}
		modules = append(modules, recordings.NewModule(store, callsModule.Repository(), eventBus, log))
		log.Info("recording storage initialized", "bucket", cfg.GetMinioBucketRecordings())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; recording archival disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Let in-flight event handlers (notifications, archival) finish
		// before the pool closes, bounded by the shutdown deadline.
		drained := make(chan struct{})
		go func() {
			eventBus.Wait()
			close(drained)
		}()
		select {
		case <-drained:
			log.Info("event handlers drained")
		case <-shutdownCtx.Done():
			log.Warn("shutdown deadline reached with event handlers still running")
		}
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (maintenance.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; ticket follow-ups disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
