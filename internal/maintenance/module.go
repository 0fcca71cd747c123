package maintenance

import (
	"propertyvoice_backend/internal/events"
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/internal/units"
	"propertyvoice_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the maintenance bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	service *Service
	handler *Handler
}

// NewModule creates and initializes the maintenance module.
func NewModule(pool *pgxpool.Pool, unitsRepo *units.Repository, scheduler FollowUpScheduler, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, unitsRepo, scheduler, bus, log)
	return &Module{
		repo:    repo,
		service: svc,
		handler: NewHandler(svc, repo, unitsRepo, log),
	}
}

// Service exposes ticket creation for the webhook pipeline.
func (m *Module) Service() *Service {
	return m.service
}

// Repository exposes ticket lookups for the follow-up worker.
func (m *Module) Repository() *Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "maintenance"
}

// RegisterRoutes mounts the live-call tools and the admin ticket listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tools.POST("/create-ticket", m.handler.HandleCreateTicket)
	ctx.Tools.POST("/troubleshoot", m.handler.HandleTroubleshoot)
	ctx.Protected.GET("/tickets", m.handler.HandleListTickets)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
