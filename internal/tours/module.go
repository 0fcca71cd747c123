package tours

import (
	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/events"
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tours bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	service *Service
	handler *Handler
}

// NewModule creates and initializes the tours module.
func NewModule(pool *pgxpool.Pool, contactsRepo *contacts.Repository, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, contactsRepo, bus, log)
	return &Module{
		repo:    repo,
		service: svc,
		handler: NewHandler(svc, repo, log),
	}
}

// Service exposes tour scheduling for the webhook pipeline.
func (m *Module) Service() *Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tours"
}

// RegisterRoutes mounts the live-call tool and the admin listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tools.POST("/schedule-tour", m.handler.HandleScheduleTour)
	ctx.Protected.GET("/tours", m.handler.HandleListTours)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
