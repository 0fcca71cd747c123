package units

import (
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the units bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and initializes the units module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(repo, log),
	}
}

// Repository exposes the unit repository for cross-module wiring
// (maintenance tickets look up units by number).
func (m *Module) Repository() *Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "units"
}

// RegisterRoutes mounts the live-call tool route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tools.POST("/check-availability", m.handler.HandleCheckAvailability)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
