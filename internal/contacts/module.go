package contacts

import (
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/logger"
	"propertyvoice_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	repo     *Repository
	resolver *Resolver
	handler  *Handler
}

// NewModule creates and initializes the contacts module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	resolver := NewResolver(repo, log)
	return &Module{
		repo:     repo,
		resolver: resolver,
		handler:  NewHandler(resolver, val),
	}
}

// Resolver exposes the contact resolver for the webhook orchestrator.
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// Repository exposes the contact store for modules that link contacts.
func (m *Module) Repository() *Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// RegisterRoutes mounts the live-call tool route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tools.POST("/validate-contact", m.handler.HandleValidateContact)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
