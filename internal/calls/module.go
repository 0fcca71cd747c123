package calls

import (
	apphttp "propertyvoice_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and initializes the calls module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(repo),
	}
}

// Repository exposes the call repository for cross-module wiring
// (the webhook orchestrator persists through it).
func (m *Module) Repository() *Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// RegisterRoutes mounts the manager-facing call routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/calls")
	group.GET("", m.handler.HandleListCalls)
	group.GET("/:callId", m.handler.HandleGetCall)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
