package webhook

import (
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/logger"
)

// Module is the webhook module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates the webhook module around a fully wired pipeline service.
func NewModule(svc *Service, log *logger.Logger) *Module {
	return &Module{
		service: svc,
		handler: NewHandler(svc, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the call-ended notification endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhooks.POST("/voice/call-ended", m.handler.HandleCallEnded)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
