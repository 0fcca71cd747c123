package payments

import (
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/logger"
)

// Module is the payments module implementing http.Module. It carries no
// state; payment policy is static spoken text.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the payments module.
func NewModule(log *logger.Logger) *Module {
	return &Module{handler: NewHandler(log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// RegisterRoutes mounts the live-call payment info tool.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tools.POST("/get-payment-info", m.handler.HandlePaymentInfo)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
