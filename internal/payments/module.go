// Package payments provides the payments bounded context module.
package payments

import (
	"time"

	"dentalcare_backend/internal/auth/permission"
	apphttp "dentalcare_backend/internal/http"
	"dentalcare_backend/internal/payments/handler"
	"dentalcare_backend/internal/payments/service"
	"dentalcare_backend/platform/validator"
)

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the payments module. val must carry the clinic field tags.
func NewModule(val *validator.Validator, now func() time.Time) *Module {
	return &Module{handler: handler.New(service.New(now), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// RegisterRoutes mounts payment routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/payments")
	group.POST("/preview", ctx.Require(permission.PaymentsCreate), m.handler.Preview)
	group.POST("/validate", ctx.RequireAny(permission.PaymentsCreate, permission.PaymentsUpdate), m.handler.ValidateForm)
}

var _ apphttp.Module = (*Module)(nil)
