// Package treatments provides the treatments bounded context module.
package treatments

import (
	"dentalcare_backend/internal/auth/permission"
	apphttp "dentalcare_backend/internal/http"
	"dentalcare_backend/internal/treatments/handler"
	"dentalcare_backend/internal/treatments/service"
)

// Module is the treatments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule() *Module {
	return &Module{handler: handler.New(service.New())}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "treatments"
}

// RegisterRoutes mounts treatment and medical-record item routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	treatments := ctx.Protected.Group("/treatments")
	treatments.POST("/preview", ctx.Require(permission.TreatmentsView), m.handler.PreviewTreatmentItems)
	treatments.POST("/validate", ctx.Require(permission.TreatmentsView), m.handler.ValidateTreatment)

	records := ctx.Protected.Group("/medical-records")
	records.POST("/items/preview",
		ctx.RequireAny(permission.MedicalRecordsCreate, permission.MedicalRecordsUpdate),
		m.handler.PreviewMedicalRecordItems,
	)
}

var _ apphttp.Module = (*Module)(nil)
