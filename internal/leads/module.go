// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/leads/handler"
	"lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the leads module and registers the lead request validations on val.
func NewModule(deps service.Deps, val *validator.Validator) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	svc := service.New(deps)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Service returns the lifecycle service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
	m.handler.RegisterOpsRoutes(ctx.Ops.Group("/leads"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
