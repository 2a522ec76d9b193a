// Package consultation wires consultation bookings into the HTTP layer.
package consultation

import (
	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/internal/consultation/handler"
	apphttp "lead_funnel_backend/internal/http"
)

type Module struct {
	svc     *booking.Service
	handler *handler.Handler
}

func NewModule(svc *booking.Service) *Module {
	return &Module{svc: svc, handler: handler.New(svc)}
}

func (m *Module) Service() *booking.Service { return m.svc }

func (m *Module) Name() string {
	return "consultation"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
