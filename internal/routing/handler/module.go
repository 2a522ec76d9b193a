package handler

import (
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/routing"
)

// Module mounts rule management on the ops group.
type Module struct {
	handler *Handler
}

func NewModule(engine *routing.Engine) *Module {
	return &Module{handler: New(engine)}
}

func (m *Module) Name() string {
	return "routing"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Ops.Group("/routing"))
}

var _ apphttp.Module = (*Module)(nil)
