package handler

import (
	"lead_funnel_backend/internal/email"
	apphttp "lead_funnel_backend/internal/http"
)

// Module mounts the email endpoints. The service itself is built by the caller
// because routing delegates and the scheduler worker share it.
type Module struct {
	handler *Handler
}

func NewModule(svc *email.Service) *Module {
	return &Module{handler: New(svc)}
}

func (m *Module) Name() string {
	return "email"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterLeadRoutes(ctx.V1.Group("/leads"))
	m.handler.RegisterOpsRoutes(ctx.Ops.Group("/email"))
}

var _ apphttp.Module = (*Module)(nil)
