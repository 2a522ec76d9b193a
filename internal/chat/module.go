// Package chat wires the chat advisor widget endpoints.
package chat

import (
	"lead_funnel_backend/internal/chat/handler"
	"lead_funnel_backend/internal/chat/session"
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/platform/validator"
)

type Module struct {
	svc     *session.Service
	handler *handler.HTTPHandler
}

func NewModule(deps session.Deps, val *validator.Validator) *Module {
	svc := session.NewService(deps)
	return &Module{svc: svc, handler: handler.NewHTTPHandler(svc, val)}
}

func (m *Module) Service() *session.Service { return m.svc }

func (m *Module) Name() string {
	return "chat"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)
}

var _ apphttp.Module = (*Module)(nil)
