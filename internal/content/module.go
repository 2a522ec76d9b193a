// Package content wires the content catalogue into the HTTP layer.
package content

import (
	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/internal/content/handler"
	apphttp "lead_funnel_backend/internal/http"
)

type Module struct {
	svc     *catalog.Service
	handler *handler.Handler
}

func NewModule(svc *catalog.Service) *Module {
	return &Module{svc: svc, handler: handler.New(svc)}
}

func (m *Module) Service() *catalog.Service { return m.svc }

func (m *Module) Name() string {
	return "content"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)
}

var _ apphttp.Module = (*Module)(nil)
