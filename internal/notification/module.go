// Package notification wires sales alerts and chat prompts into the HTTP layer.
package notification

import (
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/notification/alerts"
	"lead_funnel_backend/internal/notification/handler"
)

// Module exposes the sales feed and the chat prompt queue over HTTP.
type Module struct {
	sales   *alerts.SalesNotifier
	prompts *alerts.PromptQueue
	handler *handler.HTTPHandler
}

func NewModule(sales *alerts.SalesNotifier, prompts *alerts.PromptQueue) *Module {
	return &Module{
		sales:   sales,
		prompts: prompts,
		handler: handler.NewHTTPHandler(sales, prompts),
	}
}

func (m *Module) Sales() *alerts.SalesNotifier { return m.sales }

func (m *Module) Prompts() *alerts.PromptQueue { return m.prompts }

func (m *Module) Name() string {
	return "notification"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterSalesRoutes(ctx.Ops.Group("/sales"))
	m.handler.RegisterWidgetRoutes(ctx.V1.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
