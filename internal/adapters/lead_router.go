package adapters

import (
	"context"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/internal/routing"
)

// LeadRouterAdapter adapts the routing engine for the leads lifecycle service.
// It implements the leads/service.Router interface.
type LeadRouterAdapter struct {
	engine *routing.Engine
}

func NewLeadRouterAdapter(engine *routing.Engine) *LeadRouterAdapter {
	return &LeadRouterAdapter{engine: engine}
}

// Route runs one routing pass and translates the result into the leads transport shape.
func (a *LeadRouterAdapter) Route(ctx context.Context, lead domain.Lead) (transport.RouteResponse, error) {
	result := a.engine.Route(ctx, lead)

	actions := make([]transport.RoutedAction, 0, len(result.Triggered))
	for _, triggered := range result.Triggered {
		actions = append(actions, transport.RoutedAction{
			RuleID:     triggered.RuleID,
			ActionType: string(triggered.Action.Type),
			Parameters: triggered.Action.Params,
			DelayMs:    triggered.Action.Delay.Milliseconds(),
			TaskID:     triggered.TaskID,
		})
	}

	return transport.RouteResponse{
		LeadID:           result.Lead.ID,
		Score:            result.Lead.Score,
		Status:           result.Lead.Status,
		PreviousStatus:   result.PreviousStatus,
		MatchedRules:     result.Matched,
		Actions:          actions,
		Recommendations:  result.Recommendations,
		RuleTableVersion: result.RuleTableVersion,
	}, nil
}

var _ service.Router = (*LeadRouterAdapter)(nil)
