package adapters

import (
	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/internal/email"
	"lead_funnel_backend/internal/notification/alerts"
	"lead_funnel_backend/internal/routing"
)

// RoutingDelegates collects the services that carry out routing actions.
type RoutingDelegates struct {
	Email    *email.Service
	Sales    *alerts.SalesNotifier
	Prompts  *alerts.PromptQueue
	Content  *catalog.Service
	Bookings *booking.Service
}

// Build bridges the services into the routing engine's delegate ports.
// Services that are not set leave their action without a delegate.
func (d RoutingDelegates) Build() routing.Delegates {
	var out routing.Delegates
	if d.Email != nil {
		out.Email = d.Email
	}
	if d.Sales != nil {
		out.Sales = d.Sales
	}
	if d.Prompts != nil {
		out.Chatbot = d.Prompts
	}
	if d.Content != nil {
		out.Content = NewContentRecommenderAdapter(d.Content)
	}
	if d.Bookings != nil {
		out.Consultation = NewConsultationBookerAdapter(d.Bookings)
	}
	return out
}
