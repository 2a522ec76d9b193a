package adapters

import (
	"context"

	"lead_funnel_backend/internal/chat/session"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/leads/transport"
)

// ChatLeadAdapter adapts the leads lifecycle service for chat sessions.
// It implements the chat/session.LeadDirectory interface.
type ChatLeadAdapter struct {
	leads *service.Service
}

func NewChatLeadAdapter(leads *service.Service) *ChatLeadAdapter {
	return &ChatLeadAdapter{leads: leads}
}

func (a *ChatLeadAdapter) Exists(ctx context.Context, leadID string) error {
	_, err := a.leads.Get(ctx, leadID)
	return err
}

// ApplyConversation merges the extracted tags and re-routes the lead. When
// auto routing already ran for the update it is not repeated.
func (a *ChatLeadAdapter) ApplyConversation(ctx context.Context, leadID string, interests []string, goals []domain.Goal) error {
	lead, err := a.leads.ApplyConversation(ctx, leadID, transport.ConversationUpdate{Interests: interests, Goals: goals})
	if err != nil {
		return err
	}
	if lead.Routing != nil || lead.Status.Terminal() {
		return nil
	}
	_, err = a.leads.Route(ctx, leadID)
	return err
}

var _ session.LeadDirectory = (*ChatLeadAdapter)(nil)
