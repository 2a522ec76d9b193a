package routing

import (
	"context"

	"lead_funnel_backend/internal/leads/domain"
)

// The dispatcher delegates every action type to one of these collaborators.
// Implementations live in other modules and are bridged in internal/adapters.

// SequenceTrigger enrolls a lead in an email sequence. It reports false when
// the sequence did not start, for example because the lead is already enrolled.
type SequenceTrigger interface {
	TriggerSequence(ctx context.Context, lead domain.Lead, sequenceID string) (bool, error)
}

// Every delegate reports false without error when it declined the action,
// for example because the same alert, prompt or booking already exists.

// SalesNotifier alerts the sales team about a lead.
type SalesNotifier interface {
	Notify(ctx context.Context, lead domain.Lead, priority, message string) (bool, error)
}

// ChatbotPresenter queues a proactive chat prompt for the lead's widget.
type ChatbotPresenter interface {
	Trigger(ctx context.Context, leadID, triggerType, message, offerType string) (bool, error)
}

// ContentRecommender sends content suggestions to a lead.
type ContentRecommender interface {
	RecommendContent(ctx context.Context, lead domain.Lead, count int, recommendationType string) (bool, error)
}

// ConsultationBooker reserves a consultation slot for a lead.
type ConsultationBooker interface {
	Reserve(ctx context.Context, lead domain.Lead, bookingType, consultantType, message string) (bool, error)
}

// LeadReader loads the current state of a lead when a delayed action runs.
type LeadReader interface {
	Get(ctx context.Context, id string) (domain.Lead, error)
}

// Delegates bundles the action collaborators. A nil delegate makes its action fail.
type Delegates struct {
	Email        SequenceTrigger
	Sales        SalesNotifier
	Chatbot      ChatbotPresenter
	Content      ContentRecommender
	Consultation ConsultationBooker
}
