package alerts

import (
	"context"
	"fmt"
	"time"

	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// MaxFeedLength bounds every retained list.
	MaxFeedLength = 500
	// promptWindow is how long a trigger type stays suppressed once queued for a lead.
	promptWindow = 24 * time.Hour
)

// ChatPrompt is a proactive message the chat widget shows on its next poll.
type ChatPrompt struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"leadId"`
	TriggerType string    `json:"triggerType"`
	Message     string    `json:"message"`
	OfferType   string    `json:"offerType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PromptQueue holds chat prompts per lead until the widget collects them.
type PromptQueue struct {
	prompts store.List[ChatPrompt]
	gate    store.Gate
	clock   clockwork.Clock
	log     *logger.Logger
}

// NewPromptQueue creates a queue. Nil stores fall back to process memory.
func NewPromptQueue(prompts store.List[ChatPrompt], gate store.Gate, clock clockwork.Clock, log *logger.Logger) *PromptQueue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if prompts == nil {
		prompts = store.NewMemoryList[ChatPrompt](MaxFeedLength)
	}
	if gate == nil {
		gate = store.NewMemoryGate(clock)
	}
	return &PromptQueue{prompts: prompts, gate: gate, clock: clock, log: log}
}

// Trigger queues a prompt. The same trigger type is queued once per lead per day,
// so a visitor is not shown the same popup on every routing pass.
func (q *PromptQueue) Trigger(ctx context.Context, leadID, triggerType, message, offerType string) (bool, error) {
	open, err := q.gate.Acquire(ctx, leadID+":"+triggerType, promptWindow)
	if err != nil {
		return false, fmt.Errorf("chat prompt dedupe: %w", err)
	}
	if !open {
		return false, nil
	}

	prompt := ChatPrompt{
		ID:          uuid.NewString(),
		LeadID:      leadID,
		TriggerType: triggerType,
		Message:     message,
		OfferType:   offerType,
		CreatedAt:   q.clock.Now(),
	}
	if err := q.prompts.Append(ctx, leadID, prompt); err != nil {
		_ = q.gate.Release(ctx, leadID+":"+triggerType)
		return false, fmt.Errorf("queue chat prompt: %w", err)
	}
	q.log.WithContext(ctx).Info("chat prompt queued", "lead_id", leadID, "trigger_type", triggerType, "offer_type", offerType)
	return true, nil
}

// Collect returns and removes the lead's pending prompts in the order they were queued.
func (q *PromptQueue) Collect(ctx context.Context, leadID string) ([]ChatPrompt, error) {
	return q.prompts.Drain(ctx, leadID)
}
