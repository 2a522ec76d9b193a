// Package alerts delivers routing outcomes to people: sales alerts for the
// team and proactive chat prompts for the visitor's widget.
package alerts

import (
	"context"
	"fmt"
	"slices"
	"time"

	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// salesFeedKey is the single list all sales alerts are appended to.
const salesFeedKey = "sales"

// SalesAlert is one notification for the sales team.
type SalesAlert struct {
	ID       string        `json:"id"`
	LeadID   string        `json:"leadId"`
	Email    string        `json:"email,omitempty"`
	Name     string        `json:"name,omitempty"`
	Phone    string        `json:"phone,omitempty"`
	Score    float64       `json:"score"`
	Status   domain.Status `json:"status"`
	Priority string        `json:"priority"`
	Message  string        `json:"message"`
	RaisedAt time.Time     `json:"raisedAt"`
}

// SalesNotifier raises alerts at most once per lead and priority within the cooldown.
type SalesNotifier struct {
	alerts   store.List[SalesAlert]
	gate     store.Gate
	cooldown time.Duration
	clock    clockwork.Clock
	bus      events.Bus
	metrics  *observability.Metrics
	log      *logger.Logger
}

// SalesDeps groups the collaborators of SalesNotifier. Nil stores fall back to process memory.
type SalesDeps struct {
	Alerts   store.List[SalesAlert]
	Gate     store.Gate
	Cooldown time.Duration
	Clock    clockwork.Clock
	Bus      events.Bus
	Metrics  *observability.Metrics
	Log      *logger.Logger
}

func NewSalesNotifier(deps SalesDeps) *SalesNotifier {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if deps.Alerts == nil {
		deps.Alerts = store.NewMemoryList[SalesAlert](MaxFeedLength)
	}
	if deps.Gate == nil {
		deps.Gate = store.NewMemoryGate(clock)
	}
	return &SalesNotifier{
		alerts:   deps.Alerts,
		gate:     deps.Gate,
		cooldown: deps.Cooldown,
		clock:    clock,
		bus:      deps.Bus,
		metrics:  deps.Metrics,
		log:      deps.Log,
	}
}

// Notify records an alert for lead. It reports whether the alert was raised;
// a repeat within the cooldown is dropped without error.
func (n *SalesNotifier) Notify(ctx context.Context, lead domain.Lead, priority, message string) (bool, error) {
	if n.cooldown > 0 {
		open, err := n.gate.Acquire(ctx, lead.ID+":"+priority, n.cooldown)
		if err != nil {
			return false, fmt.Errorf("sales alert cooldown: %w", err)
		}
		if !open {
			n.log.WithContext(ctx).Debug("sales alert suppressed by cooldown", "lead_id", lead.ID, "priority", priority)
			return false, nil
		}
	}

	alert := SalesAlert{
		ID:       uuid.NewString(),
		LeadID:   lead.ID,
		Email:    lead.Email,
		Name:     lead.Name,
		Phone:    lead.Phone,
		Score:    lead.Score,
		Status:   lead.Status,
		Priority: priority,
		Message:  message,
		RaisedAt: n.clock.Now(),
	}
	if err := n.alerts.Append(ctx, salesFeedKey, alert); err != nil {
		return false, fmt.Errorf("store sales alert: %w", err)
	}

	n.metrics.SalesAlert(priority)
	n.log.WithContext(ctx).Info("sales alert raised",
		"lead_id", lead.ID,
		"priority", priority,
		"score", lead.Score,
		"message", message,
	)
	if n.bus != nil {
		n.bus.Publish(ctx, events.SalesAlertRaised{
			BaseEvent: events.NewBaseEventAt(alert.RaisedAt),
			LeadID:    lead.ID,
			Priority:  priority,
			Message:   message,
			Score:     lead.Score,
		})
	}
	return true, nil
}

// Alerts returns the retained alerts, newest first.
func (n *SalesNotifier) Alerts(ctx context.Context) ([]SalesAlert, error) {
	alerts, err := n.alerts.Range(ctx, salesFeedKey)
	if err != nil {
		return nil, err
	}
	slices.Reverse(alerts)
	return alerts, nil
}
