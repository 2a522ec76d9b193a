// Package analytics records the routing audit trail: which rule fired for
// which lead, and whether its action ran.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lead_funnel_backend/platform/logger"
)

// EventType names an audit event.
type EventType string

const (
	EventActionScheduled EventType = "routing.action.scheduled"
	EventActionExecuted  EventType = "routing.action.executed"
	EventActionFailed    EventType = "routing.action.failed"
	EventEmailSent       EventType = "email.sent"
	EventEmailSkipped    EventType = "email.skipped"
	EventLeadConverted   EventType = "lead.converted"
)

// Event is one audit record.
type Event struct {
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	LeadID     string         `json:"leadId"`
	RuleID     string         `json:"ruleId,omitempty"`
	ActionType string         `json:"actionType,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	DelayMs    int64          `json:"delayMs,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Sink receives audit events.
type Sink interface {
	Log(ctx context.Context, event Event) error
}

// LogSink writes audit events to the structured logger.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Log(ctx context.Context, event Event) error {
	s.log.WithContext(ctx).Info("routing_audit",
		slog.String("type", string(event.Type)),
		slog.String("lead_id", event.LeadID),
		slog.String("rule_id", event.RuleID),
		slog.String("action", event.ActionType),
		slog.Int64("delay_ms", event.DelayMs),
		slog.String("error", event.Error),
	)
	return nil
}

// MultiSink fans events out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Log(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = MultiSink(nil)
)
