// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_funnel_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// =============================================================================
// Lead Lifecycle Events
// =============================================================================

// LeadCreated is published when an anonymous visitor gets a lead record.
type LeadCreated struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Source string `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadScored is published after every rescoring.
type LeadScored struct {
	BaseEvent
	LeadID string  `json:"leadId"`
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

func (e LeadScored) EventName() string { return "leads.scored" }

// LeadStatusChanged is published when rescoring or a business event moves a lead to a new status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID string `json:"leadId"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status_changed" }

// LeadEmailCaptured is published when an anonymous lead leaves an email address.
type LeadEmailCaptured struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Email  string `json:"email"`
}

func (e LeadEmailCaptured) EventName() string { return "leads.email_captured" }

// LeadConverted is published when a lead reaches the terminal converted state.
type LeadConverted struct {
	BaseEvent
	LeadID string `json:"leadId"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// LeadLost is published when a lead reaches the terminal lost state.
type LeadLost struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Reason string `json:"reason,omitempty"`
}

func (e LeadLost) EventName() string { return "leads.lost" }

// =============================================================================
// Routing Events
// =============================================================================

// RoutingActionExecuted is published when a delegate accepted a routing action.
type RoutingActionExecuted struct {
	BaseEvent
	LeadID     string `json:"leadId"`
	RuleID     string `json:"ruleId"`
	ActionType string `json:"actionType"`
}

func (e RoutingActionExecuted) EventName() string { return "routing.action.executed" }

// RoutingActionFailed is published when a routing action could not be scheduled or dispatched.
type RoutingActionFailed struct {
	BaseEvent
	LeadID     string `json:"leadId"`
	RuleID     string `json:"ruleId"`
	ActionType string `json:"actionType"`
	Error      string `json:"error"`
}

func (e RoutingActionFailed) EventName() string { return "routing.action.failed" }

// =============================================================================
// Outreach Events
// =============================================================================

// SalesAlertRaised is published when the sales team is notified about a lead.
type SalesAlertRaised struct {
	BaseEvent
	LeadID   string  `json:"leadId"`
	Priority string  `json:"priority"`
	Message  string  `json:"message"`
	Score    float64 `json:"score"`
}

func (e SalesAlertRaised) EventName() string { return "notification.sales_alert" }

// EmailSequenceTriggered is published when a lead is enrolled in a sequence.
type EmailSequenceTriggered struct {
	BaseEvent
	LeadID     string `json:"leadId"`
	SequenceID string `json:"sequenceId"`
	Steps      int    `json:"steps"`
}

func (e EmailSequenceTriggered) EventName() string { return "email.sequence.triggered" }

// EmailSent is published after a sequence email was handed to the delivery.
type EmailSent struct {
	BaseEvent
	LeadID     string `json:"leadId"`
	SequenceID string `json:"sequenceId"`
	Step       int    `json:"step"`
	Subject    string `json:"subject"`
}

func (e EmailSent) EventName() string { return "email.sent" }

// ConsultationReserved is published when a consultation slot is held for a lead.
type ConsultationReserved struct {
	BaseEvent
	LeadID         string `json:"leadId"`
	BookingID      string `json:"bookingId"`
	BookingType    string `json:"bookingType"`
	ConsultantType string `json:"consultantType"`
}

func (e ConsultationReserved) EventName() string { return "consultation.reserved" }
