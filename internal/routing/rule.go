// Package routing evaluates a priority-ordered rule table against a lead and
// schedules the actions of the rules that match.
package routing

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"lead_funnel_backend/internal/leads/domain"
)

// ActionType is the kind of side effect a rule triggers.
type ActionType string

const (
	ActionEmailSequence         ActionType = "email_sequence"
	ActionSalesNotification     ActionType = "sales_notification"
	ActionChatbotTrigger        ActionType = "chatbot_trigger"
	ActionContentRecommendation ActionType = "content_recommendation"
	ActionConsultationBooking   ActionType = "consultation_booking"
)

var knownActions = map[ActionType]bool{
	ActionEmailSequence:         true,
	ActionSalesNotification:     true,
	ActionChatbotTrigger:        true,
	ActionContentRecommendation: true,
	ActionConsultationBooking:   true,
}

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool { return knownActions[a] }

// Exclusive reports whether firing a stops evaluation of lower-priority rules
// in the same pass. Only one email sequence may start per pass.
func (a ActionType) Exclusive() bool { return a == ActionEmailSequence }

// Action is what a rule does when it matches.
type Action struct {
	Type   ActionType
	Params map[string]any
	Delay  time.Duration
}

type actionJSON struct {
	Type    ActionType     `json:"type"`
	Params  map[string]any `json:"parameters"`
	DelayMs int64          `json:"delayMs,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	params := a.Params
	if params == nil {
		params = map[string]any{}
	}
	return json.Marshal(actionJSON{Type: a.Type, Params: params, DelayMs: a.Delay.Milliseconds()})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Action{Type: raw.Type, Params: raw.Params, Delay: time.Duration(raw.DelayMs) * time.Millisecond}
	return nil
}

func (a Action) clone() Action {
	out := a
	out.Params = maps.Clone(a.Params)
	return out
}

// Criteria is the predicate of a rule. Every set field must hold; unset fields
// are ignored. Keeping it declarative lets rules be added over the API.
type Criteria struct {
	MinScore         *float64          `json:"minScore,omitempty"`
	ScoreBelow       *float64          `json:"scoreBelow,omitempty"`
	Statuses         []domain.Status   `json:"statuses,omitempty"`
	HasEmail         *bool             `json:"hasEmail,omitempty"`
	HasQualification *bool             `json:"hasQualification,omitempty"`
	Timelines        []domain.Timeline `json:"timelines,omitempty"`
	Interest         string            `json:"interest,omitempty"`
	MinSessions      *int              `json:"minSessions,omitempty"`
	MinTimeSpent     *float64          `json:"minTimeSpent,omitempty"` // seconds
	MinContentViews  *int              `json:"minContentViews,omitempty"`
	MinDaysInactive  *int              `json:"minDaysInactive,omitempty"`
	MaxDaysInactive  *int              `json:"maxDaysInactive,omitempty"`
}

// Matches evaluates the criteria against lead at now.
func (c Criteria) Matches(lead domain.Lead, now time.Time) bool {
	if c.MinScore != nil && lead.Score < *c.MinScore {
		return false
	}
	if c.ScoreBelow != nil && lead.Score >= *c.ScoreBelow {
		return false
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, lead.Status) {
		return false
	}
	if c.HasEmail != nil && lead.HasEmail() != *c.HasEmail {
		return false
	}
	if c.HasQualification != nil && lead.HasQualification() != *c.HasQualification {
		return false
	}
	if len(c.Timelines) > 0 {
		if lead.Qualification == nil || !slices.Contains(c.Timelines, lead.Qualification.Timeline) {
			return false
		}
	}
	if c.Interest != "" && !lead.HasInterest(c.Interest) {
		return false
	}
	if c.MinSessions != nil && lead.Engagement.SessionCount < *c.MinSessions {
		return false
	}
	if c.MinTimeSpent != nil && lead.Engagement.TimeSpent < *c.MinTimeSpent {
		return false
	}
	if c.MinContentViews != nil && len(lead.Engagement.ContentViewed) < *c.MinContentViews {
		return false
	}
	if c.MinDaysInactive != nil || c.MaxDaysInactive != nil {
		days := lead.Engagement.DaysInactive(now)
		if c.MinDaysInactive != nil && days < *c.MinDaysInactive {
			return false
		}
		if c.MaxDaysInactive != nil && days > *c.MaxDaysInactive {
			return false
		}
	}
	return true
}

func (c Criteria) empty() bool {
	return c.MinScore == nil && c.ScoreBelow == nil && len(c.Statuses) == 0 &&
		c.HasEmail == nil && c.HasQualification == nil && len(c.Timelines) == 0 &&
		c.Interest == "" && c.MinSessions == nil && c.MinTimeSpent == nil &&
		c.MinContentViews == nil && c.MinDaysInactive == nil && c.MaxDaysInactive == nil
}

func (c Criteria) clone() Criteria {
	out := c
	out.Statuses = slices.Clone(c.Statuses)
	out.Timelines = slices.Clone(c.Timelines)
	return out
}

// Rule maps a lead predicate to an action. Lower priority values run first.
type Rule struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	When     Criteria `json:"condition"`
	Action   Action   `json:"action"`
	Priority int      `json:"priority"`
	Active   bool     `json:"active"`
}

// Matches reports whether the rule applies to lead at now.
func (r Rule) Matches(lead domain.Lead, now time.Time) bool {
	return r.When.Matches(lead, now)
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rule id is required")
	}
	if !r.Action.Type.Valid() {
		return fmt.Errorf("unknown action type %q", r.Action.Type)
	}
	if r.Action.Delay < 0 {
		return fmt.Errorf("action delay must not be negative")
	}
	if r.When.empty() {
		return fmt.Errorf("rule %s has no condition", r.ID)
	}
	if r.Action.Type == ActionEmailSequence && stringParam(r.Action.Params, ParamSequenceID, "") == "" {
		return fmt.Errorf("email_sequence action requires %s", ParamSequenceID)
	}
	return nil
}

func (r Rule) clone() Rule {
	out := r
	out.When = r.When.clone()
	out.Action = r.Action.clone()
	return out
}

// RulePatch is a partial rule update. Nil fields are left unchanged.
type RulePatch struct {
	Name     *string   `json:"name,omitempty"`
	When     *Criteria `json:"condition,omitempty"`
	Action   *Action   `json:"action,omitempty"`
	Priority *int      `json:"priority,omitempty"`
	Active   *bool     `json:"active,omitempty"`
}

func (p RulePatch) apply(r Rule) Rule {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.When != nil {
		r.When = p.When.clone()
	}
	if p.Action != nil {
		r.Action = p.Action.clone()
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
	return r
}
