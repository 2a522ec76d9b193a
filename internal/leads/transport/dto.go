package transport

import (
	"time"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/recommend"
	"lead_funnel_backend/internal/leads/scoring"
)

// Request DTOs
type CreateLeadRequest struct {
	Source string `json:"source,omitempty" validate:"omitempty,max=64"`
}

type TrackActionRequest struct {
	Type      domain.ActionType `json:"type" validate:"required,action_type"`
	Target    string            `json:"target" validate:"required,max=200"`
	Value     string            `json:"value,omitempty" validate:"max=500"`
	TimeSpent float64           `json:"timeSpent,omitempty" validate:"gte=0,lte=86400"`
}

type ContentViewRequest struct {
	ContentID       string             `json:"contentId" validate:"required,max=200"`
	Type            domain.ContentType `json:"contentType" validate:"required,content_type"`
	Title           string             `json:"title" validate:"required,max=300"`
	TimeSpent       float64            `json:"timeSpent" validate:"gte=0,lte=86400"`
	Completion      float64            `json:"completionRate" validate:"gte=0,lte=100"`
	EngagementScore float64            `json:"engagementScore" validate:"gte=0,lte=100"`
}

type CaptureEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name,omitempty" validate:"max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
}

type QualificationRequest struct {
	ExperienceLevel domain.ExperienceLevel `json:"experienceLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	CurrentRole     string                 `json:"currentRole,omitempty" validate:"max=100"`
	Goals           []domain.Goal          `json:"goals,omitempty" validate:"max=8,dive,tag"`
	Timeline        domain.Timeline        `json:"timeline,omitempty" validate:"omitempty,tag"`
	Budget          domain.Budget          `json:"budget,omitempty" validate:"omitempty,tag"`
	Challenges      []string               `json:"challenges,omitempty" validate:"max=10,dive,max=200"`
}

type OutcomeRequest struct {
	Status domain.Status `json:"status" validate:"required,lead_status_terminal"`
	Reason string        `json:"reason,omitempty" validate:"max=500"`
}

// ConversationUpdate is what the chat advisor learned from one message.
type ConversationUpdate struct {
	Interests []string
	Goals     []domain.Goal
}

// Response DTOs
type LeadResponse struct {
	ID             string                    `json:"id"`
	Email          string                    `json:"email,omitempty"`
	Name           string                    `json:"name,omitempty"`
	Phone          string                    `json:"phone,omitempty"`
	Score          float64                   `json:"score"`
	Status         domain.Status             `json:"status"`
	Interests      []string                  `json:"interests"`
	Engagement     domain.Engagement         `json:"engagement"`
	Qualification  *domain.QualificationData `json:"qualificationData,omitempty"`
	Source         string                    `json:"source"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
	ScoreBreakdown scoring.Breakdown         `json:"scoreBreakdown"`
	NextActions    []string                  `json:"nextActions"`
	Routing        *RouteResponse            `json:"routing,omitempty"`
}

type RoutedAction struct {
	RuleID     string         `json:"ruleId"`
	ActionType string         `json:"actionType"`
	Parameters map[string]any `json:"parameters,omitempty"`
	DelayMs    int64          `json:"delayMs"`
	TaskID     string         `json:"taskId"`
}

type RouteResponse struct {
	LeadID           string                     `json:"leadId"`
	Score            float64                    `json:"score"`
	Status           domain.Status              `json:"status"`
	PreviousStatus   domain.Status              `json:"previousStatus"`
	MatchedRules     []string                   `json:"matchedRules"`
	Actions          []RoutedAction             `json:"actionsTriggered"`
	Recommendations  []recommend.Recommendation `json:"recommendations"`
	RuleTableVersion uint64                     `json:"ruleTableVersion"`
}

type NextActionsResponse struct {
	LeadID          string                     `json:"leadId"`
	Status          domain.Status              `json:"status"`
	NextActions     []string                   `json:"nextActions"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

type SweepResponse struct {
	Routed  int `json:"routed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
