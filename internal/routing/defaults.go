package routing

import (
	"time"

	"lead_funnel_backend/internal/leads/domain"
)

func ptr[T any](v T) *T { return &v }

// DefaultRules returns the built-in routing policy.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:   "hot_lead_immediate",
			Name: "Hot Lead Immediate Action",
			When: Criteria{
				MinScore: ptr(80.0),
				Statuses: []domain.Status{domain.StatusHot},
			},
			Action: Action{
				Type: ActionSalesNotification,
				Params: map[string]any{
					ParamPriority: "urgent",
					ParamMessage:  "Hot lead requires immediate attention - high conversion probability",
				},
			},
			Priority: 1,
			Active:   true,
		},
		{
			ID:   "consultation_ready",
			Name: "Consultation Ready Routing",
			When: Criteria{
				MinScore:  ptr(70.0),
				Timelines: []domain.Timeline{domain.TimelineImmediate, domain.Timeline1To3Months},
				HasEmail:  ptr(true),
			},
			Action: Action{
				Type: ActionConsultationBooking,
				Params: map[string]any{
					ParamBookingType:    "priority",
					ParamConsultantType: "senior",
					ParamMessage:        "Priority consultation booking for qualified lead",
				},
			},
			Priority: 2,
			Active:   true,
		},
		{
			ID:   "anonymous_high_engagement",
			Name: "Anonymous High Engagement",
			When: Criteria{
				HasEmail:     ptr(false),
				MinSessions:  ptr(3),
				MinTimeSpent: ptr(600.0),
			},
			Action: Action{
				Type: ActionChatbotTrigger,
				Params: map[string]any{
					ParamTriggerType: "engagement_popup",
					ParamMessage:     "I noticed you've been exploring our content - can I help you find what you're looking for?",
					ParamOfferType:   "email_capture",
				},
				Delay: 30 * time.Second,
			},
			Priority: 3,
			Active:   true,
		},
		{
			ID:   "data_science_interest",
			Name: "Data Science Interest Routing",
			When: Criteria{
				Interest: "data-science",
				MinScore: ptr(40.0),
				HasEmail: ptr(true),
			},
			Action: Action{
				Type: ActionEmailSequence,
				Params: map[string]any{
					ParamSequenceID:         "data_science_nurture",
					"personalization_level": "high",
				},
			},
			Priority: 4,
			Active:   true,
		},
		{
			ID:   "warm_lead_nurture",
			Name: "Warm Lead Nurturing",
			When: Criteria{
				Statuses:         []domain.Status{domain.StatusWarm},
				HasEmail:         ptr(true),
				HasQualification: ptr(false),
			},
			Action: Action{
				Type: ActionEmailSequence,
				Params: map[string]any{
					ParamSequenceID:                "warm-lead-conversion",
					"include_qualification_survey": true,
				},
			},
			Priority: 5,
			Active:   true,
		},
		{
			ID:   "inactive_reengagement",
			Name: "Inactive Lead Re-engagement",
			When: Criteria{
				MinScore:        ptr(50.0),
				MinDaysInactive: ptr(7),
				MaxDaysInactive: ptr(30),
			},
			Action: Action{
				Type: ActionEmailSequence,
				Params: map[string]any{
					ParamSequenceID:         "reengagement_campaign",
					"include_special_offer": true,
				},
			},
			Priority: 6,
			Active:   true,
		},
		{
			ID:   "content_reader_recommendations",
			Name: "Content Reader Recommendations",
			When: Criteria{
				MinContentViews: ptr(2),
				ScoreBelow:      ptr(60.0),
			},
			Action: Action{
				Type: ActionContentRecommendation,
				Params: map[string]any{
					ParamRecommendationType: "personalized",
					ParamContentCount:       3,
					"include_cta":           true,
				},
			},
			Priority: 7,
			Active:   true,
		},
		{
			ID:   "low_engagement_capture",
			Name: "Low Engagement Email Capture",
			When: Criteria{
				HasEmail:     ptr(false),
				MinSessions:  ptr(2),
				MinTimeSpent: ptr(180.0),
			},
			Action: Action{
				Type: ActionChatbotTrigger,
				Params: map[string]any{
					ParamTriggerType: "exit_intent",
					ParamMessage:     "Before you go, want me to send you our free career guide?",
					ParamOfferType:   "lead_magnet",
				},
			},
			Priority: 8,
			Active:   true,
		},
	}
}
