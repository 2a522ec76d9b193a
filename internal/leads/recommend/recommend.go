// Package recommend derives suggested outreach for a lead from its score and state.
package recommend

import (
	"slices"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/scoring"
)

// Kind is the category of a recommendation.
type Kind string

const (
	KindContent Kind = "content"
	KindOffer   Kind = "offer"
	KindAction  Kind = "action"
)

// GoalType is the kind of conversion a recommendation steers towards.
type GoalType string

const (
	GoalConsultation GoalType = "consultation"
	GoalMasterclass  GoalType = "masterclass"
)

// ConversionGoal is the offer a recommendation is meant to convert on.
type ConversionGoal struct {
	Type        GoalType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Value       float64  `json:"value"`
	Priority    int      `json:"priority"`
}

// Recommendation is a suggested next step for the team working a lead.
type Recommendation struct {
	Kind        Kind           `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Confidence  float64        `json:"confidence"`
	Reasoning   string         `json:"reasoning"`
	Target      ConversionGoal `json:"targetConversion"`
}

const (
	nurtureBelow      = 40.0
	consultationAbove = 70.0
	captureSessions   = 5
)

var freeConsultation = ConversionGoal{
	Type:        GoalConsultation,
	Title:       "Free Career Consultation",
	Description: "30-minute one-on-one career guidance session",
	Value:       500,
	Priority:    1,
}

var dataScienceRoadmap = ConversionGoal{
	Type:        GoalMasterclass,
	Title:       "Data Science Career Roadmap",
	Description: "Free masterclass on transitioning to data science",
	Value:       300,
	Priority:    2,
}

var careerConsultation = ConversionGoal{
	Type:        GoalConsultation,
	Title:       "Career Consultation",
	Description: "Free consultation call with career expert",
	Value:       500,
	Priority:    1,
}

// Recommend returns the recommendations that apply to lead, highest confidence first.
// Equal confidences keep their rule order.
func Recommend(lead domain.Lead) []Recommendation {
	recs := make([]Recommendation, 0, 3)

	if lead.Score < nurtureBelow {
		recs = append(recs, Recommendation{
			Kind:        KindContent,
			Title:       "Nurture with Educational Content",
			Description: "Send beginner-friendly resources to build engagement",
			Confidence:  0.8,
			Reasoning:   "Low engagement score indicates need for foundational content",
			Target:      GoalFor(lead.Interests),
		})
	}

	if lead.Score >= consultationAbove {
		recs = append(recs, Recommendation{
			Kind:        KindOffer,
			Title:       "Schedule Career Consultation",
			Description: "High-intent lead ready for direct consultation booking",
			Confidence:  0.9,
			Reasoning:   "High engagement and qualification scores indicate readiness",
			Target:      freeConsultation,
		})
	}

	if lead.Engagement.SessionCount > captureSessions && !lead.HasEmail() {
		recs = append(recs, Recommendation{
			Kind:        KindAction,
			Title:       "Email Capture Priority",
			Description: "Highly engaged visitor without contact info - prioritize email capture",
			Confidence:  0.85,
			Reasoning:   "Multiple sessions without lead capture indicates missed opportunity",
			Target:      GoalFor(lead.Interests),
		})
	}

	SortByConfidence(recs)
	return recs
}

// SortByConfidence orders recs by descending confidence, keeping input order for ties.
func SortByConfidence(recs []Recommendation) {
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return 0
		}
	})
}

// GoalFor picks the conversion goal matching a lead's interests.
func GoalFor(interests []string) ConversionGoal {
	for _, interest := range interests {
		if interest == "data-science" || interest == "machine-learning" {
			return dataScienceRoadmap
		}
	}
	return careerConsultation
}

// NextActions lists the operational steps the funnel should take for lead now.
func NextActions(lead domain.Lead) []string {
	actions := make([]string, 0, 5)

	if !lead.HasEmail() && lead.Engagement.SessionCount > 2 {
		actions = append(actions, "Trigger email capture popup")
	}

	status := lead.Status
	if !status.Terminal() {
		status = scoring.Classify(lead.Score)
	}

	if status == domain.StatusHot && lead.HasQualification() {
		actions = append(actions, "Send consultation booking link", "Notify sales team")
	}

	if status == domain.StatusWarm {
		actions = append(actions, "Add to nurture email sequence", "Show relevant masterclass promotion")
	}

	if len(lead.Engagement.ContentViewed) > 0 {
		actions = append(actions, "Send personalized content recommendations")
	}

	return actions
}
