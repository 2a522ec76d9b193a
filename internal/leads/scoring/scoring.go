// Package scoring computes lead scores from engagement and qualification data.
// Everything here is a pure function of its inputs; time enters through the
// injected clock so results are reproducible.
package scoring

import (
	"math"
	"time"

	"lead_funnel_backend/internal/leads/domain"

	"github.com/jonboulle/clockwork"
)

const (
	// Weights of the three sub-scores in the overall score.
	contentWeight       = 0.4
	behaviorWeight      = 0.3
	qualificationWeight = 0.3

	// Content item factors (sum to 100 for a fully consumed item).
	completionPoints = 50.0
	timePoints       = 30.0
	engagementPoints = 20.0
	fullTimeSeconds  = 300.0 // 5 minutes counts as fully read/watched

	// Behavioral factors.
	pointsPerSession  = 5.0
	maxSessionPoints  = 30.0
	maxRecencyPoints  = 20.0
	recencyDecayDaily = 2.0
	pointsPerAction   = 5.0
	maxTimePoints     = 25.0 // one point per minute

	// Qualification factors.
	experienceWeight = 0.25
	goalsWeight      = 0.30
	timelineWeight   = 0.25
	budgetWeight     = 0.20
	goalPoints       = 25.0

	hotThreshold       = 80.0
	warmThreshold      = 60.0
	qualifiedThreshold = 40.0
)

// Breakdown is the score of a lead with the sub-scores it was built from.
type Breakdown struct {
	Content       float64       `json:"content"`
	Behavior      float64       `json:"behavior"`
	Qualification float64       `json:"qualification"`
	Total         float64       `json:"total"`
	Status        domain.Status `json:"status"`
}

// Score returns the overall lead score in [0,100]. A nil qualification
// contributes nothing, so anonymous leads top out at 70.
func Score(e domain.Engagement, q *domain.QualificationData, now time.Time) float64 {
	total := ContentScore(e.ContentViewed)*contentWeight + BehaviorScore(e, now)*behaviorWeight
	if q != nil {
		total += QualificationScore(q) * qualificationWeight
	}
	return clamp(total, 0, 100)
}

// ContentScore is the type-weighted average of per-item engagement scores.
func ContentScore(items []domain.ContentEngagement) float64 {
	if len(items) == 0 {
		return 0
	}

	var weighted, weights float64
	for _, item := range items {
		weight := contentWeights.lookup(item.Type)
		itemScore := ratio(item.Completion, 100)*completionPoints +
			ratio(item.TimeSpent, fullTimeSeconds)*timePoints +
			ratio(item.EngagementScore, 100)*engagementPoints
		weighted += itemScore * weight
		weights += weight
	}
	if weights == 0 {
		return 0
	}
	return clamp(weighted/weights, 0, 100)
}

// BehaviorScore rewards repeat sessions, recency, varied actions and time on site.
func BehaviorScore(e domain.Engagement, now time.Time) float64 {
	var score float64

	score += math.Min(math.Max(float64(e.SessionCount), 0)*pointsPerSession, maxSessionPoints)

	if !e.LastActive.IsZero() {
		days := float64(e.DaysInactive(now))
		score += math.Max(maxRecencyPoints-days*recencyDecayDaily, 0)
	}

	score += float64(e.DistinctActionTypes()) * pointsPerAction
	score += clamp(e.TimeSpent/60, 0, maxTimePoints)

	return clamp(score, 0, 100)
}

// QualificationScore weighs the survey answers; unknown answers take each table's default.
func QualificationScore(q *domain.QualificationData) float64 {
	if q == nil {
		return 0
	}
	score := experienceScores.lookup(q.ExperienceLevel)*experienceWeight +
		goalAlignment(q.Goals)*goalsWeight +
		timelineScores.lookup(q.Timeline)*timelineWeight +
		budgetScores.lookup(q.Budget)*budgetWeight
	return clamp(score, 0, 100)
}

func goalAlignment(goals []domain.Goal) float64 {
	matches := 0
	for _, goal := range goals {
		if highValueGoals[goal] {
			matches++
		}
	}
	return math.Min(float64(matches)*goalPoints, 100)
}

// Classify maps a score to a funnel status. It never yields converted or lost.
func Classify(score float64) domain.Status {
	switch {
	case score >= hotThreshold:
		return domain.StatusHot
	case score >= warmThreshold:
		return domain.StatusWarm
	case score >= qualifiedThreshold:
		return domain.StatusQualified
	default:
		return domain.StatusCold
	}
}

// Scorer evaluates leads against a clock.
type Scorer struct {
	clock clockwork.Clock
}

// New creates a Scorer. A nil clock uses wall time.
func New(clock clockwork.Clock) *Scorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scorer{clock: clock}
}

// Evaluate scores a lead without modifying it.
func (s *Scorer) Evaluate(lead domain.Lead) Breakdown {
	now := s.clock.Now()
	b := Breakdown{
		Content:       ContentScore(lead.Engagement.ContentViewed),
		Behavior:      BehaviorScore(lead.Engagement, now),
		Qualification: QualificationScore(lead.Qualification),
		Total:         Score(lead.Engagement, lead.Qualification, now),
	}
	b.Status = Classify(b.Total)
	return b
}

// Rescore updates the lead's score and, unless the lead is terminal, its status.
// It returns the breakdown and the status the lead had before.
func (s *Scorer) Rescore(lead *domain.Lead) (Breakdown, domain.Status) {
	previous := lead.Status
	b := s.Evaluate(*lead)
	lead.Score = b.Total
	if !previous.Terminal() {
		lead.Status = b.Status
	}
	return b, previous
}

func ratio(value, full float64) float64 {
	return clamp(value/full, 0, 1)
}

func clamp(value, lo, hi float64) float64 {
	if math.IsNaN(value) {
		return lo
	}
	return math.Max(lo, math.Min(value, hi))
}
