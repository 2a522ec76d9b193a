package domain

import "slices"

// ExperienceLevel is the self-reported seniority of a lead.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

// Goal is a career goal tag.
type Goal string

const (
	GoalCareerSwitch  Goal = "career-switch"
	GoalSkillUpgrade  Goal = "skill-upgrade"
	GoalCertification Goal = "certification"
	GoalPromotion     Goal = "promotion"
)

// Timeline is how soon a lead wants to act.
type Timeline string

const (
	TimelineImmediate  Timeline = "immediate"
	Timeline1To3Months Timeline = "1-3-months"
	Timeline3To6Months Timeline = "3-6-months"
	Timeline6To12Month Timeline = "6-12-months"
	TimelineNone       Timeline = "no-timeline"
)

// Budget is the self-reported spending tier.
type Budget string

const (
	BudgetPremium   Budget = "premium"
	BudgetStandard  Budget = "standard"
	BudgetLow       Budget = "budget"
	BudgetFreeOnly  Budget = "free-only"
	BudgetUndecided Budget = "undecided"
)

// QualificationData holds survey-style answers. Every field is optional.
type QualificationData struct {
	ExperienceLevel ExperienceLevel `json:"experienceLevel,omitempty"`
	CurrentRole     string          `json:"currentRole,omitempty"`
	Goals           []Goal          `json:"goals,omitempty"`
	Timeline        Timeline        `json:"timeline,omitempty"`
	Budget          Budget          `json:"budget,omitempty"`
	Challenges      []string        `json:"challenges,omitempty"`
}

// AddGoals appends goals that are not present yet and returns how many were added.
func (q *QualificationData) AddGoals(goals ...Goal) int {
	added := 0
	for _, goal := range goals {
		if goal == "" || q.HasGoal(goal) {
			continue
		}
		q.Goals = append(q.Goals, goal)
		added++
	}
	return added
}

// HasGoal reports whether goal was recorded.
func (q *QualificationData) HasGoal(goal Goal) bool {
	if q == nil {
		return false
	}
	for _, existing := range q.Goals {
		if existing == goal {
			return true
		}
	}
	return false
}

func (q *QualificationData) clone() *QualificationData {
	if q == nil {
		return nil
	}
	out := *q
	out.Goals = slices.Clone(q.Goals)
	out.Challenges = slices.Clone(q.Challenges)
	return &out
}
