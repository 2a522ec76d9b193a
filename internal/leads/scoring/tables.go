package scoring

import "lead_funnel_backend/internal/leads/domain"

// scoreTable maps categorical answers to points. The fallback is part of the
// constructor so a table can never be built without one.
type scoreTable[K comparable] struct {
	values   map[K]float64
	fallback float64
}

func newScoreTable[K comparable](fallback float64, values map[K]float64) scoreTable[K] {
	return scoreTable[K]{values: values, fallback: fallback}
}

func (t scoreTable[K]) lookup(key K) float64 {
	if v, ok := t.values[key]; ok {
		return v
	}
	return t.fallback
}

// contentWeights rank formats by how much intent a full view signals.
var contentWeights = newScoreTable(0.5, map[domain.ContentType]float64{
	domain.ContentCourse:  1.0,
	domain.ContentWebinar: 0.9,
	domain.ContentVideo:   0.7,
	domain.ContentBlog:    0.5,
})

// experienceScores peak at advanced; experts are often overqualified for the programs.
var experienceScores = newScoreTable(50, map[domain.ExperienceLevel]float64{
	domain.ExperienceBeginner:     60,
	domain.ExperienceIntermediate: 80,
	domain.ExperienceAdvanced:     90,
	domain.ExperienceExpert:       70,
})

var timelineScores = newScoreTable(30, map[domain.Timeline]float64{
	domain.TimelineImmediate:  100,
	domain.Timeline1To3Months: 90,
	domain.Timeline3To6Months: 70,
	domain.Timeline6To12Month: 50,
	domain.TimelineNone:       20,
})

var budgetScores = newScoreTable(30, map[domain.Budget]float64{
	domain.BudgetPremium:   100,
	domain.BudgetStandard:  80,
	domain.BudgetLow:       60,
	domain.BudgetFreeOnly:  20,
	domain.BudgetUndecided: 40,
})

// highValueGoals earn goalPoints each towards the goal-alignment score.
var highValueGoals = map[domain.Goal]bool{
	domain.GoalCareerSwitch:  true,
	domain.GoalSkillUpgrade:  true,
	domain.GoalCertification: true,
	domain.GoalPromotion:     true,
}
