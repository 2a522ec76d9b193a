package advisor

import (
	"strings"
	"unicode"

	"lead_funnel_backend/internal/leads/domain"
)

type tagMatcher struct {
	tag     string
	phrases []string
	words   []string // matched as whole words only
}

var interestMatchers = []tagMatcher{
	{tag: "data-science", phrases: []string{"data science", "data analyst"}},
	{tag: "machine-learning", phrases: []string{"machine learning"}, words: []string{"ai"}},
	{tag: "software-engineering", phrases: []string{"software engineer", "developer"}},
	{tag: "product-management", phrases: []string{"product manager"}},
}

var goalMatchers = []tagMatcher{
	{tag: string(domain.GoalCareerSwitch), phrases: []string{"switch", "change career"}},
	{tag: string(domain.GoalPromotion), phrases: []string{"promotion", "advance"}},
	{tag: string(domain.GoalSkillUpgrade), phrases: []string{"skills", "learn"}},
}

// ExtractInterests returns the interest tags mentioned in text, each at most once.
func ExtractInterests(text string) []string {
	return match(text, interestMatchers)
}

// ExtractGoals returns the career goals mentioned in text, each at most once.
func ExtractGoals(text string) []domain.Goal {
	tags := match(text, goalMatchers)
	goals := make([]domain.Goal, len(tags))
	for i, tag := range tags {
		goals[i] = domain.Goal(tag)
	}
	return goals
}

func match(text string, matchers []tagMatcher) []string {
	lower := strings.ToLower(text)
	var words map[string]bool

	out := []string{}
	for _, m := range matchers {
		hit := containsAny(lower, m.phrases)
		if !hit && len(m.words) > 0 {
			if words == nil {
				words = wordSet(lower)
			}
			for _, w := range m.words {
				if words[w] {
					hit = true
					break
				}
			}
		}
		if hit {
			out = append(out, m.tag)
		}
	}
	return out
}

func wordSet(text string) map[string]bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
