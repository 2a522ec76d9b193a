package routing

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/apperr"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func defaultRule(t *testing.T, id string) Rule {
	t.Helper()
	for _, rule := range DefaultRules() {
		if rule.ID == id {
			return rule
		}
	}
	t.Fatalf("default rule %s missing", id)
	return Rule{}
}

func TestDefaultRuleThresholds(t *testing.T) {
	base := func(mutate func(*domain.Lead)) domain.Lead {
		lead := domain.NewAnonymous("anon_1", "", testNow)
		mutate(&lead)
		return lead
	}

	cases := []struct {
		name string
		rule string
		lead domain.Lead
		want bool
	}{
		{"hot at threshold", "hot_lead_immediate", base(func(l *domain.Lead) { l.Score = 80; l.Status = domain.StatusHot }), true},
		{"hot just below", "hot_lead_immediate", base(func(l *domain.Lead) { l.Score = 79.9; l.Status = domain.StatusHot }), false},
		{"hot score but converted", "hot_lead_immediate", base(func(l *domain.Lead) { l.Score = 95; l.Status = domain.StatusConverted }), false},
		{"consultation ready", "consultation_ready", base(func(l *domain.Lead) {
			l.Score = 70
			l.Email = "ada@example.com"
			l.Qualification = &domain.QualificationData{Timeline: domain.Timeline1To3Months}
		}), true},
		{"consultation without timeline", "consultation_ready", base(func(l *domain.Lead) {
			l.Score = 90
			l.Email = "ada@example.com"
		}), false},
		{"consultation slow timeline", "consultation_ready", base(func(l *domain.Lead) {
			l.Score = 90
			l.Email = "ada@example.com"
			l.Qualification = &domain.QualificationData{Timeline: domain.Timeline3To6Months}
		}), false},
		{"anonymous engaged", "anonymous_high_engagement", base(func(l *domain.Lead) {
			l.Engagement.SessionCount = 3
			l.Engagement.TimeSpent = 600
		}), true},
		{"anonymous engaged but known", "anonymous_high_engagement", base(func(l *domain.Lead) {
			l.Email = "ada@example.com"
			l.Engagement.SessionCount = 3
			l.Engagement.TimeSpent = 600
		}), false},
		{"data science interest", "data_science_interest", base(func(l *domain.Lead) {
			l.Score = 40
			l.Email = "ada@example.com"
			l.Interests = []string{"data-science"}
		}), true},
		{"warm without survey", "warm_lead_nurture", base(func(l *domain.Lead) {
			l.Status = domain.StatusWarm
			l.Email = "ada@example.com"
		}), true},
		{"warm with survey", "warm_lead_nurture", base(func(l *domain.Lead) {
			l.Status = domain.StatusWarm
			l.Email = "ada@example.com"
			l.Qualification = &domain.QualificationData{}
		}), false},
		{"inactive a week", "inactive_reengagement", base(func(l *domain.Lead) {
			l.Score = 50
			l.Engagement.LastActive = testNow.Add(-7 * 24 * time.Hour)
		}), true},
		{"inactive six days", "inactive_reengagement", base(func(l *domain.Lead) {
			l.Score = 50
			l.Engagement.LastActive = testNow.Add(-6 * 24 * time.Hour)
		}), false},
		{"inactive too long", "inactive_reengagement", base(func(l *domain.Lead) {
			l.Score = 50
			l.Engagement.LastActive = testNow.Add(-31 * 24 * time.Hour)
		}), false},
		{"content reader", "content_reader_recommendations", base(func(l *domain.Lead) {
			l.Score = 59.9
			l.Engagement.ContentViewed = make([]domain.ContentEngagement, 2)
		}), true},
		{"content reader scoring warm", "content_reader_recommendations", base(func(l *domain.Lead) {
			l.Score = 60
			l.Engagement.ContentViewed = make([]domain.ContentEngagement, 2)
		}), false},
		{"low engagement capture", "low_engagement_capture", base(func(l *domain.Lead) {
			l.Engagement.SessionCount = 2
			l.Engagement.TimeSpent = 180
		}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := defaultRule(t, tc.rule).Matches(tc.lead, testNow); got != tc.want {
				t.Fatalf("expected %s to match=%v, got %v", tc.rule, tc.want, got)
			}
		})
	}
}

func TestActionJSONUsesMilliseconds(t *testing.T) {
	data, err := json.Marshal(defaultRule(t, "anonymous_high_engagement").Action)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(data, &decoded)
	if decoded["delayMs"] != float64(30000) || decoded["type"] != "chatbot_trigger" {
		t.Fatalf("unexpected action json %s", data)
	}

	var action Action
	if err := json.Unmarshal([]byte(`{"type":"content_recommendation","parameters":{"content_count":2},"delayMs":1500}`), &action); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if action.Delay != 1500*time.Millisecond || intParam(action.Params, ParamContentCount, 3) != 2 {
		t.Fatalf("unexpected decoded action %+v", action)
	}
}

func TestTableOrdersByPriorityThenID(t *testing.T) {
	table := NewTable(
		Rule{ID: "b", When: Criteria{HasEmail: ptr(true)}, Action: Action{Type: ActionSalesNotification}, Priority: 2, Active: true},
		Rule{ID: "c", When: Criteria{HasEmail: ptr(true)}, Action: Action{Type: ActionSalesNotification}, Priority: 1, Active: true},
		Rule{ID: "a", When: Criteria{HasEmail: ptr(true)}, Action: Action{Type: ActionSalesNotification}, Priority: 2, Active: true},
	)

	rules, version := table.Snapshot()
	if version != 3 {
		t.Fatalf("expected version 3 after three inserts, got %d", version)
	}
	got := []string{rules[0].ID, rules[1].ID, rules[2].ID}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected evaluation order %v", got)
	}
}

func TestTableOrdersExtremePriorities(t *testing.T) {
	cases := []struct {
		name       string
		priorities map[string]int
		want       []string
	}{
		{"both extremes", map[string]int{"high": math.MaxInt, "low": math.MinInt, "mid": 0}, []string{"low", "mid", "high"}},
		{"near max", map[string]int{"a": math.MaxInt, "b": math.MaxInt - 1, "c": -1}, []string{"c", "b", "a"}},
		{"near min", map[string]int{"a": math.MinInt + 1, "b": math.MinInt, "c": 1}, []string{"b", "a", "c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rules []Rule
			for id, priority := range tc.priorities {
				rules = append(rules, Rule{ID: id, When: Criteria{HasEmail: ptr(true)}, Action: Action{Type: ActionSalesNotification}, Priority: priority, Active: true})
			}
			active := NewTable(rules...).Active()
			if len(active) != len(tc.want) {
				t.Fatalf("expected %d rules, got %d", len(tc.want), len(active))
			}
			for i, id := range tc.want {
				if active[i].ID != id {
					t.Fatalf("expected %s at position %d, got %s", id, i, active[i].ID)
				}
			}
		})
	}
}

func TestTableMutations(t *testing.T) {
	table := NewTable(DefaultRules()...)
	start := table.Version()

	err := table.Add(defaultRule(t, "hot_lead_immediate"))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate id, got %v", err)
	}
	err = table.Add(Rule{ID: "empty", Action: Action{Type: ActionSalesNotification}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for rule without condition, got %v", err)
	}
	err = table.Add(Rule{ID: "no_seq", When: Criteria{HasEmail: ptr(true)}, Action: Action{Type: ActionEmailSequence}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for email action without sequence, got %v", err)
	}
	if table.Version() != start {
		t.Fatal("expected rejected changes to leave the version alone")
	}

	updated, ok, err := table.Update("hot_lead_immediate", RulePatch{Priority: ptr(9)})
	if err != nil || !ok || updated.Priority != 9 {
		t.Fatalf("unexpected update result %+v/%v/%v", updated, ok, err)
	}
	if _, ok, _ := table.Update("missing", RulePatch{}); ok {
		t.Fatal("expected unknown rule to report false")
	}

	if !table.Deactivate("low_engagement_capture") {
		t.Fatal("expected deactivate to find the rule")
	}
	for _, rule := range table.Active() {
		if rule.ID == "low_engagement_capture" {
			t.Fatal("expected deactivated rule to leave the active set")
		}
	}
	if len(table.All()) != len(DefaultRules()) {
		t.Fatal("expected deactivated rule to stay in the table")
	}
	if table.Version() != start+2 {
		t.Fatalf("expected two version bumps, got %d", table.Version()-start)
	}
}

func TestTableReturnsCopies(t *testing.T) {
	table := NewTable(DefaultRules()...)
	rule, _ := table.Get("hot_lead_immediate")
	rule.Action.Params[ParamPriority] = "low"
	rule.When.Statuses[0] = domain.StatusCold

	again, _ := table.Get("hot_lead_immediate")
	if again.Action.Params[ParamPriority] != "urgent" || again.When.Statuses[0] != domain.StatusHot {
		t.Fatal("expected table state to be isolated from callers")
	}
}
