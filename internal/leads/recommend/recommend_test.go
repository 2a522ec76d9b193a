package recommend

import (
	"testing"

	"lead_funnel_backend/internal/leads/domain"
)

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestRecommendLowScoreNurtures(t *testing.T) {
	lead := domain.Lead{Score: 12, Interests: []string{"machine-learning"}}

	recs := Recommend(lead)
	if len(recs) != 1 || recs[0].Kind != KindContent || recs[0].Confidence != 0.8 {
		t.Fatalf("expected single nurture recommendation, got %+v", recs)
	}
	if recs[0].Target.Title != "Data Science Career Roadmap" || recs[0].Target.Value != 300 {
		t.Fatalf("expected data science masterclass goal, got %+v", recs[0].Target)
	}
}

func TestRecommendHighScoreAnonymousSortedByConfidence(t *testing.T) {
	lead := domain.Lead{Score: 75}
	lead.Engagement.SessionCount = 6

	recs := Recommend(lead)
	got := titles(recs)
	want := []string{"Schedule Career Consultation", "Email Capture Priority"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if recs[0].Target.Title != "Free Career Consultation" || recs[0].Target.Value != 500 {
		t.Fatalf("expected fixed high value target, got %+v", recs[0].Target)
	}
	if recs[1].Target.Title != "Career Consultation" {
		t.Fatalf("expected generic consultation goal without interests, got %+v", recs[1].Target)
	}
}

func TestRecommendNothingForMidScoreKnownLead(t *testing.T) {
	lead := domain.Lead{Score: 55, Email: "a@example.com"}
	lead.Engagement.SessionCount = 10
	if recs := Recommend(lead); len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %v", titles(recs))
	}
}

func TestSortByConfidenceIsStable(t *testing.T) {
	recs := []Recommendation{
		{Title: "a", Confidence: 0.5},
		{Title: "b", Confidence: 0.9},
		{Title: "c", Confidence: 0.5},
		{Title: "d", Confidence: 0.9},
	}
	SortByConfidence(recs)

	got := titles(recs)
	want := []string{"b", "d", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNextActions(t *testing.T) {
	cases := []struct {
		name string
		lead domain.Lead
		want []string
	}{
		{
			name: "anonymous returning reader",
			lead: domain.Lead{Score: 10, Engagement: domain.Engagement{SessionCount: 3, ContentViewed: []domain.ContentEngagement{{Title: "x"}}}},
			want: []string{"Trigger email capture popup", "Send personalized content recommendations"},
		},
		{
			name: "hot qualified lead",
			lead: domain.Lead{Score: 90, Email: "a@example.com", Qualification: &domain.QualificationData{}},
			want: []string{"Send consultation booking link", "Notify sales team"},
		},
		{
			name: "warm lead",
			lead: domain.Lead{Score: 65, Email: "a@example.com"},
			want: []string{"Add to nurture email sequence", "Show relevant masterclass promotion"},
		},
		{
			name: "converted lead keeps terminal status",
			lead: domain.Lead{Score: 65, Status: domain.StatusConverted, Email: "a@example.com"},
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextActions(tc.lead)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}
