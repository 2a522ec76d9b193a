package advisor

import (
	"slices"
	"strings"
	"testing"

	"lead_funnel_backend/internal/leads/domain"
)

func TestRespondGeneralBuckets(t *testing.T) {
	cases := []struct {
		message string
		kind    string
		flow    Flow
	}{
		{"Can we talk tomorrow?", KindConsultation, FlowConsultation},
		{"I want a CONSULTATION", KindConsultation, FlowConsultation},
		{"Which course fits me?", KindCourses, FlowGeneral},
		{"Thinking about a career change", KindTransition, FlowQualification},
		{"I'd like to transition into tech", KindTransition, FlowQualification},
		{"How do I get a salary bump?", KindAdvancement, FlowGeneral},
		{"I'm not sure where to start", KindHelp, FlowGeneral},
		{"hello there", KindDefault, FlowGeneral},
		// consultation keywords win over later buckets
		{"call me about the course", KindConsultation, FlowConsultation},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			reply := Respond(tc.message, FlowGeneral)
			if reply.Kind != tc.kind || reply.Flow != tc.flow {
				t.Fatalf("expected %s/%s, got %s/%s", tc.kind, tc.flow, reply.Kind, reply.Flow)
			}
		})
	}
}

func TestConsultationFlowIsSticky(t *testing.T) {
	first := Respond("I want a consultation", FlowGeneral)
	if first.Flow != FlowConsultation {
		t.Fatalf("expected consultation flow, got %s", first.Flow)
	}
	if !strings.HasPrefix(first.Text, "Great! I'd love to set up a consultation for you.") ||
		!strings.Contains(first.Text, "3. What's your biggest challenge right now?") {
		t.Fatalf("unexpected consultation pitch %q", first.Text)
	}

	next := Respond("I'm a data analyst hoping for a promotion", first.Flow)
	if next.Text != first.Text || next.Flow != FlowConsultation {
		t.Fatal("expected the consultation pitch again")
	}
}

func TestQualificationFlowAlwaysPitchesBooking(t *testing.T) {
	for _, message := range []string{"I'm in marketing", "help", "talk to someone"} {
		reply := Respond(message, FlowQualification)
		if reply.Kind != KindBookingPitch || reply.Flow != FlowQualification {
			t.Fatalf("%q: expected booking pitch, got %s/%s", message, reply.Kind, reply.Flow)
		}
		if !strings.Contains(reply.Text, "[Book Your Free Strategy Call]") {
			t.Fatalf("%q: unexpected pitch %q", message, reply.Text)
		}
	}
}

func TestGreeting(t *testing.T) {
	g := Greeting()
	if g.Kind != KindGreeting || g.Flow != FlowGeneral || !strings.HasPrefix(g.Text, "Hi! I'm Alex") {
		t.Fatalf("unexpected greeting %+v", g)
	}
}

func TestExtractInterests(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"I love Data Science and machine learning", []string{"data-science", "machine-learning"}},
		{"Working with AI every day", []string{"machine-learning"}},
		{"I'm a developer, want to be a product manager", []string{"software-engineering", "product-management"}},
		{"I said I was waiting for news", []string{}},
		{"data analyst, data science, data analyst", []string{"data-science"}},
	}

	for _, tc := range cases {
		if got := ExtractInterests(tc.text); !slices.Equal(got, tc.want) {
			t.Errorf("ExtractInterests(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestExtractGoals(t *testing.T) {
	got := ExtractGoals("I want to switch jobs, learn new skills and get a promotion")
	want := []domain.Goal{domain.GoalCareerSwitch, domain.GoalPromotion, domain.GoalSkillUpgrade}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := ExtractGoals("just browsing"); len(got) != 0 {
		t.Fatalf("expected no goals, got %v", got)
	}
}
