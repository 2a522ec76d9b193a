package session

import (
	"context"
	"testing"
	"time"

	"lead_funnel_backend/internal/chat/advisor"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"

	"github.com/jonboulle/clockwork"
)

type update struct {
	leadID    string
	interests []string
	goals     []domain.Goal
}

type fakeLeads struct {
	known   map[string]bool
	updates []update
}

func (f *fakeLeads) Exists(_ context.Context, leadID string) error {
	if !f.known[leadID] {
		return apperr.NotFound("lead not found")
	}
	return nil
}

func (f *fakeLeads) ApplyConversation(_ context.Context, leadID string, interests []string, goals []domain.Goal) error {
	f.updates = append(f.updates, update{leadID: leadID, interests: interests, goals: goals})
	return nil
}

type chatConfig struct {
	min, max time.Duration
}

func (c chatConfig) GetChatTypingDelayMin() time.Duration { return c.min }
func (c chatConfig) GetChatTypingDelayMax() time.Duration { return c.max }

func newService(cfg chatConfig) (*Service, *fakeLeads) {
	leads := &fakeLeads{known: map[string]bool{"anon_1": true}}
	svc := NewService(Deps{
		Leads:  leads,
		Config: cfg,
		Clock:  clockwork.NewFakeClockAt(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)),
		Log:    logger.Nop(),
	})
	return svc, leads
}

func TestSendCarriesFlowAcrossMessages(t *testing.T) {
	svc, _ := newService(chatConfig{})
	ctx := context.Background()

	first, err := svc.Send(ctx, "anon_1", "Could we talk about my options?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Reply.Flow != advisor.FlowConsultation || first.Message.Flow != advisor.FlowGeneral {
		t.Fatalf("expected general -> consultation, got %s -> %s", first.Message.Flow, first.Reply.Flow)
	}

	second, err := svc.Send(ctx, "anon_1", "Which course should I take?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Reply.Kind != advisor.KindConsultation || second.Reply.Content != first.Reply.Content {
		t.Fatalf("expected the consultation pitch to repeat, got %s", second.Reply.Kind)
	}

	history, err := svc.History(ctx, "anon_1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 || history[0].Role != RoleUser || history[3].Role != RoleAssistant {
		t.Fatalf("unexpected transcript %+v", history)
	}
}

func TestSendMergesExtractedTags(t *testing.T) {
	svc, leads := newService(chatConfig{})

	exchange, err := svc.Send(context.Background(), "anon_1", "I'm a developer and want to switch into data science")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exchange.Reply.Flow != advisor.FlowQualification {
		t.Fatalf("expected qualification flow, got %s", exchange.Reply.Flow)
	}
	if len(leads.updates) != 1 {
		t.Fatalf("expected one lead update, got %d", len(leads.updates))
	}
	got := leads.updates[0]
	if len(got.interests) != 2 || got.interests[0] != "data-science" || got.interests[1] != "software-engineering" {
		t.Fatalf("unexpected interests %v", got.interests)
	}
	if len(got.goals) != 1 || got.goals[0] != domain.GoalCareerSwitch {
		t.Fatalf("unexpected goals %v", got.goals)
	}

	if _, err := svc.Send(context.Background(), "anon_1", "ok thanks"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads.updates) != 1 {
		t.Fatal("expected no lead update for a message without tags")
	}
}

func TestSendRejectsUnknownLeadAndBlankMessage(t *testing.T) {
	svc, _ := newService(chatConfig{})
	ctx := context.Background()

	if _, err := svc.Send(ctx, "anon_missing", "hello"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Send(ctx, "anon_1", "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	history, _ := svc.History(ctx, "anon_missing")
	if len(history) != 0 {
		t.Fatal("expected nothing stored for a rejected message")
	}
}

func TestTypingDelayStaysInWindow(t *testing.T) {
	svc, _ := newService(chatConfig{min: time.Second, max: 3 * time.Second})
	for i := 0; i < 20; i++ {
		exchange, err := svc.Send(context.Background(), "anon_1", "hi")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exchange.TypingDelayMs < 1000 || exchange.TypingDelayMs > 3000 {
			t.Fatalf("typing delay %dms outside 1-3s", exchange.TypingDelayMs)
		}
	}

	instant, _ := newService(chatConfig{})
	exchange, err := instant.Send(context.Background(), "anon_1", "hi")
	if err != nil || exchange.TypingDelayMs != 0 {
		t.Fatalf("expected no delay without a window, got %d / %v", exchange.TypingDelayMs, err)
	}
}

func TestGreetingStartsGeneralFlow(t *testing.T) {
	svc, _ := newService(chatConfig{})
	g := svc.Greeting()
	if g.Role != RoleAssistant || g.Flow != advisor.FlowGeneral || g.Kind != advisor.KindGreeting {
		t.Fatalf("unexpected greeting %+v", g)
	}
}

func TestSendStoresCleanText(t *testing.T) {
	svc, _ := newService(chatConfig{})
	exchange, err := svc.Send(context.Background(), "anon_1", "<b>Hello</b>\n\n  there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exchange.Message.Content != "Hello there" {
		t.Fatalf("expected markup stripped, got %q", exchange.Message.Content)
	}
	if _, err := svc.Send(context.Background(), "anon_1", "<p> </p>"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected markup-only message to be rejected, got %v", err)
	}
}
