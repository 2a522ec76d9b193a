package adapters

import (
	"context"
	"testing"
	"time"

	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/internal/routing"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"

	"github.com/jonboulle/clockwork"
)

var testNow = time.Date(2026, 4, 6, 14, 0, 0, 0, time.UTC)

func TestContentRecommenderReportsExhaustedCatalog(t *testing.T) {
	only := catalog.Item{Title: "Salary Negotiation Masterclass", URL: "/masterclass/salary-negotiation", Type: "masterclass"}
	svc := catalog.NewService(catalog.NewCatalog(only), nil, clockwork.NewFakeClockAt(testNow), logger.Nop())
	adapter := NewContentRecommenderAdapter(svc)
	ctx := context.Background()

	fresh := domain.NewAnonymous("anon_fresh", "", testNow)
	sent, err := adapter.RecommendContent(ctx, fresh, 3, "personalized")
	if err != nil || !sent {
		t.Fatalf("expected a set for a fresh lead, got %v / %v", sent, err)
	}

	seen := domain.NewAnonymous("anon_seen", "", testNow)
	seen.Engagement.ContentViewed = []domain.ContentEngagement{{ContentID: "x", Title: "salary negotiation masterclass"}}
	sent, err = adapter.RecommendContent(ctx, seen, 3, "personalized")
	if err != nil || sent {
		t.Fatalf("expected nothing to send, got %v / %v", sent, err)
	}
}

func TestConsultationBookerDeclinesWhileHeld(t *testing.T) {
	svc := booking.NewService(booking.Deps{Clock: clockwork.NewFakeClockAt(testNow), Log: logger.Nop()})
	adapter := NewConsultationBookerAdapter(svc)
	lead := domain.NewAnonymous("anon_book", "", testNow)

	created, err := adapter.Reserve(context.Background(), lead, "priority", "senior", "")
	if err != nil || !created {
		t.Fatalf("expected first reservation, got %v / %v", created, err)
	}
	created, err = adapter.Reserve(context.Background(), lead, "priority", "senior", "")
	if err != nil || created {
		t.Fatalf("expected second reservation to be declined, got %v / %v", created, err)
	}
}

func TestRoutingDelegatesLeaveMissingServicesUnset(t *testing.T) {
	delegates := RoutingDelegates{
		Content: catalog.NewService(nil, nil, nil, logger.Nop()),
	}.Build()

	if delegates.Content == nil {
		t.Fatal("expected the content delegate to be wired")
	}
	if delegates.Email != nil || delegates.Sales != nil || delegates.Chatbot != nil || delegates.Consultation != nil {
		t.Fatalf("expected unset services to stay nil, got %+v", delegates)
	}
}

func TestLeadRouterAdapterTranslatesResult(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mux := scheduler.NewMux()
	local := scheduler.NewLocal(clock, mux, logger.Nop())
	minSessions := 2

	table := routing.NewTable(routing.Rule{
		ID:       "returning_visitor",
		Name:     "Returning Visitor",
		When:     routing.Criteria{MinSessions: &minSessions},
		Action:   routing.Action{Type: routing.ActionChatbotTrigger, Params: map[string]any{"trigger_type": "welcome_back"}, Delay: 5 * time.Second},
		Priority: 1,
		Active:   true,
	})
	engine := routing.NewEngine(routing.Deps{
		Table:     table,
		Scheduler: local,
		Leads:     repository.NewMemory(),
		Clock:     clock,
		Log:       logger.Nop(),
	})
	engine.RegisterTasks(mux)

	lead := domain.NewAnonymous("anon_back", "", testNow)
	lead.Engagement.SessionCount = 2

	resp, err := NewLeadRouterAdapter(engine).Route(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.LeadID != lead.ID || resp.Status != domain.StatusCold || resp.RuleTableVersion != table.Version() {
		t.Fatalf("unexpected route response %+v", resp)
	}
	if len(resp.MatchedRules) != 1 || len(resp.Actions) != 1 {
		t.Fatalf("expected one matched and triggered rule, got %+v", resp)
	}
	action := resp.Actions[0]
	if action.RuleID != "returning_visitor" || action.ActionType != "chatbot_trigger" || action.DelayMs != 5000 || action.TaskID == "" {
		t.Fatalf("unexpected routed action %+v", action)
	}
	if local.Pending() != 1 {
		t.Fatalf("expected the action to wait in the scheduler, got %d pending", local.Pending())
	}
}

type countingRouter struct {
	routed int
}

func (r *countingRouter) Route(_ context.Context, lead domain.Lead) (transport.RouteResponse, error) {
	r.routed++
	return transport.RouteResponse{LeadID: lead.ID}, nil
}

type autoRouteConfig bool

func (c autoRouteConfig) GetPhoneDefaultRegion() string        { return "US" }
func (c autoRouteConfig) GetAutoRoute() bool                   { return bool(c) }
func (c autoRouteConfig) GetSalesAlertCooldown() time.Duration { return time.Hour }

func TestChatLeadAdapterRoutesOnce(t *testing.T) {
	for _, auto := range []bool{true, false} {
		router := &countingRouter{}
		leads := service.New(service.Deps{
			Repo:   repository.NewMemory(),
			Router: router,
			Clock:  clockwork.NewFakeClockAt(testNow),
			Config: autoRouteConfig(auto),
			Log:    logger.Nop(),
		})
		lead, err := leads.CreateAnonymous(context.Background(), transport.CreateLeadRequest{})
		if err != nil {
			t.Fatalf("create lead: %v", err)
		}

		adapter := NewChatLeadAdapter(leads)
		if err := adapter.Exists(context.Background(), lead.ID); err != nil {
			t.Fatalf("expected lead to exist: %v", err)
		}
		if err := adapter.Exists(context.Background(), "anon_missing"); !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		err = adapter.ApplyConversation(context.Background(), lead.ID, []string{"data-science"}, []domain.Goal{domain.GoalPromotion})
		if err != nil {
			t.Fatalf("apply conversation: %v", err)
		}
		if router.routed != 1 {
			t.Fatalf("auto=%v: expected exactly one routing pass, got %d", auto, router.routed)
		}

		stored, err := leads.Get(context.Background(), lead.ID)
		if err != nil || !stored.Qualification.HasGoal(domain.GoalPromotion) || len(stored.Interests) != 1 {
			t.Fatalf("expected merged tags, got %+v / %v", stored, err)
		}
	}
}
