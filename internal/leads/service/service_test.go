package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"

	"github.com/jonboulle/clockwork"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, event := range b.events {
		if event.EventName() == name {
			out = append(out, event)
		}
	}
	return out
}

type fakeRouter struct {
	mu    sync.Mutex
	calls []string
}

func (r *fakeRouter) Route(_ context.Context, lead domain.Lead) (transport.RouteResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, lead.ID)
	return transport.RouteResponse{LeadID: lead.ID, Score: lead.Score, Status: lead.Status}, nil
}

func (r *fakeRouter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type leadsConfig struct {
	autoRoute bool
}

func (c leadsConfig) GetPhoneDefaultRegion() string        { return "US" }
func (c leadsConfig) GetAutoRoute() bool                   { return c.autoRoute }
func (c leadsConfig) GetSalesAlertCooldown() time.Duration { return time.Hour }

type harness struct {
	svc    *Service
	repo   *repository.Memory
	bus    *recordingBus
	router *fakeRouter
	clock  *clockwork.FakeClock
}

func newHarness(t *testing.T, autoRoute bool) *harness {
	t.Helper()
	h := &harness{
		repo:   repository.NewMemory(),
		bus:    &recordingBus{},
		router: &fakeRouter{},
		clock:  clockwork.NewFakeClockAt(testNow),
	}
	h.svc = New(Deps{
		Repo:   h.repo,
		Router: h.router,
		Bus:    h.bus,
		Clock:  h.clock,
		Config: leadsConfig{autoRoute: autoRoute},
		Log:    logger.Nop(),
	})
	return h
}

func (h *harness) create(t *testing.T) string {
	t.Helper()
	lead, err := h.svc.CreateAnonymous(context.Background(), transport.CreateLeadRequest{})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead.ID
}

func TestCreateAnonymous(t *testing.T) {
	h := newHarness(t, false)

	lead, err := h.svc.CreateAnonymous(context.Background(), transport.CreateLeadRequest{Source: " webinar_ad "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(lead.ID, "anon_") {
		t.Fatalf("expected anon_ id, got %q", lead.ID)
	}
	if lead.Status != domain.StatusCold || lead.Source != "webinar_ad" {
		t.Fatalf("unexpected new lead %s/%s", lead.Status, lead.Source)
	}
	// one session (5) plus full recency (20) weighted by 0.3
	if lead.Score != 7.5 {
		t.Fatalf("expected score 7.5, got %v", lead.Score)
	}
	if len(h.bus.named(events.LeadCreated{}.EventName())) != 1 {
		t.Fatal("expected a LeadCreated event")
	}

	stored, err := h.svc.Get(context.Background(), lead.ID)
	if err != nil || stored.ID != lead.ID {
		t.Fatalf("expected stored lead, got %+v / %v", stored, err)
	}
}

func TestUnknownLeadIsNotFound(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.svc.Get(context.Background(), "anon_missing")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = h.svc.TrackAction(context.Background(), "anon_missing", transport.TrackActionRequest{Type: domain.ActionClick, Target: "cta"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on mutation, got %v", err)
	}
}

func TestEngagementAccumulates(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	id := h.create(t)

	h.clock.Advance(10 * time.Minute)
	if _, err := h.svc.TrackAction(ctx, id, transport.TrackActionRequest{Type: domain.ActionView, Target: "pricing", TimeSpent: 40}); err != nil {
		t.Fatalf("track action: %v", err)
	}
	_, err := h.svc.RecordContentView(ctx, id, transport.ContentViewRequest{
		ContentID: "c1", Type: domain.ContentCourse, Title: "Intro to ML", TimeSpent: 120, Completion: 50,
	})
	if err != nil {
		t.Fatalf("record content view: %v", err)
	}
	lead, err := h.svc.StartSession(ctx, id)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if len(lead.Engagement.Actions) != 1 || len(lead.Engagement.ContentViewed) != 1 {
		t.Fatalf("unexpected engagement logs %+v", lead.Engagement)
	}
	if lead.Engagement.TimeSpent != 160 {
		t.Fatalf("expected 160s total time, got %v", lead.Engagement.TimeSpent)
	}
	if lead.Engagement.SessionCount != 2 {
		t.Fatalf("expected 2 sessions, got %d", lead.Engagement.SessionCount)
	}
	if !lead.Engagement.LastActive.Equal(testNow.Add(10 * time.Minute)) {
		t.Fatalf("expected last active to follow the clock, got %s", lead.Engagement.LastActive)
	}
	if len(h.bus.named(events.LeadScored{}.EventName())) != 3 {
		t.Fatal("expected every mutation to publish LeadScored")
	}
}

func TestRescoringPublishesStatusChange(t *testing.T) {
	h := newHarness(t, false)
	id := h.create(t)

	lead, err := h.svc.RecordContentView(context.Background(), id, transport.ContentViewRequest{
		ContentID: "c1", Type: domain.ContentCourse, Title: "Data Science Bootcamp",
		TimeSpent: 300, Completion: 100, EngagementScore: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// content 100*0.4 + behaviour (5+20+5)*0.3
	if lead.Score != 49 || lead.Status != domain.StatusQualified {
		t.Fatalf("expected qualified lead at 49, got %s at %v", lead.Status, lead.Score)
	}

	changes := h.bus.named(events.LeadStatusChanged{}.EventName())
	if len(changes) != 1 {
		t.Fatalf("expected one status change, got %d", len(changes))
	}
	change := changes[0].(events.LeadStatusChanged)
	if change.From != "cold" || change.To != "qualified" {
		t.Fatalf("unexpected transition %s -> %s", change.From, change.To)
	}
}

func TestCaptureEmail(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	id := h.create(t)

	lead, err := h.svc.CaptureEmail(ctx, id, transport.CaptureEmailRequest{Email: " Ana@Example.com ", Name: "Ana", Phone: "(650) 253-0000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Email != "ana@example.com" || lead.Name != "Ana" || lead.Phone != "+16502530000" {
		t.Fatalf("unexpected contact details %q %q %q", lead.Email, lead.Name, lead.Phone)
	}
	last := lead.Engagement.Actions[len(lead.Engagement.Actions)-1]
	if last.Type != domain.ActionClick || last.Target != EmailCaptureTarget || last.Value != "ana@example.com" {
		t.Fatalf("expected capture click, got %+v", last)
	}

	if _, err := h.svc.CaptureEmail(ctx, id, transport.CaptureEmailRequest{Email: "ana@work.example.com"}); err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if got := len(h.bus.named(events.LeadEmailCaptured{}.EventName())); got != 1 {
		t.Fatalf("expected LeadEmailCaptured once, got %d", got)
	}
}

func TestQualificationMergesAnswers(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	id := h.create(t)

	_, err := h.svc.UpdateQualification(ctx, id, transport.QualificationRequest{
		ExperienceLevel: domain.ExperienceAdvanced,
		Timeline:        domain.TimelineImmediate,
		Goals:           []domain.Goal{domain.GoalPromotion},
		Challenges:      []string{"time"},
	})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	lead, err := h.svc.UpdateQualification(ctx, id, transport.QualificationRequest{
		Budget:     domain.BudgetPremium,
		Goals:      []domain.Goal{domain.GoalPromotion, domain.GoalCertification},
		Challenges: []string{"time", "money"},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	q := lead.Qualification
	if q.ExperienceLevel != domain.ExperienceAdvanced || q.Timeline != domain.TimelineImmediate || q.Budget != domain.BudgetPremium {
		t.Fatalf("expected answers to merge, got %+v", q)
	}
	if len(q.Goals) != 2 || len(q.Challenges) != 2 {
		t.Fatalf("expected deduplicated goals and challenges, got %v / %v", q.Goals, q.Challenges)
	}
}

func TestApplyConversationDeduplicates(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	id := h.create(t)

	update := transport.ConversationUpdate{Interests: []string{"data-science", "python"}, Goals: []domain.Goal{domain.GoalCareerSwitch}}
	if _, err := h.svc.ApplyConversation(ctx, id, update); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	lead, err := h.svc.ApplyConversation(ctx, id, update)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(lead.Interests) != 2 || len(lead.Qualification.Goals) != 1 {
		t.Fatalf("expected no duplicates, got %v / %v", lead.Interests, lead.Qualification.Goals)
	}
}

func TestTerminalOutcomes(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	converted := h.create(t)
	lost := h.create(t)

	lead, err := h.svc.SetOutcome(ctx, converted, transport.OutcomeRequest{Status: domain.StatusConverted})
	if err != nil || lead.Status != domain.StatusConverted {
		t.Fatalf("expected converted lead, got %s / %v", lead.Status, err)
	}
	if _, err := h.svc.MarkConverted(ctx, converted); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on second conversion, got %v", err)
	}
	if _, err := h.svc.MarkLost(ctx, converted, "late"); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict when losing a converted lead, got %v", err)
	}

	if _, err := h.svc.SetOutcome(ctx, lost, transport.OutcomeRequest{Status: domain.StatusLost, Reason: " chose a competitor "}); err != nil {
		t.Fatalf("mark lost: %v", err)
	}
	lostEvents := h.bus.named(events.LeadLost{}.EventName())
	if len(lostEvents) != 1 || lostEvents[0].(events.LeadLost).Reason != "chose a competitor" {
		t.Fatalf("unexpected LeadLost events %+v", lostEvents)
	}
	if len(h.bus.named(events.LeadConverted{}.EventName())) != 1 {
		t.Fatal("expected exactly one LeadConverted event")
	}

	routedBefore := h.router.count()
	lead, err = h.svc.TrackAction(ctx, converted, transport.TrackActionRequest{Type: domain.ActionLike, Target: "post"})
	if err != nil {
		t.Fatalf("track on converted lead: %v", err)
	}
	if lead.Status != domain.StatusConverted || lead.Routing != nil || h.router.count() != routedBefore {
		t.Fatal("expected terminal lead to keep its status and skip routing")
	}
}

func TestAutoRouteFollowsConfig(t *testing.T) {
	ctx := context.Background()

	on := newHarness(t, true)
	id := on.create(t)
	lead, err := on.svc.StartSession(ctx, id)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if lead.Routing == nil || lead.Routing.LeadID != id || on.router.count() != 1 {
		t.Fatal("expected the mutation to be routed")
	}

	off := newHarness(t, false)
	id = off.create(t)
	lead, err = off.svc.StartSession(ctx, id)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if lead.Routing != nil || off.router.count() != 0 {
		t.Fatal("expected no routing with auto routing disabled")
	}

	if _, err := off.svc.Route(ctx, id); err != nil || off.router.count() != 1 {
		t.Fatalf("expected explicit route to run, got %v", err)
	}
}

func TestRouteWithoutRouter(t *testing.T) {
	svc := New(Deps{Repo: repository.NewMemory(), Clock: clockwork.NewFakeClockAt(testNow), Log: logger.Nop()})
	lead, err := svc.CreateAnonymous(context.Background(), transport.CreateLeadRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Route(context.Background(), lead.ID); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error without a router, got %v", err)
	}
}

func TestSweepSkipsTerminalLeads(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	open := h.create(t)
	closed := h.create(t)
	if _, err := h.svc.MarkLost(ctx, closed, ""); err != nil {
		t.Fatalf("mark lost: %v", err)
	}

	result, err := h.svc.SweepInactive(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Routed != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected sweep result %+v", result)
	}
	if h.router.calls[0] != open {
		t.Fatalf("expected the open lead to be routed, got %v", h.router.calls)
	}
}

func TestConcurrentActionsAreNotLost(t *testing.T) {
	h := newHarness(t, false)
	id := h.create(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.svc.TrackAction(context.Background(), id, transport.TrackActionRequest{Type: domain.ActionClick, Target: "cta", TimeSpent: 2})
		}()
	}
	wg.Wait()

	lead, err := h.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(lead.Engagement.Actions) != 25 || lead.Engagement.TimeSpent != 50 {
		t.Fatalf("expected 25 actions and 50s, got %d and %v", len(lead.Engagement.Actions), lead.Engagement.TimeSpent)
	}
}

func TestNextActions(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	id := h.create(t)
	if _, err := h.svc.StartSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.StartSession(ctx, id); err != nil {
		t.Fatal(err)
	}

	result, err := h.svc.NextActions(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.NextActions) == 0 || result.NextActions[0] != "Trigger email capture popup" {
		t.Fatalf("expected email capture first, got %v", result.NextActions)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("expected a nurture recommendation for a cold lead")
	}
}
