package routing

import (
	"context"
	"errors"
	"fmt"

	"lead_funnel_backend/internal/analytics"
	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/recommend"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/leads/scoring"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/jonboulle/clockwork"
)

// TaskAction is the scheduler task type for a delayed routing action.
const TaskAction = "routing.action"

// lowConversionRate flags rules for review in OptimizeRules.
const lowConversionRate = 0.1

// ActionPayload is the body of a scheduled routing action.
type ActionPayload struct {
	LeadID string         `json:"leadId"`
	RuleID string         `json:"ruleId"`
	Type   ActionType     `json:"actionType"`
	Params map[string]any `json:"parameters"`
}

// TriggeredAction is an action scheduled during a routing pass.
type TriggeredAction struct {
	RuleID string `json:"ruleId"`
	Action Action `json:"action"`
	TaskID string `json:"taskId"`
}

// Result is the outcome of one routing pass.
type Result struct {
	Lead             domain.Lead                `json:"lead"`
	Breakdown        scoring.Breakdown          `json:"scoreBreakdown"`
	PreviousStatus   domain.Status              `json:"previousStatus"`
	Matched          []string                   `json:"matchedRules"`
	Triggered        []TriggeredAction          `json:"actionsTriggered"`
	Recommendations  []recommend.Recommendation `json:"recommendations"`
	RuleTableVersion uint64                     `json:"ruleTableVersion"`
}

// Suggestion is a rule that OptimizeRules thinks needs attention.
type Suggestion struct {
	RuleID         string  `json:"ruleId"`
	Name           string  `json:"name"`
	ConversionRate float64 `json:"conversionRate"`
	Message        string  `json:"message"`
}

// Engine scores leads and schedules the actions of matching rules.
type Engine struct {
	table       *Table
	scorer      *scoring.Scorer
	scheduler   scheduler.Scheduler
	leads       LeadReader
	delegates   Delegates
	performance *Performance
	sink        analytics.Sink
	bus         events.Bus
	metrics     *observability.Metrics
	clock       clockwork.Clock
	log         *logger.Logger
}

// Deps groups the collaborators of Engine.
type Deps struct {
	Table     *Table
	Scorer    *scoring.Scorer
	Scheduler scheduler.Scheduler
	Leads     LeadReader
	Delegates Delegates
	Sink      analytics.Sink
	Bus       events.Bus
	Metrics   *observability.Metrics
	Clock     clockwork.Clock
	Log       *logger.Logger
	// Stats backs rule performance counters. Nil keeps them in process memory.
	Stats store.Hash
}

func NewEngine(deps Deps) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	table := deps.Table
	if table == nil {
		table = NewTable(DefaultRules()...)
	}
	scorer := deps.Scorer
	if scorer == nil {
		scorer = scoring.New(clock)
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	sink := deps.Sink
	if sink == nil {
		sink = analytics.NewLogSink(log)
	}
	return &Engine{
		table:       table,
		scorer:      scorer,
		scheduler:   deps.Scheduler,
		leads:       deps.Leads,
		delegates:   deps.Delegates,
		performance: NewPerformance(deps.Stats),
		sink:        sink,
		bus:         deps.Bus,
		metrics:     deps.Metrics,
		clock:       clock,
		log:         log,
	}
}

func (e *Engine) Table() *Table { return e.table }

// RegisterTasks installs the delayed action handler on mux.
func (e *Engine) RegisterTasks(mux *scheduler.Mux) {
	mux.HandleFunc(TaskAction, e.handleAction)
}

// RegisterHandlers subscribes to conversions for rule attribution.
func (e *Engine) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadConverted{}.EventName(), e)
}

// Handle implements events.Handler.
func (e *Engine) Handle(ctx context.Context, event events.Event) error {
	if converted, ok := event.(events.LeadConverted); ok {
		return e.performance.Converted(ctx, converted.LeadID, e.clock.Now())
	}
	return nil
}

// Route rescores lead, evaluates the active rules in priority order and
// schedules the actions of the matching ones. Scheduling failures are logged
// per rule and never abort the pass. After an exclusive action is scheduled no
// further rules run. Terminal leads are rescored but trigger nothing.
// The returned lead is not persisted; callers store Result.Lead.
func (e *Engine) Route(ctx context.Context, lead domain.Lead) Result {
	now := e.clock.Now()
	updated := lead.Clone()
	breakdown, previous := e.scorer.Rescore(&updated)
	updated.UpdatedAt = now

	rules, version := e.table.Snapshot()
	result := Result{
		Lead:             updated,
		Breakdown:        breakdown,
		PreviousStatus:   previous,
		Matched:          []string{},
		Triggered:        []TriggeredAction{},
		Recommendations:  recommend.Recommend(updated),
		RuleTableVersion: version,
	}

	matching := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Matches(updated, now) {
			matching = append(matching, rule)
			result.Matched = append(result.Matched, rule.ID)
		}
	}

	if updated.Status.Terminal() {
		return result
	}

	for _, rule := range matching {
		taskID, err := e.schedule(ctx, updated.ID, rule)
		if err != nil {
			e.recordFailure(ctx, updated.ID, rule.ID, rule.Action.Type, err)
			continue
		}

		result.Triggered = append(result.Triggered, TriggeredAction{RuleID: rule.ID, Action: rule.Action, TaskID: taskID})
		e.track(rule.ID, e.performance.Triggered(ctx, rule.ID, updated.ID, now))
		e.metrics.RuleFired(rule.ID, string(rule.Action.Type))
		e.log.WithContext(ctx).RuleFired(rule.ID, updated.ID, string(rule.Action.Type), rule.Action.Delay.Milliseconds())
		e.audit(ctx, analytics.Event{
			Type:       analytics.EventActionScheduled,
			LeadID:     updated.ID,
			RuleID:     rule.ID,
			ActionType: string(rule.Action.Type),
			Parameters: rule.Action.Params,
			DelayMs:    rule.Action.Delay.Milliseconds(),
		})

		if rule.Action.Type.Exclusive() {
			break
		}
	}

	return result
}

func (e *Engine) schedule(ctx context.Context, leadID string, rule Rule) (string, error) {
	if e.scheduler == nil {
		return "", errors.New("no scheduler configured")
	}
	task, err := scheduler.NewTask(TaskAction, ActionPayload{
		LeadID: leadID,
		RuleID: rule.ID,
		Type:   rule.Action.Type,
		Params: rule.Action.Params,
	})
	if err != nil {
		return "", err
	}
	handle, err := e.scheduler.Schedule(ctx, task, rule.Action.Delay)
	if err != nil {
		return "", err
	}
	return handle.ID(), nil
}

func (e *Engine) handleAction(ctx context.Context, task scheduler.Task) error {
	var payload ActionPayload
	if err := task.Decode(&payload); err != nil {
		return err
	}
	e.Execute(ctx, payload)
	return nil
}

// Execute runs a due action against the current state of its lead. Failures
// are logged and counted; there is no retry.
func (e *Engine) Execute(ctx context.Context, payload ActionPayload) {
	log := e.log.WithContext(ctx)

	lead, err := e.leads.Get(ctx, payload.LeadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("routing action dropped, lead session ended", "rule_id", payload.RuleID, "lead_id", payload.LeadID)
			e.track(payload.RuleID, e.performance.Skipped(ctx, payload.RuleID))
			return
		}
		e.recordFailure(ctx, payload.LeadID, payload.RuleID, payload.Type, err)
		return
	}
	if lead.Status.Terminal() {
		log.Info("routing action skipped for closed lead", "rule_id", payload.RuleID, "lead_id", lead.ID, "status", lead.Status)
		e.track(payload.RuleID, e.performance.Skipped(ctx, payload.RuleID))
		return
	}

	done, err := e.dispatch(ctx, lead, payload)
	if err != nil {
		e.recordFailure(ctx, lead.ID, payload.RuleID, payload.Type, err)
		return
	}
	if !done {
		e.track(payload.RuleID, e.performance.Skipped(ctx, payload.RuleID))
		return
	}

	e.track(payload.RuleID, e.performance.Succeeded(ctx, payload.RuleID))
	e.audit(ctx, analytics.Event{
		Type:       analytics.EventActionExecuted,
		LeadID:     lead.ID,
		RuleID:     payload.RuleID,
		ActionType: string(payload.Type),
		Parameters: payload.Params,
	})
	if e.bus != nil {
		e.bus.Publish(ctx, events.RoutingActionExecuted{
			BaseEvent:  events.NewBaseEventAt(e.clock.Now()),
			LeadID:     lead.ID,
			RuleID:     payload.RuleID,
			ActionType: string(payload.Type),
		})
	}
}

// dispatch hands the action to its delegate. It reports false when the
// delegate declined without error.
func (e *Engine) dispatch(ctx context.Context, lead domain.Lead, payload ActionPayload) (bool, error) {
	params := payload.Params
	switch payload.Type {
	case ActionEmailSequence:
		if e.delegates.Email == nil {
			return false, errNoDelegate(payload.Type)
		}
		return e.delegates.Email.TriggerSequence(ctx, lead, stringParam(params, ParamSequenceID, ""))

	case ActionSalesNotification:
		if e.delegates.Sales == nil {
			return false, errNoDelegate(payload.Type)
		}
		return e.delegates.Sales.Notify(ctx, lead, stringParam(params, ParamPriority, "normal"), stringParam(params, ParamMessage, ""))

	case ActionChatbotTrigger:
		if e.delegates.Chatbot == nil {
			return false, errNoDelegate(payload.Type)
		}
		return e.delegates.Chatbot.Trigger(ctx, lead.ID,
			stringParam(params, ParamTriggerType, ""),
			stringParam(params, ParamMessage, ""),
			stringParam(params, ParamOfferType, ""),
		)

	case ActionContentRecommendation:
		if e.delegates.Content == nil {
			return false, errNoDelegate(payload.Type)
		}
		return e.delegates.Content.RecommendContent(ctx, lead,
			intParam(params, ParamContentCount, 3),
			stringParam(params, ParamRecommendationType, "personalized"),
		)

	case ActionConsultationBooking:
		if e.delegates.Consultation == nil {
			return false, errNoDelegate(payload.Type)
		}
		return e.delegates.Consultation.Reserve(ctx, lead,
			stringParam(params, ParamBookingType, "standard"),
			stringParam(params, ParamConsultantType, "advisor"),
			stringParam(params, ParamMessage, ""),
		)
	}
	return false, fmt.Errorf("unknown routing action type %q", payload.Type)
}

func errNoDelegate(t ActionType) error {
	return fmt.Errorf("no delegate configured for %s", t)
}

func (e *Engine) recordFailure(ctx context.Context, leadID, ruleID string, actionType ActionType, err error) {
	e.track(ruleID, e.performance.Failed(ctx, ruleID))
	e.metrics.RuleFailed(ruleID, string(actionType))
	e.log.WithContext(ctx).RuleFailed(ruleID, leadID, string(actionType), err)
	e.audit(ctx, analytics.Event{
		Type:       analytics.EventActionFailed,
		LeadID:     leadID,
		RuleID:     ruleID,
		ActionType: string(actionType),
		Error:      err.Error(),
	})
	if e.bus != nil {
		e.bus.Publish(ctx, events.RoutingActionFailed{
			BaseEvent:  events.NewBaseEventAt(e.clock.Now()),
			LeadID:     leadID,
			RuleID:     ruleID,
			ActionType: string(actionType),
			Error:      err.Error(),
		})
	}
}

func (e *Engine) audit(ctx context.Context, event analytics.Event) {
	event.Timestamp = e.clock.Now()
	if err := e.sink.Log(ctx, event); err != nil {
		e.log.Warn("failed to record routing audit event", "error", err, "rule_id", event.RuleID)
	}
}

func (e *Engine) track(ruleID string, err error) {
	if err != nil {
		e.log.Warn("failed to update rule performance", "rule_id", ruleID, "error", err)
	}
}

// Performance returns per-rule counters.
func (e *Engine) Performance(ctx context.Context) ([]RulePerformance, error) {
	return e.performance.Snapshot(ctx)
}

// OptimizeRules lists rules whose conversion rate stayed below 10% once they
// fired at least minSample times. Nothing is changed automatically.
func (e *Engine) OptimizeRules(ctx context.Context, minSample int) ([]Suggestion, error) {
	snapshot, err := e.performance.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]Suggestion, 0)
	for _, perf := range snapshot {
		if perf.Triggered < minSample || perf.ConversionRate >= lowConversionRate {
			continue
		}
		name := perf.RuleID
		if rule, ok := e.table.Get(perf.RuleID); ok {
			name = rule.Name
		}
		s := Suggestion{
			RuleID:         perf.RuleID,
			Name:           name,
			ConversionRate: perf.ConversionRate,
			Message:        fmt.Sprintf("Rule %s has low performance - consider optimization", name),
		}
		e.log.Info("routing rule underperforming", "rule_id", s.RuleID, "conversion_rate", s.ConversionRate)
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}
