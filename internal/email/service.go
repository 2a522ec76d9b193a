package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead_funnel_backend/internal/analytics"
	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/jonboulle/clockwork"
)

// TaskDeliver is the scheduler task type for one sequence email.
const TaskDeliver = "email.deliver"

// Delivery outcomes.
const (
	OutcomeSent        = "sent"
	OutcomeFailed      = "failed"
	OutcomeNoEmail     = "skipped_no_email"
	OutcomeConditions  = "skipped_conditions"
	OutcomeLeadExpired = "skipped_lead_expired"
	OutcomeLeadClosed  = "skipped_lead_closed"
	OutcomeUnknownStep = "skipped_unknown_step"
)

// DeliverPayload identifies one email of an enrollment.
type DeliverPayload struct {
	LeadID     string `json:"leadId"`
	SequenceID string `json:"sequenceId"`
	Step       int    `json:"step"`
}

// LeadReader loads the current state of a lead at delivery time.
type LeadReader interface {
	Get(ctx context.Context, id string) (domain.Lead, error)
}

// Stats are the delivery counters of one sequence.
type Stats struct {
	SequenceID     string  `json:"sequenceId"`
	Triggered      int     `json:"triggered"`
	Scheduled      int     `json:"scheduled"`
	Sent           int     `json:"sent"`
	Skipped        int     `json:"skipped"`
	Failed         int     `json:"failed"`
	Cancelled      int     `json:"cancelled"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversionRate"`
}

// Enrollment is one lead's pass through a sequence. TaskIDs reference the
// scheduled deliveries so any process can cancel them.
type Enrollment struct {
	SequenceID string    `json:"sequenceId"`
	StartedAt  time.Time `json:"startedAt"`
	EndsAt     time.Time `json:"endsAt"`
	TaskIDs    []string  `json:"taskIds"`
	Cancelled  bool      `json:"cancelled"`
}

// ActiveAt reports whether the enrollment still has deliveries ahead of now.
func (e Enrollment) ActiveAt(now time.Time) bool {
	return !e.Cancelled && !now.After(e.EndsAt)
}

// Stats counter fields.
const (
	statTriggered = "triggered"
	statScheduled = "scheduled"
	statSent      = "sent"
	statSkipped   = "skipped"
	statFailed    = "failed"
	statCancelled = "cancelled"
	statConverted = "converted"
)

// Service enrolls leads in sequences and delivers their emails.
type Service struct {
	catalog      *Catalog
	personalizer Personalizer
	delivery     Delivery
	scheduler    scheduler.Scheduler
	leads        LeadReader
	clock        clockwork.Clock
	bus          events.Bus
	sink         analytics.Sink
	metrics      *observability.Metrics
	log          *logger.Logger

	enrollments store.List[Enrollment] // by lead id
	stats       store.Hash             // by sequence id
	claims      store.Gate             // lead:sequence while enrolled
}

// Deps groups the collaborators of Service. Nil stores fall back to process memory.
type Deps struct {
	Catalog      *Catalog
	Personalizer Personalizer
	Delivery     Delivery
	Scheduler    scheduler.Scheduler
	Leads        LeadReader
	Clock        clockwork.Clock
	Bus          events.Bus
	Sink         analytics.Sink
	Metrics      *observability.Metrics
	Log          *logger.Logger
	Enrollments  store.List[Enrollment]
	Stats        store.Hash
	Claims       store.Gate
}

func NewService(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if deps.Enrollments == nil {
		deps.Enrollments = store.NewMemoryList[Enrollment](0)
	}
	if deps.Stats == nil {
		deps.Stats = store.NewMemoryHash()
	}
	if deps.Claims == nil {
		deps.Claims = store.NewMemoryGate(clock)
	}
	return &Service{
		catalog:      deps.Catalog,
		personalizer: deps.Personalizer,
		delivery:     deps.Delivery,
		scheduler:    deps.Scheduler,
		leads:        deps.Leads,
		clock:        clock,
		bus:          deps.Bus,
		sink:         deps.Sink,
		metrics:      deps.Metrics,
		log:          deps.Log,
		enrollments:  deps.Enrollments,
		stats:        deps.Stats,
		claims:       deps.Claims,
	}
}

// RegisterTasks installs the delivery handler on mux.
func (s *Service) RegisterTasks(mux *scheduler.Mux) {
	mux.HandleFunc(TaskDeliver, s.handleDeliver)
}

// RegisterHandlers subscribes to lead events that end enrollments.
func (s *Service) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadConverted{}.EventName(), s)
	bus.Subscribe(events.LeadLost{}.EventName(), s)
}

// Handle implements events.Handler. Both terminal outcomes cancel what is
// still queued; only a conversion is attributed to the sequences.
func (s *Service) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadConverted:
		if err := s.attributeConversion(ctx, e.LeadID); err != nil {
			return err
		}
		_, err := s.CancelForLead(ctx, e.LeadID)
		return err
	case events.LeadLost:
		_, err := s.CancelForLead(ctx, e.LeadID)
		return err
	}
	return nil
}

func (s *Service) Catalog() *Catalog { return s.catalog }

// SelectSequence returns the sequence the lead's state calls for.
func (s *Service) SelectSequence(lead domain.Lead) (Sequence, bool) {
	return s.catalog.Select(lead)
}

// Preview renders every email of a sequence for lead without scheduling anything.
func (s *Service) Preview(sequenceID string, lead domain.Lead) (Sequence, bool) {
	seq, ok := s.catalog.Get(sequenceID)
	if !ok {
		return Sequence{}, false
	}
	rendered := seq
	rendered.Emails = make([]Template, len(seq.Emails))
	for i, tmpl := range seq.Emails {
		rendered.Emails[i] = s.personalizer.Personalize(tmpl, lead)
	}
	return rendered, true
}

// PreviewForLead renders a sequence for a stored lead. An empty sequenceID
// previews the sequence the lead would be enrolled in now.
func (s *Service) PreviewForLead(ctx context.Context, leadID, sequenceID string) (Sequence, error) {
	if s.leads == nil {
		return Sequence{}, apperr.Internal("email previews are not configured")
	}
	lead, err := s.leads.Get(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Sequence{}, apperr.NotFound("lead not found")
		}
		return Sequence{}, fmt.Errorf("load lead: %w", err)
	}
	if sequenceID == "" {
		seq, ok := s.SelectSequence(lead)
		if !ok {
			return Sequence{}, apperr.NotFound("no sequence applies to this lead")
		}
		sequenceID = seq.ID
	}
	seq, ok := s.Preview(sequenceID, lead)
	if !ok {
		return Sequence{}, apperr.NotFound("email sequence not found")
	}
	return seq, nil
}

func claimKey(leadID, sequenceID string) string {
	return leadID + ":" + sequenceID
}

// TriggerSequence schedules every email of the sequence relative to now.
// It reports false without error when the sequence is unknown or inactive, or
// when the lead is already in an active enrollment of the same sequence.
func (s *Service) TriggerSequence(ctx context.Context, lead domain.Lead, sequenceID string) (bool, error) {
	seq, ok := s.catalog.Get(sequenceID)
	if !ok || !seq.Active {
		return false, nil
	}

	now := s.clock.Now()
	window := seq.LastDelay()
	if window < time.Second {
		window = time.Second
	}
	claimed, err := s.claims.Acquire(ctx, claimKey(lead.ID, sequenceID), window)
	if err != nil {
		return false, fmt.Errorf("claim enrollment: %w", err)
	}
	if !claimed {
		return false, nil
	}

	handles := make([]scheduler.Handle, 0, len(seq.Emails))
	rollback := func(cause error) (bool, error) {
		for _, h := range handles {
			h.Cancel()
		}
		_ = s.claims.Release(ctx, claimKey(lead.ID, sequenceID))
		return false, cause
	}

	for step, tmpl := range seq.Emails {
		task, err := scheduler.NewTask(TaskDeliver, DeliverPayload{LeadID: lead.ID, SequenceID: sequenceID, Step: step})
		if err != nil {
			return rollback(err)
		}
		handle, err := s.scheduler.Schedule(ctx, task, tmpl.Delay)
		if err != nil {
			return rollback(err)
		}
		handles = append(handles, handle)
	}

	taskIDs := make([]string, len(handles))
	for i, h := range handles {
		taskIDs[i] = h.ID()
	}
	enrollment := Enrollment{SequenceID: sequenceID, StartedAt: now, EndsAt: now.Add(seq.LastDelay()), TaskIDs: taskIDs}
	if err := s.enrollments.Append(ctx, lead.ID, enrollment); err != nil {
		return rollback(fmt.Errorf("store enrollment: %w", err))
	}
	s.incr(ctx, sequenceID, statTriggered, 1)
	s.incr(ctx, sequenceID, statScheduled, int64(len(handles)))

	s.log.WithContext(ctx).Info("email sequence triggered", "sequence", seq.Name, "lead_id", lead.ID, "emails", len(handles))
	if s.bus != nil {
		s.bus.Publish(ctx, events.EmailSequenceTriggered{
			BaseEvent:  events.NewBaseEventAt(now),
			LeadID:     lead.ID,
			SequenceID: sequenceID,
			Steps:      len(handles),
		})
	}
	return true, nil
}

// Enrollments returns the lead's enrollment history in trigger order.
func (s *Service) Enrollments(ctx context.Context, leadID string) ([]Enrollment, error) {
	return s.enrollments.Range(ctx, leadID)
}

// Enrolled reports whether the lead has an active enrollment in the sequence.
func (s *Service) Enrolled(ctx context.Context, leadID, sequenceID string) (bool, error) {
	list, err := s.enrollments.Range(ctx, leadID)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	for _, e := range list {
		if e.SequenceID == sequenceID && e.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// CancelForLead cancels every pending email of the lead and returns how many were cancelled.
func (s *Service) CancelForLead(ctx context.Context, leadID string) (int, error) {
	list, err := s.enrollments.Drain(ctx, leadID)
	if err != nil {
		return 0, fmt.Errorf("load enrollments: %w", err)
	}

	now := s.clock.Now()
	cancelled := 0
	var errs []error
	for _, e := range list {
		if e.ActiveAt(now) {
			n := 0
			for _, id := range e.TaskIDs {
				if s.scheduler.Cancel(ctx, id) {
					n++
				}
			}
			cancelled += n
			s.incr(ctx, e.SequenceID, statCancelled, int64(n))
			if err := s.claims.Release(ctx, claimKey(leadID, e.SequenceID)); err != nil {
				errs = append(errs, err)
			}
			e.Cancelled = true
		}
		if err := s.enrollments.Append(ctx, leadID, e); err != nil {
			errs = append(errs, err)
		}
	}
	return cancelled, errors.Join(errs...)
}

func (s *Service) attributeConversion(ctx context.Context, leadID string) error {
	list, err := s.enrollments.Range(ctx, leadID)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	seen := make(map[string]bool)
	for _, e := range list {
		if seen[e.SequenceID] {
			continue
		}
		seen[e.SequenceID] = true
		s.incr(ctx, e.SequenceID, statConverted, 1)
	}
	return nil
}

// Analytics returns the counters of a sequence.
func (s *Service) Analytics(ctx context.Context, sequenceID string) (Stats, error) {
	if _, ok := s.catalog.Get(sequenceID); !ok {
		return Stats{}, apperr.NotFound("email sequence not found")
	}
	counters, err := s.stats.GetAll(ctx, sequenceID)
	if err != nil {
		return Stats{}, fmt.Errorf("load sequence stats: %w", err)
	}
	st := Stats{
		SequenceID: sequenceID,
		Triggered:  int(counters[statTriggered]),
		Scheduled:  int(counters[statScheduled]),
		Sent:       int(counters[statSent]),
		Skipped:    int(counters[statSkipped]),
		Failed:     int(counters[statFailed]),
		Cancelled:  int(counters[statCancelled]),
		Converted:  int(counters[statConverted]),
	}
	if st.Triggered > 0 {
		st.ConversionRate = float64(st.Converted) / float64(st.Triggered)
	}
	return st, nil
}

func (s *Service) incr(ctx context.Context, sequenceID, field string, delta int64) {
	if delta == 0 {
		return
	}
	if err := s.stats.Incr(ctx, sequenceID, field, delta); err != nil {
		s.log.Warn("failed to update sequence stats", "sequence_id", sequenceID, "field", field, "error", err)
	}
}

func (s *Service) handleDeliver(ctx context.Context, task scheduler.Task) error {
	var payload DeliverPayload
	if err := task.Decode(&payload); err != nil {
		return err
	}
	_, err := s.Deliver(ctx, payload)
	return err
}

// Deliver sends one email of an enrollment. Conditions are evaluated against
// the lead as it is now, not as it was when the sequence was triggered.
// A returned error means the delivery may be retried.
func (s *Service) Deliver(ctx context.Context, payload DeliverPayload) (string, error) {
	seq, ok := s.catalog.Get(payload.SequenceID)
	if !ok || payload.Step < 0 || payload.Step >= len(seq.Emails) {
		s.record(ctx, payload, OutcomeUnknownStep, "", nil)
		return OutcomeUnknownStep, nil
	}
	tmpl := seq.Emails[payload.Step]

	lead, err := s.leads.Get(ctx, payload.LeadID)
	if errors.Is(err, repository.ErrNotFound) {
		s.record(ctx, payload, OutcomeLeadExpired, "", nil)
		return OutcomeLeadExpired, nil
	}
	if err != nil {
		return "", err
	}

	if lead.Status.Terminal() {
		s.record(ctx, payload, OutcomeLeadClosed, "", nil)
		return OutcomeLeadClosed, nil
	}
	if !tmpl.Eligible(lead) {
		s.record(ctx, payload, OutcomeConditions, "", nil)
		return OutcomeConditions, nil
	}
	if !lead.HasEmail() {
		s.record(ctx, payload, OutcomeNoEmail, "", nil)
		return OutcomeNoEmail, nil
	}

	rendered := s.personalizer.Personalize(tmpl, lead)
	if err := s.delivery.Send(ctx, lead.Email, rendered.Subject, rendered.Body); err != nil {
		s.record(ctx, payload, OutcomeFailed, rendered.Subject, err)
		return OutcomeFailed, nil
	}
	s.record(ctx, payload, OutcomeSent, rendered.Subject, nil)
	return OutcomeSent, nil
}

func (s *Service) record(ctx context.Context, payload DeliverPayload, outcome, subject string, sendErr error) {
	switch outcome {
	case OutcomeSent:
		s.incr(ctx, payload.SequenceID, statSent, 1)
	case OutcomeFailed:
		s.incr(ctx, payload.SequenceID, statFailed, 1)
	default:
		s.incr(ctx, payload.SequenceID, statSkipped, 1)
	}

	s.log.WithContext(ctx).EmailDispatched(payload.SequenceID, payload.LeadID, payload.Step, outcome)
	s.metrics.EmailOutcome(payload.SequenceID, outcome)

	event := analytics.Event{
		Type:       analytics.EventEmailSkipped,
		Timestamp:  s.clock.Now(),
		LeadID:     payload.LeadID,
		ActionType: "email_sequence",
		Parameters: map[string]any{"sequence_id": payload.SequenceID, "step": payload.Step, "outcome": outcome},
	}
	if outcome == OutcomeSent {
		event.Type = analytics.EventEmailSent
	}
	if sendErr != nil {
		event.Error = sendErr.Error()
	}
	if s.sink != nil {
		if err := s.sink.Log(ctx, event); err != nil {
			s.log.Warn("failed to record email audit event", "error", err)
		}
	}

	if outcome == OutcomeSent && s.bus != nil {
		s.bus.Publish(ctx, events.EmailSent{
			BaseEvent:  events.NewBaseEventAt(s.clock.Now()),
			LeadID:     payload.LeadID,
			SequenceID: payload.SequenceID,
			Step:       payload.Step,
			Subject:    subject,
		})
	}
}
