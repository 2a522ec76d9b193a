// Package service implements the lead lifecycle: creation, engagement tracking,
// qualification, terminal outcomes and routing. Every mutation rescores the lead
// inside the store's per-lead update so concurrent requests never lose entries.
package service

import (
	"context"
	"errors"
	"strings"

	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/leads/recommend"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/leads/scoring"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/phone"
	"lead_funnel_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	anonymousPrefix = "anon_"
	// EmailCaptureTarget is the action target recorded when a visitor submits the capture form.
	EmailCaptureTarget = "email_capture_form"
)

var (
	ErrLeadNotFound = apperr.NotFound("lead not found")
	ErrLeadClosed   = apperr.Conflict("lead is already converted or lost")
)

// Router runs the routing rules for a stored lead.
type Router interface {
	Route(ctx context.Context, lead domain.Lead) (transport.RouteResponse, error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo    repository.LeadRepository
	Scorer  *scoring.Scorer
	Router  Router
	Bus     events.Bus
	Metrics *observability.Metrics
	Clock   clockwork.Clock
	Config  config.LeadsConfig
	Log     *logger.Logger
}

type Service struct {
	repo    repository.LeadRepository
	scorer  *scoring.Scorer
	router  Router
	bus     events.Bus
	metrics *observability.Metrics
	clock   clockwork.Clock
	cfg     config.LeadsConfig
	log     *logger.Logger
}

func New(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	scorer := deps.Scorer
	if scorer == nil {
		scorer = scoring.New(clock)
	}
	return &Service{
		repo:    deps.Repo,
		scorer:  scorer,
		router:  deps.Router,
		bus:     deps.Bus,
		metrics: deps.Metrics,
		clock:   clock,
		cfg:     deps.Config,
		log:     deps.Log,
	}
}

// CreateAnonymous creates the lead for a first page visit.
func (s *Service) CreateAnonymous(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	now := s.clock.Now()
	lead := domain.NewAnonymous(anonymousPrefix+uuid.NewString(), sanitize.Text(req.Source), now)
	s.scorer.Rescore(&lead)

	if err := s.repo.Create(ctx, lead); err != nil {
		return transport.LeadResponse{}, err
	}

	s.metrics.LeadCreated()
	s.publish(ctx, events.LeadCreated{BaseEvent: events.NewBaseEventAt(now), LeadID: lead.ID, Source: lead.Source})
	s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "source", lead.Source)

	return s.toResponse(lead), nil
}

func (s *Service) Get(ctx context.Context, id string) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.toResponse(lead), nil
}

// StartSession counts a returning visit.
func (s *Service) StartSession(ctx context.Context, id string) (transport.LeadResponse, error) {
	return s.mutate(ctx, id, func(lead *domain.Lead) error {
		lead.Engagement.SessionCount++
		return nil
	})
}

// TrackAction appends an interaction to the action log and adds its dwell time.
func (s *Service) TrackAction(ctx context.Context, id string, req transport.TrackActionRequest) (transport.LeadResponse, error) {
	return s.mutate(ctx, id, func(lead *domain.Lead) error {
		lead.Engagement.Actions = append(lead.Engagement.Actions, domain.UserAction{
			Type:      req.Type,
			Target:    sanitize.Text(req.Target),
			Timestamp: s.clock.Now(),
			Value:     sanitize.Text(req.Value),
		})
		lead.Engagement.TimeSpent += req.TimeSpent
		return nil
	})
}

// RecordContentView appends a content engagement. Its dwell time also counts
// towards the lead's total time on site.
func (s *Service) RecordContentView(ctx context.Context, id string, req transport.ContentViewRequest) (transport.LeadResponse, error) {
	return s.mutate(ctx, id, func(lead *domain.Lead) error {
		lead.Engagement.ContentViewed = append(lead.Engagement.ContentViewed, domain.ContentEngagement{
			ContentID:       strings.TrimSpace(req.ContentID),
			Type:            req.Type,
			Title:           sanitize.Text(req.Title),
			TimeSpent:       req.TimeSpent,
			Completion:      req.Completion,
			EngagementScore: req.EngagementScore,
			ViewedAt:        s.clock.Now(),
		})
		lead.Engagement.TimeSpent += req.TimeSpent
		return nil
	})
}

// CaptureEmail stores the contact details left on the capture form.
func (s *Service) CaptureEmail(ctx context.Context, id string, req transport.CaptureEmailRequest) (transport.LeadResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	firstCapture := false

	resp, err := s.mutate(ctx, id, func(lead *domain.Lead) error {
		firstCapture = !lead.HasEmail()
		lead.Email = email
		if name := sanitize.Text(req.Name); name != "" {
			lead.Name = name
		}
		if req.Phone != "" {
			lead.Phone = phone.NormalizeE164(req.Phone, s.phoneRegion())
		}
		lead.Engagement.Actions = append(lead.Engagement.Actions, domain.UserAction{
			Type:      domain.ActionClick,
			Target:    EmailCaptureTarget,
			Timestamp: s.clock.Now(),
			Value:     email,
		})
		return nil
	})
	if err != nil {
		return resp, err
	}

	if firstCapture {
		s.publish(ctx, events.LeadEmailCaptured{BaseEvent: events.NewBaseEventAt(s.clock.Now()), LeadID: id, Email: email})
	}
	return resp, nil
}

// UpdateQualification merges survey answers. Empty fields keep their previous value.
func (s *Service) UpdateQualification(ctx context.Context, id string, req transport.QualificationRequest) (transport.LeadResponse, error) {
	return s.mutate(ctx, id, func(lead *domain.Lead) error {
		if lead.Qualification == nil {
			lead.Qualification = &domain.QualificationData{}
		}
		q := lead.Qualification
		if req.ExperienceLevel != "" {
			q.ExperienceLevel = req.ExperienceLevel
		}
		if role := sanitize.Text(req.CurrentRole); role != "" {
			q.CurrentRole = role
		}
		if req.Timeline != "" {
			q.Timeline = req.Timeline
		}
		if req.Budget != "" {
			q.Budget = req.Budget
		}
		q.AddGoals(req.Goals...)
		for _, challenge := range sanitize.Texts(req.Challenges) {
			if !containsString(q.Challenges, challenge) {
				q.Challenges = append(q.Challenges, challenge)
			}
		}
		return nil
	})
}

// ApplyConversation merges what the chat advisor extracted from a message.
func (s *Service) ApplyConversation(ctx context.Context, id string, update transport.ConversationUpdate) (transport.LeadResponse, error) {
	return s.mutate(ctx, id, func(lead *domain.Lead) error {
		lead.AddInterests(update.Interests...)
		lead.AddGoals(update.Goals...)
		return nil
	})
}

// SetOutcome moves a lead into a terminal status.
func (s *Service) SetOutcome(ctx context.Context, id string, req transport.OutcomeRequest) (transport.LeadResponse, error) {
	switch req.Status {
	case domain.StatusConverted:
		return s.MarkConverted(ctx, id)
	case domain.StatusLost:
		return s.MarkLost(ctx, id, sanitize.Text(req.Reason))
	default:
		return transport.LeadResponse{}, apperr.Validation("status must be converted or lost")
	}
}

func (s *Service) MarkConverted(ctx context.Context, id string) (transport.LeadResponse, error) {
	resp, err := s.close(ctx, id, domain.StatusConverted)
	if err != nil {
		return resp, err
	}
	s.publish(ctx, events.LeadConverted{BaseEvent: events.NewBaseEventAt(s.clock.Now()), LeadID: id})
	return resp, nil
}

func (s *Service) MarkLost(ctx context.Context, id, reason string) (transport.LeadResponse, error) {
	resp, err := s.close(ctx, id, domain.StatusLost)
	if err != nil {
		return resp, err
	}
	s.publish(ctx, events.LeadLost{BaseEvent: events.NewBaseEventAt(s.clock.Now()), LeadID: id, Reason: strings.TrimSpace(reason)})
	return resp, nil
}

// Route rescores the stored lead and runs the routing rules for it.
func (s *Service) Route(ctx context.Context, id string) (transport.RouteResponse, error) {
	if s.router == nil {
		return transport.RouteResponse{}, apperr.Internal("routing is not configured")
	}
	lead, err := s.update(ctx, id, func(*domain.Lead) error { return nil })
	if err != nil {
		return transport.RouteResponse{}, err
	}
	return s.router.Route(ctx, lead)
}

// NextActions lists the operational steps for a lead without changing it.
func (s *Service) NextActions(ctx context.Context, id string) (transport.NextActionsResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.NextActionsResponse{}, err
	}
	return transport.NextActionsResponse{
		LeadID:          lead.ID,
		Status:          lead.Status,
		NextActions:     recommend.NextActions(lead),
		Recommendations: recommend.Recommend(lead),
	}, nil
}

// SweepInactive routes every open lead so time based rules such as
// re-engagement fire without a visitor request.
func (s *Service) SweepInactive(ctx context.Context) (transport.SweepResponse, error) {
	var out transport.SweepResponse
	if s.router == nil {
		return out, nil
	}

	leads, err := s.repo.List(ctx)
	if err != nil {
		return out, err
	}
	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if lead.Status.Terminal() {
			out.Skipped++
			continue
		}
		if _, err := s.Route(ctx, lead.ID); err != nil {
			out.Failed++
			s.log.WithContext(ctx).Warn("sweep routing failed", "leadId", lead.ID, "error", err)
			continue
		}
		out.Routed++
	}
	return out, nil
}

// mutate applies fn, rescores, and routes the result when auto routing is on.
func (s *Service) mutate(ctx context.Context, id string, fn repository.MutateFunc) (transport.LeadResponse, error) {
	lead, err := s.update(ctx, id, func(lead *domain.Lead) error {
		if err := fn(lead); err != nil {
			return err
		}
		lead.Engagement.LastActive = s.clock.Now()
		return nil
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	resp := s.toResponse(lead)
	if s.router != nil && s.cfg != nil && s.cfg.GetAutoRoute() && !lead.Status.Terminal() {
		routed, err := s.router.Route(ctx, lead)
		if err != nil {
			s.log.WithContext(ctx).Warn("auto routing failed", "leadId", id, "error", err)
		} else {
			resp.Routing = &routed
		}
	}
	return resp, nil
}

func (s *Service) close(ctx context.Context, id string, status domain.Status) (transport.LeadResponse, error) {
	var previous domain.Status
	lead, err := s.repo.Update(ctx, id, func(lead *domain.Lead) error {
		if lead.Status.Terminal() {
			return ErrLeadClosed
		}
		previous = lead.Status
		s.scorer.Rescore(lead)
		lead.Status = status
		lead.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return transport.LeadResponse{}, s.translate(err)
	}

	s.statusChanged(ctx, lead.ID, previous, status)
	return s.toResponse(lead), nil
}

// update runs fn and a rescore as one store mutation, then publishes the score events.
func (s *Service) update(ctx context.Context, id string, fn repository.MutateFunc) (domain.Lead, error) {
	var previous domain.Status
	lead, err := s.repo.Update(ctx, id, func(lead *domain.Lead) error {
		if err := fn(lead); err != nil {
			return err
		}
		_, previous = s.scorer.Rescore(lead)
		lead.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return domain.Lead{}, s.translate(err)
	}

	s.publish(ctx, events.LeadScored{BaseEvent: events.NewBaseEventAt(lead.UpdatedAt), LeadID: lead.ID, Score: lead.Score, Status: string(lead.Status)})
	if previous != lead.Status {
		s.statusChanged(ctx, lead.ID, previous, lead.Status)
	}
	return lead, nil
}

func (s *Service) statusChanged(ctx context.Context, id string, from, to domain.Status) {
	s.metrics.StatusChanged(string(from), string(to))
	s.publish(ctx, events.LeadStatusChanged{BaseEvent: events.NewBaseEventAt(s.clock.Now()), LeadID: id, From: string(from), To: string(to)})
	s.log.WithContext(ctx).Info("lead status changed", "leadId", id, "from", from, "to", to)
}

func (s *Service) load(ctx context.Context, id string) (domain.Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Lead{}, s.translate(err)
	}
	return lead, nil
}

func (s *Service) translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) phoneRegion() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.GetPhoneDefaultRegion()
}

func (s *Service) toResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		Email:          lead.Email,
		Name:           lead.Name,
		Phone:          lead.Phone,
		Score:          lead.Score,
		Status:         lead.Status,
		Interests:      lead.Interests,
		Engagement:     lead.Engagement,
		Qualification:  lead.Qualification,
		Source:         lead.Source,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
		ScoreBreakdown: s.scorer.Evaluate(lead),
		NextActions:    recommend.NextActions(lead),
	}
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
