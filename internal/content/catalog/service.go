package catalog

import (
	"context"
	"fmt"
	"time"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/jonboulle/clockwork"
)

// MaxSetsPerLead bounds the recommendation history kept per lead.
const MaxSetsPerLead = 20

// RecommendationSet is one batch of content sent to a lead.
type RecommendationSet struct {
	LeadID string    `json:"leadId"`
	Type   string    `json:"recommendationType"`
	Items  []Item    `json:"items"`
	SentAt time.Time `json:"sentAt"`
}

// Service picks unseen catalogue items for leads and records what was sent.
type Service struct {
	catalog *Catalog
	sets    store.List[RecommendationSet]
	clock   clockwork.Clock
	log     *logger.Logger
}

// NewService creates a Service. A nil list keeps recommendations in process memory.
func NewService(catalog *Catalog, sets store.List[RecommendationSet], clock clockwork.Clock, log *logger.Logger) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if sets == nil {
		sets = store.NewMemoryList[RecommendationSet](MaxSetsPerLead)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{catalog: catalog, sets: sets, clock: clock, log: log}
}

func (s *Service) Catalog() *Catalog { return s.catalog }

// Send records up to count unseen items for lead. It reports false when the
// lead has already seen everything in the catalogue.
func (s *Service) Send(ctx context.Context, lead domain.Lead, count int, recommendationType string) (RecommendationSet, bool, error) {
	items := s.catalog.Unseen(lead, count)
	if len(items) == 0 {
		return RecommendationSet{}, false, nil
	}

	set := RecommendationSet{LeadID: lead.ID, Type: recommendationType, Items: items, SentAt: s.clock.Now()}
	if err := s.sets.Append(ctx, lead.ID, set); err != nil {
		return RecommendationSet{}, false, fmt.Errorf("store recommendations: %w", err)
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	s.log.WithContext(ctx).Info("content recommendations sent",
		"lead_id", lead.ID,
		"email", lead.Email,
		"type", recommendationType,
		"titles", titles,
	)
	return set, true, nil
}

// History returns every recommendation set sent to the lead, oldest first.
func (s *Service) History(ctx context.Context, leadID string) ([]RecommendationSet, error) {
	return s.sets.Range(ctx, leadID)
}
