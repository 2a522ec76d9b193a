package adapters

import (
	"context"

	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/routing"
)

// ContentRecommenderAdapter adapts the content catalog service for the routing engine.
// It implements the routing.ContentRecommender interface.
type ContentRecommenderAdapter struct {
	svc *catalog.Service
}

func NewContentRecommenderAdapter(svc *catalog.Service) *ContentRecommenderAdapter {
	return &ContentRecommenderAdapter{svc: svc}
}

// RecommendContent sends a set of unseen catalog items. It reports false when
// the lead has already seen everything.
func (a *ContentRecommenderAdapter) RecommendContent(ctx context.Context, lead domain.Lead, count int, recommendationType string) (bool, error) {
	_, sent, err := a.svc.Send(ctx, lead, count, recommendationType)
	return sent, err
}

var _ routing.ContentRecommender = (*ContentRecommenderAdapter)(nil)
