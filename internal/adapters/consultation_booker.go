package adapters

import (
	"context"

	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/internal/routing"
)

// ConsultationBookerAdapter adapts the consultation booking service for the routing engine.
// It implements the routing.ConsultationBooker interface.
type ConsultationBookerAdapter struct {
	svc *booking.Service
}

func NewConsultationBookerAdapter(svc *booking.Service) *ConsultationBookerAdapter {
	return &ConsultationBookerAdapter{svc: svc}
}

// Reserve holds a consultation slot. A lead that already holds a pending
// booking keeps it and the action is reported as declined.
func (a *ConsultationBookerAdapter) Reserve(ctx context.Context, lead domain.Lead, bookingType, consultantType, message string) (bool, error) {
	_, created, err := a.svc.Reserve(ctx, lead, bookingType, consultantType, message)
	return created, err
}

var _ routing.ConsultationBooker = (*ConsultationBookerAdapter)(nil)
