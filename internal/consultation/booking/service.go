// Package booking holds consultation slots reserved for leads until a
// consultant confirms them.
package booking

import (
	"context"
	"fmt"
	"time"

	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// HoldWindow is how long a reservation stays pending before a new one may be made.
	HoldWindow = 48 * time.Hour

	MaxBookingsPerLead = 20
)

// Status of a booking.
type Status string

const (
	StatusPending Status = "pending"
	StatusExpired Status = "expired"
)

// Booking is a consultation slot held for a lead.
type Booking struct {
	ID             string    `json:"id"`
	LeadID         string    `json:"leadId"`
	BookingType    string    `json:"bookingType"`
	ConsultantType string    `json:"consultantType"`
	Message        string    `json:"message,omitempty"`
	Priority       bool      `json:"priority"`
	CreatedAt      time.Time `json:"createdAt"`
	HoldUntil      time.Time `json:"holdUntil"`
	Status         Status    `json:"status"`
}

// statusAt derives the status from the hold window; bookings are never rewritten.
func (b Booking) statusAt(now time.Time) Status {
	if now.Before(b.HoldUntil) {
		return StatusPending
	}
	return StatusExpired
}

// Service reserves consultation slots, one pending reservation per lead.
type Service struct {
	bookings store.List[Booking]
	holds    store.Gate
	clock    clockwork.Clock
	bus      events.Bus
	log      *logger.Logger
}

// Deps groups the collaborators of Service. Nil stores fall back to process memory.
type Deps struct {
	Bookings store.List[Booking]
	Holds    store.Gate
	Clock    clockwork.Clock
	Bus      events.Bus
	Log      *logger.Logger
}

func NewService(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if deps.Bookings == nil {
		deps.Bookings = store.NewMemoryList[Booking](MaxBookingsPerLead)
	}
	if deps.Holds == nil {
		deps.Holds = store.NewMemoryGate(clock)
	}
	return &Service{bookings: deps.Bookings, holds: deps.Holds, clock: clock, bus: deps.Bus, log: deps.Log}
}

// Reserve holds a slot for lead. While an earlier reservation is still pending
// it is returned instead and created reports false.
func (s *Service) Reserve(ctx context.Context, lead domain.Lead, bookingType, consultantType, message string) (Booking, bool, error) {
	held, err := s.holds.Acquire(ctx, lead.ID, HoldWindow)
	if err != nil {
		return Booking{}, false, fmt.Errorf("consultation hold: %w", err)
	}
	if !held {
		existing, err := s.pending(ctx, lead.ID)
		return existing, false, err
	}

	now := s.clock.Now()
	booking := Booking{
		ID:             uuid.NewString(),
		LeadID:         lead.ID,
		BookingType:    bookingType,
		ConsultantType: consultantType,
		Message:        message,
		Priority:       bookingType == "priority",
		CreatedAt:      now,
		HoldUntil:      now.Add(HoldWindow),
		Status:         StatusPending,
	}
	if err := s.bookings.Append(ctx, lead.ID, booking); err != nil {
		_ = s.holds.Release(ctx, lead.ID)
		return Booking{}, false, fmt.Errorf("store booking: %w", err)
	}

	s.log.WithContext(ctx).Info("consultation reserved",
		"lead_id", lead.ID,
		"booking_id", booking.ID,
		"booking_type", bookingType,
		"consultant_type", consultantType,
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ConsultationReserved{
			BaseEvent:      events.NewBaseEventAt(now),
			LeadID:         lead.ID,
			BookingID:      booking.ID,
			BookingType:    bookingType,
			ConsultantType: consultantType,
		})
	}
	return booking, true, nil
}

// ListForLead returns the lead's bookings, oldest first, with their current status.
func (s *Service) ListForLead(ctx context.Context, leadID string) ([]Booking, error) {
	bookings, err := s.bookings.Range(ctx, leadID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range bookings {
		bookings[i].Status = bookings[i].statusAt(now)
	}
	return bookings, nil
}

func (s *Service) pending(ctx context.Context, leadID string) (Booking, error) {
	bookings, err := s.ListForLead(ctx, leadID)
	if err != nil {
		return Booking{}, err
	}
	for i := len(bookings) - 1; i >= 0; i-- {
		if bookings[i].Status == StatusPending {
			return bookings[i], nil
		}
	}
	return Booking{}, nil
}
