// Package repository keeps lead session state. Leads live in process memory by
// default or in Redis when the scheduler worker runs as a separate process.
package repository

import (
	"context"
	"errors"

	"lead_funnel_backend/internal/leads/domain"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrAlreadyExists = errors.New("lead already exists")
)

// MutateFunc changes a lead in place. Returning an error aborts the update.
type MutateFunc func(lead *domain.Lead) error

// LeadReader provides read-only access to leads.
type LeadReader interface {
	Get(ctx context.Context, id string) (domain.Lead, error)
	List(ctx context.Context) ([]domain.Lead, error)
}

// LeadWriter provides write operations on leads.
type LeadWriter interface {
	Create(ctx context.Context, lead domain.Lead) error
	// Update applies fn atomically with respect to other updates of the same lead
	// and returns the stored result.
	Update(ctx context.Context, id string, fn MutateFunc) (domain.Lead, error)
}

// LeadRepository is the full store used by the lifecycle service.
type LeadRepository interface {
	LeadReader
	LeadWriter
}
