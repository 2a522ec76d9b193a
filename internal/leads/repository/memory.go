package repository

import (
	"context"
	"sort"
	"sync"

	"lead_funnel_backend/internal/leads/domain"
)

// Memory is a process-local lead store. Every lead has its own lock so updates
// to one lead are serialised without blocking others.
type Memory struct {
	mu    sync.RWMutex
	leads map[string]*memoryEntry
}

type memoryEntry struct {
	mu   sync.Mutex
	lead domain.Lead
}

func NewMemory() *Memory {
	return &Memory{leads: make(map[string]*memoryEntry)}
}

func (m *Memory) Create(_ context.Context, lead domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.leads[lead.ID]; exists {
		return ErrAlreadyExists
	}
	m.leads[lead.ID] = &memoryEntry{lead: lead.Clone()}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.Lead, error) {
	entry, ok := m.entry(id)
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.lead.Clone(), nil
}

func (m *Memory) List(_ context.Context) ([]domain.Lead, error) {
	m.mu.RLock()
	entries := make([]*memoryEntry, 0, len(m.leads))
	for _, entry := range m.leads {
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	out := make([]domain.Lead, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, entry.lead.Clone())
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Update(_ context.Context, id string, fn MutateFunc) (domain.Lead, error) {
	entry, ok := m.entry(id)
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.lead.Clone()
	if err := fn(&working); err != nil {
		return domain.Lead{}, err
	}
	entry.lead = working
	return working.Clone(), nil
}

func (m *Memory) entry(id string) (*memoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.leads[id]
	return entry, ok
}

var _ LeadRepository = (*Memory)(nil)
