package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryList keeps items in process memory. A positive maxLen keeps only the newest items.
type MemoryList[T any] struct {
	mu     sync.Mutex
	items  map[string][]T
	maxLen int
}

func NewMemoryList[T any](maxLen int) *MemoryList[T] {
	return &MemoryList[T]{items: make(map[string][]T), maxLen: maxLen}
}

func (l *MemoryList[T]) Append(_ context.Context, key string, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := append(l.items[key], item)
	if l.maxLen > 0 && len(items) > l.maxLen {
		items = slices.Clone(items[len(items)-l.maxLen:])
	}
	l.items[key] = items
	return nil
}

func (l *MemoryList[T]) Range(_ context.Context, key string) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := slices.Clone(l.items[key])
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (l *MemoryList[T]) Drain(_ context.Context, key string) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items[key]
	delete(l.items, key)
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// MemoryHash keeps counters in process memory.
type MemoryHash struct {
	mu     sync.Mutex
	fields map[string]map[string]int64
}

func NewMemoryHash() *MemoryHash {
	return &MemoryHash{fields: make(map[string]map[string]int64)}
}

func (h *MemoryHash) Incr(_ context.Context, key, field string, delta int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entryLocked(key)[field] += delta
	return nil
}

func (h *MemoryHash) SetNX(_ context.Context, key, field string, value int64) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.entryLocked(key)
	if _, exists := entry[field]; exists {
		return false, nil
	}
	entry[field] = value
	return true, nil
}

func (h *MemoryHash) GetAll(_ context.Context, key string) (map[string]int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := maps.Clone(h.fields[key])
	if out == nil {
		out = map[string]int64{}
	}
	return out, nil
}

func (h *MemoryHash) Delete(_ context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.fields, key)
	return nil
}

func (h *MemoryHash) entryLocked(key string) map[string]int64 {
	entry, ok := h.fields[key]
	if !ok {
		entry = make(map[string]int64)
		h.fields[key] = entry
	}
	return entry
}

// MemoryGate expires claims against an injectable clock.
type MemoryGate struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	expires map[string]time.Time
}

func NewMemoryGate(clock clockwork.Clock) *MemoryGate {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryGate{clock: clock, expires: make(map[string]time.Time)}
}

func (g *MemoryGate) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	if until, held := g.expires[key]; held && now.Before(until) {
		return false, nil
	}
	g.expires[key] = now.Add(ttl)
	return true, nil
}

func (g *MemoryGate) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.expires, key)
	return nil
}

var (
	_ List[struct{}] = (*MemoryList[struct{}])(nil)
	_ Hash           = (*MemoryHash)(nil)
	_ Gate           = (*MemoryGate)(nil)
)
