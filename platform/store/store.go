// Package store provides small shared-state primitives (append-only lists,
// counter hashes and dedupe gates) with in-memory and Redis implementations.
// Modules use them for state that the API and the scheduler worker must both see.
// This is part of the platform layer and contains no business logic.
package store

import (
	"context"
	"time"
)

// List is a keyed, append-only list of JSON-serialisable items.
type List[T any] interface {
	Append(ctx context.Context, key string, item T) error
	// Range returns the items of key in append order.
	Range(ctx context.Context, key string) ([]T, error)
	// Drain returns and removes the items of key.
	Drain(ctx context.Context, key string) ([]T, error)
}

// Hash is a keyed set of integer fields.
type Hash interface {
	Incr(ctx context.Context, key, field string, delta int64) error
	// SetNX sets field only when it is absent and reports whether it did.
	SetNX(ctx context.Context, key, field string, value int64) (bool, error)
	GetAll(ctx context.Context, key string) (map[string]int64, error)
	Delete(ctx context.Context, key string) error
}

// Gate lets one caller per key through within a time window.
type Gate interface {
	// Acquire reports true when key was free and claims it for ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key before its window ends.
	Release(ctx context.Context, key string) error
}
