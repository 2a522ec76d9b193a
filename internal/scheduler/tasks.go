// Package scheduler runs delayed work. Callers schedule a Task and get back a
// Handle that can cancel it until it runs. Two implementations exist: Local
// keeps tasks in process and runs them against an injectable clock; Client
// hands them to asynq so the scheduler worker process executes them.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Task is a unit of delayed work: a type routed through the Mux plus a JSON payload.
type Task struct {
	Type    string
	Payload []byte
}

// NewTask encodes payload as the task body.
func NewTask(taskType string, payload any) (Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	return Task{Type: taskType, Payload: data}, nil
}

// Decode unmarshals the task body into v.
func (t Task) Decode(v any) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

// Handle refers to a scheduled task.
type Handle interface {
	ID() string
	// Cancel prevents the task from running. It reports whether the task was still pending.
	Cancel() bool
}

// Scheduler accepts tasks to run after a delay.
type Scheduler interface {
	Schedule(ctx context.Context, task Task, delay time.Duration) (Handle, error)
	// Cancel removes a pending task by id, possibly scheduled by another
	// process. It reports whether the task was still pending.
	Cancel(ctx context.Context, id string) bool
}

// HandlerFunc executes a task.
type HandlerFunc func(ctx context.Context, task Task) error

// Mux routes tasks to handlers by type.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[string]HandlerFunc)}
}

// HandleFunc registers fn for taskType, replacing any previous handler.
func (m *Mux) HandleFunc(taskType string, fn HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[taskType] = fn
}

// Dispatch runs the handler registered for the task's type.
func (m *Mux) Dispatch(ctx context.Context, task Task) error {
	m.mu.RLock()
	fn, ok := m.handlers[task.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for task type %q", task.Type)
	}
	return fn(ctx, task)
}

// Types lists the registered task types in sorted order.
func (m *Mux) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handlers))
	for taskType := range m.handlers {
		out = append(out, taskType)
	}
	sort.Strings(out)
	return out
}
