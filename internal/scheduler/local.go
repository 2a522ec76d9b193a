package scheduler

import (
	"container/heap"
	"context"
	"strconv"
	"sync"
	"time"

	"lead_funnel_backend/platform/logger"

	"github.com/jonboulle/clockwork"
)

type localEntry struct {
	id       string
	seq      uint64
	due      time.Time
	task     Task
	index    int
	canceled bool
}

// entryQueue is a min-heap on (due, seq) so equal due times keep scheduling order.
type entryQueue []*localEntry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*localEntry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// Local runs tasks inside the process. Nothing happens until RunDue is called,
// either by tests after advancing a fake clock or by Run in production.
type Local struct {
	clock clockwork.Clock
	mux   *Mux
	log   *logger.Logger

	mu    sync.Mutex
	queue entryQueue
	byID  map[string]*localEntry
	seq   uint64
	wake  chan struct{}
}

// NewLocal creates an in-process scheduler dispatching through mux.
func NewLocal(clock clockwork.Clock, mux *Mux, log *logger.Logger) *Local {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Local{
		clock: clock,
		mux:   mux,
		log:   log,
		byID:  make(map[string]*localEntry),
		wake:  make(chan struct{}, 1),
	}
}

type localHandle struct {
	id    string
	owner *Local
}

func (h localHandle) ID() string { return h.id }

func (h localHandle) Cancel() bool { return h.owner.cancel(h.id) }

// Schedule queues task to run once delay has elapsed on the scheduler's clock.
func (l *Local) Schedule(_ context.Context, task Task, delay time.Duration) (Handle, error) {
	if delay < 0 {
		delay = 0
	}

	l.mu.Lock()
	l.seq++
	entry := &localEntry{
		id:   "local-" + strconv.FormatUint(l.seq, 10),
		seq:  l.seq,
		due:  l.clock.Now().Add(delay),
		task: task,
	}
	heap.Push(&l.queue, entry)
	l.byID[entry.id] = entry
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return localHandle{id: entry.id, owner: l}, nil
}

// Cancel removes a pending task by id.
func (l *Local) Cancel(_ context.Context, id string) bool {
	return l.cancel(id)
}

func (l *Local) cancel(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.byID[id]
	if !ok || entry.canceled {
		return false
	}
	entry.canceled = true
	delete(l.byID, id)
	if entry.index >= 0 {
		heap.Remove(&l.queue, entry.index)
	}
	return true
}

// Pending returns the number of tasks waiting to run.
func (l *Local) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}

// RunDue executes every task whose due time has passed, in due order, and
// returns how many ran. Tasks scheduled by handlers run in the same call if
// they are already due. Handler errors are logged; there is no retry.
func (l *Local) RunDue(ctx context.Context) int {
	ran := 0
	for {
		entry := l.popDue()
		if entry == nil {
			return ran
		}
		ran++
		if err := l.mux.Dispatch(ctx, entry.task); err != nil {
			l.log.Error("scheduled task failed", "task", entry.task.Type, "id", entry.id, "error", err)
		}
	}
}

func (l *Local) popDue() *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	next := l.queue[0]
	if next.due.After(l.clock.Now()) {
		return nil
	}
	heap.Pop(&l.queue)
	delete(l.byID, next.id)
	return next
}

func (l *Local) nextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return time.Time{}, false
	}
	return l.queue[0].due, true
}

// Run executes tasks as they become due until ctx is cancelled. It sleeps until
// the earliest due time, at most maxWait, and wakes early when a task is scheduled.
func (l *Local) Run(ctx context.Context, maxWait time.Duration) {
	for {
		l.RunDue(ctx)

		wait := maxWait
		if due, ok := l.nextDue(); ok {
			if until := due.Sub(l.clock.Now()); until < wait {
				wait = until
			}
		}
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		case <-l.clock.After(wait):
		}
	}
}

var _ Scheduler = (*Local)(nil)
