package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestListContract(t *testing.T) {
	_, client := newRedisClient(t)
	impls := map[string]List[note]{
		"memory": NewMemoryList[note](3),
		"redis":  NewRedisList[note](client, "notes:", 3, time.Hour),
	}

	for name, list := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"a", "b", "c", "d"} {
				if err := list.Append(ctx, "lead-1", note{ID: id, Text: "hello " + id}); err != nil {
					t.Fatalf("append %s: %v", id, err)
				}
			}

			items, err := list.Range(ctx, "lead-1")
			if err != nil {
				t.Fatalf("range: %v", err)
			}
			if len(items) != 3 || items[0].ID != "b" || items[2].ID != "d" {
				t.Fatalf("expected newest three items in order, got %+v", items)
			}

			drained, err := list.Drain(ctx, "lead-1")
			if err != nil {
				t.Fatalf("drain: %v", err)
			}
			if len(drained) != 3 {
				t.Fatalf("expected drain to return 3 items, got %d", len(drained))
			}
			after, _ := list.Range(ctx, "lead-1")
			if len(after) != 0 {
				t.Fatalf("expected empty list after drain, got %+v", after)
			}

			empty, err := list.Range(ctx, "missing")
			if err != nil || empty == nil || len(empty) != 0 {
				t.Fatalf("expected empty non-nil slice for missing key, got %v (%v)", empty, err)
			}
		})
	}
}

func TestHashContract(t *testing.T) {
	_, client := newRedisClient(t)
	impls := map[string]Hash{
		"memory": NewMemoryHash(),
		"redis":  NewRedisHash(client, "stats:"),
	}

	for name, hash := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = hash.Incr(ctx, "seq", "sent", 1)
			_ = hash.Incr(ctx, "seq", "sent", 2)
			_ = hash.Incr(ctx, "seq", "failed", 1)

			set, err := hash.SetNX(ctx, "seq", "first", 100)
			if err != nil || !set {
				t.Fatalf("expected first SetNX to win, got %v (%v)", set, err)
			}
			if again, _ := hash.SetNX(ctx, "seq", "first", 200); again {
				t.Fatal("expected second SetNX to be rejected")
			}

			all, err := hash.GetAll(ctx, "seq")
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			if all["sent"] != 3 || all["failed"] != 1 || all["first"] != 100 {
				t.Fatalf("unexpected counters %v", all)
			}

			if err := hash.Delete(ctx, "seq"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if all, _ := hash.GetAll(ctx, "seq"); len(all) != 0 {
				t.Fatalf("expected empty hash after delete, got %v", all)
			}
		})
	}
}

func TestMemoryGateExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gate := NewMemoryGate(clock)
	ctx := context.Background()

	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); ok {
		t.Fatal("expected gate to be held within the window")
	}
	if ok, _ := gate.Acquire(ctx, "lead-1:medium", time.Hour); !ok {
		t.Fatal("expected independent keys to pass")
	}

	clock.Advance(time.Hour)
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); !ok {
		t.Fatal("expected gate to reopen after the window")
	}

	_ = gate.Release(ctx, "lead-1:high")
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); !ok {
		t.Fatal("expected released gate to reopen immediately")
	}
}

func TestRedisGateExpires(t *testing.T) {
	mr, client := newRedisClient(t)
	gate := NewRedisGate(client, "gate:")
	ctx := context.Background()

	if ok, err := gate.Acquire(ctx, "lead-1:high", time.Hour); err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got %v (%v)", ok, err)
	}
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); ok {
		t.Fatal("expected gate to be held within the window")
	}

	mr.FastForward(time.Hour + time.Second)
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); !ok {
		t.Fatal("expected gate to reopen after the window")
	}

	_ = gate.Release(ctx, "lead-1:high")
	if ok, _ := gate.Acquire(ctx, "lead-1:high", time.Hour); !ok {
		t.Fatal("expected released gate to reopen immediately")
	}
}
