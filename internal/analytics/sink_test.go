package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lead_funnel_backend/platform/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type failingSink struct{ err error }

func (s failingSink) Log(context.Context, Event) error { return s.err }

func TestKafkaSinkKeysByLead(t *testing.T) {
	writer := &fakeWriter{}
	sink := newKafkaSinkWithWriter(writer, "funnel.routing.audit")

	event := Event{
		Type:       EventActionScheduled,
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		LeadID:     "anon_42",
		RuleID:     "hot_lead_immediate",
		ActionType: "sales_notification",
	}
	if err := sink.Log(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "anon_42" {
		t.Fatalf("expected lead id key, got %q", msg.Key)
	}
	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("expected JSON payload: %v", err)
	}
	if decoded.RuleID != "hot_lead_immediate" || decoded.Type != EventActionScheduled {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestKafkaSinkWrapsWriteError(t *testing.T) {
	sink := newKafkaSinkWithWriter(&fakeWriter{err: errors.New("broker down")}, "audit")
	if err := sink.Log(context.Background(), Event{LeadID: "x"}); err == nil {
		t.Fatal("expected write error")
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	sink := MultiSink{NewLogSink(logger.Nop()), failingSink{first}, failingSink{second}}

	err := sink.Log(context.Background(), Event{LeadID: "x"})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both errors, got %v", err)
	}
}
