package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/domain"
)

func TestDispatcherDeliversQueuedEvents(t *testing.T) {
	pub := &stubPublisher{}
	rec := &stubRecorder{}
	d := newTestDispatcher(pub, rec, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	for _, id := range []string{"evt-1", "evt-2"} {
		if err := d.Publish(ctx, domain.ChequeEvent{Type: domain.EventTypeChequeCreated, ChequeID: id}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	waitFor(t, func() bool { return len(pub.snapshot()) == 2 })
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}

	if rec.count("ok") != 2 {
		t.Fatalf("expected two recorded deliveries, got %#v", rec.outcomes)
	}
}

func TestDispatcherContinuesOnPublishError(t *testing.T) {
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	rec := &stubRecorder{}
	d := newTestDispatcher(pub, rec, 4)

	ctx := context.Background()
	_ = d.Publish(ctx, domain.ChequeEvent{Type: "t", ChequeID: "evt-1"})
	_ = d.Publish(ctx, domain.ChequeEvent{Type: "t", ChequeID: "evt-2"})
	d.flush()

	published := pub.snapshot()
	if len(published) != 1 || published[0].ChequeID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", published)
	}
	if rec.count("error") != 1 || rec.count("ok") != 1 {
		t.Fatalf("unexpected outcomes %#v", rec.outcomes)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	rec := &stubRecorder{}
	d := newTestDispatcher(&stubPublisher{}, rec, 1)

	ctx := context.Background()
	if err := d.Publish(ctx, domain.ChequeEvent{Type: "t", ChequeID: "a"}); err != nil {
		t.Fatalf("first publish must queue, got %v", err)
	}
	if err := d.Publish(ctx, domain.ChequeEvent{Type: "t", ChequeID: "b"}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
}

func TestStartFlushesOnCancel(t *testing.T) {
	pub := &stubPublisher{}
	d := newTestDispatcher(pub, nil, 4)

	_ = d.Publish(context.Background(), domain.ChequeEvent{Type: "t", ChequeID: "late"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = d.Start(ctx)

	if len(pub.snapshot()) != 1 {
		t.Fatalf("expected queued event to be flushed on shutdown")
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), domain.ChequeEvent{
		Type:     domain.EventTypeChequeDeposited,
		Kind:     domain.KindIncoming,
		ChequeID: "01HQ3Z8E6Y5V7N2K4M9P0R1S2T",
		Amount:   "10.50",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"event_type":"cheque.deposited"`) || !strings.Contains(out, `"amount":"10.50"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}

func TestAMQPPublisherRoutesByEventType(t *testing.T) {
	ch := &stubChannel{}
	p := newAMQPPublisher(ch, "chequebook.events", zerolog.Nop())

	event := domain.ChequeEvent{
		Type:       domain.EventTypeChequeDue,
		Kind:       domain.KindOutgoing,
		ChequeID:   "01HQ3Z8E6Y5V7N2K4M9P0R1S2T",
		OccurredAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if ch.exchange != "chequebook.events" || ch.key != domain.EventTypeChequeDue {
		t.Fatalf("unexpected routing exchange=%s key=%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent || ch.msg.ContentType != "application/json" {
		t.Fatalf("unexpected message properties %+v", ch.msg)
	}

	var decoded domain.ChequeEvent
	if err := json.Unmarshal(ch.msg.Body, &decoded); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if decoded.ChequeID != event.ChequeID || decoded.Kind != domain.KindOutgoing {
		t.Fatalf("unexpected body %+v", decoded)
	}
}

func TestAMQPPublisherWrapsBrokerError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	p := newAMQPPublisher(&stubChannel{err: brokerErr}, "x", zerolog.Nop())

	err := p.Publish(context.Background(), domain.ChequeEvent{Type: "t"})
	if !errors.Is(err, brokerErr) {
		t.Fatalf("expected broker error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func newTestDispatcher(pub *stubPublisher, rec *stubRecorder, buffer int) *Dispatcher {
	cfg := Config{
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BufferSize: buffer,
		Timeout:    time.Second,
	}
	if rec != nil {
		cfg.Recorder = rec
	}
	return NewDispatcher(cfg)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

type stubPublisher struct {
	mu         sync.Mutex
	published  []domain.ChequeEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event domain.ChequeEvent) error {
	if err := s.errorsByID[event.ChequeID]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) snapshot() []domain.ChequeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChequeEvent(nil), s.published...)
}

type stubRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *stubRecorder) EventPublished(eventType string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.outcomes = append(r.outcomes, "error")
		return
	}
	r.outcomes = append(r.outcomes, "ok")
}

func (r *stubRecorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.outcomes {
		if o == outcome {
			n++
		}
	}
	return n
}

type stubChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *stubChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *stubChannel) Close() error { return nil }
