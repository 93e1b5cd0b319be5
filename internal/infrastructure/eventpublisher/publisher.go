package eventpublisher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/domain"
)

// ErrBufferFull is returned by Dispatcher.Publish when the queue is full.
var ErrBufferFull = errors.New("event buffer full")

// Publisher delivers a single event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event domain.ChequeEvent) error
}

// Recorder counts publish attempts. *metrics.Metrics satisfies it.
type Recorder interface {
	EventPublished(eventType string, err error)
}

// Dispatcher decouples request handling from event delivery: Publish only
// enqueues, and Start drains the queue into the underlying Publisher.
type Dispatcher struct {
	publisher Publisher
	recorder  Recorder
	logger    zerolog.Logger
	queue     chan domain.ChequeEvent
	timeout   time.Duration
}

// Config for Dispatcher.
type Config struct {
	Publisher  Publisher
	Recorder   Recorder // optional
	Logger     zerolog.Logger
	BufferSize int           // Number of events queued before Publish drops
	Timeout    time.Duration // Per-event delivery timeout
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Dispatcher{
		publisher: cfg.Publisher,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		queue:     make(chan domain.ChequeEvent, cfg.BufferSize),
		timeout:   cfg.Timeout,
	}
}

// Publish enqueues event without blocking.
func (d *Dispatcher) Publish(ctx context.Context, event domain.ChequeEvent) error {
	select {
	case d.queue <- event:
		return nil
	default:
		d.record(event.Type, ErrBufferFull)
		return ErrBufferFull
	}
}

// Start delivers queued events until ctx is cancelled, then flushes what is
// already queued on a fresh context.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Int("buffer_size", cap(d.queue)).
		Dur("timeout", d.timeout).
		Msg("event dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.flush()
			d.logger.Info().Msg("event dispatcher shutting down")
			return ctx.Err()
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.ChequeEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.publisher.Publish(ctx, event)
	d.record(event.Type, err)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("event_type", event.Type).
			Str("cheque_id", event.ChequeID).
			Msg("failed to publish event")
		return
	}

	d.logger.Debug().
		Str("event_type", event.Type).
		Str("cheque_id", event.ChequeID).
		Msg("event published")
}

func (d *Dispatcher) record(eventType string, err error) {
	if d.recorder != nil {
		d.recorder.EventPublished(eventType, err)
	}
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event domain.ChequeEvent) error {
	p.logger.Info().
		Str("event_type", event.Type).
		Str("kind", string(event.Kind)).
		Str("cheque_id", event.ChequeID).
		Str("cheque_number", event.Number).
		Str("bank_name", event.Bank).
		Str("amount", event.Amount).
		Str("date", event.Date).
		Time("occurred_at", event.OccurredAt).
		Msg("cheque event")

	return nil
}
