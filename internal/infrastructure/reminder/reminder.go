package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/usecase"
)

// DueLister lists pending cheques of both kinds due today.
type DueLister interface {
	DueToday(ctx context.Context) ([]domain.Cheque, error)
}

// Recorder receives reminder figures. *metrics.Metrics satisfies it.
type Recorder interface {
	DueToday(kind domain.Kind, n int)
	ReminderRun(ok bool)
}

// Worker periodically announces cheques due today.
type Worker struct {
	lister    DueLister
	publisher usecase.EventPublisher
	recorder  Recorder
	logger    zerolog.Logger
	interval  time.Duration
	clock     domain.Clock
}

// Config for Worker.
type Config struct {
	Lister    DueLister
	Publisher usecase.EventPublisher // optional
	Recorder  Recorder               // optional
	Logger    zerolog.Logger
	Interval  time.Duration
	Clock     domain.Clock
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock
	}

	return &Worker{
		lister:    cfg.Lister,
		publisher: cfg.Publisher,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		clock:     cfg.Clock,
	}
}

// Start runs a pass immediately and then every interval until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("due reminder started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("due reminder shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Error().Err(err).Msg("due reminder pass failed")
	}
}

// RunOnce lists cheques due today, records and announces them.
// It returns the number of cheques found.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	due, err := w.lister.DueToday(ctx)
	if err != nil {
		if w.recorder != nil {
			w.recorder.ReminderRun(false)
		}
		return 0, err
	}

	counts := map[domain.Kind]int{}
	for _, c := range due {
		counts[c.Kind]++
	}
	if w.recorder != nil {
		for _, kind := range domain.Kinds {
			w.recorder.DueToday(kind, counts[kind])
		}
		w.recorder.ReminderRun(true)
	}

	if len(due) == 0 {
		w.logger.Debug().Msg("no cheques due today")
		return 0, nil
	}

	w.logger.Warn().
		Int("outgoing", counts[domain.KindOutgoing]).
		Int("incoming", counts[domain.KindIncoming]).
		Msg("cheques due today")

	if w.publisher == nil {
		return len(due), nil
	}

	now := w.clock()
	for i := range due {
		event := domain.NewChequeEvent(domain.EventTypeChequeDue, &due[i], now)
		if err := w.publisher.Publish(ctx, event); err != nil {
			w.logger.Warn().
				Err(err).
				Str("cheque_id", event.ChequeID).
				Msg("failed to publish due reminder")
		}
	}

	return len(due), nil
}
