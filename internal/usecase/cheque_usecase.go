package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/domain"
)

// ChequeUseCase handles cheque business logic over the durable store.
type ChequeUseCase struct {
	repo      ChequeRepository
	idGen     IDGenerator
	publisher EventPublisher
	metrics   Metrics
	clock     domain.Clock
	logger    zerolog.Logger
}

// ChequeOption configures optional collaborators of a ChequeUseCase.
type ChequeOption func(*ChequeUseCase)

// WithPublisher publishes lifecycle events after each durable change.
func WithPublisher(p EventPublisher) ChequeOption {
	return func(uc *ChequeUseCase) { uc.publisher = p }
}

// WithMetrics records lifecycle counters.
func WithMetrics(m Metrics) ChequeOption {
	return func(uc *ChequeUseCase) { uc.metrics = m }
}

// WithClock overrides the clock used to stamp dates.
func WithClock(c domain.Clock) ChequeOption {
	return func(uc *ChequeUseCase) { uc.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ChequeOption {
	return func(uc *ChequeUseCase) { uc.logger = l }
}

// NewChequeUseCase creates a new ChequeUseCase.
func NewChequeUseCase(repo ChequeRepository, idGen IDGenerator, opts ...ChequeOption) *ChequeUseCase {
	uc := &ChequeUseCase{
		repo:   repo,
		idGen:  idGen,
		clock:  domain.SystemClock,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateCheque validates a draft and stores it as a pending cheque.
func (uc *ChequeUseCase) CreateCheque(ctx context.Context, kind domain.Kind, draft domain.Draft) (*domain.Cheque, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if err := domain.ValidateDraft(kind, draft); err != nil {
		return nil, err
	}

	now := uc.clock()
	cheque := domain.NewCheque(kind, uc.idGen.Generate(), draft, now.UTC())

	if err := uc.repo.Create(ctx, cheque); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ChequeCreated(kind)
	}
	uc.publish(ctx, domain.NewChequeEvent(domain.EventTypeChequeCreated, cheque, now))

	return cheque, nil
}

// GetCheque retrieves a cheque by kind and ID.
func (uc *ChequeUseCase) GetCheque(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	return uc.repo.GetByID(ctx, kind, id)
}

// ListCheques lists every cheque of a kind, newest first.
func (uc *ChequeUseCase) ListCheques(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return uc.repo.List(ctx, kind)
}

// SettleCheque completes an outgoing cheque or deposits an incoming one,
// stamping today's date. A cheque settles at most once.
func (uc *ChequeUseCase) SettleCheque(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	now := uc.clock()
	cheque, err := uc.repo.Settle(ctx, kind, id, domain.Today(now))
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ChequeSettled(kind)
	}
	uc.publish(ctx, domain.NewChequeEvent(domain.SettledEventType(kind), cheque, now))

	return cheque, nil
}

// DeleteCheque removes a cheque in any state. Absent ids are ignored.
func (uc *ChequeUseCase) DeleteCheque(ctx context.Context, kind domain.Kind, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, kind, id); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ChequeDeleted(kind)
	}
	uc.publish(ctx, domain.NewChequeEvent(domain.EventTypeChequeDeleted, &domain.Cheque{ID: id, Kind: kind}, uc.clock()))

	return nil
}

// publish never fails the caller; the durable change already happened.
func (uc *ChequeUseCase) publish(ctx context.Context, event domain.ChequeEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("event_type", event.Type).
			Str("cheque_id", event.ChequeID).
			Msg("failed to publish cheque event")
	}
}
