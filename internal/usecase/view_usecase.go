package usecase

import (
	"context"

	"github.com/iho/chequebook/internal/domain"
)

// ViewUseCase computes read-only views over the durable store.
type ViewUseCase struct {
	repo  ChequeRepository
	clock domain.Clock
}

// NewViewUseCase creates a new ViewUseCase.
func NewViewUseCase(repo ChequeRepository, clock domain.Clock) *ViewUseCase {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &ViewUseCase{repo: repo, clock: clock}
}

// Snapshot holds both collections as read at one point.
type Snapshot struct {
	Today    string
	Outgoing []domain.Cheque
	Incoming []domain.Cheque
}

// Of returns the collection of kind.
func (s Snapshot) Of(kind domain.Kind) []domain.Cheque {
	if kind == domain.KindIncoming {
		return s.Incoming
	}
	return s.Outgoing
}

// Snapshot loads both collections.
func (uc *ViewUseCase) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Today: domain.Today(uc.clock())}

	for _, kind := range domain.Kinds {
		records, err := uc.load(ctx, kind)
		if err != nil {
			return Snapshot{}, err
		}
		if kind == domain.KindIncoming {
			snap.Incoming = records
		} else {
			snap.Outgoing = records
		}
	}
	return snap, nil
}

// Active lists pending cheques of a kind matching the filter.
func (uc *ViewUseCase) Active(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]domain.Cheque, error) {
	if err := domain.ValidateFilterStatus(filter.Status); err != nil {
		return nil, err
	}
	records, err := uc.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return domain.FilterActive(domain.Active(records), filter, domain.Today(uc.clock())), nil
}

// History lists settled cheques of a kind.
func (uc *ViewUseCase) History(ctx context.Context, kind domain.Kind) ([]domain.Cheque, error) {
	records, err := uc.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return domain.History(records), nil
}

// Summary computes dashboard figures for both collections.
func (uc *ViewUseCase) Summary(ctx context.Context) (domain.Summary, error) {
	snap, err := uc.Snapshot(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(snap.Outgoing, snap.Incoming, snap.Today), nil
}

// DueToday lists pending cheques of both kinds whose due date is today.
func (uc *ViewUseCase) DueToday(ctx context.Context) ([]domain.Cheque, error) {
	snap, err := uc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	due := domain.DueToday(snap.Outgoing, snap.Today)
	return append(due, domain.DueToday(snap.Incoming, snap.Today)...), nil
}

func (uc *ViewUseCase) load(ctx context.Context, kind domain.Kind) ([]domain.Cheque, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	ptrs, err := uc.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Cheque, len(ptrs))
	for i, c := range ptrs {
		records[i] = *c
	}
	return records, nil
}
