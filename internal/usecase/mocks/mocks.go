package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/iho/chequebook/internal/domain"
)

// FakeChequeRepository is an in-memory ChequeRepository.
// Set a *Func field to override one method.
type FakeChequeRepository struct {
	mu      sync.RWMutex
	cheques map[domain.Kind]map[string]*domain.Cheque

	CreateFunc func(ctx context.Context, cheque *domain.Cheque) error
	ListFunc   func(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error)
	SettleFunc func(ctx context.Context, kind domain.Kind, id, settledDate string) (*domain.Cheque, error)
	DeleteFunc func(ctx context.Context, kind domain.Kind, id string) error
	PingFunc   func(ctx context.Context) error
}

func NewFakeChequeRepository() *FakeChequeRepository {
	return &FakeChequeRepository{
		cheques: map[domain.Kind]map[string]*domain.Cheque{
			domain.KindOutgoing: {},
			domain.KindIncoming: {},
		},
	}
}

func (f *FakeChequeRepository) Create(ctx context.Context, cheque *domain.Cheque) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, cheque)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *cheque
	f.cheques[cheque.Kind][cheque.ID] = &c
	return nil
}

func (f *FakeChequeRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if c, ok := f.cheques[kind][id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrChequeNotFound
}

func (f *FakeChequeRepository) List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, kind)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Cheque, 0, len(f.cheques[kind]))
	for _, c := range f.cheques[kind] {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *FakeChequeRepository) Settle(ctx context.Context, kind domain.Kind, id, settledDate string) (*domain.Cheque, error) {
	if f.SettleFunc != nil {
		return f.SettleFunc(ctx, kind, id, settledDate)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cheques[kind][id]
	if !ok {
		return nil, domain.ErrChequeNotFound
	}
	if err := c.Settle(settledDate); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (f *FakeChequeRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, kind, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cheques[kind], id)
	return nil
}

func (f *FakeChequeRepository) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []domain.ChequeEvent
	Err    error
}

func (p *RecordingPublisher) Publish(ctx context.Context, event domain.ChequeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

// Types returns the published event types in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Type
	}
	return out
}
