// Package ledger keeps a local snapshot of both cheque collections and applies
// lifecycle operations against a durable remote, falling back to the snapshot
// when the remote cannot be reached.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/domain"
)

// Remote is the durable collaborator, usually the REST API.
// Transport failures must wrap domain.ErrCollaboratorUnavailable.
type Remote interface {
	Create(ctx context.Context, kind domain.Kind, draft domain.Draft) (*domain.Cheque, error)
	List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error)
	Transition(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error)
	Delete(ctx context.Context, kind domain.Kind, id string) error
}

// Result is the outcome of a mutating operation.
// AppliedRemotely is false when only the local snapshot changed.
type Result struct {
	Cheque          domain.Cheque
	AppliedRemotely bool
}

// Ledger is the client-side cheque store.
type Ledger struct {
	mu          sync.Mutex
	collections map[domain.Kind][]domain.Cheque
	lastLocalID int64

	remote Remote
	store  SnapshotStore
	clock  domain.Clock
	logger zerolog.Logger
	locks  *keyedMutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used for dates and local ids.
func WithClock(c domain.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger used for fallbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Open loads the persisted snapshot and returns a ledger over it.
// A missing snapshot yields empty collections.
func Open(ctx context.Context, store SnapshotStore, remote Remote, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		collections: map[domain.Kind][]domain.Cheque{},
		remote:      remote,
		store:       store,
		clock:       domain.SystemClock,
		logger:      zerolog.Nop(),
		locks:       newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(l)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	l.collections[domain.KindOutgoing] = clone(snap.Outgoing)
	l.collections[domain.KindIncoming] = clone(snap.Incoming)

	return l, nil
}

// Save persists the current snapshot.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	snap := &Snapshot{
		Outgoing: clone(l.collections[domain.KindOutgoing]),
		Incoming: clone(l.collections[domain.KindIncoming]),
		SavedAt:  l.clock().UTC(),
	}
	l.mu.Unlock()

	return l.store.Save(ctx, snap)
}

// Load refreshes both collections from the remote.
// It reports whether every collection came from the remote.
func (l *Ledger) Load(ctx context.Context) (bool, error) {
	all := true
	for _, kind := range domain.Kinds {
		remote, err := l.Refresh(ctx, kind)
		if err != nil {
			return false, err
		}
		all = all && remote
	}
	return all, nil
}

// Refresh replaces one collection with the remote list. When the remote is
// unavailable the collection is left as it is (the loaded snapshot plus any
// local changes since) and Refresh reports false without an error.
func (l *Ledger) Refresh(ctx context.Context, kind domain.Kind) (bool, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return false, err
	}

	records, err := l.remote.List(ctx, kind)
	if err != nil {
		if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
			return false, err
		}
		l.logger.Warn().
			Err(err).
			Str("op", "list").
			Str("kind", string(kind)).
			Msg("remote unavailable, keeping local collection")
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := make([]domain.Cheque, 0, len(records))
	for _, c := range records {
		fresh = append(fresh, *c)
	}
	// local-only records were never seen by the remote
	for _, c := range l.collections[kind] {
		if !domain.IsDurableID(c.ID) {
			fresh = append(fresh, c)
		}
	}
	l.collections[kind] = fresh
	return true, nil
}

// List returns a copy of one collection.
func (l *Ledger) List(kind domain.Kind) []domain.Cheque {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clone(l.collections[kind])
}

// Get returns a cheque by kind and id.
func (l *Ledger) Get(kind domain.Kind, id string) (domain.Cheque, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(kind, id)
	if i < 0 {
		return domain.Cheque{}, domain.ErrChequeNotFound
	}
	return l.collections[kind][i], nil
}

// Create records a new pending cheque. When the remote is unavailable the
// cheque is kept locally under a timestamp-derived id.
func (l *Ledger) Create(ctx context.Context, kind domain.Kind, draft domain.Draft) (Result, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return Result{}, err
	}
	if err := domain.ValidateDraft(kind, draft); err != nil {
		return Result{}, err
	}

	created, err := l.remote.Create(ctx, kind, draft)
	if err == nil {
		l.mu.Lock()
		l.prepend(kind, *created)
		l.mu.Unlock()
		return Result{Cheque: *created, AppliedRemotely: true}, nil
	}
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		return Result{}, err
	}

	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	c := domain.NewCheque(kind, l.nextLocalID(kind, now.UnixMilli()), draft, now.UTC())
	l.prepend(kind, *c)

	l.logger.Warn().
		Err(err).
		Str("op", "create").
		Str("kind", string(kind)).
		Str("id", c.ID).
		Msg("remote unavailable, cheque kept locally")

	return Result{Cheque: *c}, nil
}

// Transition settles a pending cheque: completes an outgoing one or deposits
// an incoming one, stamping today's date.
func (l *Ledger) Transition(ctx context.Context, kind domain.Kind, id string) (Result, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return Result{}, err
	}

	unlock := l.locks.Lock(string(kind) + "/" + id)
	defer unlock()

	current, err := l.Get(kind, id)
	if err != nil {
		return Result{}, err
	}
	if !current.IsPending() {
		return Result{}, domain.ErrInvalidState
	}

	if domain.IsDurableID(id) {
		updated, err := l.remote.Transition(ctx, kind, id)
		switch {
		case err == nil:
			merged := merge(current, *updated)
			l.mu.Lock()
			l.replace(kind, id, merged)
			l.mu.Unlock()
			return Result{Cheque: merged, AppliedRemotely: true}, nil
		case errors.Is(err, domain.ErrCollaboratorUnavailable), errors.Is(err, domain.ErrInvalidState):
			l.logger.Warn().
				Err(err).
				Str("op", "transition").
				Str("kind", string(kind)).
				Str("id", id).
				Msg("remote transition failed, applying locally")
		default:
			return Result{}, err
		}
	}

	if err := current.Settle(domain.Today(l.clock())); err != nil {
		return Result{}, err
	}
	l.mu.Lock()
	l.replace(kind, id, current)
	l.mu.Unlock()

	return Result{Cheque: current}, nil
}

// Delete removes a cheque in any state. Deleting an absent id is a no-op.
func (l *Ledger) Delete(ctx context.Context, kind domain.Kind, id string) (Result, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return Result{}, err
	}

	unlock := l.locks.Lock(string(kind) + "/" + id)
	defer unlock()

	removed, _ := l.Get(kind, id)

	remotely := false
	if domain.IsDurableID(id) {
		err := l.remote.Delete(ctx, kind, id)
		switch {
		case err == nil:
			remotely = true
		case errors.Is(err, domain.ErrCollaboratorUnavailable):
			l.logger.Warn().
				Err(err).
				Str("op", "delete").
				Str("kind", string(kind)).
				Str("id", id).
				Msg("remote unavailable, deleting locally")
		default:
			return Result{}, err
		}
	}

	l.mu.Lock()
	if i := l.indexOf(kind, id); i >= 0 {
		records := l.collections[kind]
		l.collections[kind] = append(records[:i:i], records[i+1:]...)
	}
	l.mu.Unlock()

	return Result{Cheque: removed, AppliedRemotely: remotely}, nil
}

// Today is the ledger clock's calendar date.
func (l *Ledger) Today() string {
	return domain.Today(l.clock())
}

// Active lists pending cheques of a kind matching the filter.
func (l *Ledger) Active(kind domain.Kind, f domain.Filter) []domain.Cheque {
	return domain.FilterActive(domain.Active(l.List(kind)), f, l.Today())
}

// History lists settled cheques of a kind.
func (l *Ledger) History(kind domain.Kind) []domain.Cheque {
	return domain.History(l.List(kind))
}

// DueToday lists pending cheques of both kinds due today.
func (l *Ledger) DueToday() []domain.Cheque {
	today := l.Today()
	due := domain.DueToday(l.List(domain.KindOutgoing), today)
	return append(due, domain.DueToday(l.List(domain.KindIncoming), today)...)
}

// Summary computes the dashboard over the local snapshot.
func (l *Ledger) Summary() domain.Summary {
	return domain.Summarize(l.List(domain.KindOutgoing), l.List(domain.KindIncoming), l.Today())
}

// merge prefers server fields but keeps the local id when the two differ
// only in letter case.
func merge(local, remote domain.Cheque) domain.Cheque {
	merged := remote
	if strings.EqualFold(local.ID, remote.ID) {
		merged.ID = local.ID
	}
	if merged.Kind == "" {
		merged.Kind = local.Kind
	}
	return merged
}

// nextLocalID must be called with mu held.
func (l *Ledger) nextLocalID(kind domain.Kind, millis int64) string {
	if millis <= l.lastLocalID {
		millis = l.lastLocalID + 1
	}
	for l.indexOf(kind, strconv.FormatInt(millis, 10)) >= 0 {
		millis++
	}
	l.lastLocalID = millis
	return strconv.FormatInt(millis, 10)
}

func (l *Ledger) indexOf(kind domain.Kind, id string) int {
	for i, c := range l.collections[kind] {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) prepend(kind domain.Kind, c domain.Cheque) {
	l.collections[kind] = append([]domain.Cheque{c}, l.collections[kind]...)
}

func (l *Ledger) replace(kind domain.Kind, id string, c domain.Cheque) {
	if i := l.indexOf(kind, id); i >= 0 {
		l.collections[kind][i] = c
	}
}

func clone(records []domain.Cheque) []domain.Cheque {
	out := make([]domain.Cheque, len(records))
	copy(out, records)
	return out
}
