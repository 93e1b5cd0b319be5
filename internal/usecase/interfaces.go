package usecase

import (
	"context"
	"time"

	"github.com/iho/chequebook/internal/domain"
)

// ChequeRepository defines durable storage for both cheque kinds.
// Implementations key records on (kind, id).
type ChequeRepository interface {
	Create(ctx context.Context, cheque *domain.Cheque) error
	GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error)
	// List returns every cheque of kind, newest created first.
	List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error)
	// Settle moves a pending cheque to its terminal status.
	// Returns domain.ErrChequeNotFound or domain.ErrInvalidState.
	Settle(ctx context.Context, kind domain.Kind, id, settledDate string) (*domain.Cheque, error)
	// Delete removes a cheque; deleting an absent id is not an error.
	Delete(ctx context.Context, kind domain.Kind, id string) error
	Ping(ctx context.Context) error
}

// EventPublisher delivers lifecycle events to external systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChequeEvent) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// DefaultIdempotencyTTL applies when no TTL is configured.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// Metrics records lifecycle counters.
type Metrics interface {
	ChequeCreated(kind domain.Kind)
	ChequeSettled(kind domain.Kind)
	ChequeDeleted(kind domain.Kind)
}
