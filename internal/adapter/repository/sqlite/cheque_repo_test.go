package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/chequebook/internal/domain"
)

func openTestRepo(t *testing.T) *ChequeRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "data", "cheques.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newPending(kind domain.Kind, createdAt time.Time) *domain.Cheque {
	return domain.NewCheque(kind, ulid.Make().String(), domain.Draft{
		RecordedDate: "2024-01-02",
		DueDate:      "2024-01-10",
		ChequeNumber: "000123",
		Counterparty: "Acme Ltd",
		Purpose:      "rent",
		Amount:       decimal.NewNullDecimal(decimal.RequireFromString("1250.75")),
		BankName:     "First Bank",
	}, createdAt)
}

func TestChequeRepository_CreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c := newPending(domain.KindIncoming, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, domain.KindIncoming, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, domain.KindIncoming, got.Kind)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "", got.SettledDate)
	assert.True(t, got.Amount.Equal(c.Amount))
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

	_, err = repo.GetByID(ctx, domain.KindOutgoing, c.ID)
	assert.ErrorIs(t, err, domain.ErrChequeNotFound)
}

func TestChequeRepository_ListNewestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	older := newPending(domain.KindOutgoing, base)
	newer := newPending(domain.KindOutgoing, base.Add(time.Minute))
	other := newPending(domain.KindIncoming, base.Add(time.Hour))
	for _, c := range []*domain.Cheque{older, newer, other} {
		require.NoError(t, repo.Create(ctx, c))
	}

	list, err := repo.List(ctx, domain.KindOutgoing)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	empty, err := openTestRepo(t).List(ctx, domain.KindIncoming)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestChequeRepository_Settle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c := newPending(domain.KindOutgoing, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, c))

	settled, err := repo.Settle(ctx, domain.KindOutgoing, c.ID, "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, settled.Status)
	assert.Equal(t, "2024-01-12", settled.SettledDate)

	_, err = repo.Settle(ctx, domain.KindOutgoing, c.ID, "2024-01-13")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := repo.GetByID(ctx, domain.KindOutgoing, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12", got.SettledDate)

	_, err = repo.Settle(ctx, domain.KindOutgoing, ulid.Make().String(), "2024-01-12")
	assert.ErrorIs(t, err, domain.ErrChequeNotFound)
}

func TestChequeRepository_ConcurrentSettleSucceedsOnce(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c := newPending(domain.KindIncoming, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, c))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		conflict int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Settle(ctx, domain.KindIncoming, c.ID, "2024-01-12")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, domain.ErrInvalidState):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 7, conflict)
}

func TestChequeRepository_Delete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c := newPending(domain.KindOutgoing, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.Delete(ctx, domain.KindOutgoing, c.ID))
	require.NoError(t, repo.Delete(ctx, domain.KindOutgoing, c.ID))

	_, err := repo.GetByID(ctx, domain.KindOutgoing, c.ID)
	assert.ErrorIs(t, err, domain.ErrChequeNotFound)
	require.NoError(t, repo.Ping(ctx))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cheques.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
