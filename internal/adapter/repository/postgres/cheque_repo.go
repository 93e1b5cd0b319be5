package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/infrastructure/postgres/generated"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	generated.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// ChequeRepository implements usecase.ChequeRepository.
type ChequeRepository struct {
	db      DB
	queries *generated.Queries
	retrier *Retrier
}

// NewChequeRepository creates a new ChequeRepository.
func NewChequeRepository(pool *pgxpool.Pool, logger zerolog.Logger) *ChequeRepository {
	return newChequeRepository(pool, NewRetrier(logger))
}

func newChequeRepository(db DB, retrier *Retrier) *ChequeRepository {
	return &ChequeRepository{
		db:      db,
		queries: generated.New(db),
		retrier: retrier,
	}
}

// Create inserts a new cheque.
func (r *ChequeRepository) Create(ctx context.Context, cheque *domain.Cheque) error {
	recorded, err := dateToPg(cheque.RecordedDate)
	if err != nil {
		return err
	}
	due, err := dateToPg(cheque.DueDate)
	if err != nil {
		return err
	}

	params := generated.CreateChequeParams{
		Kind:         string(cheque.Kind),
		ID:           cheque.ID,
		RecordedDate: recorded,
		DueDate:      due,
		ChequeNumber: cheque.ChequeNumber,
		Counterparty: cheque.Counterparty,
		Purpose:      cheque.Purpose,
		Amount:       decimalToNumeric(cheque.Amount),
		BankName:     cheque.BankName,
		Status:       string(cheque.Status),
		CreatedAt:    timeToPgTimestamptz(cheque.CreatedAt),
	}

	return r.retrier.Retry(ctx, func() error {
		return r.queries.CreateCheque(ctx, params)
	})
}

// GetByID retrieves a cheque by kind and ID.
func (r *ChequeRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	var row generated.Cheque
	err := r.retrier.Retry(ctx, func() error {
		var err error
		row, err = r.queries.GetCheque(ctx, generated.GetChequeParams{Kind: string(kind), ID: id})
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChequeNotFound
		}
		return nil, err
	}

	return rowToCheque(row), nil
}

// List returns every cheque of kind, newest created first.
func (r *ChequeRepository) List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error) {
	var rows []generated.Cheque
	err := r.retrier.Retry(ctx, func() error {
		var err error
		rows, err = r.queries.ListCheques(ctx, string(kind))
		return err
	})
	if err != nil {
		return nil, err
	}

	cheques := make([]*domain.Cheque, len(rows))
	for i, row := range rows {
		cheques[i] = rowToCheque(row)
	}

	return cheques, nil
}

// Settle locks the row, checks it is still pending and stamps the terminal
// status. Concurrent settles of one id serialise on the row lock; the loser
// sees ErrInvalidState.
func (r *ChequeRepository) Settle(ctx context.Context, kind domain.Kind, id, settledDate string) (*domain.Cheque, error) {
	settled, err := dateToPg(settledDate)
	if err != nil {
		return nil, err
	}

	var row generated.Cheque
	err = r.retrier.Retry(ctx, func() error {
		var err error
		row, err = r.settleTx(ctx, kind, id, settled)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rowToCheque(row), nil
}

func (r *ChequeRepository) settleTx(ctx context.Context, kind domain.Kind, id string, settled pgtype.Date) (generated.Cheque, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return generated.Cheque{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := r.queries.WithTx(tx)

	current, err := q.GetChequeForUpdate(ctx, generated.GetChequeForUpdateParams{Kind: string(kind), ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return generated.Cheque{}, domain.ErrChequeNotFound
		}
		return generated.Cheque{}, err
	}
	if domain.Status(current.Status) != domain.StatusPending {
		return generated.Cheque{}, domain.ErrInvalidState
	}

	row, err := q.SettleCheque(ctx, generated.SettleChequeParams{
		Kind:        string(kind),
		ID:          id,
		Status:      string(kind.TerminalStatus()),
		SettledDate: settled,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return generated.Cheque{}, domain.ErrInvalidState
		}
		return generated.Cheque{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return generated.Cheque{}, err
	}

	return row, nil
}

// Delete removes a cheque. Deleting an absent id is not an error.
func (r *ChequeRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.queries.DeleteCheque(ctx, generated.DeleteChequeParams{Kind: string(kind), ID: id})
		return err
	})
}

// Ping checks the database is reachable.
func (r *ChequeRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func rowToCheque(row generated.Cheque) *domain.Cheque {
	return &domain.Cheque{
		ID:           row.ID,
		Kind:         domain.Kind(row.Kind),
		RecordedDate: pgDateToString(row.RecordedDate),
		DueDate:      pgDateToString(row.DueDate),
		ChequeNumber: row.ChequeNumber,
		Counterparty: row.Counterparty,
		Purpose:      row.Purpose,
		Amount:       numericToDecimal(row.Amount),
		BankName:     row.BankName,
		Status:       domain.Status(row.Status),
		SettledDate:  pgDateToString(row.SettledDate),
		CreatedAt:    row.CreatedAt.Time,
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func dateToPg(s string) (pgtype.Date, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("%w: malformed date %q", domain.ErrValidation, s)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func pgDateToString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(domain.DateLayout)
}
