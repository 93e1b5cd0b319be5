package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/chequebook/internal/domain"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const chequeColumns = `kind, id, recorded_date, due_date, cheque_number, counterparty, purpose, amount, bank_name, status, settled_date, created_at`

// ChequeRepository implements usecase.ChequeRepository on a single SQLite file.
type ChequeRepository struct {
	db *sql.DB
}

// Open creates the database directory, connects, pings and migrates.
func Open(path string) (*ChequeRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &ChequeRepository{db: db}, nil
}

// Close closes the database.
func (r *ChequeRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a new cheque.
func (r *ChequeRepository) Create(ctx context.Context, c *domain.Cheque) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO cheques (`+chequeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		string(c.Kind), c.ID, c.RecordedDate, c.DueDate, c.ChequeNumber, c.Counterparty,
		c.Purpose, c.Amount.String(), c.BankName, string(c.Status),
		c.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("create cheque: %w", err)
	}
	return nil
}

// GetByID retrieves a cheque by kind and ID.
func (r *ChequeRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE kind = ? AND id = ?`, string(kind), id)
	c, err := scanCheque(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChequeNotFound
		}
		return nil, fmt.Errorf("get cheque: %w", err)
	}
	return c, nil
}

// List returns every cheque of kind, newest created first.
func (r *ChequeRepository) List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+chequeColumns+` FROM cheques
		WHERE kind = ? ORDER BY created_at DESC, id DESC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list cheques: %w", err)
	}
	defer rows.Close()

	cheques := make([]*domain.Cheque, 0)
	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cheque: %w", err)
		}
		cheques = append(cheques, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cheques: %w", err)
	}
	return cheques, nil
}

// Settle moves a pending cheque to its terminal status. The update is
// conditional on status so a concurrent settle loses with ErrInvalidState.
func (r *ChequeRepository) Settle(ctx context.Context, kind domain.Kind, id, settledDate string) (*domain.Cheque, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE cheques SET status = ?, settled_date = ?
		WHERE kind = ? AND id = ? AND status = 'pending'
		RETURNING `+chequeColumns,
		string(kind.TerminalStatus()), settledDate, string(kind), id)

	c, err := scanCheque(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settle cheque: %w", err)
	}

	if _, err := r.GetByID(ctx, kind, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidState
}

// Delete removes a cheque. Deleting an absent id is not an error.
func (r *ChequeRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cheques WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return fmt.Errorf("delete cheque: %w", err)
	}
	return nil
}

// Ping checks the database file is usable.
func (r *ChequeRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheque(s scanner) (*domain.Cheque, error) {
	var (
		c         domain.Cheque
		kind      string
		status    string
		amount    string
		settled   sql.NullString
		createdAt string
	)
	if err := s.Scan(&kind, &c.ID, &c.RecordedDate, &c.DueDate, &c.ChequeNumber, &c.Counterparty,
		&c.Purpose, &amount, &c.BankName, &status, &settled, &createdAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	c.Kind = domain.Kind(kind)
	c.Status = domain.Status(status)
	c.Amount = d
	c.SettledDate = settled.String
	c.CreatedAt = ts
	return &c, nil
}
