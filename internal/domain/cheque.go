package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two cheque collections.
type Kind string

const (
	KindOutgoing Kind = "outgoing"
	KindIncoming Kind = "incoming"
)

// Kinds lists every cheque kind in display order.
var Kinds = []Kind{KindOutgoing, KindIncoming}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOutgoing, KindIncoming:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// TerminalStatus returns the status a pending cheque of this kind moves to.
func (k Kind) TerminalStatus() Status {
	if k == KindIncoming {
		return StatusDeposited
	}
	return StatusCompleted
}

// Status is the lifecycle state of a cheque.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeposited Status = "deposited"
)

// Cheque is a single outgoing or incoming cheque.
//
// Field names are kind-neutral: for outgoing cheques RecordedDate is the issue
// date, DueDate the clearance start date, Counterparty the payee and
// SettledDate the completion date. For incoming cheques they are the received
// date, cheque date, payer and deposit date.
type Cheque struct {
	ID           string
	Kind         Kind
	RecordedDate string
	DueDate      string
	ChequeNumber string
	Counterparty string
	Purpose      string
	Amount       decimal.Decimal
	BankName     string
	Status       Status
	SettledDate  string
	CreatedAt    time.Time
}

// Draft holds the caller-supplied fields of a new cheque.
type Draft struct {
	RecordedDate string
	DueDate      string
	ChequeNumber string
	Counterparty string
	Purpose      string
	Amount       decimal.NullDecimal // Valid is false when no amount was given
	BankName     string
}

// NewCheque builds a pending cheque from a validated draft.
func NewCheque(kind Kind, id string, d Draft, createdAt time.Time) *Cheque {
	return &Cheque{
		ID:           id,
		Kind:         kind,
		RecordedDate: d.RecordedDate,
		DueDate:      d.DueDate,
		ChequeNumber: d.ChequeNumber,
		Counterparty: d.Counterparty,
		Purpose:      d.Purpose,
		Amount:       d.Amount.Decimal,
		BankName:     d.BankName,
		Status:       StatusPending,
		CreatedAt:    createdAt,
	}
}

// IsPending reports whether the cheque has not been settled yet.
func (c *Cheque) IsPending() bool {
	return c.Status == StatusPending
}

// IsSettled reports whether the cheque reached its terminal status.
func (c *Cheque) IsSettled() bool {
	return c.Status == c.Kind.TerminalStatus()
}

// Settle moves a pending cheque to its terminal status, stamping today.
func (c *Cheque) Settle(today string) error {
	if !c.IsPending() {
		return ErrInvalidState
	}
	c.Status = c.Kind.TerminalStatus()
	c.SettledDate = today
	return nil
}
