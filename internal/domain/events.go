package domain

import "time"

// Event types
const (
	EventTypeChequeCreated   = "cheque.created"
	EventTypeChequeCompleted = "cheque.completed"
	EventTypeChequeDeposited = "cheque.deposited"
	EventTypeChequeDeleted   = "cheque.deleted"
	EventTypeChequeDue       = "cheque.due"
)

// ChequeEvent is published after a durable lifecycle change.
type ChequeEvent struct {
	Type       string    `json:"type"`
	Kind       Kind      `json:"kind"`
	ChequeID   string    `json:"cheque_id"`
	Number     string    `json:"cheque_number,omitempty"`
	Bank       string    `json:"bank_name,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Date       string    `json:"date,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SettledEventType returns the event emitted when a cheque of kind settles.
func SettledEventType(kind Kind) string {
	if kind == KindIncoming {
		return EventTypeChequeDeposited
	}
	return EventTypeChequeCompleted
}

// NewChequeEvent describes c for publication.
func NewChequeEvent(eventType string, c *Cheque, at time.Time) ChequeEvent {
	ev := ChequeEvent{
		Type:       eventType,
		Kind:       c.Kind,
		ChequeID:   c.ID,
		Number:     c.ChequeNumber,
		Bank:       c.BankName,
		Amount:     c.Amount.String(),
		OccurredAt: at,
	}
	switch eventType {
	case EventTypeChequeCompleted, EventTypeChequeDeposited:
		ev.Date = c.SettledDate
	default:
		ev.Date = c.DueDate
	}
	return ev
}
