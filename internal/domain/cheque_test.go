package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input       string
		want        Kind
		expectError bool
	}{
		{"outgoing", KindOutgoing, false},
		{"incoming", KindIncoming, false},
		{"OUTGOING", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.expectError {
			if !errors.Is(err, ErrInvalidKind) {
				t.Fatalf("ParseKind(%q) expected ErrInvalidKind, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseKind(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestNewCheque_StartsPending(t *testing.T) {
	for _, kind := range Kinds {
		c := NewCheque(kind, "id-1", Draft{Amount: decimal.NewNullDecimal(decimal.NewFromInt(10))}, time.Now())

		if c.Status != StatusPending {
			t.Fatalf("%s: expected pending, got %s", kind, c.Status)
		}
		if c.SettledDate != "" {
			t.Fatalf("%s: expected no settled date, got %q", kind, c.SettledDate)
		}
		if !c.IsPending() || c.IsSettled() {
			t.Fatalf("%s: pending predicates inconsistent", kind)
		}
	}
}

func TestCheque_Settle(t *testing.T) {
	tests := []struct {
		kind Kind
		want Status
	}{
		{KindOutgoing, StatusCompleted},
		{KindIncoming, StatusDeposited},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c := NewCheque(tt.kind, "id-1", Draft{}, time.Now())

			if err := c.Settle("2024-01-10"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Status != tt.want || c.SettledDate != "2024-01-10" {
				t.Fatalf("expected %s on 2024-01-10, got %s on %q", tt.want, c.Status, c.SettledDate)
			}

			err := c.Settle("2024-01-11")
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState on second settle, got %v", err)
			}
			if c.SettledDate != "2024-01-10" {
				t.Fatalf("second settle must not restamp, got %q", c.SettledDate)
			}
		})
	}
}

func TestToday_UsesLocalCalendarDate(t *testing.T) {
	now := time.Date(2024, 1, 10, 23, 59, 0, 0, time.Local)
	if got := Today(now); got != "2024-01-10" {
		t.Fatalf("expected 2024-01-10, got %s", got)
	}
}

func TestNewChequeEvent(t *testing.T) {
	c := NewCheque(KindIncoming, "id-1", Draft{
		DueDate:      "2024-02-01",
		ChequeNumber: "C1",
		BankName:     "Bank A",
		Amount:       decimal.NewNullDecimal(decimal.NewFromInt(500)),
	}, time.Now())

	ev := NewChequeEvent(EventTypeChequeCreated, c, time.Now())
	if ev.Date != "2024-02-01" || ev.Amount != "500" || ev.Kind != KindIncoming {
		t.Fatalf("unexpected created event: %+v", ev)
	}

	_ = c.Settle("2024-02-02")
	ev = NewChequeEvent(SettledEventType(c.Kind), c, time.Now())
	if ev.Type != EventTypeChequeDeposited || ev.Date != "2024-02-02" {
		t.Fatalf("unexpected settled event: %+v", ev)
	}
}
