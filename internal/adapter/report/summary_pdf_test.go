package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/chequebook/internal/domain"
)

func TestBuildSummaryPDF(t *testing.T) {
	outgoing := []domain.Cheque{{
		ID:           "1",
		Kind:         domain.KindOutgoing,
		RecordedDate: "2024-01-01",
		DueDate:      "2024-01-10",
		ChequeNumber: "C1",
		Counterparty: "A very long payee name that will not fit in its column",
		Amount:       decimal.NewFromInt(50000),
		BankName:     "Bank A",
		Status:       domain.StatusPending,
	}}
	sum := domain.Summarize(outgoing, nil, "2024-01-10")

	data, err := NewBuilder("LKR").BuildSummaryPDF(sum, outgoing, nil)
	if err != nil {
		t.Fatalf("BuildSummaryPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", data[:8])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate kept %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd~" {
		t.Fatalf("truncate returned %q", got)
	}
}
