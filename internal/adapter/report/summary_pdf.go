// Package report renders printable cheque reports.
package report

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/iho/chequebook/internal/domain"
)

// Builder renders the summary report. Currency prefixes every amount.
type Builder struct {
	Currency string
}

func NewBuilder(currency string) *Builder {
	return &Builder{Currency: currency}
}

// BuildSummaryPDF renders the dashboard figures followed by the active
// cheques of both kinds.
func (b *Builder) BuildSummaryPDF(sum domain.Summary, outgoing, incoming []domain.Cheque) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Cheque Summary "+sum.Date, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Cheque Summary")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Date: "+sum.Date)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Net Cash Flow: "+b.money(sum.NetCashFlow.StringFixed(2)))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Gross Cash Flow: "+b.money(sum.GrossCashFlow.StringFixed(2)))
	pdf.Ln(10)

	b.kindBlock(pdf, "Outgoing", "Completion rate", sum.Outgoing)
	b.kindBlock(pdf, "Incoming", "Deposit rate", sum.Incoming)

	if len(sum.TopBanks) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Top Banks")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(90, 7, "Bank")
		pdf.Cell(30, 7, "Cheques")
		pdf.Cell(30, 7, "%")
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 11)
		for _, s := range sum.TopBanks {
			pdf.Cell(90, 7, s.Bank)
			pdf.Cell(30, 7, fmt.Sprintf("%d", s.Count))
			pdf.Cell(30, 7, s.Percent.StringFixed(1)+"%")
			pdf.Ln(7)
		}
		pdf.Ln(4)
	}

	b.chequeTable(pdf, "Active Outgoing Cheques", "Payee", domain.Active(outgoing))
	b.chequeTable(pdf, "Active Incoming Cheques", "Payer", domain.Active(incoming))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder) kindBlock(pdf *gofpdf.Fpdf, title, rateLabel string, k domain.KindSummary) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Active: %d   Settled: %d   Due today: %d   Ready: %d", k.Active, k.Settled, k.DueToday, k.Ready))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Outstanding: "+b.money(k.Outstanding.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, rateLabel+": "+k.SettlementRate.StringFixed(1)+"%")
	pdf.Ln(8)

	for _, bank := range k.Banks {
		pdf.Cell(90, 6, bank.Bank)
		pdf.Cell(20, 6, fmt.Sprintf("%d", bank.Count))
		pdf.Cell(40, 6, b.money(bank.Amount.StringFixed(2)))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func (b *Builder) chequeTable(pdf *gofpdf.Fpdf, title, partyLabel string, records []domain.Cheque) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	if len(records) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "None")
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(25, 7, "Due")
	pdf.Cell(30, 7, "Number")
	pdf.Cell(50, 7, partyLabel)
	pdf.Cell(45, 7, "Bank")
	pdf.Cell(35, 7, "Amount")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	for _, c := range records {
		pdf.Cell(25, 6, c.DueDate)
		pdf.Cell(30, 6, truncate(c.ChequeNumber, 14))
		pdf.Cell(50, 6, truncate(c.Counterparty, 26))
		pdf.Cell(45, 6, truncate(c.BankName, 22))
		pdf.Cell(35, 6, b.money(c.Amount.StringFixed(2)))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func (b *Builder) money(v string) string {
	if b.Currency == "" {
		return v
	}
	return b.Currency + " " + v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
