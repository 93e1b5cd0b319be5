package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopBankLimit caps the bank distribution in a summary.
const TopBankLimit = 5

// KindSummary holds the figures for one cheque collection.
type KindSummary struct {
	Total          int
	Active         int
	Settled        int
	DueToday       int
	Ready          int
	Outstanding    decimal.Decimal
	SettledAmount  decimal.Decimal
	SettlementRate decimal.Decimal // percent, one decimal place
	Banks          []BankTotal     // active cheques only
}

// BankShare is a bank's share of all recorded cheques by count.
type BankShare struct {
	Bank    string
	Count   int
	Percent decimal.Decimal
}

// Summary is the dashboard view over both collections.
type Summary struct {
	Date          string
	Outgoing      KindSummary
	Incoming      KindSummary
	NetCashFlow   decimal.Decimal // active incoming minus active outgoing
	GrossCashFlow decimal.Decimal // all incoming minus all outgoing
	TopBanks      []BankShare
}

// Summarize computes the dashboard figures for a snapshot.
func Summarize(outgoing, incoming []Cheque, today string) Summary {
	activeOut := Active(outgoing)
	activeIn := Active(incoming)

	return Summary{
		Date:          today,
		Outgoing:      summarizeKind(outgoing, today),
		Incoming:      summarizeKind(incoming, today),
		NetCashFlow:   NetCashFlow(activeIn, activeOut),
		GrossCashFlow: TotalAmount(incoming).Sub(TotalAmount(outgoing)),
		TopBanks:      topBanks(outgoing, incoming, TopBankLimit),
	}
}

func summarizeKind(records []Cheque, today string) KindSummary {
	active := Active(records)
	settled := History(records)

	s := KindSummary{
		Total:          len(records),
		Active:         len(active),
		Settled:        len(settled),
		DueToday:       len(DueToday(records, today)),
		Outstanding:    TotalAmount(active),
		SettledAmount:  TotalAmount(settled),
		SettlementRate: percent(len(settled), len(records)),
		Banks:          BankBreakdown(active),
	}
	for _, c := range active {
		if IsReady(c.DueDate, today) {
			s.Ready++
		}
	}
	return s
}

func topBanks(outgoing, incoming []Cheque, limit int) []BankShare {
	total := len(outgoing) + len(incoming)
	counts := make(map[string]int)
	for _, set := range [][]Cheque{outgoing, incoming} {
		for _, c := range set {
			counts[c.BankName]++
		}
	}

	out := make([]BankShare, 0, len(counts))
	for bank, n := range counts {
		out = append(out, BankShare{Bank: bank, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Bank < out[j].Bank
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1)
}
