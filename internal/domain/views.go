package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter values with special meaning.
const (
	FilterAll   = "all"
	FilterDue   = "due"
	filterEmpty = ""
)

// Filter narrows the active cheque list.
type Filter struct {
	Query  string
	Bank   string
	Status string
}

// ValidateFilterStatus accepts "", "all" and "due".
func ValidateFilterStatus(status string) error {
	switch status {
	case filterEmpty, FilterAll, FilterDue:
		return nil
	default:
		return &ValidationError{Field: "status", Reason: "must be all or due"}
	}
}

// BankTotal aggregates cheques drawn on one bank.
type BankTotal struct {
	Bank   string
	Count  int
	Amount decimal.Decimal
}

// FilterActive keeps pending cheques matching the filter.
// The query matches cheque number or counterparty, case-insensitively.
func FilterActive(records []Cheque, f Filter, today string) []Cheque {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Cheque, 0, len(records))
	for _, c := range records {
		if !c.IsPending() {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.ChequeNumber), query) &&
			!strings.Contains(strings.ToLower(c.Counterparty), query) {
			continue
		}
		if f.Bank != filterEmpty && f.Bank != FilterAll && c.BankName != f.Bank {
			continue
		}
		if f.Status == FilterDue && !IsDueToday(c.DueDate, today) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TotalAmount sums the amounts of records.
func TotalAmount(records []Cheque) decimal.Decimal {
	total := decimal.Zero
	for _, c := range records {
		total = total.Add(c.Amount)
	}
	return total
}

// BankBreakdown groups records by bank, largest amount first.
func BankBreakdown(records []Cheque) []BankTotal {
	index := make(map[string]int)
	var out []BankTotal

	for _, c := range records {
		i, ok := index[c.BankName]
		if !ok {
			i = len(out)
			index[c.BankName] = i
			out = append(out, BankTotal{Bank: c.BankName, Amount: decimal.Zero})
		}
		out[i].Count++
		out[i].Amount = out[i].Amount.Add(c.Amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Bank < out[j].Bank
	})
	return out
}

// NetCashFlow is incoming minus outgoing.
func NetCashFlow(activeIncoming, activeOutgoing []Cheque) decimal.Decimal {
	return TotalAmount(activeIncoming).Sub(TotalAmount(activeOutgoing))
}

// IsDueToday reports whether date is exactly today.
func IsDueToday(date, today string) bool {
	return ValidateDate(date) && date == today
}

// IsReady reports whether date is today or already past.
func IsReady(date, today string) bool {
	return ValidateDate(date) && date <= today
}

// Active returns pending records, oldest recorded date first.
func Active(records []Cheque) []Cheque {
	out := make([]Cheque, 0, len(records))
	for _, c := range records {
		if c.IsPending() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedDate < out[j].RecordedDate
	})
	return out
}

// History returns settled records, oldest settlement first.
func History(records []Cheque) []Cheque {
	out := make([]Cheque, 0, len(records))
	for _, c := range records {
		if c.IsSettled() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return historyDate(out[i]) < historyDate(out[j])
	})
	return out
}

// DueToday returns pending records whose due date is today.
func DueToday(records []Cheque, today string) []Cheque {
	return FilterActive(records, Filter{Status: FilterDue}, today)
}

func historyDate(c Cheque) string {
	if c.SettledDate != "" {
		return c.SettledDate
	}
	return c.DueDate
}
