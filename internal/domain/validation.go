package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	DateLayout         = "2006-01-02"
	MaxTextFieldLength = 255
	MaxPurposeLength   = 1024
	MaxAmountScale     = 4 // fractional digits kept by the durable stores
)

// ValidateDate checks that s is a zero-padded YYYY-MM-DD calendar date.
func ValidateDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	// time.Parse accepts some non-padded forms; require an exact round-trip
	return t.Format(DateLayout) == s
}

// ValidateDraft checks the required fields of a new cheque.
// Field names in errors use the kind-specific names callers know.
func ValidateDraft(kind Kind, d Draft) error {
	names := fieldNames(kind)

	dates := []struct {
		name  string
		value string
	}{
		{names.recorded, d.RecordedDate},
		{names.due, d.DueDate},
	}
	for _, f := range dates {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
		if !ValidateDate(f.value) {
			return &ValidationError{Field: f.name, Reason: "must be a YYYY-MM-DD date"}
		}
	}

	texts := []struct {
		name  string
		value string
	}{
		{"chequeNumber", d.ChequeNumber},
		{names.counterparty, d.Counterparty},
		{"bankName", d.BankName},
	}
	for _, f := range texts {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
		if len(f.value) > MaxTextFieldLength {
			return &ValidationError{Field: f.name, Reason: "is too long"}
		}
	}

	if len(d.Purpose) > MaxPurposeLength {
		return &ValidationError{Field: "purpose", Reason: "is too long"}
	}

	if !d.Amount.Valid {
		return &ValidationError{Field: "amount", Reason: "is required"}
	}
	amount := d.Amount.Decimal
	if amount.LessThan(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return &ValidationError{Field: "amount", Reason: "has more than 4 decimal places"}
	}

	return nil
}

// IsDurableID reports whether id was issued by a durable store.
// Durable ids are ULIDs; locally fabricated ids never parse as one.
func IsDurableID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// ValidateID rejects identifiers that are not well-formed durable ids.
func ValidateID(id string) error {
	if !IsDurableID(id) {
		return ErrInvalidID
	}
	return nil
}

type kindFieldNames struct {
	recorded     string
	due          string
	counterparty string
}

func fieldNames(kind Kind) kindFieldNames {
	if kind == KindIncoming {
		return kindFieldNames{recorded: "receivedDate", due: "chequeDate", counterparty: "payerName"}
	}
	return kindFieldNames{recorded: "issueDate", due: "startDate", counterparty: "payeeName"}
}
