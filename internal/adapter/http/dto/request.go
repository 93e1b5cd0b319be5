package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/chequebook/internal/domain"
)

// ChequeRequest is the body of POST /api/outgoing and POST /api/incoming.
// Only the field set of the target kind is read.
type ChequeRequest struct {
	// outgoing
	IssueDate string `json:"issueDate,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	PayeeName string `json:"payeeName,omitempty"`

	// incoming
	ReceivedDate string `json:"receivedDate,omitempty"`
	ChequeDate   string `json:"chequeDate,omitempty"`
	PayerName    string `json:"payerName,omitempty"`

	ChequeNumber string              `json:"chequeNumber"`
	Purpose      string              `json:"purpose,omitempty"`
	Amount       decimal.NullDecimal `json:"amount"`
	BankName     string              `json:"bankName"`
}

// ToDraft converts to a domain draft for the given kind.
func (r *ChequeRequest) ToDraft(kind domain.Kind) domain.Draft {
	d := domain.Draft{
		ChequeNumber: r.ChequeNumber,
		Purpose:      r.Purpose,
		Amount:       r.Amount,
		BankName:     r.BankName,
	}
	if kind == domain.KindIncoming {
		d.RecordedDate = r.ReceivedDate
		d.DueDate = r.ChequeDate
		d.Counterparty = r.PayerName
	} else {
		d.RecordedDate = r.IssueDate
		d.DueDate = r.StartDate
		d.Counterparty = r.PayeeName
	}
	return d
}

// ChequeRequestFromDraft builds the request body for a draft.
func ChequeRequestFromDraft(kind domain.Kind, d domain.Draft) *ChequeRequest {
	r := &ChequeRequest{
		ChequeNumber: d.ChequeNumber,
		Purpose:      d.Purpose,
		Amount:       d.Amount,
		BankName:     d.BankName,
	}
	if kind == domain.KindIncoming {
		r.ReceivedDate = d.RecordedDate
		r.ChequeDate = d.DueDate
		r.PayerName = d.Counterparty
	} else {
		r.IssueDate = d.RecordedDate
		r.StartDate = d.DueDate
		r.PayeeName = d.Counterparty
	}
	return r
}
