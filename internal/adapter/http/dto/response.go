package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/chequebook/internal/domain"
)

// ChequeResponse represents a cheque in API responses, using the field names
// of its kind.
type ChequeResponse struct {
	ID   string      `json:"id"`
	Kind domain.Kind `json:"kind"`

	IssueDate     string `json:"issueDate,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	PayeeName     string `json:"payeeName,omitempty"`
	CompletedDate string `json:"completedDate,omitempty"`

	ReceivedDate  string `json:"receivedDate,omitempty"`
	ChequeDate    string `json:"chequeDate,omitempty"`
	PayerName     string `json:"payerName,omitempty"`
	DepositedDate string `json:"depositedDate,omitempty"`

	ChequeNumber string          `json:"chequeNumber"`
	Purpose      string          `json:"purpose,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	BankName     string          `json:"bankName"`
	Status       domain.Status   `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ChequeFromDomain converts a domain cheque to response.
func ChequeFromDomain(c *domain.Cheque) *ChequeResponse {
	r := &ChequeResponse{
		ID:           c.ID,
		Kind:         c.Kind,
		ChequeNumber: c.ChequeNumber,
		Purpose:      c.Purpose,
		Amount:       c.Amount,
		BankName:     c.BankName,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
	}
	if c.Kind == domain.KindIncoming {
		r.ReceivedDate = c.RecordedDate
		r.ChequeDate = c.DueDate
		r.PayerName = c.Counterparty
		r.DepositedDate = c.SettledDate
	} else {
		r.IssueDate = c.RecordedDate
		r.StartDate = c.DueDate
		r.PayeeName = c.Counterparty
		r.CompletedDate = c.SettledDate
	}
	return r
}

// ChequesFromDomain converts domain cheques to responses.
func ChequesFromDomain(cheques []*domain.Cheque) []*ChequeResponse {
	result := make([]*ChequeResponse, len(cheques))
	for i, c := range cheques {
		result[i] = ChequeFromDomain(c)
	}
	return result
}

// ChequeValuesFromDomain converts a snapshot slice to responses.
func ChequeValuesFromDomain(cheques []domain.Cheque) []*ChequeResponse {
	result := make([]*ChequeResponse, len(cheques))
	for i := range cheques {
		result[i] = ChequeFromDomain(&cheques[i])
	}
	return result
}

// ToDomain converts a response back to a domain cheque. The kind argument is
// used when the payload carries none.
func (r *ChequeResponse) ToDomain(kind domain.Kind) *domain.Cheque {
	if r.Kind != "" {
		kind = r.Kind
	}
	c := &domain.Cheque{
		ID:           r.ID,
		Kind:         kind,
		ChequeNumber: r.ChequeNumber,
		Purpose:      r.Purpose,
		Amount:       r.Amount,
		BankName:     r.BankName,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
	if kind == domain.KindIncoming {
		c.RecordedDate = r.ReceivedDate
		c.DueDate = r.ChequeDate
		c.Counterparty = r.PayerName
		c.SettledDate = r.DepositedDate
	} else {
		c.RecordedDate = r.IssueDate
		c.DueDate = r.StartDate
		c.Counterparty = r.PayeeName
		c.SettledDate = r.CompletedDate
	}
	return c
}

// OKResponse is returned by delete routes.
type OKResponse struct {
	OK bool `json:"ok"`
}

// BankTotalResponse is one row of a bank breakdown.
type BankTotalResponse struct {
	Bank   string          `json:"bank"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BankShareResponse is one row of the top-bank distribution.
type BankShareResponse struct {
	Bank    string          `json:"bank"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// KindSummaryResponse holds the figures for one collection.
type KindSummaryResponse struct {
	Total          int                 `json:"total"`
	Active         int                 `json:"active"`
	Settled        int                 `json:"settled"`
	DueToday       int                 `json:"dueToday"`
	Ready          int                 `json:"ready"`
	Outstanding    decimal.Decimal     `json:"outstanding"`
	SettledAmount  decimal.Decimal     `json:"settledAmount"`
	SettlementRate decimal.Decimal     `json:"settlementRate"`
	Banks          []BankTotalResponse `json:"banks"`
}

// SummaryResponse represents the dashboard.
type SummaryResponse struct {
	Date          string              `json:"date"`
	Outgoing      KindSummaryResponse `json:"outgoing"`
	Incoming      KindSummaryResponse `json:"incoming"`
	NetCashFlow   decimal.Decimal     `json:"netCashFlow"`
	GrossCashFlow decimal.Decimal     `json:"grossCashFlow"`
	TopBanks      []BankShareResponse `json:"topBanks"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	top := make([]BankShareResponse, len(s.TopBanks))
	for i, b := range s.TopBanks {
		top[i] = BankShareResponse{Bank: b.Bank, Count: b.Count, Percent: b.Percent}
	}
	return &SummaryResponse{
		Date:          s.Date,
		Outgoing:      kindSummaryFromDomain(s.Outgoing),
		Incoming:      kindSummaryFromDomain(s.Incoming),
		NetCashFlow:   s.NetCashFlow,
		GrossCashFlow: s.GrossCashFlow,
		TopBanks:      top,
	}
}

func kindSummaryFromDomain(k domain.KindSummary) KindSummaryResponse {
	banks := make([]BankTotalResponse, len(k.Banks))
	for i, b := range k.Banks {
		banks[i] = BankTotalResponse{Bank: b.Bank, Count: b.Count, Amount: b.Amount}
	}
	return KindSummaryResponse{
		Total:          k.Total,
		Active:         k.Active,
		Settled:        k.Settled,
		DueToday:       k.DueToday,
		Ready:          k.Ready,
		Outstanding:    k.Outstanding,
		SettledAmount:  k.SettledAmount,
		SettlementRate: k.SettlementRate,
		Banks:          banks,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
