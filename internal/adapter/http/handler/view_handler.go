package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iho/chequebook/internal/adapter/http/dto"
	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/usecase"
)

// ViewService defines the read-only views needed by ViewHandler.
type ViewService interface {
	Snapshot(ctx context.Context) (usecase.Snapshot, error)
	Active(ctx context.Context, kind domain.Kind, filter domain.Filter) ([]domain.Cheque, error)
	History(ctx context.Context, kind domain.Kind) ([]domain.Cheque, error)
	Summary(ctx context.Context) (domain.Summary, error)
	DueToday(ctx context.Context) ([]domain.Cheque, error)
}

// ReportBuilder renders the PDF summary.
type ReportBuilder interface {
	BuildSummaryPDF(sum domain.Summary, outgoing, incoming []domain.Cheque) ([]byte, error)
}

// ViewHandler serves derived views: filters, history, summary and reports.
type ViewHandler struct {
	viewUC  ViewService
	reports ReportBuilder
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(viewUC ViewService, reports ReportBuilder) *ViewHandler {
	return &ViewHandler{viewUC: viewUC, reports: reports}
}

// Active lists pending cheques of kind filtered by q, bank and status.
func (h *ViewHandler) Active(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		active, err := h.viewUC.Active(r.Context(), kind, domain.Filter{
			Query:  q.Get("q"),
			Bank:   q.Get("bank"),
			Status: q.Get("status"),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.ChequeValuesFromDomain(active))
	}
}

// History lists settled cheques of kind.
func (h *ViewHandler) History(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := h.viewUC.History(r.Context(), kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.ChequeValuesFromDomain(history))
	}
}

// Summary returns the dashboard figures.
func (h *ViewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.viewUC.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Due lists pending cheques of both kinds due today.
func (h *ViewHandler) Due(w http.ResponseWriter, r *http.Request) {
	due, err := h.viewUC.DueToday(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChequeValuesFromDomain(due))
}

// SummaryPDF streams the PDF summary report.
func (h *ViewHandler) SummaryPDF(w http.ResponseWriter, r *http.Request) {
	snap, err := h.viewUC.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sum := domain.Summarize(snap.Outgoing, snap.Incoming, snap.Today)
	data, err := h.reports.BuildSummaryPDF(sum, snap.Outgoing, snap.Incoming)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cheque-summary-`+snap.Today+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
