package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/chequebook/internal/adapter/http/dto"
	"github.com/iho/chequebook/internal/domain"
)

// ChequeService defines the behavior needed by ChequeHandler.
type ChequeService interface {
	CreateCheque(ctx context.Context, kind domain.Kind, draft domain.Draft) (*domain.Cheque, error)
	ListCheques(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error)
	SettleCheque(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error)
	DeleteCheque(ctx context.Context, kind domain.Kind, id string) error
}

// ChequeHandler handles the lifecycle routes of both cheque kinds.
type ChequeHandler struct {
	chequeUC ChequeService
}

// NewChequeHandler creates a new ChequeHandler.
func NewChequeHandler(chequeUC ChequeService) *ChequeHandler {
	return &ChequeHandler{chequeUC: chequeUC}
}

// List returns every cheque of kind, newest first.
func (h *ChequeHandler) List(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cheques, err := h.chequeUC.ListCheques(r.Context(), kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.ChequesFromDomain(cheques))
	}
}

// Create records a new pending cheque.
func (h *ChequeHandler) Create(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.ChequeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}

		cheque, err := h.chequeUC.CreateCheque(r.Context(), kind, req.ToDraft(kind))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, dto.ChequeFromDomain(cheque))
	}
}

// Settle completes an outgoing cheque or deposits an incoming one.
func (h *ChequeHandler) Settle(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cheque, err := h.chequeUC.SettleCheque(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.ChequeFromDomain(cheque))
	}
}

// Delete removes a cheque in any state.
func (h *ChequeHandler) Delete(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.chequeUC.DeleteCheque(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
	}
}
