package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/chequebook/internal/adapter/http/dto"
	"github.com/iho/chequebook/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status and title mapped from it.
func writeDomainError(w http.ResponseWriter, err error) {
	status, title := mapDomainError(err)
	writeError(w, status, title, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes and error titles.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "invalid id"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, domain.ErrChequeNotFound):
		return http.StatusNotFound, "cheque not found"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid state"
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable, "store unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
