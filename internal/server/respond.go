package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aroray/settleup/internal/auth"
	"github.com/aroray/settleup/internal/ledger"
	"github.com/aroray/settleup/internal/service"
	"github.com/aroray/settleup/internal/settlement"
	"github.com/aroray/settleup/internal/split"
	"github.com/aroray/settleup/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, settlement.ErrNoSuchRow):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, settlement.ErrBackwardTransition):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, settlement.ErrUnknownStatus),
		errors.Is(err, auth.ErrWeakSecret),
		errors.Is(err, split.ErrNothingSelected),
		errors.Is(err, split.ErrNonPositiveTotal),
		errors.Is(err, split.ErrInvalidRole):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
