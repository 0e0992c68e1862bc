package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/identity"
	"github.com/sohaum/bazar/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var (
		verr *domain.ValidationError
		lerr *domain.LimitExceeded
		perr *domain.PermissionDenied
		nerr *domain.NotFound
		serr *domain.StorageFailure
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Field = verr.Field
	case errors.As(err, &lerr):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, identity.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.As(err, &perr):
		status = http.StatusForbidden
	case errors.As(err, &nerr):
		status = http.StatusNotFound
	case errors.As(err, &serr):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.Error(err))
	}
	writeJSON(w, status, resp)
}
