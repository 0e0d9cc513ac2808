package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError converts a service error into a JSON error payload with
// the status its failure kind maps to. Unrecognized errors become 500s
// with a generic message; detail stays in the server log only.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrAuth):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrGeneration):
		status = http.StatusBadGateway
		message = "roadmap generation failed"
	case errors.Is(err, apperrors.ErrMailUnavailable):
		status = http.StatusBadGateway
		message = "failed to send email"
	case errors.Is(err, apperrors.ErrStore):
		status = http.StatusInternalServerError
		message = "storage error"
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}

	respondJSON(w, status, map[string]string{"error": message})
}
