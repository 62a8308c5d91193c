package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/usecase"
)

type errorResponse struct {
	Error any `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeUsecaseError maps the usecase error taxonomy onto HTTP statuses.
// Validation errors carry the field map as the error body.
func writeUsecaseError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case usecase.CodeValidation:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: de.Fields})
		case usecase.CodeTransform:
			writeError(w, http.StatusBadRequest, de.Message)
		case usecase.CodeNotFound:
			writeError(w, http.StatusNotFound, de.Message)
		case usecase.CodeForbidden:
			writeError(w, http.StatusForbidden, de.Message)
		case usecase.CodeConflict:
			writeError(w, http.StatusConflict, de.Message)
		case usecase.CodeUnauthorized:
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		default:
			writeError(w, http.StatusBadRequest, de.Message)
		}
		return
	}

	log.WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
