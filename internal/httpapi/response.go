package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps tracker error kinds to HTTP statuses. Storage and unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation_error",
			Field:  apperror.FieldOf(err),
			Reason: apperror.ReasonOf(err),
		})
	case errors.Is(err, apperror.ErrCaloriesMismatch):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "calories_mismatch", Field: "calories"})
	case errors.Is(err, apperror.ErrNoTargetSet):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no_target_set"})
	case errors.Is(err, apperror.ErrNoDataForDate):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no_data_for_date"})
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}
