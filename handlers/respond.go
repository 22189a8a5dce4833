package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"studyhall/models"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFromError maps the service error taxonomy onto HTTP statuses. Missing
// records are 404, rejected input is 400, and model pipeline failures are 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrCourseNotFound),
		errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnsupportedInput),
		errors.Is(err, models.ErrMaterialMissing),
		errors.Is(err, models.ErrBankMissing),
		errors.Is(err, models.ErrPromptMissing):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAnalysisFailed),
		errors.Is(err, models.ErrGenerationFailed):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeErrorResponse(w, statusFromError(err), err.Error())
}
