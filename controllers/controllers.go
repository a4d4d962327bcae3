package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"snackwheel_server/services"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the Snackwheel API"})
}

// WriteJSONResponse writes a JSON body with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteErrorResponse maps service errors onto HTTP statuses and writes a
// short JSON error body. Every failure is surfaced; none are fatal.
func WriteErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidCode):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrSelfReference),
		errors.Is(err, services.ErrAlreadyConnected),
		errors.Is(err, services.ErrDuplicateInvite),
		errors.Is(err, services.ErrTransactionFailed):
		status = http.StatusConflict
	}
	WriteJSONResponse(w, status, map[string]string{"error": err.Error()})
}
