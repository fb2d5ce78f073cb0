package handlers

import (
	"errors"
	"log"
	"net/http"

	"vocabdrill/internal/service"
	"vocabdrill/internal/validation"
)

// handleServiceError maps service-layer errors onto HTTP statuses.
// Unknown errors are logged and surfaced as a generic 500.
func handleServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrSemesterNotFound):
		writeError(w, http.StatusNotFound, "semester not found")
	case errors.Is(err, service.ErrWordNotFound):
		writeError(w, http.StatusNotFound, "word not found")
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "study session not found")
	case errors.Is(err, service.ErrNothingDue):
		writeError(w, http.StatusConflict, "no words due for study")
	case errors.Is(err, service.ErrWrongMode):
		writeError(w, http.StatusConflict, "answer does not match the current exercise")
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
