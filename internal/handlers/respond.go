package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"taskd/internal/service"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondServiceError translates the service taxonomy into HTTP statuses.
// Anything outside the taxonomy becomes an opaque 500; wrapped driver
// errors never reach the wire.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, service.ErrInvalidCredentials)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		respondError(w, http.StatusUnauthorized, service.ErrInvalidRefreshToken)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, service.ErrUserNotFound)
	case errors.Is(err, service.ErrInvalidResetToken):
		respondError(w, http.StatusBadRequest, service.ErrInvalidResetToken)
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, service.ErrEmailTaken)
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, service.ErrNotFound)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, errors.New(inputDetail(err)))
	default:
		log.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

// inputDetail keeps the human-readable tail of an invalid-input error
// ("invalid input: title is required") while stripping the operation prefix
// the services wrap around it.
func inputDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrInvalidInput.Error()); i >= 0 {
		return msg[i:]
	}
	return service.ErrInvalidInput.Error()
}
