package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/auth"
	"github.com/isdelr/lockedin-be/internal/services"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: ve.Field})
	case errors.Is(err, services.ErrValidation):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, auth.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthenticated"})
	case errors.Is(err, services.ErrConflict):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrDayAlreadyClosed):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: "Day already closed"})
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}

// currentUserID returns the authenticated user's id or writes a 401.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return "", false
	}
	return claims.UserID, true
}
