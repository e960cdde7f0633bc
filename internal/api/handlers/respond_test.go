package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/lockedin-be/internal/auth"
	"github.com/isdelr/lockedin-be/internal/services"
)

func TestRespondErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&services.ValidationError{Field: "xp", Message: "must be at least 1"}, http.StatusBadRequest},
		{fmt.Errorf("habit 2: %w", &services.ValidationError{Field: "title", Message: "must not be empty"}), http.StatusBadRequest},
		{fmt.Errorf("habit x: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrDayAlreadyClosed, http.StatusConflict},
		{&services.StorageError{Op: "toggle habit", Err: errors.New("locked")}, http.StatusInternalServerError},
		{errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestStorageErrorDetailIsHidden(t *testing.T) {
	rr := httptest.NewRecorder()
	respondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), &services.StorageError{Op: "x", Err: errors.New("secret path /var/db")})
	assert.NotContains(t, rr.Body.String(), "secret")
}
