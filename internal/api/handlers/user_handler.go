package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/auth"
	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
	"github.com/isdelr/lockedin-be/internal/services"
)

// UserHandler handles HTTP requests for accounts and the current user.
type UserHandler struct {
	service      services.UserServiceProvider
	export       services.ExportServiceProvider
	tokens       *auth.TokenManager
	clock        *progress.DayClock
	secureCookie bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, export services.ExportServiceProvider, tokens *auth.TokenManager, clock *progress.DayClock, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, export: export, tokens: tokens, clock: clock, secureCookie: secureCookie}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Password, payload.Name)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		respondError(w, r, err)
		return
	}
	h.issueToken(w, r, http.StatusCreated, user)
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		respondError(w, r, err)
		return
	}
	h.issueToken(w, r, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) issueToken(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	respondJSON(w, status, AuthResponse{Token: token, User: user})
}

// GetMe returns the dashboard summary of the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetUser(r.Context(), userID, h.clock.Today())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// UpdateName changes the display name.
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateName(r.Context(), userID, payload.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdatePhoto sets or clears the profile photo reference.
func (h *UserHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var payload struct {
		PhotoURL string `json:"photoUrl"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateProfilePhoto(r.Context(), userID, payload.PhotoURL)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete permanently removes the authenticated account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	log.Info().Str("user_id", userID).Msg("Account deleted")
	h.Logout(w, r)
}

// Export downloads all of the user's data as a JSON attachment.
func (h *UserHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	data, err := h.export.Export(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"lockedin-data-%d.json\"", data.ExportedAt.Unix()))
	respondJSON(w, http.StatusOK, data)
}
