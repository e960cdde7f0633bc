package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/lockedin-be/internal/services"
)

// PresetHandler serves the starter habit packs.
type PresetHandler struct {
	service services.PresetServiceProvider
}

// NewPresetHandler creates a new PresetHandler.
func NewPresetHandler(service services.PresetServiceProvider) *PresetHandler {
	return &PresetHandler{service: service}
}

// GetAll lists every pack.
func (h *PresetHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ListPresets())
}

// Apply creates a pack's habits for the authenticated user.
func (h *PresetHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	created, err := h.service.ApplyPreset(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
