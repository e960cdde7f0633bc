package handlers

import (
	"net/http"

	"github.com/isdelr/lockedin-be/internal/services"
)

// ActivityHandler handles HTTP requests for the user's activity log.
type ActivityHandler struct {
	service services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetRecent handles the request to get recent activity.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	activities, err := h.service.Recent(r.Context(), userID, queryLimit(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
