package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/lockedin-be/internal/services"
)

// LeaderboardHandler serves the XP ranking.
type LeaderboardHandler struct {
	service services.LeaderboardServiceProvider
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(service services.LeaderboardServiceProvider) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Get returns the top users. A missing or invalid limit uses the default.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context(), queryLimit(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// queryLimit parses ?limit=, returning 0 when absent or invalid so the
// service applies its default.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
