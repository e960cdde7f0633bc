package handlers

import (
	"net/http"

	"github.com/isdelr/lockedin-be/internal/progress"
	"github.com/isdelr/lockedin-be/internal/services"
)

// DayHandler closes days and resets sprints.
type DayHandler struct {
	service services.DayServiceProvider
	clock   *progress.DayClock
}

// NewDayHandler creates a new DayHandler.
func NewDayHandler(service services.DayServiceProvider, clock *progress.DayClock) *DayHandler {
	return &DayHandler{service: service, clock: clock}
}

// DayResponse wraps a day result with the success flag.
type DayResponse struct {
	Success bool `json:"success"`
	services.DayResult
}

// Complete closes today as completed.
func (h *DayHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, progress.OutcomeCompleted)
}

// Fail closes today as failed.
func (h *DayHandler) Fail(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, progress.OutcomeFailed)
}

func (h *DayHandler) close(w http.ResponseWriter, r *http.Request, outcome progress.Outcome) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	result, err := h.service.CloseDay(r.Context(), userID, outcome, h.clock.Today())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DayResponse{Success: true, DayResult: result})
}

// ResetSprint starts a fresh sprint window.
func (h *DayHandler) ResetSprint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	result, err := h.service.ResetSprint(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DayResponse{Success: true, DayResult: result})
}
