package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
	"github.com/isdelr/lockedin-be/internal/services"
)

// HabitHandler handles HTTP requests for habits and their daily completion.
type HabitHandler struct {
	habits      services.HabitServiceProvider
	completions services.CompletionServiceProvider
	clock       *progress.DayClock
}

// NewHabitHandler creates a new HabitHandler.
func NewHabitHandler(habits services.HabitServiceProvider, completions services.CompletionServiceProvider, clock *progress.DayClock) *HabitHandler {
	return &HabitHandler{habits: habits, completions: completions, clock: clock}
}

// BulkPayload is the body of a bulk habit create.
type BulkPayload struct {
	Habits []models.HabitInput `json:"habits"`
}

// BulkErrorResponse describes a bulk create that stopped part way. Habits in
// Created were committed before the element at Index was rejected.
type BulkErrorResponse struct {
	Error   string         `json:"error"`
	Field   string         `json:"field,omitempty"`
	Index   int            `json:"index"`
	Created []models.Habit `json:"created"`
}

// ToggleResponse wraps the toggle result with the success flag clients expect.
type ToggleResponse struct {
	Success bool `json:"success"`
	services.ToggleResult
}

// GetAll lists the user's habits.
func (h *HabitHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	habits, err := h.habits.ListHabits(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, habits)
}

// Create adds one habit.
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input models.HabitInput
	if !decodeJSON(w, r, &input) {
		return
	}

	habit, err := h.habits.CreateHabit(r.Context(), userID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, habit)
}

// BulkCreate adds several habits, stopping at the first invalid one.
func (h *HabitHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var payload BulkPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	created, err := h.habits.BulkCreateHabits(r.Context(), userID, payload.Habits)
	var be *services.BulkCreateError
	if errors.As(err, &be) && errors.Is(err, services.ErrValidation) {
		resp := BulkErrorResponse{Error: err.Error(), Index: be.Index, Created: created}
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			resp.Field = ve.Field
		}
		if resp.Created == nil {
			resp.Created = []models.Habit{}
		}
		respondJSON(w, http.StatusBadRequest, resp)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Delete removes a habit.
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	if err := h.habits.DeleteHabit(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle flips today's completion of a habit.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	result, err := h.completions.Toggle(r.Context(), userID, chi.URLParam(r, "id"), h.clock.Today())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ToggleResponse{Success: true, ToggleResult: result})
}
