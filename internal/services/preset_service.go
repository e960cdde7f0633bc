package services

import (
	"context"
	"fmt"

	"github.com/isdelr/lockedin-be/internal/models"
)

// DefaultPresetID is the pack new accounts are seeded with.
const DefaultPresetID = "default"

var presetCatalog = []models.Preset{
	{
		ID:          DefaultPresetID,
		Name:        "Locked In",
		Description: "The classic daily discipline routine.",
		Habits: []models.HabitInput{
			{Title: "Wake up at 5 AM", XP: 50, Category: models.CategoryRoutine},
			{Title: "Cold shower", XP: 40, Category: models.CategoryHealth},
			{Title: "Write in journal", XP: 30, Category: models.CategoryMindset},
			{Title: "No social media", XP: 45, Category: models.CategoryMindset},
			{Title: "Practice gratitude", XP: 35, Category: models.CategoryMindset},
			{Title: "Eat clean", XP: 45, Category: models.CategoryHealth},
			{Title: "8 hours sleep", XP: 40, Category: models.CategoryHealth},
			{Title: "45min Workout", XP: 60, Category: models.CategoryFitness},
		},
	},
	{
		ID:          "athlete",
		Name:        "Athlete",
		Description: "Training, recovery and fuel.",
		Habits: []models.HabitInput{
			{Title: "Morning mobility", XP: 30, Category: models.CategoryFitness},
			{Title: "Strength session", XP: 70, Category: models.CategoryFitness},
			{Title: "10k steps", XP: 40, Category: models.CategoryFitness},
			{Title: "Hit protein target", XP: 40, Category: models.CategoryHealth},
			{Title: "Drink 3L water", XP: 25, Category: models.CategoryHealth},
		},
	},
	{
		ID:          "mindful",
		Name:        "Mindful",
		Description: "Slow down and focus.",
		Habits: []models.HabitInput{
			{Title: "Meditate 10 minutes", XP: 40, Category: models.CategoryMindset},
			{Title: "Read 20 pages", XP: 35, Category: models.CategoryMindset},
			{Title: "Screens off by 10 PM", XP: 45, Category: models.CategoryRoutine},
			{Title: "Make the bed", XP: 15, Category: models.CategoryRoutine},
		},
	},
}

// PresetServiceProvider defines the interface for preset services.
type PresetServiceProvider interface {
	ListPresets() []models.Preset
	GetPreset(id string) (models.Preset, error)
	ApplyPreset(ctx context.Context, userID, presetID string) ([]models.Habit, error)
}

// PresetService serves the built-in starter packs.
type PresetService struct {
	habits HabitServiceProvider
}

// NewPresetService creates a new PresetService.
func NewPresetService(habits HabitServiceProvider) *PresetService {
	return &PresetService{habits: habits}
}

// ListPresets returns every starter pack.
func (s *PresetService) ListPresets() []models.Preset {
	out := make([]models.Preset, len(presetCatalog))
	for i, p := range presetCatalog {
		out[i] = clonePreset(p)
	}
	return out
}

// GetPreset retrieves a single starter pack by its ID.
func (s *PresetService) GetPreset(id string) (models.Preset, error) {
	for _, p := range presetCatalog {
		if p.ID == id {
			return clonePreset(p), nil
		}
	}
	return models.Preset{}, fmt.Errorf("preset %s: %w", id, ErrNotFound)
}

// ApplyPreset creates every habit of the pack for the user.
func (s *PresetService) ApplyPreset(ctx context.Context, userID, presetID string) ([]models.Habit, error) {
	preset, err := s.GetPreset(presetID)
	if err != nil {
		return nil, err
	}
	return s.habits.BulkCreateHabits(ctx, userID, preset.Habits)
}

func clonePreset(p models.Preset) models.Preset {
	p.Habits = append([]models.HabitInput(nil), p.Habits...)
	return p
}
