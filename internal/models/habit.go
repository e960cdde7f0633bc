package models

import "time"

// Category groups habits. The set is fixed.
type Category string

const (
	CategoryHealth  Category = "health"
	CategoryMindset Category = "mindset"
	CategoryFitness Category = "fitness"
	CategoryRoutine Category = "routine"
)

// Categories lists every valid habit category.
var Categories = []Category{CategoryHealth, CategoryMindset, CategoryFitness, CategoryRoutine}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Habit is a recurring task owned by a single user.
type Habit struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	XP        int       `json:"xp" db:"xp"`
	Category  Category  `json:"category" db:"category"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HabitInput is the client-supplied part of a habit.
type HabitInput struct {
	Title    string   `json:"title"`
	XP       int      `json:"xp"`
	Category Category `json:"category"`
}

// DailyCompletion records that a habit was done on a given date (YYYY-MM-DD).
type DailyCompletion struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	HabitID     string    `json:"habitId" db:"habit_id"`
	Date        string    `json:"date" db:"date"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
}
