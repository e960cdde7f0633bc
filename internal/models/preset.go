package models

// Preset is a named starter pack of habits that can be applied in one go.
type Preset struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Habits      []HabitInput `json:"habits"`
}
