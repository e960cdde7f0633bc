package models

import "time"

// UserExport is the full data download for one account.
type UserExport struct {
	ExportedAt  time.Time         `json:"exportedAt"`
	User        User              `json:"user"`
	Progress    UserProgress      `json:"progress"`
	Habits      []Habit           `json:"habits"`
	Completions []DailyCompletion `json:"completions"`
	Activities  []Activity        `json:"activities"`
}
