package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Name         string    `json:"name" db:"name"`
	ProfilePhoto *string   `json:"profilePhoto" db:"profile_photo"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// DefaultUserName is used when a user registers without a display name.
const DefaultUserName = "Guest User"

// UserSummary is the user view returned by GET /api/user.
type UserSummary struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Name             string     `json:"name"`
	Level            int        `json:"level"`
	CurrentXP        int        `json:"currentXp"`
	NextLevelXP      int        `json:"nextLevelXp"`
	Streak           int        `json:"streak"`
	TodayCompletions []string   `json:"todayCompletions"`
	SprintDays       SprintDays `json:"sprintDays"`
	ProfilePhoto     *string    `json:"profilePhoto"`
}
