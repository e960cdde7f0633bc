package models

import "time"

// Activity types recorded in a user's activity log.
const (
	ActivityHabitCreate = "habit.create"
	ActivityHabitDelete = "habit.delete"
	ActivityHabitToggle = "habit.toggle"
	ActivityDayComplete = "day.complete"
	ActivityDayFail     = "day.fail"
	ActivitySprintReset = "sprint.reset"
	ActivityAccount     = "account.update"
)

// Activity is a loggable action taken by a user.
type Activity struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type"` // e.g., "habit.toggle", "day.fail"
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
