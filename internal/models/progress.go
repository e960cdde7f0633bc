package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SprintStatus is the state of one sprint day.
type SprintStatus string

const (
	SprintPending   SprintStatus = "pending"
	SprintCompleted SprintStatus = "completed"
	SprintFailed    SprintStatus = "failed"
)

// SprintLength is the number of days in a sprint.
const SprintLength = 28

// SprintDays is the ordered sprint window. It is stored as a JSON array in a TEXT column.
type SprintDays []SprintStatus

// Value implements driver.Valuer.
func (d SprintDays) Value() (driver.Value, error) {
	b, err := json.Marshal([]SprintStatus(d.Normalize()))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *SprintDays) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = SprintDays(nil).Normalize()
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into SprintDays", src)
	}

	var days []SprintStatus
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &days); err != nil {
			return fmt.Errorf("invalid sprint_days: %w", err)
		}
	}
	*d = SprintDays(days).Normalize()
	return nil
}

// Normalize returns a copy that is exactly SprintLength long. Missing slots are
// pending and unknown values are treated as pending.
func (d SprintDays) Normalize() SprintDays {
	out := make(SprintDays, SprintLength)
	for i := range out {
		out[i] = SprintPending
		if i < len(d) {
			switch d[i] {
			case SprintCompleted, SprintFailed:
				out[i] = d[i]
			}
		}
	}
	return out
}

// UserProgress holds XP, streak and the sprint window for one user.
type UserProgress struct {
	UserID     string     `json:"userId" db:"user_id"`
	CurrentXP  int        `json:"currentXp" db:"current_xp"`
	Level      int        `json:"level" db:"level"`
	Streak     int        `json:"streak" db:"streak"`
	SprintDays SprintDays `json:"sprintDays" db:"sprint_days"`
	// LastCompletedDate is stamped by every day-close, failed ones included.
	LastCompletedDate *string   `json:"lastCompletedDate" db:"last_completed_date"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
