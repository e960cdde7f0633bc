// Package progress holds the pure XP, level, streak and sprint rules.
package progress

import (
	"fmt"

	"github.com/isdelr/lockedin-be/internal/models"
)

// XPPerLevel is the XP needed to cross one level boundary.
const XPPerLevel = 500

// Level describes where an XP total sits on the level ladder.
type Level struct {
	Level       int `json:"level"`
	NextLevelXP int `json:"nextLevelXp"`
}

// ComputeLevel derives the level and next threshold from xp. Negative xp counts as zero.
func ComputeLevel(xp int) Level {
	if xp < 0 {
		xp = 0
	}
	level := xp / XPPerLevel
	return Level{Level: level, NextLevelXP: (level + 1) * XPPerLevel}
}

// Outcome is how a day was closed.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// ParseOutcome validates a raw outcome string.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeCompleted, OutcomeFailed:
		return Outcome(s), nil
	}
	return "", fmt.Errorf("unknown day outcome %q", s)
}

// Status maps the outcome to the sprint slot value it writes.
func (o Outcome) Status() models.SprintStatus {
	if o == OutcomeCompleted {
		return models.SprintCompleted
	}
	return models.SprintFailed
}

// NewSprint returns a fresh window of pending days.
func NewSprint() models.SprintDays {
	return models.SprintDays(nil).Normalize()
}

// AdvanceSprint writes the outcome into the first pending slot. When no slot is
// pending the sprint is finished and the copy is returned unchanged. The input
// slice is never modified.
func AdvanceSprint(days models.SprintDays, outcome Outcome) models.SprintDays {
	out := make(models.SprintDays, len(days))
	copy(out, days)
	for i, status := range out {
		if status == models.SprintPending {
			out[i] = outcome.Status()
			break
		}
	}
	return out
}

// SprintFinished reports whether every slot has been resolved.
func SprintFinished(days models.SprintDays) bool {
	for _, status := range days {
		if status == models.SprintPending {
			return false
		}
	}
	return true
}

// NextStreak applies a day outcome to the current streak.
func NextStreak(prior int, outcome Outcome) int {
	if outcome == OutcomeCompleted {
		return prior + 1
	}
	return 0
}
