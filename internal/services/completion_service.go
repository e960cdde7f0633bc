package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/metrics"
	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

// ToggleResult is the outcome of flipping one habit for one day.
type ToggleResult struct {
	Completed        bool     `json:"completed"`
	TodayCompletions []string `json:"todayCompletions"`
	CurrentXP        int      `json:"currentXp"`
	Level            int      `json:"level"`
	NextLevelXP      int      `json:"nextLevelXp"`
}

// CompletionServiceProvider defines the interface for completion services.
type CompletionServiceProvider interface {
	Toggle(ctx context.Context, userID, habitID, date string) (ToggleResult, error)
	TodayCompletions(ctx context.Context, userID, date string) ([]string, error)
	PruneBefore(ctx context.Context, date string) (int64, error)
}

// CompletionService flips daily habit completions and keeps XP in step with them.
type CompletionService struct {
	db       *sqlx.DB
	activity ActivityServiceProvider
	notifier Notifier
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(db *sqlx.DB, activity ActivityServiceProvider, notifier Notifier) *CompletionService {
	return &CompletionService{db: db, activity: activity, notifier: notifierOrNoop(notifier)}
}

// Toggle marks the habit done on date if it was not, or undoes it if it was.
// The habit's XP is added or subtracted accordingly; there is no floor, so XP
// can go below zero when completions are undone out of order across days.
func (s *CompletionService) Toggle(ctx context.Context, userID, habitID, date string) (ToggleResult, error) {
	var result ToggleResult
	var habit models.Habit

	err := withTx(ctx, s.db, "toggle habit", func(tx *sqlx.Tx) error {
		var err error
		habit, err = getOwnedHabit(ctx, tx, userID, habitID)
		if err != nil {
			return err
		}

		var completionID string
		err = tx.GetContext(ctx, &completionID,
			"SELECT id FROM daily_completions WHERE user_id = ? AND habit_id = ? AND date = ?",
			userID, habitID, date)

		delta := habit.XP
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, "DELETE FROM daily_completions WHERE id = ?", completionID); err != nil {
				return err
			}
			delta = -habit.XP
			result.Completed = false
		case errors.Is(err, sql.ErrNoRows):
			_, err := tx.ExecContext(ctx,
				"INSERT INTO daily_completions (id, user_id, habit_id, date, completed_at) VALUES (?, ?, ?, ?, ?)",
				uuid.New().String(), userID, habitID, date, time.Now().UTC())
			if err != nil {
				return err
			}
			result.Completed = true
		default:
			return err
		}

		if err := ensureProgress(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE user_progress SET current_xp = current_xp + ?, updated_at = ? WHERE user_id = ?",
			delta, time.Now().UTC(), userID); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &result.CurrentXP, "SELECT current_xp FROM user_progress WHERE user_id = ?", userID); err != nil {
			return err
		}
		lvl := progress.ComputeLevel(result.CurrentXP)
		result.Level, result.NextLevelXP = lvl.Level, lvl.NextLevelXP
		if _, err := tx.ExecContext(ctx, "UPDATE user_progress SET level = ? WHERE user_id = ?", lvl.Level, userID); err != nil {
			return err
		}

		result.TodayCompletions, err = todayCompletions(ctx, tx, userID, date)
		return err
	})
	if err != nil {
		return ToggleResult{}, err
	}

	metrics.RecordToggle(result.Completed, habit.XP)
	verb := "completed"
	if !result.Completed {
		verb = "unchecked"
	}
	recordActivity(ctx, s.activity, userID, models.ActivityHabitToggle, fmt.Sprintf("Habit '%s' %s on %s.", habit.Title, verb, date))
	s.notifier.NotifyUser(userID, ActionProgressUpdated, result)
	s.notifier.Broadcast(ActionLeaderboardUpdated, map[string]string{"userId": userID})
	return result, nil
}

// TodayCompletions lists the habit ids the user completed on date.
func (s *CompletionService) TodayCompletions(ctx context.Context, userID, date string) ([]string, error) {
	ids, err := todayCompletions(ctx, s.db, userID, date)
	if err != nil {
		return nil, storageErr("list completions", err)
	}
	return ids, nil
}

// PruneBefore deletes completions dated strictly before date for every user.
// XP already awarded for them is kept.
func (s *CompletionService) PruneBefore(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM daily_completions WHERE date < ?", date)
	if err != nil {
		return 0, storageErr("prune completions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("prune completions", err)
	}
	return n, nil
}
