package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/metrics"
	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

// DayResult is the sprint and streak state after a day-close or sprint reset.
type DayResult struct {
	SprintDays models.SprintDays `json:"sprintDays"`
	Streak     int               `json:"streak"`
}

// DayServiceProvider defines the interface for day-closing services.
type DayServiceProvider interface {
	CloseDay(ctx context.Context, userID string, outcome progress.Outcome, date string) (DayResult, error)
	ResetSprint(ctx context.Context, userID string) (DayResult, error)
}

// DayService closes out days and manages the sprint window.
type DayService struct {
	db *sqlx.DB
	// guard rejects a second close on the same date.
	guard    bool
	activity ActivityServiceProvider
	notifier Notifier
}

// NewDayService creates a new DayService. With guard off, every CloseDay call
// advances the sprint by one slot even when made twice on the same date.
func NewDayService(db *sqlx.DB, guard bool, activity ActivityServiceProvider, notifier Notifier) *DayService {
	return &DayService{db: db, guard: guard, activity: activity, notifier: notifierOrNoop(notifier)}
}

// CloseDay records the outcome of date in the next pending sprint slot,
// updates the streak and clears the day's completions.
//
// last_completed_date is stamped for failed days too: it tracks the last
// day-close, not the last successful one.
func (s *DayService) CloseDay(ctx context.Context, userID string, outcome progress.Outcome, date string) (DayResult, error) {
	if _, err := progress.ParseOutcome(string(outcome)); err != nil {
		return DayResult{}, invalid("outcome", err.Error())
	}

	var result DayResult
	err := withTx(ctx, s.db, "close day", func(tx *sqlx.Tx) error {
		if err := ensureProgress(ctx, tx, userID); err != nil {
			return err
		}
		current, err := loadProgress(ctx, tx, userID)
		if err != nil {
			return err
		}
		if s.guard && current.LastCompletedDate != nil && *current.LastCompletedDate == date {
			return fmt.Errorf("%s: %w", date, ErrDayAlreadyClosed)
		}

		result.SprintDays = progress.AdvanceSprint(current.SprintDays, outcome)
		result.Streak = progress.NextStreak(current.Streak, outcome)

		_, err = tx.ExecContext(ctx, `
			UPDATE user_progress
			SET sprint_days = ?, streak = ?, last_completed_date = ?, updated_at = ?
			WHERE user_id = ?`,
			result.SprintDays, result.Streak, date, time.Now().UTC(), userID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM daily_completions WHERE user_id = ? AND date = ?", userID, date)
		return err
	})
	if err != nil {
		return DayResult{}, err
	}

	metrics.RecordDayClosed(string(outcome))
	activityType := models.ActivityDayComplete
	msg := fmt.Sprintf("Day %s completed, streak is now %d.", date, result.Streak)
	if outcome == progress.OutcomeFailed {
		activityType = models.ActivityDayFail
		msg = fmt.Sprintf("Day %s failed, streak reset.", date)
	}
	recordActivity(ctx, s.activity, userID, activityType, msg)
	s.notifier.NotifyUser(userID, ActionProgressUpdated, result)
	s.notifier.Broadcast(ActionLeaderboardUpdated, map[string]string{"userId": userID})
	return result, nil
}

// ResetSprint starts a new window of pending days. The streak is left alone.
func (s *DayService) ResetSprint(ctx context.Context, userID string) (DayResult, error) {
	var result DayResult
	err := withTx(ctx, s.db, "reset sprint", func(tx *sqlx.Tx) error {
		if err := ensureProgress(ctx, tx, userID); err != nil {
			return err
		}
		current, err := loadProgress(ctx, tx, userID)
		if err != nil {
			return err
		}

		result.SprintDays = progress.NewSprint()
		result.Streak = current.Streak
		_, err = tx.ExecContext(ctx,
			"UPDATE user_progress SET sprint_days = ?, updated_at = ? WHERE user_id = ?",
			result.SprintDays, time.Now().UTC(), userID)
		return err
	})
	if err != nil {
		return DayResult{}, err
	}

	recordActivity(ctx, s.activity, userID, models.ActivitySprintReset, "A new sprint was started.")
	s.notifier.NotifyUser(userID, ActionProgressUpdated, result)
	return result, nil
}
