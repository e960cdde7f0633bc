package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

// ensureProgress creates the user's progress row when it does not exist yet.
func ensureProgress(ctx context.Context, tx sqlx.ExecerContext, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_progress (user_id, current_xp, level, streak, sprint_days, updated_at)
		VALUES (?, 0, 0, 0, ?, ?)`, userID, progress.NewSprint(), time.Now().UTC())
	return err
}

// loadProgress reads a user's progress. A missing row reads as fresh progress.
func loadProgress(ctx context.Context, q sqlx.QueryerContext, userID string) (models.UserProgress, error) {
	var p models.UserProgress
	err := sqlx.GetContext(ctx, q, &p, `
		SELECT user_id, current_xp, level, streak, sprint_days, last_completed_date, updated_at
		FROM user_progress WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProgress{UserID: userID, SprintDays: progress.NewSprint()}, nil
	}
	if err != nil {
		return models.UserProgress{}, err
	}
	// level is derived; never trust the stored column
	p.Level = progress.ComputeLevel(p.CurrentXP).Level
	return p, nil
}

// todayCompletions lists the habit ids a user completed on date.
func todayCompletions(ctx context.Context, q sqlx.QueryerContext, userID, date string) ([]string, error) {
	ids := []string{}
	err := sqlx.SelectContext(ctx, q, &ids, `
		SELECT habit_id FROM daily_completions
		WHERE user_id = ? AND date = ? ORDER BY completed_at, rowid`, userID, date)
	return ids, err
}
