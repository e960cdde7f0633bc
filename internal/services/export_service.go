package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/models"
)

// ExportServiceProvider defines the interface for data export services.
type ExportServiceProvider interface {
	Export(ctx context.Context, userID string) (models.UserExport, error)
}

// ExportService collects everything stored for one account.
type ExportService struct {
	db *sqlx.DB
}

// NewExportService creates a new ExportService.
func NewExportService(db *sqlx.DB) *ExportService {
	return &ExportService{db: db}
}

// Export reads a consistent snapshot of the user's data.
func (s *ExportService) Export(ctx context.Context, userID string) (models.UserExport, error) {
	out := models.UserExport{
		ExportedAt:  time.Now().UTC(),
		Habits:      []models.Habit{},
		Completions: []models.DailyCompletion{},
		Activities:  []models.Activity{},
	}

	err := withTx(ctx, s.db, "export user", func(tx *sqlx.Tx) error {
		var err error
		if out.User, err = getUserByID(ctx, tx, userID); err != nil {
			return err
		}
		if out.Progress, err = loadProgress(ctx, tx, userID); err != nil {
			return err
		}
		if err := tx.SelectContext(ctx, &out.Habits, `
			SELECT id, user_id, title, xp, category, created_at
			FROM habits WHERE user_id = ? ORDER BY created_at, rowid`, userID); err != nil {
			return err
		}
		if err := tx.SelectContext(ctx, &out.Completions, `
			SELECT id, user_id, habit_id, date, completed_at
			FROM daily_completions WHERE user_id = ? ORDER BY date, completed_at, rowid`, userID); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &out.Activities, `
			SELECT id, user_id, type, message, created_at
			FROM activities WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	})
	if err != nil {
		return models.UserExport{}, err
	}
	return out, nil
}
