package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/models"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityServiceProvider defines the interface for activity services.
type ActivityServiceProvider interface {
	Record(ctx context.Context, userID, activityType, message string) error
	Recent(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}

// ActivityService stores the per-user activity log.
type ActivityService struct {
	db *sqlx.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sqlx.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record logs a new activity for a user.
func (s *ActivityService) Record(ctx context.Context, userID, activityType, message string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (id, user_id, type, message, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), userID, activityType, message, time.Now().UTC())
	return storageErr("record activity", err)
}

// Recent retrieves a user's most recent activities, newest first.
func (s *ActivityService) Recent(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities := []models.Activity{}
	err := s.db.SelectContext(ctx, &activities, `
		SELECT id, user_id, type, message, created_at
		FROM activities WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, storageErr("list activities", err)
	}
	return activities, nil
}

// recordActivity logs through the activity service and only warns on failure;
// the state change it describes is already committed.
func recordActivity(ctx context.Context, activity ActivityServiceProvider, userID, activityType, message string) {
	if activity == nil {
		return
	}
	if err := activity.Record(ctx, userID, activityType, message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("type", activityType).Msg("Failed to record activity")
	}
}
