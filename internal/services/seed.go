package services

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

// Demo account created by the seed command.
const (
	DemoUsername = "guest"
	DemoPassword = "lockedin-guest"
	demoXP       = 120
	demoStreak   = 3
)

// SeedDemo creates the demo account with the default habit pack and some
// progress. It is a no-op when the account already exists.
func SeedDemo(ctx context.Context, db *sqlx.DB, users UserServiceProvider, presets PresetServiceProvider) (models.User, error) {
	user, err := users.Register(ctx, DemoUsername, DemoPassword, models.DefaultUserName)
	if errors.Is(err, ErrConflict) {
		log.Info().Str("username", DemoUsername).Msg("Demo user already exists, skipping seed")
		var id string
		if err := db.GetContext(ctx, &id, "SELECT id FROM users WHERE username = ?", DemoUsername); err != nil {
			return models.User{}, storageErr("seed lookup", err)
		}
		return getUserByID(ctx, db, id)
	}
	if err != nil {
		return models.User{}, err
	}

	// registration may already have seeded the pack
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM habits WHERE user_id = ?", user.ID); err != nil {
		return user, storageErr("seed habits", err)
	}
	if count == 0 {
		habits, err := presets.ApplyPreset(ctx, user.ID, DefaultPresetID)
		if err != nil {
			return user, err
		}
		log.Info().Int("habits", len(habits)).Msg("Seeded default habits")
	}

	days := progress.NewSprint()
	days = progress.AdvanceSprint(days, progress.OutcomeCompleted)
	days = progress.AdvanceSprint(days, progress.OutcomeCompleted)

	_, err = db.ExecContext(ctx, `
		UPDATE user_progress
		SET current_xp = ?, level = ?, streak = ?, sprint_days = ?, updated_at = ?
		WHERE user_id = ?`,
		demoXP, progress.ComputeLevel(demoXP).Level, demoStreak, days, time.Now().UTC(), user.ID)
	if err != nil {
		return user, storageErr("seed progress", err)
	}
	return user, nil
}
