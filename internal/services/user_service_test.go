package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

func TestRegisterCreatesFreshProgress(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.DefaultUserName, user.Name)
	assert.Empty(t, user.PasswordHash)

	p := env.progress(t, user.ID)
	assert.Zero(t, p.CurrentXP)
	assert.Zero(t, p.Streak)
	assert.Equal(t, progress.NewSprint(), p.SprintDays)
	assert.Zero(t, countRows(t, env.db, "SELECT COUNT(*) FROM habits"))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"short username", "ab", "password123", "username"},
		{"bad characters", "al ice", "password123", "username"},
		{"short password", "alice", "short", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(ctx, tt.username, tt.password, "")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Zero(t, countRows(t, env.db, "SELECT COUNT(*) FROM users"))
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.users.Register(context.Background(), "alice", "password456", "Other")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, countRows(t, env.db, "SELECT COUNT(*) FROM users"))
}

func TestRegisterSeedsDefaultPack(t *testing.T) {
	env := newTestEnv(t)
	seeding := NewUserService(env.db, env.presets, true, env.activity)

	user, err := seeding.Register(context.Background(), "alice", "password123", "Alice")
	require.NoError(t, err)

	habits, err := env.habits.ListHabits(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, habits, 8)
	assert.Equal(t, "Wake up at 5 AM", habits[0].Title)
	assert.Equal(t, 60, habits[7].XP)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "alice")

	user, err := env.users.Authenticate(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = env.users.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.users.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")
	a := env.habit(t, user.ID, "A", 50)
	_, err := env.completions.Toggle(ctx, user.ID, a.ID, testDate)
	require.NoError(t, err)

	summary, err := env.users.GetUser(ctx, user.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, 50, summary.CurrentXP)
	assert.Equal(t, 500, summary.NextLevelXP)
	assert.Equal(t, []string{a.ID}, summary.TodayCompletions)
	assert.Len(t, summary.SprintDays, models.SprintLength)

	other, err := env.users.GetUser(ctx, user.ID, "2024-05-02")
	require.NoError(t, err)
	assert.Empty(t, other.TodayCompletions)

	_, err = env.users.GetUser(ctx, "missing", testDate)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserNormalizesLegacySprint(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	_, err := env.db.Exec(`UPDATE user_progress SET sprint_days = '["completed"]' WHERE user_id = ?`, user.ID)
	require.NoError(t, err)

	summary, err := env.users.GetUser(context.Background(), user.ID, testDate)
	require.NoError(t, err)
	require.Len(t, summary.SprintDays, models.SprintLength)
	assert.Equal(t, models.SprintCompleted, summary.SprintDays[0])
	assert.Equal(t, models.SprintPending, summary.SprintDays[27])
}

func TestUpdateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")

	updated, err := env.users.UpdateName(ctx, user.ID, "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)

	_, err = env.users.UpdateName(ctx, user.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.users.UpdateName(ctx, "missing", "Bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfilePhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")

	updated, err := env.users.UpdateProfilePhoto(ctx, user.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	require.NotNil(t, updated.ProfilePhoto)
	assert.Equal(t, "https://cdn.example.com/a.png", *updated.ProfilePhoto)

	for _, bad := range []string{"ftp://example.com/a.png", "/relative.png", "https://"} {
		_, err = env.users.UpdateProfilePhoto(ctx, user.ID, bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}

	cleared, err := env.users.UpdateProfilePhoto(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfilePhoto)
}

func TestDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")
	keep := env.register(t, "bob")
	a := env.habit(t, user.ID, "A", 50)
	_, err := env.completions.Toggle(ctx, user.ID, a.ID, testDate)
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, user.ID))

	for _, table := range []string{"habits", "daily_completions", "user_progress", "activities"} {
		assert.Zero(t, countRows(t, env.db, "SELECT COUNT(*) FROM "+table+" WHERE user_id = ?", user.ID), table)
	}
	assert.Equal(t, 1, countRows(t, env.db, "SELECT COUNT(*) FROM users WHERE id = ?", keep.ID))
	assert.ErrorIs(t, env.users.DeleteUser(ctx, user.ID), ErrNotFound)
}
