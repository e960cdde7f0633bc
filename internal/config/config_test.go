package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./data/lockedin.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, OwnershipEnforce, cfg.HabitDeleteOwnership)
	assert.False(t, cfg.DayCloseGuard)
	assert.True(t, cfg.SeedDefaultHabits)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Origins())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DAY_CLOSE_GUARD", "true")
	t.Setenv("HABIT_DELETE_OWNERSHIP", "legacy")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.DayCloseGuard)
	assert.Equal(t, OwnershipLegacy, cfg.HabitDeleteOwnership)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("COMPLETION_RETENTION_DAYS=7\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("COMPLETION_RETENTION_DAYS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.CompletionRetentionDays)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return *cfg
	}

	cfg := base()
	cfg.HabitDeleteOwnership = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.MaintenanceSchedule = "every tuesday"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.AppEnv = "production"
	assert.Error(t, cfg.Validate(), "default secret must be rejected in production")
	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}
