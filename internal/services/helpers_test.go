package services

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/lockedin-be/internal/database"
	"github.com/isdelr/lockedin-be/internal/models"
)

const testDate = "2024-05-01"

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type recordedNotification struct {
	userID string
	action string
}

// fakeNotifier records every notification it receives.
type fakeNotifier struct {
	mu         sync.Mutex
	direct     []recordedNotification
	broadcasts []string
}

func (f *fakeNotifier) NotifyUser(userID, action string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, recordedNotification{userID: userID, action: action})
}

func (f *fakeNotifier) Broadcast(action string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, action)
}

type testEnv struct {
	db          *sqlx.DB
	notifier    *fakeNotifier
	activity    *ActivityService
	habits      *HabitService
	completions *CompletionService
	days        *DayService
	presets     *PresetService
	users       *UserService
	leaderboard *LeaderboardService
	export      *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	n := &fakeNotifier{}
	activity := NewActivityService(db)
	habits := NewHabitService(db, OwnershipEnforce, activity, n)
	presets := NewPresetService(habits)
	return &testEnv{
		db:          db,
		notifier:    n,
		activity:    activity,
		habits:      habits,
		completions: NewCompletionService(db, activity, n),
		days:        NewDayService(db, false, activity, n),
		presets:     presets,
		users:       NewUserService(db, presets, false, activity),
		leaderboard: NewLeaderboardService(db),
		export:      NewExportService(db),
	}
}

func (e *testEnv) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), username, "password123", "")
	require.NoError(t, err)
	return user
}

func (e *testEnv) habit(t *testing.T, userID, title string, xp int) models.Habit {
	t.Helper()
	h, err := e.habits.CreateHabit(context.Background(), userID, models.HabitInput{Title: title, XP: xp, Category: models.CategoryRoutine})
	require.NoError(t, err)
	return h
}

func (e *testEnv) progress(t *testing.T, userID string) models.UserProgress {
	t.Helper()
	p, err := loadProgress(context.Background(), e.db, userID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) setXP(t *testing.T, userID string, xp int) {
	t.Helper()
	_, err := e.db.Exec("UPDATE user_progress SET current_xp = ? WHERE user_id = ?", xp, userID)
	require.NoError(t, err)
}

func (e *testEnv) setStreak(t *testing.T, userID string, streak int) {
	t.Helper()
	_, err := e.db.Exec("UPDATE user_progress SET streak = ? WHERE user_id = ?", streak, userID)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}
