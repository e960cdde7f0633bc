package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

func TestCloseDayCompletedScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")
	a := env.habit(t, user.ID, "A", 50)
	env.setXP(t, user.ID, 480)
	env.setStreak(t, user.ID, 3)

	_, err := env.completions.Toggle(ctx, user.ID, a.ID, testDate)
	require.NoError(t, err)

	res, err := env.days.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Streak)
	assert.Equal(t, models.SprintCompleted, res.SprintDays[0])
	for _, s := range res.SprintDays[1:] {
		assert.Equal(t, models.SprintPending, s)
	}

	summary, err := env.users.GetUser(ctx, user.ID, testDate)
	require.NoError(t, err)
	assert.Empty(t, summary.TodayCompletions)
	assert.Equal(t, 530, summary.CurrentXP, "closing a day keeps earned XP")
	assert.Equal(t, 1, summary.Level)
	assert.Equal(t, 4, summary.Streak)

	p := env.progress(t, user.ID)
	require.NotNil(t, p.LastCompletedDate)
	assert.Equal(t, testDate, *p.LastCompletedDate)
}

func TestCloseDayFailedResetsStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")
	a := env.habit(t, user.ID, "A", 50)
	env.setStreak(t, user.ID, 9)
	_, err := env.completions.Toggle(ctx, user.ID, a.ID, testDate)
	require.NoError(t, err)

	res, err := env.days.CloseDay(ctx, user.ID, progress.OutcomeFailed, testDate)
	require.NoError(t, err)
	assert.Zero(t, res.Streak)
	assert.Equal(t, models.SprintFailed, res.SprintDays[0])
	assert.Zero(t, countRows(t, env.db, "SELECT COUNT(*) FROM daily_completions WHERE user_id = ?", user.ID))

	p := env.progress(t, user.ID)
	require.NotNil(t, p.LastCompletedDate, "failed days are stamped too")
	assert.Equal(t, testDate, *p.LastCompletedDate)
}

func TestCloseDayOnlyClearsThatDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")
	a := env.habit(t, user.ID, "A", 50)
	_, err := env.completions.Toggle(ctx, user.ID, a.ID, "2024-04-30")
	require.NoError(t, err)
	_, err = env.completions.Toggle(ctx, user.ID, a.ID, testDate)
	require.NoError(t, err)

	_, err = env.days.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, env.db, "SELECT COUNT(*) FROM daily_completions WHERE date = '2024-04-30'"))
}

func TestCloseDayFillsSprintThenStops(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")

	var res DayResult
	var err error
	for i := 0; i < models.SprintLength; i++ {
		outcome := progress.OutcomeCompleted
		if i%7 == 6 {
			outcome = progress.OutcomeFailed
		}
		res, err = env.days.CloseDay(ctx, user.ID, outcome, testDate)
		require.NoError(t, err)
	}
	assert.True(t, progress.SprintFinished(res.SprintDays))
	full := append(models.SprintDays(nil), res.SprintDays...)

	res, err = env.days.CloseDay(ctx, user.ID, progress.OutcomeFailed, testDate)
	require.NoError(t, err)
	assert.Equal(t, full, res.SprintDays, "a finished sprint is not reset automatically")
	assert.Zero(t, res.Streak, "the streak still follows the outcome")
}

func TestCloseDayWithoutGuardAdvancesEachCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")

	_, err := env.days.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
	require.NoError(t, err)
	res, err := env.days.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
	assert.Equal(t, models.SprintCompleted, res.SprintDays[1])
}

func TestCloseDayGuardRejectsSecondClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guarded := NewDayService(env.db, true, env.activity, env.notifier)
	user := env.register(t, "alice")

	_, err := guarded.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
	require.NoError(t, err)

	_, err = guarded.CloseDay(ctx, user.ID, progress.OutcomeFailed, testDate)
	assert.ErrorIs(t, err, ErrDayAlreadyClosed)

	p := env.progress(t, user.ID)
	assert.Equal(t, 1, p.Streak, "rejected close has no side effects")
	assert.Equal(t, models.SprintPending, p.SprintDays[1])

	res, err := guarded.CloseDay(ctx, user.ID, progress.OutcomeCompleted, "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
}

func TestCloseDayRejectsUnknownOutcome(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	_, err := env.days.CloseDay(context.Background(), user.ID, progress.Outcome("skipped"), testDate)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, env.progress(t, user.ID).LastCompletedDate)
}

func TestResetSprintKeepsStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice")

	for i := 0; i < 3; i++ {
		_, err := env.days.CloseDay(ctx, user.ID, progress.OutcomeCompleted, testDate)
		require.NoError(t, err)
	}

	res, err := env.days.ResetSprint(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, progress.NewSprint(), res.SprintDays)
	assert.Equal(t, progress.NewSprint(), env.progress(t, user.ID).SprintDays)
	assert.Equal(t, 1, countRows(t, env.db, "SELECT COUNT(*) FROM activities WHERE type = 'sprint.reset'"))
}
