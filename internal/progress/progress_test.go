package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/lockedin-be/internal/models"
)

func TestComputeLevel(t *testing.T) {
	tests := []struct {
		xp        int
		level     int
		threshold int
	}{
		{xp: 0, level: 0, threshold: 500},
		{xp: 120, level: 0, threshold: 500},
		{xp: 499, level: 0, threshold: 500},
		{xp: 500, level: 1, threshold: 1000},
		{xp: 999, level: 1, threshold: 1000},
		{xp: 2750, level: 5, threshold: 3000},
		{xp: -40, level: 0, threshold: 500},
	}

	for _, tt := range tests {
		got := ComputeLevel(tt.xp)
		assert.Equal(t, tt.level, got.Level, "level for xp=%d", tt.xp)
		assert.Equal(t, tt.threshold, got.NextLevelXP, "threshold for xp=%d", tt.xp)
	}
}

func TestComputeLevelMatchesDivision(t *testing.T) {
	for xp := 0; xp <= 5000; xp += 37 {
		got := ComputeLevel(xp)
		require.Equal(t, xp/500, got.Level)
		require.Equal(t, 500*(got.Level+1), got.NextLevelXP)
	}
}

func TestAdvanceSprintFillsSlotsInOrder(t *testing.T) {
	days := NewSprint()
	require.Len(t, days, models.SprintLength)

	first := AdvanceSprint(days, OutcomeCompleted)
	assert.Equal(t, models.SprintCompleted, first[0])
	for i := 1; i < models.SprintLength; i++ {
		assert.Equal(t, models.SprintPending, first[i])
	}
	// input untouched
	assert.Equal(t, models.SprintPending, days[0])

	second := AdvanceSprint(first, OutcomeFailed)
	assert.Equal(t, models.SprintCompleted, second[0])
	assert.Equal(t, models.SprintFailed, second[1])
	assert.Equal(t, models.SprintPending, second[2])
}

func TestAdvanceSprintTerminalState(t *testing.T) {
	days := NewSprint()
	for i := 0; i < models.SprintLength; i++ {
		require.False(t, SprintFinished(days))
		days = AdvanceSprint(days, OutcomeCompleted)
	}
	require.True(t, SprintFinished(days))

	again := AdvanceSprint(days, OutcomeFailed)
	assert.Equal(t, days, again)
	for _, status := range again {
		assert.Equal(t, models.SprintCompleted, status)
	}
}

func TestNextStreak(t *testing.T) {
	assert.Equal(t, 4, NextStreak(3, OutcomeCompleted))
	assert.Equal(t, 1, NextStreak(0, OutcomeCompleted))
	assert.Equal(t, 0, NextStreak(17, OutcomeFailed))
	assert.Equal(t, 0, NextStreak(0, OutcomeFailed))
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("completed")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, o)

	o, err = ParseOutcome("failed")
	require.NoError(t, err)
	assert.Equal(t, models.SprintFailed, o.Status())

	_, err = ParseOutcome("skipped")
	assert.Error(t, err)
}

func TestDayClock(t *testing.T) {
	instant := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	clock := FixedDayClock(instant)
	assert.Equal(t, "2026-03-01", clock.Today())
	assert.Equal(t, "2026-02-22", clock.DaysAgo(7))

	_, err := NewDayClock("Not/AZone")
	assert.Error(t, err)

	utc, err := NewDayClock("")
	require.NoError(t, err)
	assert.Len(t, utc.Today(), len(DateLayout))
}
