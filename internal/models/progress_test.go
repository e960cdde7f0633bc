package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSprintDaysScanNormalizes(t *testing.T) {
	var days SprintDays
	require.NoError(t, days.Scan("[]"))
	require.Len(t, days, SprintLength)
	for _, s := range days {
		assert.Equal(t, SprintPending, s)
	}

	require.NoError(t, days.Scan([]byte(`["completed","failed","bogus"]`)))
	assert.Equal(t, SprintCompleted, days[0])
	assert.Equal(t, SprintFailed, days[1])
	assert.Equal(t, SprintPending, days[2])
	assert.Len(t, days, SprintLength)

	assert.Error(t, days.Scan(42))
	assert.Error(t, days.Scan("{not json"))
}

func TestSprintDaysValue(t *testing.T) {
	days := SprintDays{SprintCompleted}
	v, err := days.Value()
	require.NoError(t, err)

	var back SprintDays
	require.NoError(t, back.Scan(v))
	assert.Equal(t, SprintCompleted, back[0])
	assert.Len(t, back, SprintLength)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("finance").Valid())
	assert.False(t, Category("").Valid())
}
