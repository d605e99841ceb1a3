package checkins

import (
	"testing"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightByType(insights []Insight, typ string) (Insight, bool) {
	for _, in := range insights {
		if in.Type == typ {
			return in, true
		}
	}
	return Insight{}, false
}

func habitEntry(habitID uuid.UUID, day string, completed bool) Checkin {
	e := entry(day, completed)
	e.HabitID = habitID
	return e
}

func TestGenerateInsightsEmptyLedger(t *testing.T) {
	insights := GenerateInsights(nil, nil)

	require.Len(t, insights, 1)
	assert.Equal(t, "overall_rate", insights[0].Type)
	assert.Equal(t, 0, insights[0].Value)
}

func TestGenerateInsightsBestWeekday(t *testing.T) {
	// 2024-03-04 and 2024-03-11 are Mondays, 2024-03-05 a Tuesday.
	entries := []Checkin{
		entry("2024-03-04", true),
		entry("2024-03-11", true),
		entry("2024-03-05", true),
	}

	insights := GenerateInsights(nil, entries)

	best, ok := insightByType(insights, "best_day")
	require.True(t, ok)
	assert.Equal(t, 2, best.Value)
	assert.Contains(t, best.Text, "Monday")
}

func TestGenerateInsightsSkipReason(t *testing.T) {
	tired := SkipTired
	noTime := SkipNoTime
	mk := func(day string, reason *SkipReason) Checkin {
		e := entry(day, false)
		e.SkipReason = reason
		return e
	}
	entries := []Checkin{
		mk("2024-03-01", &tired),
		mk("2024-03-02", &tired),
		mk("2024-03-03", &noTime),
		mk("2024-03-04", nil), // counted in the incomplete total, no reason
	}

	insights := GenerateInsights(nil, entries)

	skip, ok := insightByType(insights, "skip_reason")
	require.True(t, ok)
	assert.Equal(t, 2, skip.Value)
	assert.Contains(t, skip.Text, "tiredness")
	assert.Contains(t, skip.Text, "50%") // 2 of 4 incomplete entries
}

func TestGenerateInsightsBestHabitAndStreak(t *testing.T) {
	reliable := habits.Habit{ID: uuid.New(), Name: "Reading", CurrentStreak: 3}
	flaky := habits.Habit{ID: uuid.New(), Name: "Running", CurrentStreak: 7}
	userHabits := []habits.Habit{reliable, flaky}

	entries := []Checkin{
		habitEntry(reliable.ID, "2024-03-01", true),
		habitEntry(reliable.ID, "2024-03-02", true),
		habitEntry(flaky.ID, "2024-03-01", true),
		habitEntry(flaky.ID, "2024-03-02", false),
	}

	insights := GenerateInsights(userHabits, entries)

	best, ok := insightByType(insights, "best_habit")
	require.True(t, ok)
	assert.Equal(t, 100, best.Value)
	assert.Contains(t, best.Text, "Reading")

	streak, ok := insightByType(insights, "best_streak")
	require.True(t, ok)
	assert.Equal(t, 7, streak.Value)
	assert.Contains(t, streak.Text, "Running")
}

func TestGenerateInsightsDeterministicTies(t *testing.T) {
	first := habits.Habit{ID: uuid.New(), Name: "First", CurrentStreak: 5}
	second := habits.Habit{ID: uuid.New(), Name: "Second", CurrentStreak: 5}
	userHabits := []habits.Habit{first, second}

	// Identical 100% rates for both habits.
	entries := []Checkin{
		habitEntry(first.ID, "2024-03-01", true),
		habitEntry(second.ID, "2024-03-01", true),
	}

	for i := 0; i < 10; i++ {
		insights := GenerateInsights(userHabits, entries)

		best, ok := insightByType(insights, "best_habit")
		require.True(t, ok)
		assert.Contains(t, best.Text, "First")

		streak, ok := insightByType(insights, "best_streak")
		require.True(t, ok)
		assert.Contains(t, streak.Text, "First")
	}
}

func TestGenerateInsightsOverallRate(t *testing.T) {
	entries := []Checkin{
		entry("2024-03-01", true),
		entry("2024-03-02", true),
		entry("2024-03-03", false),
	}

	insights := GenerateInsights(nil, entries)

	overall, ok := insightByType(insights, "overall_rate")
	require.True(t, ok)
	assert.Equal(t, 67, overall.Value)
}
