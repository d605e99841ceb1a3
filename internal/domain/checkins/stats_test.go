package checkins

import (
	"testing"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyHabit() *habits.Habit {
	return &habits.Habit{ID: uuid.New(), Frequency: habits.FrequencyDaily}
}

func customHabit(days ...string) *habits.Habit {
	return &habits.Habit{ID: uuid.New(), Frequency: habits.FrequencyCustom, DaysOfWeek: days}
}

func entry(day string, completed bool) Checkin {
	d, err := daykey.Parse(day)
	if err != nil {
		panic(err)
	}
	return Checkin{ID: uuid.New(), Day: d, Completed: completed}
}

func mustDay(t *testing.T, s string) daykey.DayKey {
	t.Helper()
	d, err := daykey.Parse(s)
	require.NoError(t, err)
	return d
}

// 2024-03-01 is a Friday; 2024-03-04 a Monday.
func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name     string
		habit    *habits.Habit
		entries  []Checkin
		today    string
		expected int
	}{
		{
			name:     "no entries",
			habit:    dailyHabit(),
			entries:  nil,
			today:    "2024-03-06",
			expected: 0,
		},
		{
			name:  "daily habit with five consecutive days, evaluated on the fifth",
			habit: dailyHabit(),
			entries: []Checkin{
				entry("2024-03-01", true), entry("2024-03-02", true),
				entry("2024-03-03", true), entry("2024-03-04", true),
				entry("2024-03-05", true),
			},
			today:    "2024-03-05",
			expected: 5,
		},
		{
			name:  "daily habit breaks the day after the last completion",
			habit: dailyHabit(),
			entries: []Checkin{
				entry("2024-03-01", true), entry("2024-03-02", true),
				entry("2024-03-03", true), entry("2024-03-04", true),
				entry("2024-03-05", true),
			},
			today:    "2024-03-06",
			expected: 0,
		},
		{
			name:  "explicit incomplete entry breaks the streak",
			habit: dailyHabit(),
			entries: []Checkin{
				entry("2024-03-04", true),
				entry("2024-03-05", false),
			},
			today:    "2024-03-05",
			expected: 0,
		},
		{
			name:  "custom schedule counts only required days",
			habit: customHabit("mon", "wed", "fri"),
			entries: []Checkin{
				entry("2024-03-04", true), // Mon
				entry("2024-03-06", true), // Wed
			},
			today:    "2024-03-06",
			expected: 2,
		},
		{
			name:  "custom schedule with missing required friday",
			habit: customHabit("mon", "wed", "fri"),
			entries: []Checkin{
				entry("2024-03-04", true),
				entry("2024-03-06", true),
			},
			today:    "2024-03-08",
			expected: 0,
		},
		{
			name:  "non-required weekend day does not interrupt",
			habit: customHabit("mon", "wed", "fri"),
			entries: []Checkin{
				entry("2024-03-06", true), // Wed
				entry("2024-03-08", true), // Fri
			},
			today:    "2024-03-09", // Saturday, not required
			expected: 2,
		},
		{
			name:  "weekly habit with empty day set is required every day",
			habit: &habits.Habit{ID: uuid.New(), Frequency: habits.FrequencyWeekly},
			entries: []Checkin{
				entry("2024-03-04", true), entry("2024-03-05", true),
				entry("2024-03-06", true),
			},
			today:    "2024-03-06",
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentStreak(tt.habit, tt.entries, mustDay(t, tt.today))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name     string
		habit    *habits.Habit
		entries  []Checkin
		today    string
		expected int
	}{
		{
			name:     "no entries",
			habit:    dailyHabit(),
			entries:  nil,
			today:    "2024-03-10",
			expected: 0,
		},
		{
			name:  "gap splits runs and the longer one wins",
			habit: dailyHabit(),
			entries: []Checkin{
				entry("2024-03-01", true), entry("2024-03-02", true),
				// 03-03 missing
				entry("2024-03-04", true), entry("2024-03-05", true),
				entry("2024-03-06", true),
			},
			today:    "2024-03-06",
			expected: 3,
		},
		{
			name:  "incomplete entry resets the run",
			habit: dailyHabit(),
			entries: []Checkin{
				entry("2024-03-01", true), entry("2024-03-02", true),
				entry("2024-03-03", false),
				entry("2024-03-04", true),
			},
			today:    "2024-03-04",
			expected: 2,
		},
		{
			name:  "missing required day resets even with completions around it",
			habit: customHabit("mon", "wed", "fri"),
			entries: []Checkin{
				entry("2024-03-04", true), // Mon
				// Wed 03-06 missing
				entry("2024-03-08", true), // Fri
			},
			today:    "2024-03-08",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LongestStreak(tt.habit, tt.entries, mustDay(t, tt.today))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLongestStreakNeverBelowCurrent(t *testing.T) {
	scenarios := []struct {
		habit   *habits.Habit
		entries []Checkin
		today   string
	}{
		{dailyHabit(), []Checkin{entry("2024-03-04", true), entry("2024-03-05", true)}, "2024-03-05"},
		{customHabit("mon", "wed", "fri"), []Checkin{entry("2024-03-04", true), entry("2024-03-06", true)}, "2024-03-06"},
		{dailyHabit(), []Checkin{entry("2024-03-01", false)}, "2024-03-01"},
		{dailyHabit(), nil, "2024-03-01"},
	}

	for _, sc := range scenarios {
		today := mustDay(t, sc.today)
		current := CurrentStreak(sc.habit, sc.entries, today)
		longest := LongestStreak(sc.habit, sc.entries, today)
		assert.GreaterOrEqual(t, longest, current)
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		expected  int
	}{
		{"no entries", 0, 0, 0},
		{"all completed", 5, 5, 100},
		{"none completed", 0, 5, 0},
		{"two thirds rounds up", 2, 3, 67},
		{"one third rounds down", 1, 3, 33},
		{"half", 1, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessRate(tt.completed, tt.total)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestComputeSummaryIdempotent(t *testing.T) {
	habit := dailyHabit()
	entries := []Checkin{
		entry("2024-03-01", true), entry("2024-03-02", true),
		entry("2024-03-03", false), entry("2024-03-04", true),
	}
	today := mustDay(t, "2024-03-04")

	first := ComputeSummary(habit, entries, today)
	second := ComputeSummary(habit, entries, today)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.TotalCompleted)
	assert.Equal(t, 75, first.SuccessRate)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.Equal(t, 2, first.LongestStreak)
}
