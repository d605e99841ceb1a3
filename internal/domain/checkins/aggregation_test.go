package checkins

import (
	"testing"

	"github.com/habitflow/backend/pkg/daykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatmapCellCount(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		last    string
		entries []Checkin
		cells   int
	}{
		{"31-day month with empty ledger", "2024-03-01", "2024-03-31", nil, 31},
		{"leap february", "2024-02-01", "2024-02-29", nil, 29},
		{
			"sparse ledger still fills every day",
			"2024-03-01", "2024-03-31",
			[]Checkin{entry("2024-03-05", true), entry("2024-03-20", false)},
			31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := BuildHeatmap(mustDay(t, tt.first), mustDay(t, tt.last), tt.entries)
			assert.Len(t, hm.Cells, tt.cells)
			assert.Equal(t, tt.cells, hm.Stats.TotalDays)
		})
	}
}

func TestBuildHeatmapCells(t *testing.T) {
	quality := 4
	reason := SkipTired
	entries := []Checkin{
		{Day: mustDay(t, "2024-03-05"), Completed: true, Quality: &quality, Notes: "morning run"},
		{Day: mustDay(t, "2024-03-06"), Completed: false, SkipReason: &reason},
	}

	hm := BuildHeatmap(mustDay(t, "2024-03-01"), mustDay(t, "2024-03-31"), entries)

	done := hm.Cells[mustDay(t, "2024-03-05")]
	require.NotNil(t, done.Completed)
	assert.True(t, *done.Completed)
	assert.Equal(t, &quality, done.Quality)
	assert.Equal(t, "morning run", done.Notes)

	skipped := hm.Cells[mustDay(t, "2024-03-06")]
	require.NotNil(t, skipped.Completed)
	assert.False(t, *skipped.Completed)
	assert.Equal(t, &reason, skipped.SkipReason)

	// A day with no entry is distinct from an explicit skip.
	empty := hm.Cells[mustDay(t, "2024-03-07")]
	assert.Nil(t, empty.Completed)

	assert.Equal(t, 1, hm.Stats.Completed)
	assert.Equal(t, 1, hm.Stats.Skipped)
}

func weekOf(day string, completed, total int) []Checkin {
	d, err := daykey.Parse(day)
	if err != nil {
		panic(err)
	}
	entries := make([]Checkin, 0, total)
	for i := 0; i < total; i++ {
		entries = append(entries, Checkin{Day: d.AddDays(i), Completed: i < completed})
	}
	return entries
}

func TestBuildTrendWeekly(t *testing.T) {
	// Sundays bound the weeks: 2024-03-03 and 2024-03-10.
	entries := append(
		weekOf("2024-03-03", 2, 5), // 40%
		weekOf("2024-03-10", 4, 5)..., // 80%
	)

	trend := BuildTrend(entries, TrendWeekly)

	require.Len(t, trend.Buckets, 2)
	assert.Equal(t, daykey.DayKey("2024-03-03"), trend.Buckets[0].Start)
	assert.Equal(t, 40, trend.Buckets[0].SuccessRate)
	assert.Equal(t, 80, trend.Buckets[1].SuccessRate)
	assert.Equal(t, 40, trend.Trend)
	assert.Equal(t, "improving", trend.Direction)
	assert.Equal(t, 40, trend.Percentage)
}

func TestBuildTrendDirections(t *testing.T) {
	tests := []struct {
		name      string
		entries   []Checkin
		direction string
		trend     int
	}{
		{
			name:      "declining",
			entries:   append(weekOf("2024-03-03", 4, 5), weekOf("2024-03-10", 2, 5)...),
			direction: "declining",
			trend:     -40,
		},
		{
			name:      "small change stays stable",
			entries:   append(weekOf("2024-03-03", 3, 5), weekOf("2024-03-10", 3, 5)...),
			direction: "stable",
			trend:     0,
		},
		{
			name:      "single bucket is stable",
			entries:   weekOf("2024-03-03", 5, 5),
			direction: "stable",
			trend:     0,
		},
		{
			name:      "no entries is stable",
			entries:   nil,
			direction: "stable",
			trend:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := BuildTrend(tt.entries, TrendWeekly)
			assert.Equal(t, tt.direction, trend.Direction)
			assert.Equal(t, tt.trend, trend.Trend)
		})
	}
}

func TestBuildTrendMonthly(t *testing.T) {
	entries := []Checkin{
		entry("2024-02-10", true), entry("2024-02-11", false),
		entry("2024-03-10", true), entry("2024-03-11", true),
	}

	trend := BuildTrend(entries, TrendMonthly)

	require.Len(t, trend.Buckets, 2)
	assert.Equal(t, daykey.DayKey("2024-02-01"), trend.Buckets[0].Start)
	assert.Equal(t, daykey.DayKey("2024-03-01"), trend.Buckets[1].Start)
	assert.Equal(t, 50, trend.Buckets[0].SuccessRate)
	assert.Equal(t, 100, trend.Buckets[1].SuccessRate)
	assert.Equal(t, "improving", trend.Direction)
}
