package checkins

import (
	"sort"

	"github.com/habitflow/backend/pkg/daykey"
)

// TrendInterval selects the bucketing granularity for progress trends.
type TrendInterval string

const (
	TrendWeekly  TrendInterval = "week"
	TrendMonthly TrendInterval = "month"
)

func (i TrendInterval) Valid() bool {
	return i == TrendWeekly || i == TrendMonthly
}

// HeatmapCell is one calendar day in a heatmap. Completed is nil when no
// ledger entry exists, which readers render differently from an explicit
// skip.
type HeatmapCell struct {
	Completed  *bool       `json:"completed"`
	Quality    *int        `json:"quality"`
	SkipReason *SkipReason `json:"skip_reason"`
	Notes      string      `json:"notes,omitempty"`
}

// HeatmapStats summarizes a heatmap's range.
type HeatmapStats struct {
	TotalDays int `json:"total_days"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
}

// Heatmap covers one calendar month, one cell per day.
type Heatmap struct {
	Month daykey.DayKey                 `json:"month"`
	Cells map[daykey.DayKey]HeatmapCell `json:"heatmap_data"`
	Stats HeatmapStats                  `json:"stats"`
}

// BuildHeatmap emits a cell for every day from first through last
// inclusive, however sparse the ledger. Entries outside the range are
// ignored.
func BuildHeatmap(first, last daykey.DayKey, entries []Checkin) *Heatmap {
	byDay := indexByDay(entries)

	hm := &Heatmap{
		Month: first,
		Cells: make(map[daykey.DayKey]HeatmapCell),
	}
	for d := first; !d.After(last); d = d.AddDays(1) {
		var cell HeatmapCell
		if entry, ok := byDay[d]; ok {
			completed := entry.Completed
			cell = HeatmapCell{
				Completed:  &completed,
				Quality:    entry.Quality,
				SkipReason: entry.SkipReason,
				Notes:      entry.Notes,
			}
			if completed {
				hm.Stats.Completed++
			} else {
				hm.Stats.Skipped++
			}
		}
		hm.Cells[d] = cell
		hm.Stats.TotalDays++
	}
	return hm
}

// TrendBucket is one week or month of ledger entries.
type TrendBucket struct {
	Start       daykey.DayKey `json:"start"`
	SuccessRate int           `json:"success_rate"`
	Completed   int           `json:"completed"`
	Total       int           `json:"total"`
}

// Trend is the bucketed success-rate progression over a window. The trend
// value is the last bucket's rate minus the first's; fewer than two buckets
// always reads as stable.
type Trend struct {
	Buckets    []TrendBucket `json:"trend_data"`
	Trend      int           `json:"trend"`
	Direction  string        `json:"trend_direction"`
	Percentage int           `json:"trend_percentage"`
}

// BuildTrend buckets entries by calendar week (weeks start on Sunday,
// matching the weekday indexing used by schedules) or calendar month.
func BuildTrend(entries []Checkin, interval TrendInterval) *Trend {
	bucketStart := daykey.DayKey.StartOfWeek
	if interval == TrendMonthly {
		bucketStart = daykey.DayKey.StartOfMonth
	}

	type counts struct{ completed, total int }
	byBucket := make(map[daykey.DayKey]*counts)
	for _, e := range entries {
		start := bucketStart(e.Day)
		c, ok := byBucket[start]
		if !ok {
			c = &counts{}
			byBucket[start] = c
		}
		c.total++
		if e.Completed {
			c.completed++
		}
	}

	starts := make([]daykey.DayKey, 0, len(byBucket))
	for s := range byBucket {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	t := &Trend{Buckets: make([]TrendBucket, 0, len(starts))}
	for _, s := range starts {
		c := byBucket[s]
		t.Buckets = append(t.Buckets, TrendBucket{
			Start:       s,
			SuccessRate: SuccessRate(c.completed, c.total),
			Completed:   c.completed,
			Total:       c.total,
		})
	}

	if len(t.Buckets) > 1 {
		t.Trend = t.Buckets[len(t.Buckets)-1].SuccessRate - t.Buckets[0].SuccessRate
	}
	switch {
	case t.Trend > 5:
		t.Direction = "improving"
	case t.Trend < -5:
		t.Direction = "declining"
	default:
		t.Direction = "stable"
	}
	if t.Percentage = t.Trend; t.Percentage < 0 {
		t.Percentage = -t.Percentage
	}
	return t
}
