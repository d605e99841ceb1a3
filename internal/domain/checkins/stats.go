package checkins

import (
	"math"

	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/pkg/daykey"
)

// Pure calculator over a habit's ledger entries and its schedule. All
// functions here are deterministic and touch no storage; the service feeds
// them the relevant entry window and writes results back onto the habit.

func indexByDay(entries []Checkin) map[daykey.DayKey]*Checkin {
	byDay := make(map[daykey.DayKey]*Checkin, len(entries))
	for i := range entries {
		byDay[entries[i].Day] = &entries[i]
	}
	return byDay
}

// prevRequiredDay returns the latest required day strictly before d.
func prevRequiredDay(habit *habits.Habit, d daykey.DayKey) daykey.DayKey {
	for {
		d = d.AddDays(-1)
		if habit.RequiredOn(d.Weekday()) {
			return d
		}
	}
}

// nextRequiredDay returns the earliest required day on or after d.
func nextRequiredDay(habit *habits.Habit, d daykey.DayKey) daykey.DayKey {
	for !habit.RequiredOn(d.Weekday()) {
		d = d.AddDays(1)
	}
	return d
}

// CurrentStreak walks backward from the most recent required day on or
// before today. Each required day with a completed entry extends the
// streak; the first required day that is missing or incomplete ends it.
// Non-required days never interrupt the count.
func CurrentStreak(habit *habits.Habit, entries []Checkin, today daykey.DayKey) int {
	if len(entries) == 0 {
		return 0
	}
	byDay := indexByDay(entries)

	d := today
	if !habit.RequiredOn(d.Weekday()) {
		d = prevRequiredDay(habit, d)
	}

	streak := 0
	for {
		entry, ok := byDay[d]
		if !ok || !entry.Completed {
			return streak
		}
		streak++
		d = prevRequiredDay(habit, d)
	}
}

// LongestStreak scans required days in ascending order from the earliest
// ledger entry through today, applying the same required-day logic as
// CurrentStreak. A required day that is missing or incomplete resets the
// running count.
func LongestStreak(habit *habits.Habit, entries []Checkin, today daykey.DayKey) int {
	if len(entries) == 0 {
		return 0
	}
	byDay := indexByDay(entries)

	earliest := entries[0].Day
	for _, e := range entries[1:] {
		if e.Day.Before(earliest) {
			earliest = e.Day
		}
	}

	longest, run := 0, 0
	for d := nextRequiredDay(habit, earliest); !d.After(today); d = nextRequiredDay(habit, d.AddDays(1)) {
		entry, ok := byDay[d]
		if ok && entry.Completed {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// SuccessRate is the integer percentage of completed entries, rounded to
// the nearest whole number. 0 when there are no entries.
func SuccessRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// ComputeSummary derives the habit's denormalized summary fields from its
// full ledger. Recomputing without an intervening mutation yields identical
// values.
func ComputeSummary(habit *habits.Habit, entries []Checkin, today daykey.DayKey) habits.Summary {
	completed := 0
	for _, e := range entries {
		if e.Completed {
			completed++
		}
	}
	return habits.Summary{
		CurrentStreak:    CurrentStreak(habit, entries, today),
		LongestStreak:    LongestStreak(habit, entries, today),
		TotalCompleted:   completed,
		SuccessRate:      SuccessRate(completed, len(entries)),
		LastBrokenDate:   habit.LastBrokenDate,
		LastBrokenReason: habit.LastBrokenReason,
	}
}
