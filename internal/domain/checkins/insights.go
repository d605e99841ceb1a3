package checkins

import (
	"fmt"
	"time"

	"github.com/habitflow/backend/internal/domain/habits"
)

// Insight is one cross-habit observation for a user's dashboard.
type Insight struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Value int    `json:"value"`
}

var skipReasonLabels = map[SkipReason]string{
	SkipNoTime:       "lack of time",
	SkipTired:        "tiredness",
	SkipForgot:       "forgetting",
	SkipNoMotivation: "lack of motivation",
	SkipOther:        "other reasons",
}

// GenerateInsights computes the cross-habit summary over all of a user's
// habits and their combined ledger entries. Ties are broken by
// first-encountered order so repeated generation over the same data always
// selects the same winner.
func GenerateInsights(userHabits []habits.Habit, entries []Checkin) []Insight {
	insights := make([]Insight, 0, 5)

	if in, ok := bestWeekday(entries); ok {
		insights = append(insights, in)
	}
	if in, ok := dominantSkipReason(entries); ok {
		insights = append(insights, in)
	}
	if in, ok := bestHabit(userHabits, entries); ok {
		insights = append(insights, in)
	}
	if in, ok := bestStreak(userHabits); ok {
		insights = append(insights, in)
	}

	totalCompleted := 0
	for _, e := range entries {
		if e.Completed {
			totalCompleted++
		}
	}
	overall := SuccessRate(totalCompleted, len(entries))
	insights = append(insights, Insight{
		Type:  "overall_rate",
		Text:  fmt.Sprintf("Your overall completion rate is %d%%", overall),
		Value: overall,
	})

	return insights
}

// Weekday scan order for ties, Monday first.
var insightWeekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func bestWeekday(entries []Checkin) (Insight, bool) {
	var counts [7]int
	for _, e := range entries {
		if e.Completed {
			counts[int(e.Day.Weekday())]++
		}
	}

	best, bestCount := time.Monday, 0
	for _, w := range insightWeekdays {
		if counts[int(w)] > bestCount {
			best, bestCount = w, counts[int(w)]
		}
	}
	if bestCount == 0 {
		return Insight{}, false
	}
	return Insight{
		Type:  "best_day",
		Text:  fmt.Sprintf("You complete habits most often on %s", best),
		Value: bestCount,
	}, true
}

func dominantSkipReason(entries []Checkin) (Insight, bool) {
	counts := make(map[SkipReason]int)
	var order []SkipReason
	incomplete := 0
	for _, e := range entries {
		if e.Completed {
			continue
		}
		incomplete++
		if e.SkipReason == nil {
			continue
		}
		r := *e.SkipReason
		if _, seen := counts[r]; !seen {
			order = append(order, r)
		}
		counts[r]++
	}
	if len(order) == 0 {
		return Insight{}, false
	}

	top, topCount := order[0], counts[order[0]]
	for _, r := range order[1:] {
		if counts[r] > topCount {
			top, topCount = r, counts[r]
		}
	}
	percentage := SuccessRate(topCount, incomplete)
	return Insight{
		Type:  "skip_reason",
		Text:  fmt.Sprintf("Most skips come down to %s (%d%%)", skipReasonLabels[top], percentage),
		Value: topCount,
	}, true
}

func bestHabit(userHabits []habits.Habit, entries []Checkin) (Insight, bool) {
	type counts struct{ completed, total int }
	byHabit := make(map[string]*counts)
	for _, e := range entries {
		c, ok := byHabit[e.HabitID.String()]
		if !ok {
			c = &counts{}
			byHabit[e.HabitID.String()] = c
		}
		c.total++
		if e.Completed {
			c.completed++
		}
	}

	var best *habits.Habit
	bestRate := 0
	for i := range userHabits {
		c, ok := byHabit[userHabits[i].ID.String()]
		if !ok {
			continue
		}
		rate := SuccessRate(c.completed, c.total)
		if rate > bestRate {
			best, bestRate = &userHabits[i], rate
		}
	}
	if best == nil {
		return Insight{}, false
	}
	return Insight{
		Type:  "best_habit",
		Text:  fmt.Sprintf("%q is your most reliable habit at %d%%", best.Name, bestRate),
		Value: bestRate,
	}, true
}

func bestStreak(userHabits []habits.Habit) (Insight, bool) {
	var best *habits.Habit
	for i := range userHabits {
		if userHabits[i].CurrentStreak > 0 && (best == nil || userHabits[i].CurrentStreak > best.CurrentStreak) {
			best = &userHabits[i]
		}
	}
	if best == nil {
		return Insight{}, false
	}
	return Insight{
		Type:  "best_streak",
		Text:  fmt.Sprintf("Your best active streak is %d days on %q", best.CurrentStreak, best.Name),
		Value: best.CurrentStreak,
	}, true
}
