package checkins

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockHabitsRepo struct {
	habits    map[uuid.UUID]*habits.Habit
	summaries map[uuid.UUID]habits.Summary
}

func newMockHabitsRepo(hs ...*habits.Habit) *mockHabitsRepo {
	r := &mockHabitsRepo{
		habits:    make(map[uuid.UUID]*habits.Habit),
		summaries: make(map[uuid.UUID]habits.Summary),
	}
	for _, h := range hs {
		r.habits[h.ID] = h
	}
	return r
}

func (r *mockHabitsRepo) Create(_ context.Context, h *habits.Habit) error {
	r.habits[h.ID] = h
	return nil
}

func (r *mockHabitsRepo) FindOwned(_ context.Context, id, userID uuid.UUID) (*habits.Habit, error) {
	h, ok := r.habits[id]
	if !ok || h.UserID != userID {
		return nil, habits.ErrHabitNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *mockHabitsRepo) FindAll(_ context.Context, filter habits.HabitFilter) ([]habits.Habit, int64, error) {
	var out []habits.Habit
	for _, h := range r.habits {
		if h.UserID == filter.UserID {
			out = append(out, *h)
		}
	}
	return out, int64(len(out)), nil
}

func (r *mockHabitsRepo) Update(_ context.Context, h *habits.Habit) error {
	r.habits[h.ID] = h
	return nil
}

func (r *mockHabitsRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	delete(r.habits, id)
	return nil
}

func (r *mockHabitsRepo) UpdateSummary(_ context.Context, id uuid.UUID, summary habits.Summary) error {
	if _, ok := r.habits[id]; !ok {
		return habits.ErrHabitNotFound
	}
	r.summaries[id] = summary
	h := r.habits[id]
	h.CurrentStreak = summary.CurrentStreak
	h.LongestStreak = summary.LongestStreak
	h.TotalCompleted = summary.TotalCompleted
	h.SuccessRate = summary.SuccessRate
	return nil
}

type mockLedgerRepo struct {
	byKey map[string]*Checkin
	// hideNextLookup simulates a concurrent first toggle: the entry is
	// already in the store but the next FindByDay misses it.
	hideNextLookup bool
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{byKey: make(map[string]*Checkin)}
}

func ledgerKey(userID, habitID uuid.UUID, day daykey.DayKey) string {
	return fmt.Sprintf("%s|%s|%s", userID, habitID, day)
}

func (r *mockLedgerRepo) Create(_ context.Context, c *Checkin) error {
	k := ledgerKey(c.UserID, c.HabitID, c.Day)
	if _, exists := r.byKey[k]; exists {
		return ErrCheckinExists
	}
	copied := *c
	r.byKey[k] = &copied
	return nil
}

func (r *mockLedgerRepo) FindByID(_ context.Context, id, userID uuid.UUID) (*Checkin, error) {
	for _, c := range r.byKey {
		if c.ID == id && c.UserID == userID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrCheckinNotFound
}

func (r *mockLedgerRepo) FindByDay(_ context.Context, userID, habitID uuid.UUID, day daykey.DayKey) (*Checkin, error) {
	if r.hideNextLookup {
		r.hideNextLookup = false
		return nil, ErrCheckinNotFound
	}
	c, ok := r.byKey[ledgerKey(userID, habitID, day)]
	if !ok {
		return nil, ErrCheckinNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *mockLedgerRepo) ListByHabit(_ context.Context, userID, habitID uuid.UUID) ([]Checkin, error) {
	var out []Checkin
	for _, c := range r.byKey {
		if c.UserID == userID && c.HabitID == habitID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Day.Before(out[i].Day) })
	return out, nil
}

func (r *mockLedgerRepo) ListByRange(ctx context.Context, userID, habitID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error) {
	all, _ := r.ListByHabit(ctx, userID, habitID)
	var out []Checkin
	for _, c := range all {
		if start != "" && c.Day.Before(start) {
			continue
		}
		if end != "" && c.Day.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *mockLedgerRepo) ListByUserRange(_ context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error) {
	var out []Checkin
	for _, c := range r.byKey {
		if c.UserID == userID && !c.Day.Before(start) && !c.Day.After(end) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *mockLedgerRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Checkin, error) {
	var out []Checkin
	for _, c := range r.byKey {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *mockLedgerRepo) Update(_ context.Context, c *Checkin) error {
	copied := *c
	r.byKey[ledgerKey(c.UserID, c.HabitID, c.Day)] = &copied
	return nil
}

func (r *mockLedgerRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	for k, c := range r.byKey {
		if c.ID == id && c.UserID == userID {
			delete(r.byKey, k)
			return nil
		}
	}
	return ErrCheckinNotFound
}

func (r *mockLedgerRepo) DeleteForHabit(_ context.Context, userID, habitID uuid.UUID) error {
	for k, c := range r.byKey {
		if c.UserID == userID && c.HabitID == habitID {
			delete(r.byKey, k)
		}
	}
	return nil
}

func newTestService(t *testing.T) (Service, *mockLedgerRepo, *mockHabitsRepo, *habits.Habit) {
	t.Helper()
	habit := &habits.Habit{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Meditation",
		Frequency: habits.FrequencyDaily,
	}
	habitsRepo := newMockHabitsRepo(habit)
	ledgerRepo := newMockLedgerRepo()
	svc := NewService(ledgerRepo, habitsRepo, nil, zap.NewNop())
	return svc, ledgerRepo, habitsRepo, habit
}

func TestToggleCreatesCompletedEntry(t *testing.T) {
	svc, repo, habitsRepo, habit := newTestService(t)
	today := daykey.Today()

	entry, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, today)

	require.NoError(t, err)
	assert.True(t, entry.Completed)
	assert.Equal(t, today, entry.Day)
	assert.Len(t, repo.byKey, 1)

	summary := habitsRepo.summaries[habit.ID]
	assert.Equal(t, 1, summary.TotalCompleted)
	assert.Equal(t, 100, summary.SuccessRate)
	assert.Equal(t, 1, summary.CurrentStreak)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	svc, repo, _, habit := newTestService(t)
	day := daykey.Today()

	first, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, day)
	require.NoError(t, err)
	require.True(t, first.Completed)

	second, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, day)
	require.NoError(t, err)
	assert.False(t, second.Completed)

	third, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, day)
	require.NoError(t, err)
	assert.True(t, third.Completed)

	assert.Len(t, repo.byKey, 1)
}

func TestToggleRaceSettlesOnWinner(t *testing.T) {
	svc, repo, _, habit := newTestService(t)
	day := daykey.Today()

	// The winner's row lands between our existence check and our insert.
	winner := &Checkin{
		ID:        uuid.New(),
		UserID:    habit.UserID,
		HabitID:   habit.ID,
		Day:       day,
		Completed: true,
	}
	require.NoError(t, repo.Create(context.Background(), winner))
	repo.hideNextLookup = true

	entry, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, day)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, entry.ID)
	assert.True(t, entry.Completed)
	assert.Len(t, repo.byKey, 1)
}

func TestToggleUnknownHabit(t *testing.T) {
	svc, _, _, habit := newTestService(t)

	_, err := svc.Toggle(context.Background(), habit.UserID, uuid.New(), daykey.Today())
	assert.ErrorIs(t, err, habits.ErrHabitNotFound)

	// Same habit, wrong user reads as not found too.
	_, err = svc.Toggle(context.Background(), uuid.New(), habit.ID, daykey.Today())
	assert.ErrorIs(t, err, habits.ErrHabitNotFound)
}

func TestRecordConflictsOnExistingDay(t *testing.T) {
	svc, _, _, habit := newTestService(t)
	day := daykey.Today()

	_, err := svc.Record(context.Background(), habit.UserID, habit.ID, RecordCheckinInput{Day: day, Completed: true})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), habit.UserID, habit.ID, RecordCheckinInput{Day: day, Completed: true})
	assert.ErrorIs(t, err, ErrCheckinExists)
}

func TestRecordValidation(t *testing.T) {
	svc, _, _, habit := newTestService(t)
	badQuality := 6
	badReason := SkipReason("overslept")

	tests := []struct {
		name  string
		input RecordCheckinInput
	}{
		{"quality out of range", RecordCheckinInput{Day: daykey.Today(), Completed: true, Quality: &badQuality}},
		{"unknown skip reason", RecordCheckinInput{Day: daykey.Today(), Completed: false, SkipReason: &badReason}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), habit.UserID, habit.ID, tt.input)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestRecordSkipClearsQuality(t *testing.T) {
	svc, _, _, habit := newTestService(t)
	quality := 4
	reason := SkipTired

	entry, err := svc.Record(context.Background(), habit.UserID, habit.ID, RecordCheckinInput{
		Day:        daykey.Today(),
		Completed:  false,
		Quality:    &quality,
		SkipReason: &reason,
	})

	require.NoError(t, err)
	assert.Nil(t, entry.Quality)
	require.NotNil(t, entry.SkipReason)
	assert.Equal(t, SkipTired, *entry.SkipReason)
}

func TestSetCompletionUpserts(t *testing.T) {
	svc, repo, habitsRepo, habit := newTestService(t)
	day := daykey.Today()

	entry, err := svc.SetCompletion(context.Background(), habit.UserID, habit.ID, day, true, nil, nil)
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	assert.Len(t, repo.byKey, 1)

	// Setting the same state again is harmless and stays on one entry.
	entry, err = svc.SetCompletion(context.Background(), habit.UserID, habit.ID, day, true, nil, nil)
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	assert.Len(t, repo.byKey, 1)

	entry, err = svc.SetCompletion(context.Background(), habit.UserID, habit.ID, day, false, nil, nil)
	require.NoError(t, err)
	assert.False(t, entry.Completed)

	summary := habitsRepo.summaries[habit.ID]
	assert.Equal(t, 0, summary.TotalCompleted)
	assert.Equal(t, 0, summary.SuccessRate)
}

func TestDeleteEntryRecomputesSummary(t *testing.T) {
	svc, repo, habitsRepo, habit := newTestService(t)
	day := daykey.Today()

	entry, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, day)
	require.NoError(t, err)
	require.Equal(t, 1, habitsRepo.summaries[habit.ID].TotalCompleted)

	require.NoError(t, svc.DeleteEntry(context.Background(), habit.UserID, habit.ID, entry.ID))

	assert.Empty(t, repo.byKey)
	summary := habitsRepo.summaries[habit.ID]
	assert.Equal(t, 0, summary.TotalCompleted)
	assert.Equal(t, 0, summary.CurrentStreak)
}

func TestPurgeHabitClearsLedger(t *testing.T) {
	svc, repo, _, habit := newTestService(t)

	_, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, daykey.Today())
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), habit.UserID, habit.ID, daykey.Today().AddDays(-1))
	require.NoError(t, err)
	require.Len(t, repo.byKey, 2)

	require.NoError(t, svc.PurgeHabit(context.Background(), habit.UserID, habit.ID))
	assert.Empty(t, repo.byKey)
}

func TestGetHabitStats(t *testing.T) {
	svc, _, _, habit := newTestService(t)
	today := daykey.Today()

	for i := 0; i < 3; i++ {
		_, err := svc.Toggle(context.Background(), habit.UserID, habit.ID, today.AddDays(-i))
		require.NoError(t, err)
	}
	_, err := svc.Record(context.Background(), habit.UserID, habit.ID, RecordCheckinInput{
		Day: today.AddDays(-3), Completed: false,
	})
	require.NoError(t, err)

	stats, err := svc.GetHabitStats(context.Background(), habit.UserID, habit.ID)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalCheckins)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 75, stats.SuccessRate)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, today, stats.LastCheckinDay)
	assert.Len(t, stats.Last30Days, 30)
}

func TestGetTrendExcludesFutureEntries(t *testing.T) {
	svc, repo, _, habit := newTestService(t)
	today := daykey.Today()

	require.NoError(t, repo.Create(context.Background(), &Checkin{
		ID: uuid.New(), UserID: habit.UserID, HabitID: habit.ID,
		Day: today, Completed: true,
	}))
	require.NoError(t, repo.Create(context.Background(), &Checkin{
		ID: uuid.New(), UserID: habit.UserID, HabitID: habit.ID,
		Day: today.AddDays(10), Completed: true,
	}))

	trend, err := svc.GetTrend(context.Background(), habit.UserID, habit.ID, 30, TrendWeekly)

	require.NoError(t, err)
	counted := 0
	for _, bucket := range trend.Buckets {
		counted += bucket.Total
		assert.False(t, bucket.Start.After(today))
	}
	assert.Equal(t, 1, counted)
}
