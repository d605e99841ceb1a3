package days

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/checkins"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memDayRepo struct {
	byID map[uuid.UUID]*Day
}

func newMemDayRepo() *memDayRepo {
	return &memDayRepo{byID: make(map[uuid.UUID]*Day)}
}

func (r *memDayRepo) Create(_ context.Context, day *Day) error {
	for _, d := range r.byID {
		if d.UserID == day.UserID && d.Date == day.Date {
			return ErrDayExists
		}
	}
	copied := *day
	r.byID[day.ID] = &copied
	return nil
}

func (r *memDayRepo) FindOwned(_ context.Context, id, userID uuid.UUID) (*Day, error) {
	d, ok := r.byID[id]
	if !ok || d.UserID != userID {
		return nil, ErrDayNotFound
	}
	copied := *d
	copied.Habits = append([]DayHabit(nil), d.Habits...)
	return &copied, nil
}

func (r *memDayRepo) FindByDate(_ context.Context, userID uuid.UUID, date daykey.DayKey) (*Day, error) {
	for _, d := range r.byID {
		if d.UserID == userID && d.Date == date {
			copied := *d
			return &copied, nil
		}
	}
	return nil, ErrDayNotFound
}

func (r *memDayRepo) ListByRange(_ context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Day, error) {
	var out []Day
	for _, d := range r.byID {
		if d.UserID == userID && !d.Date.Before(start) && !d.Date.After(end) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDayRepo) ListByFilter(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey, status DayStatus) ([]Day, error) {
	list, _ := r.ListByRange(ctx, userID, start, end)
	if status == "" {
		return list, nil
	}
	var out []Day
	for _, d := range list {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDayRepo) ListByHabit(_ context.Context, userID, habitID uuid.UUID) ([]Day, error) {
	var out []Day
	for _, d := range r.byID {
		if d.UserID != userID {
			continue
		}
		for _, h := range d.Habits {
			if h.HabitID == habitID {
				copied := *d
				copied.Habits = append([]DayHabit(nil), d.Habits...)
				out = append(out, copied)
				break
			}
		}
	}
	return out, nil
}

func (r *memDayRepo) Update(_ context.Context, day *Day) error {
	stored, ok := r.byID[day.ID]
	if !ok {
		return ErrDayNotFound
	}
	habits := stored.Habits
	copied := *day
	copied.Habits = habits
	r.byID[day.ID] = &copied
	return nil
}

func (r *memDayRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	d, ok := r.byID[id]
	if !ok || d.UserID != userID {
		return ErrDayNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memDayRepo) AddHabit(_ context.Context, entry *DayHabit) error {
	d, ok := r.byID[entry.DayID]
	if !ok {
		return ErrDayNotFound
	}
	for _, h := range d.Habits {
		if h.HabitID == entry.HabitID {
			return ErrHabitAlreadyInDay
		}
	}
	d.Habits = append(d.Habits, *entry)
	return nil
}

func (r *memDayRepo) UpdateHabit(_ context.Context, entry *DayHabit) error {
	d, ok := r.byID[entry.DayID]
	if !ok {
		return ErrDayNotFound
	}
	for i := range d.Habits {
		if d.Habits[i].HabitID == entry.HabitID {
			d.Habits[i] = *entry
			return nil
		}
	}
	return ErrHabitNotInDay
}

func (r *memDayRepo) RemoveHabit(_ context.Context, dayID, habitID uuid.UUID) error {
	d, ok := r.byID[dayID]
	if !ok {
		return ErrDayNotFound
	}
	for i := range d.Habits {
		if d.Habits[i].HabitID == habitID {
			d.Habits = append(d.Habits[:i], d.Habits[i+1:]...)
			return nil
		}
	}
	return ErrHabitNotInDay
}

type memHabitsRepo struct {
	byID map[uuid.UUID]*habits.Habit
}

func (r *memHabitsRepo) Create(_ context.Context, h *habits.Habit) error {
	r.byID[h.ID] = h
	return nil
}

func (r *memHabitsRepo) FindOwned(_ context.Context, id, userID uuid.UUID) (*habits.Habit, error) {
	h, ok := r.byID[id]
	if !ok || h.UserID != userID {
		return nil, habits.ErrHabitNotFound
	}
	return h, nil
}

func (r *memHabitsRepo) FindAll(_ context.Context, filter habits.HabitFilter) ([]habits.Habit, int64, error) {
	return nil, 0, nil
}

func (r *memHabitsRepo) Update(_ context.Context, h *habits.Habit) error { return nil }

func (r *memHabitsRepo) Delete(_ context.Context, id, userID uuid.UUID) error { return nil }

func (r *memHabitsRepo) UpdateSummary(_ context.Context, id uuid.UUID, s habits.Summary) error {
	return nil
}

// recordingLedger captures ledger writes so tests can assert the day view
// writes through it.
type recordingLedger struct {
	calls []string
}

func (l *recordingLedger) SetCompletion(_ context.Context, userID, habitID uuid.UUID, day daykey.DayKey, completed bool, quality *int, notes *string) (*checkins.Checkin, error) {
	l.calls = append(l.calls, habitID.String())
	return &checkins.Checkin{
		ID:        uuid.New(),
		UserID:    userID,
		HabitID:   habitID,
		Day:       day,
		Completed: completed,
	}, nil
}

func newDayTestService(t *testing.T, habitCount int) (Service, *memDayRepo, *recordingLedger, uuid.UUID, []uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	habitsRepo := &memHabitsRepo{byID: make(map[uuid.UUID]*habits.Habit)}
	habitIDs := make([]uuid.UUID, 0, habitCount)
	for i := 0; i < habitCount; i++ {
		h := &habits.Habit{ID: uuid.New(), UserID: userID, Frequency: habits.FrequencyDaily}
		habitsRepo.byID[h.ID] = h
		habitIDs = append(habitIDs, h.ID)
	}
	repo := newMemDayRepo()
	ledger := &recordingLedger{}
	svc := NewService(repo, habitsRepo, ledger, nil, zap.NewNop())
	return svc, repo, ledger, userID, habitIDs
}

func TestCreateDayWithHabits(t *testing.T) {
	svc, _, _, userID, habitIDs := newDayTestService(t, 3)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date:     daykey.DayKey("2024-03-04"),
		HabitIDs: habitIDs,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, day.TotalHabits)
	assert.Equal(t, 0, day.CompletedHabits)
	assert.Equal(t, 0, day.SuccessRate)
	assert.Equal(t, StatusPlanned, day.Status)
}

func TestCreateDayConflict(t *testing.T) {
	svc, _, _, userID, _ := newDayTestService(t, 0)
	date := daykey.DayKey("2024-03-04")

	_, err := svc.CreateDay(context.Background(), userID, CreateDayInput{Date: date})
	require.NoError(t, err)

	_, err = svc.CreateDay(context.Background(), userID, CreateDayInput{Date: date})
	assert.ErrorIs(t, err, ErrDayExists)
}

func TestCreateDayValidation(t *testing.T) {
	svc, _, _, userID, _ := newDayTestService(t, 0)
	bad := 6

	_, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-03-04"),
		Mood: &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestCheckHabitInDayCounts(t *testing.T) {
	svc, _, ledger, userID, habitIDs := newDayTestService(t, 3)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date:     daykey.DayKey("2024-03-04"),
		HabitIDs: habitIDs,
	})
	require.NoError(t, err)

	for _, habitID := range habitIDs[:2] {
		day, err = svc.CheckHabitInDay(context.Background(), day.ID, habitID, userID, CheckHabitInput{Completed: true})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, day.TotalHabits)
	assert.Equal(t, 2, day.CompletedHabits)
	assert.Equal(t, 67, day.SuccessRate)
	// Every toggle went through the ledger first.
	assert.Len(t, ledger.calls, 2)
}

func TestCheckHabitNotInDay(t *testing.T) {
	svc, _, _, userID, habitIDs := newDayTestService(t, 1)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-03-04"),
	})
	require.NoError(t, err)

	_, err = svc.CheckHabitInDay(context.Background(), day.ID, habitIDs[0], userID, CheckHabitInput{Completed: true})
	assert.ErrorIs(t, err, ErrHabitNotInDay)
}

func TestCheckHabitTogglesCheckedAt(t *testing.T) {
	svc, _, _, userID, habitIDs := newDayTestService(t, 1)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date:     daykey.DayKey("2024-03-04"),
		HabitIDs: habitIDs,
	})
	require.NoError(t, err)

	day, err = svc.CheckHabitInDay(context.Background(), day.ID, habitIDs[0], userID, CheckHabitInput{Completed: true})
	require.NoError(t, err)
	require.Len(t, day.Habits, 1)
	assert.True(t, day.Habits[0].Completed)
	assert.NotNil(t, day.Habits[0].CheckedAt)

	day, err = svc.CheckHabitInDay(context.Background(), day.ID, habitIDs[0], userID, CheckHabitInput{Completed: false})
	require.NoError(t, err)
	require.Len(t, day.Habits, 1)
	assert.False(t, day.Habits[0].Completed)
	assert.Nil(t, day.Habits[0].CheckedAt)
	assert.Equal(t, 0, day.CompletedHabits)
}

func TestDeleteHabitRemovesDaySlots(t *testing.T) {
	svc, _, _, userID, habitIDs := newDayTestService(t, 2)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date:     daykey.DayKey("2024-03-04"),
		HabitIDs: habitIDs,
	})
	require.NoError(t, err)

	day, err = svc.CheckHabitInDay(context.Background(), day.ID, habitIDs[0], userID, CheckHabitInput{Completed: true})
	require.NoError(t, err)
	require.Equal(t, 2, day.TotalHabits)
	require.Equal(t, 1, day.CompletedHabits)

	habitsRepo := &memHabitsRepo{byID: make(map[uuid.UUID]*habits.Habit)}
	for _, id := range habitIDs {
		habitsRepo.byID[id] = &habits.Habit{ID: id, UserID: userID, Frequency: habits.FrequencyDaily}
	}
	habitsSvc := habits.NewService(habitsRepo, nil, zap.NewNop())
	habitsSvc.SetDaySlotRemover(svc)

	err = habitsSvc.DeleteHabit(context.Background(), habitIDs[0], userID)
	require.NoError(t, err)

	day, err = svc.GetDay(context.Background(), day.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, day.TotalHabits)
	assert.Equal(t, 0, day.CompletedHabits)
	require.Len(t, day.Habits, 1)
	assert.Equal(t, habitIDs[1], day.Habits[0].HabitID)
}

func TestRemoveHabitKeepsLedgerUntouched(t *testing.T) {
	svc, _, ledger, userID, habitIDs := newDayTestService(t, 2)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date:     daykey.DayKey("2024-03-04"),
		HabitIDs: habitIDs,
	})
	require.NoError(t, err)

	day, err = svc.CheckHabitInDay(context.Background(), day.ID, habitIDs[0], userID, CheckHabitInput{Completed: true})
	require.NoError(t, err)
	require.Len(t, ledger.calls, 1)

	day, err = svc.RemoveHabitFromDay(context.Background(), day.ID, habitIDs[0], userID)
	require.NoError(t, err)

	assert.Equal(t, 1, day.TotalHabits)
	assert.Equal(t, 0, day.CompletedHabits)
	// Removal is a view change only; the ledger saw no extra write.
	assert.Len(t, ledger.calls, 1)
}

func TestAddHabitToDayTwice(t *testing.T) {
	svc, _, _, userID, habitIDs := newDayTestService(t, 1)

	day, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-03-04"),
	})
	require.NoError(t, err)

	day, err = svc.AddHabitToDay(context.Background(), day.ID, habitIDs[0], userID)
	require.NoError(t, err)
	assert.Equal(t, 1, day.TotalHabits)

	_, err = svc.AddHabitToDay(context.Background(), day.ID, habitIDs[0], userID)
	assert.ErrorIs(t, err, ErrHabitAlreadyInDay)
}

func TestMonthlyCalendar(t *testing.T) {
	svc, _, _, userID, _ := newDayTestService(t, 0)

	created, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-02-15"),
	})
	require.NoError(t, err)

	calendar, err := svc.GetMonthlyCalendar(context.Background(), userID, 2024, time.February)

	require.NoError(t, err)
	assert.Equal(t, 2024, calendar.Year)
	assert.Equal(t, 2, calendar.Month)
	require.Len(t, calendar.Days, 29) // leap year

	// 2024-02-01 is a Thursday.
	assert.Equal(t, daykey.DayKey("2024-02-01"), calendar.Days[0].Date)
	assert.Equal(t, "Thu", calendar.Days[0].DayOfWeek)
	assert.Nil(t, calendar.Days[0].Day)

	populated := calendar.Days[14]
	assert.Equal(t, daykey.DayKey("2024-02-15"), populated.Date)
	require.NotNil(t, populated.Day)
	assert.Equal(t, created.ID, populated.Day.ID)
}

func TestListDaysStatusFilter(t *testing.T) {
	svc, _, _, userID, _ := newDayTestService(t, 0)

	planned, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-03-04"),
	})
	require.NoError(t, err)

	completed, err := svc.CreateDay(context.Background(), userID, CreateDayInput{
		Date: daykey.DayKey("2024-03-05"),
	})
	require.NoError(t, err)
	status := StatusCompleted
	_, err = svc.UpdateDay(context.Background(), completed.ID, userID, UpdateDayInput{Status: &status})
	require.NoError(t, err)

	all, err := svc.ListDays(context.Background(), userID, daykey.DayKey("2024-03-01"), daykey.DayKey("2024-03-31"), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListDays(context.Background(), userID, daykey.DayKey("2024-03-01"), daykey.DayKey("2024-03-31"), StatusCompleted)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, completed.ID, filtered[0].ID)
	assert.NotEqual(t, planned.ID, filtered[0].ID)

	_, err = svc.ListDays(context.Background(), userID, daykey.DayKey("2024-03-31"), daykey.DayKey("2024-03-01"), "")
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = svc.ListDays(context.Background(), userID, daykey.DayKey("2024-03-01"), daykey.DayKey("2024-03-31"), DayStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidDay)
}
