package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/api/dto"
	"github.com/habitflow/backend/internal/domain/checkins"
	"github.com/habitflow/backend/internal/domain/days"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/habitflow/backend/pkg/logger"
	"go.uber.org/zap"
)

var log = logger.NewLogger("")

var productionMode bool

// SetProductionMode controls whether internal error detail is returned to
// callers. In production only a generic message goes out; the full error is
// always logged server-side.
func SetProductionMode(enabled bool) {
	productionMode = enabled
}

// respondError maps domain errors onto HTTP statuses. Not-found covers both
// "doesn't exist" and "not yours" so responses never leak existence.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, habits.ErrHabitNotFound),
		errors.Is(err, checkins.ErrCheckinNotFound),
		errors.Is(err, days.ErrDayNotFound),
		errors.Is(err, days.ErrHabitNotInDay):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, checkins.ErrCheckinExists),
		errors.Is(err, days.ErrDayExists),
		errors.Is(err, days.ErrHabitAlreadyInDay):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, habits.ErrInvalidInput),
		errors.Is(err, checkins.ErrInvalidEntry),
		errors.Is(err, days.ErrInvalidDay),
		errors.Is(err, daykey.ErrInvalidDayKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Internal error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		if productionMode {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}

// HabitToResponse converts a habit domain model to its API representation
func HabitToResponse(h *habits.Habit) dto.HabitResponse {
	return dto.HabitResponse{
		ID:               h.ID,
		UserID:           h.UserID,
		Name:             h.Name,
		Description:      h.Description,
		Category:         string(h.Category),
		ColorCode:        h.ColorCode,
		Icon:             h.Icon,
		Frequency:        string(h.Frequency),
		DaysOfWeek:       h.DaysOfWeek,
		TargetValue:      h.TargetValue,
		Unit:             h.Unit,
		StartDate:        h.StartDate,
		EndDate:          h.EndDate,
		CurrentStreak:    h.CurrentStreak,
		LongestStreak:    h.LongestStreak,
		TotalCompleted:   h.TotalCompleted,
		SuccessRate:      h.SuccessRate,
		LastBrokenDate:   h.LastBrokenDate,
		LastBrokenReason: h.LastBrokenReason,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

// CheckinToResponse converts a checkin domain model to its API representation
func CheckinToResponse(entry *checkins.Checkin) dto.CheckinResponse {
	resp := dto.CheckinResponse{
		ID:             entry.ID,
		HabitID:        entry.HabitID,
		Day:            entry.Day.String(),
		Completed:      entry.Completed,
		Quality:        entry.Quality,
		SkipReasonText: entry.SkipReasonText,
		Notes:          entry.Notes,
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
	if entry.SkipReason != nil {
		reason := string(*entry.SkipReason)
		resp.SkipReason = &reason
	}
	return resp
}

// DayToResponse converts a day domain model to its API representation
func DayToResponse(d *days.Day) dto.DayResponse {
	resp := dto.DayResponse{
		ID:              d.ID,
		UserID:          d.UserID,
		Date:            d.Date.String(),
		Habits:          make([]dto.DayHabitResponse, 0, len(d.Habits)),
		DayNotes:        d.DayNotes,
		Mood:            d.Mood,
		Energy:          d.Energy,
		TotalHabits:     d.TotalHabits,
		CompletedHabits: d.CompletedHabits,
		SuccessRate:     d.SuccessRate,
		Tags:            d.Tags,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, h := range d.Habits {
		resp.Habits = append(resp.Habits, dto.DayHabitResponse{
			HabitID:   h.HabitID,
			Completed: h.Completed,
			Quality:   h.Quality,
			Notes:     h.Notes,
			CheckedAt: h.CheckedAt,
		})
	}
	return resp
}
