package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/api/dto"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/internal/domain/checkins"
	"github.com/habitflow/backend/pkg/daykey"
)

// CheckinsHandler handles HTTP requests for the completion ledger and the
// analytics derived from it
type CheckinsHandler struct {
	service checkins.Service
}

// NewCheckinsHandler creates a new CheckinsHandler instance
func NewCheckinsHandler(service checkins.Service) *CheckinsHandler {
	return &CheckinsHandler{service: service}
}

func requestIDs(c *gin.Context) (userID, habitID uuid.UUID, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, habitID, true
}

// ToggleCheckin godoc
// @Summary Toggle a habit's completion for a day
// @Description Flip the completion state for the given day, creating the entry if absent
// @Tags checkins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param toggle body dto.ToggleCheckinRequest false "Day to toggle, defaults to today"
// @Success 200 {object} dto.CheckinResponse
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId}/checkins/toggle [post]
func (h *CheckinsHandler) ToggleCheckin(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	var req dto.ToggleCheckinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	day := daykey.Today()
	if req.Day != "" {
		parsed, err := daykey.Parse(req.Day)
		if err != nil {
			respondError(c, err)
			return
		}
		day = parsed
	}

	entry, err := h.service.Toggle(c.Request.Context(), userID, habitID, day)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckinToResponse(entry))
}

// RecordCheckin godoc
// @Summary Record a checkin
// @Description Create an explicit ledger entry for one day
// @Tags checkins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param checkin body dto.RecordCheckinRequest true "Checkin to record"
// @Success 201 {object} dto.CheckinResponse
// @Failure 409 {object} map[string]string "Entry already exists for that day"
// @Router /api/habits/{habitId}/checkins [post]
func (h *CheckinsHandler) RecordCheckin(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	var req dto.RecordCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := daykey.Parse(req.Day)
	if err != nil {
		respondError(c, err)
		return
	}

	input := checkins.RecordCheckinInput{
		Day:            day,
		Completed:      req.Completed == nil || *req.Completed,
		Quality:        req.Quality,
		SkipReasonText: req.SkipReasonText,
		Notes:          req.Notes,
	}
	if req.SkipReason != nil {
		reason := checkins.SkipReason(*req.SkipReason)
		input.SkipReason = &reason
	}

	entry, err := h.service.Record(c.Request.Context(), userID, habitID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CheckinToResponse(entry))
}

// ListCheckins godoc
// @Summary List checkins for a habit
// @Description List ledger entries within an optional date range, newest first
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param start query string false "Range start (YYYY-MM-DD)"
// @Param end query string false "Range end (YYYY-MM-DD)"
// @Success 200 {array} dto.CheckinResponse
// @Router /api/habits/{habitId}/checkins [get]
func (h *CheckinsHandler) ListCheckins(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	var start, end daykey.DayKey
	if raw := c.Query("start"); raw != "" {
		parsed, err := daykey.Parse(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := daykey.Parse(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		end = parsed
	}

	entries, err := h.service.ListByRange(c.Request.Context(), userID, habitID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.CheckinResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, CheckinToResponse(&entries[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateCheckin godoc
// @Summary Update a checkin
// @Tags checkins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param checkinId path string true "Checkin ID"
// @Param checkin body dto.UpdateCheckinRequest true "Fields to update"
// @Success 200 {object} dto.CheckinResponse
// @Failure 404 {object} map[string]string "Checkin not found"
// @Router /api/habits/{habitId}/checkins/{checkinId} [put]
func (h *CheckinsHandler) UpdateCheckin(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}
	checkinID, err := uuid.Parse(c.Param("checkinId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkin ID"})
		return
	}

	var req dto.UpdateCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := checkins.UpdateCheckinInput{
		Completed:      req.Completed,
		Quality:        req.Quality,
		SkipReasonText: req.SkipReasonText,
		Notes:          req.Notes,
	}
	if req.SkipReason != nil {
		reason := checkins.SkipReason(*req.SkipReason)
		input.SkipReason = &reason
	}

	entry, err := h.service.UpdateEntry(c.Request.Context(), userID, habitID, checkinID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckinToResponse(entry))
}

// DeleteCheckin godoc
// @Summary Delete a checkin
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param checkinId path string true "Checkin ID"
// @Success 200 {object} map[string]string "Checkin deleted successfully"
// @Failure 404 {object} map[string]string "Checkin not found"
// @Router /api/habits/{habitId}/checkins/{checkinId} [delete]
func (h *CheckinsHandler) DeleteCheckin(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}
	checkinID, err := uuid.Parse(c.Param("checkinId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkin ID"})
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), userID, habitID, checkinID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "checkin deleted successfully"})
}

// GetHabitStats godoc
// @Summary Get per-habit statistics
// @Description Streaks, success rate, last-30-days snapshots and recent entries
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Success 200 {object} checkins.HabitStats
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId}/checkins/stats [get]
func (h *CheckinsHandler) GetHabitStats(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	stats, err := h.service.GetHabitStats(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetStreakDetail godoc
// @Summary Get streak detail for a habit
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Success 200 {object} checkins.StreakDetail
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId}/checkins/streak [get]
func (h *CheckinsHandler) GetStreakDetail(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	detail, err := h.service.GetStreakDetail(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetHeatmap godoc
// @Summary Get a monthly completion heatmap
// @Description One cell per calendar day; a signed month_offset selects other months
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param month_offset query int false "Signed offset from the current month; -1 is last month"
// @Success 200 {object} checkins.Heatmap
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId}/checkins/heatmap [get]
func (h *CheckinsHandler) GetHeatmap(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	monthOffset, err := strconv.Atoi(c.DefaultQuery("month_offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month_offset"})
		return
	}

	heatmap, err := h.service.GetHeatmap(c.Request.Context(), userID, habitID, monthOffset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, heatmap)
}

// GetTrend godoc
// @Summary Get a habit's completion trend
// @Description Bucketed success rates over a trailing window, plus direction
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param days query int false "Window size in days, default 30"
/// @Param interval query string false "Bucket interval: week or month"
// @Success 200 {object} checkins.Trend
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId}/checkins/trend [get]
func (h *CheckinsHandler) GetTrend(c *gin.Context) {
	userID, habitID, ok := requestIDs(c)
	if !ok {
		return
	}

	windowDays, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || windowDays < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}
	interval := checkins.TrendInterval(c.DefaultQuery("interval", string(checkins.TrendWeekly)))
	if !interval.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
		return
	}

	trend, err := h.service.GetTrend(c.Request.Context(), userID, habitID, windowDays, interval)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}

// ListMonthCheckins godoc
// @Summary List a month of checkins across all habits
// @Description Group the caller's ledger entries by day for one month
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month 1-12, defaults to current"
// @Success 200 {object} dto.MonthCheckinsResponse
// @Router /api/checkins [get]
func (h *CheckinsHandler) ListMonthCheckins(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	grouped, err := h.service.ListByMonth(c.Request.Context(), userID, year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.MonthCheckinsResponse{
		Year:     year,
		Month:    month,
		Checkins: make(map[string][]dto.CheckinResponse, len(grouped)),
	}
	for day, entries := range grouped {
		converted := make([]dto.CheckinResponse, 0, len(entries))
		for i := range entries {
			converted = append(converted, CheckinToResponse(&entries[i]))
		}
		resp.Checkins[day.String()] = converted
	}

	c.JSON(http.StatusOK, resp)
}

// GetInsights godoc
// @Summary Get cross-habit insights
// @Description Best weekday, dominant skip reason, best habit, best streak and overall rate
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]checkins.Insight
// @Router /api/checkins/insights [get]
func (h *CheckinsHandler) GetInsights(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	insights, err := h.service.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
