package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/api/dto"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/internal/domain/days"
	"github.com/habitflow/backend/pkg/daykey"
)

// DaysHandler handles HTTP requests for day aggregates and the monthly
// calendar
type DaysHandler struct {
	service days.Service
}

// NewDaysHandler creates a new DaysHandler instance
func NewDaysHandler(service days.Service) *DaysHandler {
	return &DaysHandler{service: service}
}

func dayRequestIDs(c *gin.Context) (userID, dayID uuid.UUID, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, dayID, true
}

// CreateDay godoc
// @Summary Create a day
// @Description Create a day aggregate with an optional set of planned habits
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day body dto.CreateDayRequest true "Day creation request"
// @Success 201 {object} dto.DayResponse
// @Failure 409 {object} map[string]string "Day already exists for that date"
// @Router /api/days [post]
func (h *DaysHandler) CreateDay(c *gin.Context) {
	var req dto.CreateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	date, err := daykey.Parse(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	habitIDs := make([]uuid.UUID, 0, len(req.HabitIDs))
	for _, raw := range req.HabitIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
			return
		}
		habitIDs = append(habitIDs, id)
	}

	input := days.CreateDayInput{
		Date:     date,
		HabitIDs: habitIDs,
		DayNotes: req.DayNotes,
		Mood:     req.Mood,
		Energy:   req.Energy,
		Tags:     req.Tags,
	}

	day, err := h.service.CreateDay(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, DayToResponse(day))
}

// GetDay godoc
// @Summary Get a day by ID
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {object} dto.DayResponse
// @Failure 404 {object} map[string]string "Day not found"
// @Router /api/days/{dayId} [get]
func (h *DaysHandler) GetDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}

	day, err := h.service.GetDay(c.Request.Context(), dayID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayToResponse(day))
}

// ListDays godoc
// @Summary List days in a date range
// @Description List the caller's days newest first, optionally filtered by status
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param start query string true "Range start (YYYY-MM-DD)"
// @Param end query string true "Range end (YYYY-MM-DD)"
// @Param status query string false "Filter by day status"
// @Success 200 {array} dto.DayResponse
// @Router /api/days [get]
func (h *DaysHandler) ListDays(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	start, err := daykey.Parse(c.Query("start"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := daykey.Parse(c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.service.ListDays(c.Request.Context(), userID, start, end, days.DayStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.DayResponse, 0, len(list))
	for i := range list {
		resp = append(resp, DayToResponse(&list[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateDay godoc
// @Summary Update day-level context
// @Description Update notes, mood, energy, tags or status for a day
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param day body dto.UpdateDayRequest true "Fields to update"
// @Success 200 {object} dto.DayResponse
// @Failure 404 {object} map[string]string "Day not found"
// @Router /api/days/{dayId} [put]
func (h *DaysHandler) UpdateDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}

	var req dto.UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := days.UpdateDayInput{
		DayNotes: req.DayNotes,
		Mood:     req.Mood,
		Energy:   req.Energy,
		Tags:     req.Tags,
	}
	if req.Status != nil {
		status := days.DayStatus(*req.Status)
		input.Status = &status
	}

	day, err := h.service.UpdateDay(c.Request.Context(), dayID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayToResponse(day))
}

// DeleteDay godoc
// @Summary Delete a day
// @Description Remove a day aggregate; the underlying ledger is left untouched
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {object} map[string]string "Day deleted successfully"
// @Failure 404 {object} map[string]string "Day not found"
// @Router /api/days/{dayId} [delete]
func (h *DaysHandler) DeleteDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDay(c.Request.Context(), dayID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "day deleted successfully"})
}

// AddHabitToDay godoc
// @Summary Add a habit slot to a day
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param habit body dto.AddHabitToDayRequest true "Habit to add"
// @Success 200 {object} dto.DayResponse
// @Failure 409 {object} map[string]string "Habit already in day"
// @Router /api/days/{dayId}/habits [post]
func (h *DaysHandler) AddHabitToDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}

	var req dto.AddHabitToDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	habitID, err := uuid.Parse(req.HabitID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	day, err := h.service.AddHabitToDay(c.Request.Context(), dayID, habitID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayToResponse(day))
}

// RemoveHabitFromDay godoc
// @Summary Remove a habit slot from a day
// @Description Drop the slot from the day; ledger entries are not deleted
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param habitId path string true "Habit ID"
// @Success 200 {object} dto.DayResponse
// @Failure 404 {object} map[string]string "Habit not in day"
// @Router /api/days/{dayId}/habits/{habitId} [delete]
func (h *DaysHandler) RemoveHabitFromDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	day, err := h.service.RemoveHabitFromDay(c.Request.Context(), dayID, habitID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayToResponse(day))
}

// CheckHabitInDay godoc
// @Summary Set a habit's completion within a day
// @Description Write the completion to the ledger, then mirror it on the day slot
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param habitId path string true "Habit ID"
// @Param check body dto.CheckHabitRequest true "Completion state"
// @Success 200 {object} dto.DayResponse
// @Failure 404 {object} map[string]string "Habit not in day"
// @Router /api/days/{dayId}/habits/{habitId} [put]
func (h *DaysHandler) CheckHabitInDay(c *gin.Context) {
	userID, dayID, ok := dayRequestIDs(c)
	if !ok {
		return
	}
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.CheckHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := days.CheckHabitInput{
		Completed: req.Completed,
		Quality:   req.Quality,
		Notes:     req.Notes,
	}

	day, err := h.service.CheckHabitInDay(c.Request.Context(), dayID, habitID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DayToResponse(day))
}

// GetMonthlyCalendar godoc
// @Summary Get a monthly calendar
// @Description One cell per calendar day of the month; empty dates carry a null day
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month 1-12, defaults to current"
// @Success 200 {object} dto.MonthlyCalendarResponse
// @Router /api/days/calendar [get]
func (h *DaysHandler) GetMonthlyCalendar(c *gin.Context) {
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

	calendar, err := h.service.GetMonthlyCalendar(c.Request.Context(), userID, year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.MonthlyCalendarResponse{
		Year:  calendar.Year,
		Month: calendar.Month,
		Days:  make([]dto.CalendarCellResponse, 0, len(calendar.Days)),
	}
	for _, cell := range calendar.Days {
		converted := dto.CalendarCellResponse{
			Date:      cell.Date.String(),
			DayOfWeek: cell.DayOfWeek,
		}
		if cell.Day != nil {
			dayResp := DayToResponse(cell.Day)
			converted.Day = &dayResp
		}
		resp.Days = append(resp.Days, converted)
	}

	c.JSON(http.StatusOK, resp)
}
