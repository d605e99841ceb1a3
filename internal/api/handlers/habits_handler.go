package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/api/dto"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/internal/domain/habits"
)

// HabitsHandler handles HTTP requests for habit operations
type HabitsHandler struct {
	service habits.Service
}

// NewHabitsHandler creates a new HabitsHandler instance
func NewHabitsHandler(service habits.Service) *HabitsHandler {
	return &HabitsHandler{service: service}
}

// CreateHabit godoc
// @Summary Create a new habit
// @Description Register a habit with its schedule and presentation fields
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habit body dto.CreateHabitRequest true "Habit creation request"
// @Success 201 {object} dto.HabitResponse "Habit created successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/habits [post]
func (h *HabitsHandler) CreateHabit(c *gin.Context) {
	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	input := habits.CreateHabitInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    habits.Category(req.Category),
		ColorCode:   req.ColorCode,
		Icon:        req.Icon,
		Frequency:   habits.Frequency(req.Frequency),
		DaysOfWeek:  req.DaysOfWeek,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	habit, err := h.service.CreateHabit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, HabitToResponse(habit))
}

// GetHabit godoc
// @Summary Get a habit by ID
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Success 200 {object} dto.HabitResponse
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId} [get]
func (h *HabitsHandler) GetHabit(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	habit, err := h.service.GetHabit(c.Request.Context(), habitID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, HabitToResponse(habit))
}

// ListHabits godoc
// @Summary List habits
// @Description List the caller's habits with optional category and name filters
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param name query string false "Filter by name substring"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.HabitListResponse
// @Router /api/habits [get]
func (h *HabitsHandler) ListHabits(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := habits.HabitFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	}
	if category := c.Query("category"); category != "" {
		cat := habits.Category(category)
		filter.Category = &cat
	}
	if name := c.Query("name"); name != "" {
		filter.Name = &name
	}

	list, total, err := h.service.ListHabits(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.HabitListResponse{
		Habits:     make([]dto.HabitResponse, 0, len(list)),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	for i := range list {
		resp.Habits = append(resp.Habits, HabitToResponse(&list[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateHabit godoc
// @Summary Update a habit
// @Description Apply a partial update to a habit's fields and schedule
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Param habit body dto.UpdateHabitRequest true "Habit update request"
// @Success 200 {object} dto.HabitResponse
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId} [put]
func (h *HabitsHandler) UpdateHabit(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	input := habits.UpdateHabitInput{
		Name:        req.Name,
		Description: req.Description,
		ColorCode:   req.ColorCode,
		Icon:        req.Icon,
		DaysOfWeek:  req.DaysOfWeek,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		EndDate:     req.EndDate,
	}
	if req.Category != nil {
		category := habits.Category(*req.Category)
		input.Category = &category
	}
	if req.Frequency != nil {
		frequency := habits.Frequency(*req.Frequency)
		input.Frequency = &frequency
	}

	habit, err := h.service.UpdateHabit(c.Request.Context(), habitID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, HabitToResponse(habit))
}

// DeleteHabit godoc
// @Summary Delete a habit
// @Description Delete a habit along with its completion history
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param habitId path string true "Habit ID"
// @Success 200 {object} map[string]string "Habit deleted successfully"
// @Failure 404 {object} map[string]string "Habit not found"
// @Router /api/habits/{habitId} [delete]
func (h *HabitsHandler) DeleteHabit(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("habitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.DeleteHabit(c.Request.Context(), habitID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "habit deleted successfully"})
}
