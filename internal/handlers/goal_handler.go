package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"finhub/internal/models"
	"finhub/internal/services"
)

// GoalHandler handles goal-related requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest is the payload for creating a goal. ExtraData holds the
// fields of the goal type: target_amount, current_amount and deadline for
// saving_goals; debt_name, initial_debt, remaining_debt and
// monthly_payment_target for debt_reduction_goals; category, spending_limit
// and period for spending_control_goals.
type CreateGoalRequest struct {
	Type        models.GoalType `json:"type" binding:"required"`
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description" binding:"max=1000"`
	ExtraData   json.RawMessage `json:"extra_data" swaggertype:"object"`
}

// UpdateGoalRequest is the payload for updating the base columns of a goal.
type UpdateGoalRequest struct {
	Type        *models.GoalType `json:"type"`
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
}

// CreateGoal handles the creation of a goal and its type-specific details
// @Summary     Create a goal
// @Description Create a saving, debt reduction or spending control goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.GoalDetails "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input or goal type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	goalID, err := h.goalService.CreateGoal(userID, services.CreateGoalInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		ExtraData:   req.ExtraData,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals lists the base rows of the user's goals
// @Summary     List goals
// @Description List the authenticated user's goals without type-specific details
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}   models.Goal "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetGoalsByUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoalsFullDetails lists every goal of the user with its details
// @Summary     List goals with details
// @Description List all of the user's goals, each with the columns of its own type filled in
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.GoalDetails "Goals with details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/details [get]
func (h *GoalHandler) GetGoalsFullDetails(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetGoalsFullDetails(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoalsByType lists the user's goals of one type
// @Summary     List goals by type
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "Goal type" Enums(saving_goals, debt_reduction_goals, spending_control_goals)
// @Success     200 {array}  models.GoalDetails "Goals of the type"
// @Failure     400 {object} ErrorResponse "Invalid goal type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/type/{type} [get]
func (h *GoalHandler) GetGoalsByType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetGoalsByUserAndType(userID, models.GoalType(c.Param("type")))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoal returns one goal with its details
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} models.GoalDetails "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal updates the title or description of a goal
// @Summary     Update goal
// @Description Update the base columns of a goal. The goal type cannot be changed.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to update"
// @Success     200 {object} models.Goal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input or type change"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, services.UpdateGoalInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal deletes a goal and its details
// @Summary     Delete goal
// @Description Delete a goal. Transactions attached to it are kept and detached.
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} models.GoalDetails "Deleted goal"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.DeleteGoal(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully", "goal": goal})
}
