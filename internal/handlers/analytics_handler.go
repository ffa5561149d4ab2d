package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
	"finhub/internal/services"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	now              func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, now: time.Now}
}

// GetSummary returns the dashboard headline figures
// @Summary     Dashboard summary
// @Description Current balance, this month's income and expenses, and unpaid bills due in the next 30 days
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.analyticsService.Summary(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetBalanceTrend returns the running balance per month
// @Summary     Balance trend
// @Description Running balance at the end of each of the last N months, oldest first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months (default 6, max 24)"
// @Success     200 {array}  services.TrendPoint "Trend"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/balance-trend [get]
func (h *AnalyticsHandler) GetBalanceTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := queryInt(c, "months")
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend, err := h.analyticsService.BalanceTrend(userID, months, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

// GetCashFlow returns daily income and expenses for one week
// @Summary     Weekly cash flow
// @Description Income and expense totals for the seven days starting at start (default: six days ago)
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "First day (YYYY-MM-DD or RFC3339)"
// @Success     200 {array}  services.CashFlowPoint "Daily totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/cash-flow [get]
func (h *AnalyticsHandler) GetCashFlow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	start := models.StartOfDay(h.now()).AddDate(0, 0, -6)
	if v := c.Query("start"); v != "" {
		parsed, parseErr := parseFlexibleTime(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		start = parsed
	}

	points, err := h.analyticsService.WeeklyCashFlow(userID, start)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash_flow": points})
}
