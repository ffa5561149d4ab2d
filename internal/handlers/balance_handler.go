package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finhub/internal/services"
)

// BalanceHandler handles month-end balance snapshots.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// UpsertBalanceRequest is the payload for storing a month-end balance.
type UpsertBalanceRequest struct {
	Year    int              `json:"year" binding:"required,min=1900,max=9999"`
	Month   int              `json:"month" binding:"required,min=1,max=12"`
	Balance *decimal.Decimal `json:"balance" binding:"required" swaggertype:"string" example:"1000.00"`
}

// UpsertBalance stores the balance of a month, replacing any previous value
// @Summary     Create or update a balance
// @Description Store the balance for a year and month. Writing the same period again overwrites it.
// @Tags        balances
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertBalanceRequest true "Balance snapshot"
// @Success     200 {object} models.Balance "Stored balance"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balances [put]
func (h *BalanceHandler) UpsertBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	balance, err := h.balanceService.CreateOrUpdate(userID, req.Year, req.Month, *req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ListBalances lists the user's balances
// @Summary     List balances
// @Description List the user's month-end balances, latest period first
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Balance "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balances [get]
func (h *BalanceHandler) ListBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.balanceService.ListBalances(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func parsePeriod(c *gin.Context) (int, int, error) {
	year, err := parsePathInt(c, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := parsePathInt(c, "month")
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// GetBalance returns the balance of one month
// @Summary     Get balance
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} models.Balance "Balance"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balances/{year}/{month} [get]
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.balanceService.GetBalance(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// DeleteBalance deletes the balance of one month
// @Summary     Delete balance
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} models.Balance "Deleted balance"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balances/{year}/{month} [delete]
func (h *BalanceHandler) DeleteBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.balanceService.DeleteBalance(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Balance deleted successfully", "balance": balance})
}
