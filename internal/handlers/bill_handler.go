package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
	"finhub/internal/pagination"
	"finhub/internal/services"
)

// BillHandler handles bill-related requests.
type BillHandler struct {
	billService services.BillServicer
	now         func() time.Time
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billService services.BillServicer) *BillHandler {
	return &BillHandler{billService: billService, now: time.Now}
}

// CreateBillRequest represents the request payload for creating a bill.
type CreateBillRequest struct {
	Name               string                     `json:"name" binding:"required,max=255"`
	Amount             *decimal.Decimal           `json:"amount" binding:"required" swaggertype:"string" example:"120.00"`
	Category           string                     `json:"category" binding:"max=100"`
	DueDate            string                     `json:"due_date" binding:"required" example:"2024-06-01"`
	IsRecurring        bool                       `json:"is_recurring"`
	RecurrenceInterval *models.RecurrenceInterval `json:"recurrence_interval" binding:"omitempty,recurrence_interval"`
}

// UpdateBillRequest lists the fields a bill update may set. Set
// clear_recurrence_interval to null the interval.
type UpdateBillRequest struct {
	Name                    *string                    `json:"name" binding:"omitempty,max=255"`
	Amount                  *decimal.Decimal           `json:"amount" swaggertype:"string"`
	Category                *string                    `json:"category" binding:"omitempty,max=100"`
	DueDate                 *string                    `json:"due_date"`
	IsRecurring             *bool                      `json:"is_recurring"`
	RecurrenceInterval      *models.RecurrenceInterval `json:"recurrence_interval" binding:"omitempty,recurrence_interval"`
	IsPaid                  *bool                      `json:"is_paid"`
	ClearRecurrenceInterval bool                       `json:"clear_recurrence_interval"`
}

// CreateBill handles the creation of a new bill
// @Summary     Create a bill
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBillRequest true "Bill details"
// @Success     201 {object} models.Bill "Bill created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	dueDate, err := parseFlexibleTime(req.DueDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid due_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	bill, err := h.billService.CreateBill(userID, services.CreateBillInput{
		Name:               req.Name,
		Amount:             *req.Amount,
		Category:           req.Category,
		DueDate:            dueDate,
		IsRecurring:        req.IsRecurring,
		RecurrenceInterval: req.RecurrenceInterval,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bill": bill})
}

// GetUserBills lists the user's bills
// @Summary     List bills
// @Description Get a paginated list of the user's bills, earliest due date first
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Bill] "Paginated bills"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills [get]
func (h *BillHandler) GetUserBills(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithBindError(c, err)
		return
	}

	result, err := h.billService.GetUserBills(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcomingBills lists unpaid bills due soon
// @Summary     Upcoming bills
// @Description Unpaid bills due from today until the given number of days ahead
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Days ahead (default 30)"
// @Success     200 {array}  models.Bill "Upcoming bills"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills/upcoming [get]
func (h *BillHandler) GetUpcomingBills(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days, err := queryInt(c, "days")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bills, err := h.billService.GetUpcomingBills(userID, days, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

// GetBillByID returns one bill
// @Summary     Get bill by ID
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Bill ID"
// @Success     200 {object} models.Bill "Bill"
// @Failure     400 {object} ErrorResponse "Invalid bill ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills/{id} [get]
func (h *BillHandler) GetBillByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.GetBillByID(userID, billID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

// UpdateBill handles partial updates of a bill
// @Summary     Update bill
// @Description Update the given fields of a bill. An empty body changes nothing and reports updated=false.
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Bill ID"
// @Param       request body UpdateBillRequest true "Fields to update"
// @Success     200 {object} models.Bill "Bill and whether it was updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills/{id} [patch]
func (h *BillHandler) UpdateBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, "due_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, updated, err := h.billService.UpdateBill(userID, billID, services.BillPatch{
		Name:               req.Name,
		Amount:             req.Amount,
		Category:           req.Category,
		DueDate:            dueDate,
		IsRecurring:        req.IsRecurring,
		RecurrenceInterval: req.RecurrenceInterval,
		IsPaid:             req.IsPaid,

		ClearRecurrenceInterval: req.ClearRecurrenceInterval,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill, "updated": updated})
}

// DeleteBill handles deleting a bill
// @Summary     Delete bill
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Bill ID"
// @Success     200 {object} models.Bill "Deleted bill"
// @Failure     400 {object} ErrorResponse "Invalid bill ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills/{id} [delete]
func (h *BillHandler) DeleteBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.DeleteBill(userID, billID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if bill == nil {
		respondWithError(c, apperrors.ErrBillNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully", "bill": bill})
}

// MarkBillPaid marks a bill as paid
// @Summary     Pay bill
// @Description Mark a bill as paid. For a recurring bill the next occurrence is created and returned as next_bill.
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Bill ID"
// @Success     200 {object} models.Bill "Paid bill and the next occurrence, if any"
// @Failure     400 {object} ErrorResponse "Invalid bill ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bills/{id}/pay [post]
func (h *BillHandler) MarkBillPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, next, err := h.billService.MarkBillPaid(userID, billID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill, "next_bill": next})
}
