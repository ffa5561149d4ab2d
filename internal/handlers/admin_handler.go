package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finhub/internal/errors"
	"finhub/internal/export"
	"finhub/internal/middleware"
	"finhub/internal/pagination"
	"finhub/internal/services"
)

// AdminHandler serves the read-only admin panel.
type AdminHandler struct {
	adminService services.AdminServicer
	tokens       *middleware.TokenManager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer, tokens *middleware.TokenManager) *AdminHandler {
	return &AdminHandler{adminService: adminService, tokens: tokens}
}

// AdminLoginRequest is the admin login payload.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse carries the admin token.
type AdminLoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login authenticates the admin
// @Summary     Admin login
// @Description Exchange the configured admin credentials for an eight hour admin token
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body AdminLoginRequest true "Admin credentials"
// @Success     200 {object} AdminLoginResponse "Admin token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     503 {object} ErrorResponse "Admin access not configured"
// @Router      /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := h.adminService.Authenticate(req.Username, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.tokens.GenerateAdminToken(req.Username)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, AdminLoginResponse{Token: token, Username: req.Username})
}

// bindPage binds page and page_size, writing the error response on failure.
func bindPage(c *gin.Context) (pagination.PageRequest, bool) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithBindError(c, err)
		return page, false
	}
	return page, true
}

// ListUsers lists all users
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.User] "Users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.adminService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser returns one user
// @Summary     Get user
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} models.User "User"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := h.adminService.GetUser(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListGoals lists all goals with details
// @Summary     List goals
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.GoalDetails] "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/goals [get]
func (h *AdminHandler) ListGoals(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.adminService.ListGoals(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGoal returns one goal with details
// @Summary     Get goal
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} models.GoalDetails "Goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /admin/goals/{id} [get]
func (h *AdminHandler) GetGoal(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	goal, err := h.adminService.GetGoal(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// ListTransactions lists all transactions
// @Summary     List transactions
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AdminTransaction] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/transactions [get]
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.adminService.ListTransactions(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransaction returns one transaction
// @Summary     Get transaction
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.AdminTransaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /admin/transactions/{id} [get]
func (h *AdminHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	transaction, err := h.adminService.GetTransaction(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// ExportTransactions downloads every transaction as a spreadsheet
// @Summary     Export transactions
// @Tags        admin
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "XLSX workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/transactions/export [get]
func (h *AdminHandler) ExportTransactions(c *gin.Context) {
	transactions, err := h.adminService.AllTransactions()
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, transactions); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// ListBills lists all bills
// @Summary     List bills
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AdminBill] "Bills"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/bills [get]
func (h *AdminHandler) ListBills(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.adminService.ListBills(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBill returns one bill
// @Summary     Get bill
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Bill ID"
// @Success     200 {object} models.AdminBill "Bill"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /admin/bills/{id} [get]
func (h *AdminHandler) GetBill(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	bill, err := h.adminService.GetBill(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

// ListBalances lists all balances
// @Summary     List balances
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AdminBalance] "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/balances [get]
func (h *AdminHandler) ListBalances(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.adminService.ListBalances(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBalance returns one balance
// @Summary     Get balance
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Balance ID"
// @Success     200 {object} models.AdminBalance "Balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Router      /admin/balances/{id} [get]
func (h *AdminHandler) GetBalance(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	balance, err := h.adminService.GetBalance(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
