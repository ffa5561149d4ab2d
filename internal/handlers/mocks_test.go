package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finhub/internal/bank"
	"finhub/internal/middleware"
	"finhub/internal/models"
	"finhub/internal/pagination"
	"finhub/internal/services"
	"finhub/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	registerFn       func(name, email, password string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id uint) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
}

var _ services.UserServicer = (*mockUserService)(nil)

func (m *mockUserService) Register(name, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(name, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type mockGoalService struct {
	createGoalFn            func(userID uint, input services.CreateGoalInput) (uint, error)
	getGoalFn               func(userID, goalID uint) (*models.GoalDetails, error)
	getGoalsByUserFn        func(userID uint) ([]models.Goal, error)
	getGoalsByUserAndTypeFn func(userID uint, goalType models.GoalType) ([]models.GoalDetails, error)
	getGoalsFullDetailsFn   func(userID uint) ([]models.GoalDetails, error)
	updateGoalFn            func(userID, goalID uint, input services.UpdateGoalInput) (*models.Goal, error)
	deleteGoalFn            func(userID, goalID uint) (*models.GoalDetails, error)
}

var _ services.GoalServicer = (*mockGoalService)(nil)

func (m *mockGoalService) CreateGoal(userID uint, input services.CreateGoalInput) (uint, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, input)
	}
	return 1, nil
}

func (m *mockGoalService) GetGoal(userID, goalID uint) (*models.GoalDetails, error) {
	if m.getGoalFn != nil {
		return m.getGoalFn(userID, goalID)
	}
	return &models.GoalDetails{ID: goalID, UserID: userID}, nil
}

func (m *mockGoalService) GetGoalsByUser(userID uint) ([]models.Goal, error) {
	if m.getGoalsByUserFn != nil {
		return m.getGoalsByUserFn(userID)
	}
	return []models.Goal{}, nil
}

func (m *mockGoalService) GetGoalsByUserAndType(userID uint, goalType models.GoalType) ([]models.GoalDetails, error) {
	if m.getGoalsByUserAndTypeFn != nil {
		return m.getGoalsByUserAndTypeFn(userID, goalType)
	}
	return []models.GoalDetails{}, nil
}

func (m *mockGoalService) GetGoalsFullDetails(userID uint) ([]models.GoalDetails, error) {
	if m.getGoalsFullDetailsFn != nil {
		return m.getGoalsFullDetailsFn(userID)
	}
	return []models.GoalDetails{}, nil
}

func (m *mockGoalService) UpdateGoal(userID, goalID uint, input services.UpdateGoalInput) (*models.Goal, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(userID, goalID, input)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) DeleteGoal(userID, goalID uint) (*models.GoalDetails, error) {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return &models.GoalDetails{ID: goalID}, nil
}

type mockTransactionService struct {
	createTransactionFn   func(userID uint, input services.CreateTransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID uint) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID uint, patch services.TransactionPatch) (*models.Transaction, bool, error)
	deleteTransactionFn   func(userID, transactionID uint) (*models.Transaction, error)
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func (m *mockTransactionService) CreateTransaction(userID uint, input services.CreateTransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID uint, patch services.TransactionPatch) (*models.Transaction, bool, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, patch)
	}
	return &models.Transaction{}, true, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID uint) (*models.Transaction, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

type mockBillService struct {
	createBillFn       func(userID uint, input services.CreateBillInput) (*models.Bill, error)
	getUserBillsFn     func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Bill], error)
	getBillByIDFn      func(userID, billID uint) (*models.Bill, error)
	updateBillFn       func(userID, billID uint, patch services.BillPatch) (*models.Bill, bool, error)
	deleteBillFn       func(userID, billID uint) (*models.Bill, error)
	getUpcomingBillsFn func(userID uint, daysAhead int, now time.Time) ([]models.Bill, error)
	markBillPaidFn     func(userID, billID uint) (*models.Bill, *models.Bill, error)
}

var _ services.BillServicer = (*mockBillService)(nil)

func (m *mockBillService) CreateBill(userID uint, input services.CreateBillInput) (*models.Bill, error) {
	if m.createBillFn != nil {
		return m.createBillFn(userID, input)
	}
	return &models.Bill{}, nil
}

func (m *mockBillService) GetUserBills(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Bill], error) {
	if m.getUserBillsFn != nil {
		return m.getUserBillsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Bill{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBillService) GetBillByID(userID, billID uint) (*models.Bill, error) {
	if m.getBillByIDFn != nil {
		return m.getBillByIDFn(userID, billID)
	}
	return &models.Bill{}, nil
}

func (m *mockBillService) UpdateBill(userID, billID uint, patch services.BillPatch) (*models.Bill, bool, error) {
	if m.updateBillFn != nil {
		return m.updateBillFn(userID, billID, patch)
	}
	return &models.Bill{}, true, nil
}

func (m *mockBillService) DeleteBill(userID, billID uint) (*models.Bill, error) {
	if m.deleteBillFn != nil {
		return m.deleteBillFn(userID, billID)
	}
	return &models.Bill{}, nil
}

func (m *mockBillService) GetUpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error) {
	if m.getUpcomingBillsFn != nil {
		return m.getUpcomingBillsFn(userID, daysAhead, now)
	}
	return []models.Bill{}, nil
}

func (m *mockBillService) MarkBillPaid(userID, billID uint) (*models.Bill, *models.Bill, error) {
	if m.markBillPaidFn != nil {
		return m.markBillPaidFn(userID, billID)
	}
	return &models.Bill{IsPaid: true}, nil, nil
}

type mockBalanceService struct {
	createOrUpdateFn func(userID uint, year, month int, balance decimal.Decimal) (*models.Balance, error)
	getBalanceFn     func(userID uint, year, month int) (*models.Balance, error)
	listBalancesFn   func(userID uint) ([]models.Balance, error)
	deleteBalanceFn  func(userID uint, year, month int) (*models.Balance, error)
}

var _ services.BalanceServicer = (*mockBalanceService)(nil)

func (m *mockBalanceService) CreateOrUpdate(userID uint, year, month int, balance decimal.Decimal) (*models.Balance, error) {
	if m.createOrUpdateFn != nil {
		return m.createOrUpdateFn(userID, year, month, balance)
	}
	return &models.Balance{UserID: userID, Year: year, Month: month, Balance: balance}, nil
}

func (m *mockBalanceService) GetBalance(userID uint, year, month int) (*models.Balance, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(userID, year, month)
	}
	return &models.Balance{}, nil
}

func (m *mockBalanceService) ListBalances(userID uint) ([]models.Balance, error) {
	if m.listBalancesFn != nil {
		return m.listBalancesFn(userID)
	}
	return []models.Balance{}, nil
}

func (m *mockBalanceService) DeleteBalance(userID uint, year, month int) (*models.Balance, error) {
	if m.deleteBalanceFn != nil {
		return m.deleteBalanceFn(userID, year, month)
	}
	return &models.Balance{}, nil
}

type mockAnalyticsService struct {
	balanceTrendFn   func(userID uint, months int, now time.Time) ([]services.TrendPoint, error)
	weeklyCashFlowFn func(userID uint, start time.Time) ([]services.CashFlowPoint, error)
	summaryFn        func(userID uint, now time.Time) (*services.Summary, error)
	upcomingBillsFn  func(userID uint, daysAhead int, now time.Time) ([]models.Bill, error)
}

var _ services.AnalyticsServicer = (*mockAnalyticsService)(nil)

func (m *mockAnalyticsService) BalanceTrend(userID uint, months int, now time.Time) ([]services.TrendPoint, error) {
	if m.balanceTrendFn != nil {
		return m.balanceTrendFn(userID, months, now)
	}
	return []services.TrendPoint{}, nil
}

func (m *mockAnalyticsService) WeeklyCashFlow(userID uint, start time.Time) ([]services.CashFlowPoint, error) {
	if m.weeklyCashFlowFn != nil {
		return m.weeklyCashFlowFn(userID, start)
	}
	return []services.CashFlowPoint{}, nil
}

func (m *mockAnalyticsService) Summary(userID uint, now time.Time) (*services.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(userID, now)
	}
	return &services.Summary{}, nil
}

func (m *mockAnalyticsService) UpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error) {
	if m.upcomingBillsFn != nil {
		return m.upcomingBillsFn(userID, daysAhead, now)
	}
	return []models.Bill{}, nil
}

type mockAdminService struct {
	authenticateFn     func(username, password string) error
	listUsersFn        func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	getUserFn          func(id uint) (*models.User, error)
	listGoalsFn        func(page pagination.PageRequest) (*pagination.PageResponse[models.GoalDetails], error)
	getGoalFn          func(id uint) (*models.GoalDetails, error)
	listTransactionsFn func(page pagination.PageRequest) (*pagination.PageResponse[models.AdminTransaction], error)
	getTransactionFn   func(id uint) (*models.AdminTransaction, error)
	allTransactionsFn  func() ([]models.AdminTransaction, error)
	listBillsFn        func(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBill], error)
	getBillFn          func(id uint) (*models.AdminBill, error)
	listBalancesFn     func(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBalance], error)
	getBalanceFn       func(id uint) (*models.AdminBalance, error)
}

var _ services.AdminServicer = (*mockAdminService)(nil)

func (m *mockAdminService) Authenticate(username, password string) error {
	if m.authenticateFn != nil {
		return m.authenticateFn(username, password)
	}
	return nil
}

func (m *mockAdminService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetUser(id uint) (*models.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(id)
	}
	return &models.User{}, nil
}

func (m *mockAdminService) ListGoals(page pagination.PageRequest) (*pagination.PageResponse[models.GoalDetails], error) {
	if m.listGoalsFn != nil {
		return m.listGoalsFn(page)
	}
	resp := pagination.NewPageResponse([]models.GoalDetails{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetGoal(id uint) (*models.GoalDetails, error) {
	if m.getGoalFn != nil {
		return m.getGoalFn(id)
	}
	return &models.GoalDetails{}, nil
}

func (m *mockAdminService) ListTransactions(page pagination.PageRequest) (*pagination.PageResponse[models.AdminTransaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(page)
	}
	resp := pagination.NewPageResponse([]models.AdminTransaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetTransaction(id uint) (*models.AdminTransaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(id)
	}
	return &models.AdminTransaction{}, nil
}

func (m *mockAdminService) AllTransactions() ([]models.AdminTransaction, error) {
	if m.allTransactionsFn != nil {
		return m.allTransactionsFn()
	}
	return []models.AdminTransaction{}, nil
}

func (m *mockAdminService) ListBills(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBill], error) {
	if m.listBillsFn != nil {
		return m.listBillsFn(page)
	}
	resp := pagination.NewPageResponse([]models.AdminBill{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetBill(id uint) (*models.AdminBill, error) {
	if m.getBillFn != nil {
		return m.getBillFn(id)
	}
	return &models.AdminBill{}, nil
}

func (m *mockAdminService) ListBalances(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBalance], error) {
	if m.listBalancesFn != nil {
		return m.listBalancesFn(page)
	}
	resp := pagination.NewPageResponse([]models.AdminBalance{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetBalance(id uint) (*models.AdminBalance, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(id)
	}
	return &models.AdminBalance{}, nil
}

type mockBankClient struct {
	getAccountsFn func(ctx context.Context, scope bank.Scope, params url.Values) (json.RawMessage, error)
	getAccountFn  func(ctx context.Context, scope bank.Scope, accountID string) (json.RawMessage, error)
	getBillsFn    func(ctx context.Context, scope bank.Scope) (json.RawMessage, error)
}

var _ BankClient = (*mockBankClient)(nil)

func (m *mockBankClient) GetAccounts(ctx context.Context, scope bank.Scope, params url.Values) (json.RawMessage, error) {
	if m.getAccountsFn != nil {
		return m.getAccountsFn(ctx, scope, params)
	}
	return json.RawMessage(`[]`), nil
}

func (m *mockBankClient) GetAccount(ctx context.Context, scope bank.Scope, accountID string) (json.RawMessage, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(ctx, scope, accountID)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockBankClient) GetBills(ctx context.Context, scope bank.Scope) (json.RawMessage, error) {
	if m.getBillsFn != nil {
		return m.getBillsFn(ctx, scope)
	}
	return json.RawMessage(`[]`), nil
}

// --- test helpers ---

const testJWTSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// newTestRouter returns an engine with the error middleware mounted, as
// server.NewRouter does, so handler errors are rendered.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func newTestTokens() *middleware.TokenManager {
	return middleware.NewTokenManager(testJWTSecret, time.Hour)
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
