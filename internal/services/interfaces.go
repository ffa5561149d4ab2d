package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"finhub/internal/models"
	"finhub/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
}

// CreateGoalInput carries the base columns of a new goal and the raw JSON of
// its type-specific extension.
type CreateGoalInput struct {
	Type        models.GoalType
	Title       string
	Description string
	ExtraData   json.RawMessage
}

// UpdateGoalInput holds the base columns that may change. Nil fields are left
// untouched. Type is accepted only when it equals the stored type.
type UpdateGoalInput struct {
	Type        *models.GoalType
	Title       *string
	Description *string
}

// GoalServicer defines the contract for goal-related business logic. Every
// method is scoped to the goals owned by userID.
type GoalServicer interface {
	CreateGoal(userID uint, input CreateGoalInput) (uint, error)
	GetGoal(userID, goalID uint) (*models.GoalDetails, error)
	GetGoalsByUser(userID uint) ([]models.Goal, error)
	GetGoalsByUserAndType(userID uint, goalType models.GoalType) ([]models.GoalDetails, error)
	GetGoalsFullDetails(userID uint) ([]models.GoalDetails, error)
	UpdateGoal(userID, goalID uint, input UpdateGoalInput) (*models.Goal, error)
	DeleteGoal(userID, goalID uint) (*models.GoalDetails, error)
}

// CreateTransactionInput holds the fields of a new transaction. A nil
// OccurredAt means now.
type CreateTransactionInput struct {
	Type        models.TransactionType
	Category    string
	Amount      decimal.Decimal
	OccurredAt  *time.Time
	Description string
	GoalID      *uint
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	// Before is an exclusive upper bound on occurred_at.
	Before   *time.Time
	Type     *models.TransactionType
	Category *string
	GoalID   *uint
}

// TransactionPatch lists the columns a transaction update may set. Only
// non-nil fields are written. ClearGoal detaches the transaction from its
// goal and cannot be combined with GoalID.
type TransactionPatch struct {
	Type        *models.TransactionType
	Category    *string
	Amount      *decimal.Decimal
	OccurredAt  *time.Time
	Description *string
	GoalID      *uint
	ClearGoal   bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, input CreateTransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, patch TransactionPatch) (*models.Transaction, bool, error)
	DeleteTransaction(userID, transactionID uint) (*models.Transaction, error)
}

// CreateBillInput holds the fields of a new bill.
type CreateBillInput struct {
	Name               string
	Amount             decimal.Decimal
	Category           string
	DueDate            time.Time
	IsRecurring        bool
	RecurrenceInterval *models.RecurrenceInterval
}

// BillPatch lists the columns a bill update may set. Only non-nil fields are written.
type BillPatch struct {
	Name               *string
	Amount             *decimal.Decimal
	Category           *string
	DueDate            *time.Time
	IsRecurring        *bool
	RecurrenceInterval *models.RecurrenceInterval
	IsPaid             *bool

	// ClearRecurrenceInterval sets recurrence_interval to NULL. It cannot be
	// combined with RecurrenceInterval.
	ClearRecurrenceInterval bool
}

// BillServicer defines the contract for bill-related business logic.
type BillServicer interface {
	CreateBill(userID uint, input CreateBillInput) (*models.Bill, error)
	GetUserBills(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Bill], error)
	GetBillByID(userID, billID uint) (*models.Bill, error)
	UpdateBill(userID, billID uint, patch BillPatch) (*models.Bill, bool, error)
	DeleteBill(userID, billID uint) (*models.Bill, error)
	GetUpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error)
	MarkBillPaid(userID, billID uint) (*models.Bill, *models.Bill, error)
}

// BalanceServicer defines the contract for month-end balance snapshots.
type BalanceServicer interface {
	CreateOrUpdate(userID uint, year, month int, balance decimal.Decimal) (*models.Balance, error)
	GetBalance(userID uint, year, month int) (*models.Balance, error)
	ListBalances(userID uint) ([]models.Balance, error)
	DeleteBalance(userID uint, year, month int) (*models.Balance, error)
}

// TrendPoint is the running balance at the end of one month.
type TrendPoint struct {
	Label   string          `json:"label"`
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

// CashFlowPoint holds the income and expense totals of one day.
type CashFlowPoint struct {
	Label   string          `json:"label"`
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary is the dashboard headline for one user.
type Summary struct {
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	MonthlyIncome      decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses    decimal.Decimal `json:"monthly_expenses"`
	UpcomingBillsTotal decimal.Decimal `json:"upcoming_bills_total"`
	UpcomingBillsCount int64           `json:"upcoming_bills_count"`
}

// AnalyticsServicer defines the contract for dashboard aggregates.
type AnalyticsServicer interface {
	BalanceTrend(userID uint, months int, now time.Time) ([]TrendPoint, error)
	WeeklyCashFlow(userID uint, start time.Time) ([]CashFlowPoint, error)
	Summary(userID uint, now time.Time) (*Summary, error)
	UpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error)
}

// AdminServicer defines the contract for the read-only admin panel.
type AdminServicer interface {
	Authenticate(username, password string) error
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	GetUser(id uint) (*models.User, error)
	ListGoals(page pagination.PageRequest) (*pagination.PageResponse[models.GoalDetails], error)
	GetGoal(id uint) (*models.GoalDetails, error)
	ListTransactions(page pagination.PageRequest) (*pagination.PageResponse[models.AdminTransaction], error)
	GetTransaction(id uint) (*models.AdminTransaction, error)
	AllTransactions() ([]models.AdminTransaction, error)
	ListBills(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBill], error)
	GetBill(id uint) (*models.AdminBill, error)
	ListBalances(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBalance], error)
	GetBalance(id uint) (*models.AdminBalance, error)
}
