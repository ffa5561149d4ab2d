package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
)

// Balance trend window limits, in months.
const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

// bucketTotals is one row of a bucketed aggregation. Bucket -1 collects
// everything before the first boundary.
type bucketTotals struct {
	Bucket  int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (b bucketTotals) net() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

// bucketCase builds a CASE expression numbering the half-open intervals
// between consecutive boundaries: -1 before boundaries[0], i for
// [boundaries[i], boundaries[i+1]), len(boundaries)-1 from the last one on.
func bucketCase(boundaries []time.Time) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(boundaries))
	sb.WriteString("CASE")
	for i, b := range boundaries {
		fmt.Fprintf(&sb, " WHEN occurred_at < ? THEN %d", i-1)
		args = append(args, b)
	}
	fmt.Fprintf(&sb, " ELSE %d END", len(boundaries)-1)
	return sb.String(), args
}

// analyticsService computes dashboard aggregates from the ledger.
type analyticsService struct {
	db    *gorm.DB
	bills BillServicer
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB, bills BillServicer) AnalyticsServicer {
	return &analyticsService{db: db, bills: bills}
}

// totals sums income and expense of the user's transactions per bucket. Extra
// conditions narrow the rows considered. Buckets without rows are absent.
func (s *analyticsService) totals(userID uint, boundaries []time.Time, extra string, extraArgs ...interface{}) (map[int]bucketTotals, error) {
	caseExpr, args := bucketCase(boundaries)
	query := fmt.Sprintf(`SELECT %s AS bucket,
	COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS income,
	COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expense
FROM transactions
WHERE user_id = ?%s
GROUP BY bucket`, caseExpr, extra)

	args = append(args, models.TransactionTypeIncome, models.TransactionTypeExpense, userID)
	args = append(args, extraArgs...)

	var rows []bucketTotals
	if err := s.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := make(map[int]bucketTotals, len(rows))
	for _, r := range rows {
		r.Income = r.Income.Round(2)
		r.Expense = r.Expense.Round(2)
		result[r.Bucket] = r
	}
	return result, nil
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BalanceTrend returns the running balance at the end of each of the last
// months months, oldest first, ending with the month containing now. History
// before the window is carried into the first month.
func (s *analyticsService) BalanceTrend(userID uint, months int, now time.Time) ([]TrendPoint, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}

	first := monthStart(now).AddDate(0, -(months - 1), 0)
	boundaries := make([]time.Time, months+1)
	for i := range boundaries {
		boundaries[i] = first.AddDate(0, i, 0)
	}

	totals, err := s.totals(userID, boundaries, " AND occurred_at < ?", boundaries[months])
	if err != nil {
		return nil, err
	}

	running := totals[-1].net()
	points := make([]TrendPoint, months)
	for i := 0; i < months; i++ {
		running = running.Add(totals[i].net())
		start := boundaries[i]
		points[i] = TrendPoint{
			Label:   start.Format("Jan"),
			Year:    start.Year(),
			Month:   int(start.Month()),
			Balance: running,
		}
	}
	return points, nil
}

// WeeklyCashFlow returns income and expense totals for the seven days starting
// at start's calendar day (UTC), zero-filled.
func (s *analyticsService) WeeklyCashFlow(userID uint, start time.Time) ([]CashFlowPoint, error) {
	day0 := models.StartOfDay(start)
	boundaries := make([]time.Time, 8)
	for i := range boundaries {
		boundaries[i] = day0.AddDate(0, 0, i)
	}

	totals, err := s.totals(userID, boundaries, " AND occurred_at >= ? AND occurred_at < ?", boundaries[0], boundaries[7])
	if err != nil {
		return nil, err
	}

	points := make([]CashFlowPoint, 7)
	for i := 0; i < 7; i++ {
		day := boundaries[i]
		points[i] = CashFlowPoint{
			Label:   day.Format("Mon"),
			Date:    day,
			Income:  totals[i].Income,
			Expense: totals[i].Expense,
		}
	}
	return points, nil
}

// Summary returns the all-time balance, this month's income and expenses and
// the unpaid bills due in the next DefaultUpcomingDays days.
func (s *analyticsService) Summary(userID uint, now time.Time) (*Summary, error) {
	start := monthStart(now)
	boundaries := []time.Time{start, start.AddDate(0, 1, 0)}

	totals, err := s.totals(userID, boundaries, "")
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		CurrentBalance:     decimal.Zero,
		MonthlyIncome:      totals[0].Income,
		MonthlyExpenses:    totals[0].Expense,
		UpcomingBillsTotal: decimal.Zero,
	}
	for _, t := range totals {
		summary.CurrentBalance = summary.CurrentBalance.Add(t.net())
	}

	bills, err := s.bills.GetUpcomingBills(userID, DefaultUpcomingDays, now)
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		summary.UpcomingBillsTotal = summary.UpcomingBillsTotal.Add(b.Amount)
	}
	summary.UpcomingBillsCount = int64(len(bills))

	return summary, nil
}

// UpcomingBills delegates to the bill registry.
func (s *analyticsService) UpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error) {
	return s.bills.GetUpcomingBills(userID, daysAhead, now)
}
