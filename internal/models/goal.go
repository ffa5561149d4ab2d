package models

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// GoalType names the extension table that holds a goal's type-specific columns.
type GoalType string

const (
	GoalTypeSaving          GoalType = "saving_goals"
	GoalTypeDebtReduction   GoalType = "debt_reduction_goals"
	GoalTypeSpendingControl GoalType = "spending_control_goals"
)

// GoalTypes lists every supported goal type.
var GoalTypes = []GoalType{GoalTypeSaving, GoalTypeDebtReduction, GoalTypeSpendingControl}

// Valid reports whether t is one of the supported goal types.
func (t GoalType) Valid() bool {
	return slices.Contains(GoalTypes, t)
}

// SpendingPeriod is the window a spending control goal's limit applies to.
type SpendingPeriod string

const (
	SpendingPeriodWeekly  SpendingPeriod = "weekly"
	SpendingPeriodMonthly SpendingPeriod = "monthly"
	SpendingPeriodYearly  SpendingPeriod = "yearly"
)

// Valid reports whether p is a supported period.
func (p SpendingPeriod) Valid() bool {
	switch p {
	case SpendingPeriodWeekly, SpendingPeriodMonthly, SpendingPeriodYearly:
		return true
	}
	return false
}

// Goal is the base row shared by all goal types.
type Goal struct {
	Base
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	Type        GoalType `gorm:"not null" json:"type"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `json:"description"`
}

// GoalExtension is the type-specific payload stored next to a Goal. Exactly one
// implementation exists per GoalType.
type GoalExtension interface {
	GoalType() GoalType
	Validate() error
	setGoalID(id uint)
}

// AttachExtension points ext at the goal with the given id.
func AttachExtension(ext GoalExtension, goalID uint) {
	ext.setGoalID(goalID)
}

// NewGoalExtension returns an empty extension for t, or nil for an unknown type.
func NewGoalExtension(t GoalType) GoalExtension {
	switch t {
	case GoalTypeSaving:
		return &SavingGoal{}
	case GoalTypeDebtReduction:
		return &DebtReductionGoal{}
	case GoalTypeSpendingControl:
		return &SpendingControlGoal{}
	}
	return nil
}

// SavingGoal tracks progress towards a target amount.
type SavingGoal struct {
	GoalID        uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"current_amount"`
	Deadline      *time.Time      `gorm:"type:date" json:"deadline"`
}

func (*SavingGoal) GoalType() GoalType { return GoalTypeSaving }

func (g *SavingGoal) setGoalID(id uint) { g.GoalID = id }

func (g *SavingGoal) Validate() error {
	if !g.TargetAmount.IsPositive() {
		return errors.New("target_amount must be greater than zero")
	}
	if g.CurrentAmount.IsNegative() {
		return errors.New("current_amount cannot be negative")
	}
	return nil
}

// DebtReductionGoal tracks paying down a named debt.
type DebtReductionGoal struct {
	GoalID               uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	DebtName             string          `gorm:"not null" json:"debt_name"`
	InitialDebt          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"initial_debt"`
	RemainingDebt        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining_debt"`
	MonthlyPaymentTarget decimal.Decimal `gorm:"type:numeric(14,2)" json:"monthly_payment_target"`
}

func (*DebtReductionGoal) GoalType() GoalType { return GoalTypeDebtReduction }

func (g *DebtReductionGoal) setGoalID(id uint) { g.GoalID = id }

func (g *DebtReductionGoal) Validate() error {
	if g.DebtName == "" {
		return errors.New("debt_name is required")
	}
	if !g.InitialDebt.IsPositive() {
		return errors.New("initial_debt must be greater than zero")
	}
	if g.RemainingDebt.IsNegative() {
		return errors.New("remaining_debt cannot be negative")
	}
	return nil
}

// SpendingControlGoal caps spending in a category over a period.
type SpendingControlGoal struct {
	GoalID        uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Category      string          `gorm:"not null" json:"category"`
	SpendingLimit decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"spending_limit"`
	Period        SpendingPeriod  `gorm:"not null" json:"period"`
}

func (*SpendingControlGoal) GoalType() GoalType { return GoalTypeSpendingControl }

func (g *SpendingControlGoal) setGoalID(id uint) { g.GoalID = id }

func (g *SpendingControlGoal) Validate() error {
	if g.Category == "" {
		return errors.New("category is required")
	}
	if !g.SpendingLimit.IsPositive() {
		return errors.New("spending_limit must be greater than zero")
	}
	if g.Period == "" {
		return errors.New("period is required")
	}
	if !g.Period.Valid() {
		return errors.New("period must be one of weekly, monthly, yearly")
	}
	return nil
}

// GoalDetails is the joined read model of a goal: base columns plus every
// extension column. Columns that belong to other goal types, or to a missing
// extension row, are nil.
type GoalDetails struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Type        GoalType  `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time       `json:"deadline"`

	DebtName             *string          `json:"debt_name"`
	InitialDebt          *decimal.Decimal `json:"initial_debt"`
	RemainingDebt        *decimal.Decimal `json:"remaining_debt"`
	MonthlyPaymentTarget *decimal.Decimal `json:"monthly_payment_target"`

	Category      *string          `json:"category"`
	SpendingLimit *decimal.Decimal `json:"spending_limit"`
	Period        *string          `json:"period"`
}
