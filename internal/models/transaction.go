package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction. The ledger stores the
// value as given; the database CHECK constraint limits it to the constants below.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is a dated monetary event, optionally attached to a goal.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	GoalID      *uint           `gorm:"index" json:"goal_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	OccurredAt  time.Time       `gorm:"not null;index" json:"occurred_at"`
	Description string          `json:"description"`
}
