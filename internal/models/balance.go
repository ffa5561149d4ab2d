package models

import "github.com/shopspring/decimal"

// Balance is the stored balance of a user for one calendar month. The
// (user_id, year, month) triple is unique; writing it again overwrites balance.
type Balance struct {
	Base
	UserID  uint            `gorm:"not null;uniqueIndex:uq_balances_user_period" json:"user_id"`
	Year    int             `gorm:"not null;uniqueIndex:uq_balances_user_period" json:"year"`
	Month   int             `gorm:"not null;uniqueIndex:uq_balances_user_period" json:"month"`
	Balance decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance"`
}
