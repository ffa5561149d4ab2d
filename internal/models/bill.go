package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceInterval is how often a recurring bill comes due.
type RecurrenceInterval string

const (
	RecurrenceWeekly  RecurrenceInterval = "weekly"
	RecurrenceMonthly RecurrenceInterval = "monthly"
	RecurrenceYearly  RecurrenceInterval = "yearly"
)

// Valid reports whether r is a supported interval.
func (r RecurrenceInterval) Valid() bool {
	switch r {
	case RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Next returns the due date following from for this interval. Unknown
// intervals return from unchanged.
func (r RecurrenceInterval) Next(from time.Time) time.Time {
	switch r {
	case RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return from.AddDate(0, 1, 0)
	case RecurrenceYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}

// Bill is a due-dated payment obligation.
type Bill struct {
	Base
	UserID             uint                `gorm:"not null;index" json:"user_id"`
	Name               string              `gorm:"not null" json:"name"`
	Amount             decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category           string              `json:"category"`
	DueDate            time.Time           `gorm:"type:date;not null;index" json:"due_date"`
	IsRecurring        bool                `gorm:"not null" json:"is_recurring"`
	RecurrenceInterval *RecurrenceInterval `json:"recurrence_interval"`
	IsPaid             bool                `gorm:"not null" json:"is_paid"`
}
