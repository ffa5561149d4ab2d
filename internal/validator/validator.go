// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"finhub/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("recurrence_interval", validateRecurrenceInterval)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
		return true
	}
	return false
}

func validateRecurrenceInterval(fl validator.FieldLevel) bool {
	return models.RecurrenceInterval(fl.Field().String()).Valid()
}
