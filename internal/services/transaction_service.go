package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
	"finhub/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a transaction for the user. The type is stored as
// given; the database constrains its values.
func (s *transactionService) CreateTransaction(userID uint, input CreateTransactionInput) (*models.Transaction, error) {
	if strings.TrimSpace(string(input.Type)) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = input.OccurredAt.UTC()
	}

	if input.GoalID != nil {
		if err := s.ensureGoalOwned(userID, *input.GoalID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		GoalID:      input.GoalID,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		OccurredAt:  occurredAt,
		Description: input.Description,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return transaction, nil
}

func (s *transactionService) ensureGoalOwned(userID, goalID uint) error {
	var count int64
	if err := s.db.Model(&models.Goal{}).Where("id = ? AND user_id = ?", goalID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if count == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("occurred_at DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("occurred_at >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("occurred_at <= ?", f.ToDate.UTC())
	}
	if f.Before != nil {
		q = q.Where("occurred_at < ?", f.Before.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.GoalID != nil {
		q = q.Where("goal_id = ?", *f.GoalID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &transaction, nil
}

// UpdateTransaction writes the non-nil fields of patch. An empty patch does
// not touch the database and reports updated=false.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, patch TransactionPatch) (*models.Transaction, bool, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, false, err
	}

	updates := make(map[string]interface{})
	if patch.Type != nil {
		if strings.TrimSpace(string(*patch.Type)) == "" {
			return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "type cannot be empty")
		}
		updates["type"] = *patch.Type
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.OccurredAt != nil {
		updates["occurred_at"] = patch.OccurredAt.UTC()
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.GoalID != nil && patch.ClearGoal {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal_id and clear_goal are mutually exclusive")
	}
	if patch.GoalID != nil {
		if err := s.ensureGoalOwned(userID, *patch.GoalID); err != nil {
			return nil, false, err
		}
		updates["goal_id"] = *patch.GoalID
	}
	if patch.ClearGoal {
		updates["goal_id"] = nil
	}

	if len(updates) == 0 {
		return transaction, false, nil
	}

	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	updated, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// DeleteTransaction removes a transaction and returns it. A transaction that
// does not exist yields (nil, nil).
func (s *transactionService) DeleteTransaction(userID, transactionID uint) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return transaction, nil
}
