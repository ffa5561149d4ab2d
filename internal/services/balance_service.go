package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
)

// balanceService handles month-end balance snapshots.
type balanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB) BalanceServicer {
	return &balanceService{db: db}
}

func validatePeriod(year, month int) error {
	if month < 1 || month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be between 1900 and 9999")
	}
	return nil
}

// CreateOrUpdate stores the balance for (user, year, month), overwriting any
// previous value for the same period. Concurrent writers: last one wins.
func (s *balanceService) CreateOrUpdate(userID uint, year, month int, balance decimal.Decimal) (*models.Balance, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	row := &models.Balance{UserID: userID, Year: year, Month: month, Balance: balance}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}).Create(row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	return s.GetBalance(userID, year, month)
}

// GetBalance returns the snapshot for one month.
func (s *balanceService) GetBalance(userID uint, year, month int) (*models.Balance, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	var balance models.Balance
	err := s.db.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBalanceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &balance, nil
}

// ListBalances returns every snapshot of the user, most recent month first.
func (s *balanceService) ListBalances(userID uint) ([]models.Balance, error) {
	balances := []models.Balance{}
	if err := s.db.Where("user_id = ?", userID).Order("year DESC, month DESC").Find(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return balances, nil
}

// DeleteBalance removes the snapshot for one month and returns it.
func (s *balanceService) DeleteBalance(userID uint, year, month int) (*models.Balance, error) {
	balance, err := s.GetBalance(userID, year, month)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(balance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return balance, nil
}
