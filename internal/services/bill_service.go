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

// DefaultUpcomingDays is the look-ahead window for upcoming bills.
const DefaultUpcomingDays = 30

// billService handles bill-related business logic.
type billService struct {
	db *gorm.DB
}

// NewBillService creates a new BillServicer.
func NewBillService(db *gorm.DB) BillServicer {
	return &billService{db: db}
}

// CreateBill registers an unpaid bill. Due dates are stored as calendar days.
func (s *billService) CreateBill(userID uint, input CreateBillInput) (*models.Bill, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due_date is required")
	}
	if err := validateRecurrence(input.IsRecurring, input.RecurrenceInterval); err != nil {
		return nil, err
	}

	bill := &models.Bill{
		UserID:             userID,
		Name:               name,
		Amount:             input.Amount,
		Category:           input.Category,
		DueDate:            models.StartOfDay(input.DueDate),
		IsRecurring:        input.IsRecurring,
		RecurrenceInterval: input.RecurrenceInterval,
	}
	if err := s.db.Create(bill).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return bill, nil
}

func validateRecurrence(isRecurring bool, interval *models.RecurrenceInterval) error {
	if interval != nil && !interval.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "recurrence_interval must be weekly, monthly or yearly")
	}
	if isRecurring && interval == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "recurrence_interval is required for recurring bills")
	}
	return nil
}

// GetUserBills returns the user's bills, earliest due date first.
func (s *billService) GetUserBills(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Bill], error) {
	page.Defaults()

	base := s.db.Model(&models.Bill{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var bills []models.Bill
	if err := base.Scopes(pagination.Paginate(page)).Order("due_date ASC, id ASC").Find(&bills).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(bills, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBillByID returns a bill by ID if it belongs to the user.
func (s *billService) GetBillByID(userID, billID uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.Where("id = ? AND user_id = ?", billID, userID).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBillNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &bill, nil
}

// UpdateBill writes the non-nil fields of patch. An empty patch does not touch
// the database and reports updated=false.
func (s *billService) UpdateBill(userID, billID uint, patch BillPatch) (*models.Bill, bool, error) {
	bill, err := s.GetBillByID(userID, billID)
	if err != nil {
		return nil, false, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.DueDate != nil {
		updates["due_date"] = models.StartOfDay(*patch.DueDate)
	}
	if patch.IsRecurring != nil {
		updates["is_recurring"] = *patch.IsRecurring
	}
	if patch.RecurrenceInterval != nil && patch.ClearRecurrenceInterval {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurrence_interval and clear_recurrence_interval are mutually exclusive")
	}
	if patch.RecurrenceInterval != nil {
		updates["recurrence_interval"] = *patch.RecurrenceInterval
	}
	if patch.ClearRecurrenceInterval {
		updates["recurrence_interval"] = nil
	}
	if patch.IsPaid != nil {
		updates["is_paid"] = *patch.IsPaid
	}

	if len(updates) == 0 {
		return bill, false, nil
	}

	isRecurring := bill.IsRecurring
	if patch.IsRecurring != nil {
		isRecurring = *patch.IsRecurring
	}
	interval := bill.RecurrenceInterval
	if patch.RecurrenceInterval != nil {
		interval = patch.RecurrenceInterval
	}
	if patch.ClearRecurrenceInterval {
		interval = nil
	}
	if err := validateRecurrence(isRecurring, interval); err != nil {
		return nil, false, err
	}

	if err := s.db.Model(bill).Updates(updates).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	updated, err := s.GetBillByID(userID, billID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// DeleteBill removes a bill and returns it. A bill that does not exist yields
// (nil, nil).
func (s *billService) DeleteBill(userID, billID uint) (*models.Bill, error) {
	bill, err := s.GetBillByID(userID, billID)
	if err != nil {
		if errors.Is(err, apperrors.ErrBillNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.db.Delete(bill).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return bill, nil
}

// GetUpcomingBills returns unpaid bills due from today (inclusive) until
// today+daysAhead (exclusive), earliest first. daysAhead <= 0 uses the default.
func (s *billService) GetUpcomingBills(userID uint, daysAhead int, now time.Time) ([]models.Bill, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultUpcomingDays
	}
	today := models.StartOfDay(now)
	until := today.AddDate(0, 0, daysAhead)

	bills := []models.Bill{}
	err := s.db.Where("user_id = ? AND is_paid = ? AND due_date >= ? AND due_date < ?", userID, false, today, until).
		Order("due_date ASC, id ASC").
		Find(&bills).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return bills, nil
}

// MarkBillPaid flags the bill as paid. For a recurring bill the next
// occurrence is created unpaid, due one interval later, and returned as next.
func (s *billService) MarkBillPaid(userID, billID uint) (*models.Bill, *models.Bill, error) {
	bill, err := s.GetBillByID(userID, billID)
	if err != nil {
		return nil, nil, err
	}
	if bill.IsPaid {
		return bill, nil, nil
	}

	var next *models.Bill
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(bill).Update("is_paid", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if !bill.IsRecurring || bill.RecurrenceInterval == nil {
			return nil
		}
		next = &models.Bill{
			UserID:             bill.UserID,
			Name:               bill.Name,
			Amount:             bill.Amount,
			Category:           bill.Category,
			DueDate:            bill.RecurrenceInterval.Next(bill.DueDate),
			IsRecurring:        true,
			RecurrenceInterval: bill.RecurrenceInterval,
		}
		if err := tx.Create(next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	bill.IsPaid = true
	return bill, next, nil
}
