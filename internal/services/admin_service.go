package services

import (
	"crypto/subtle"
	"errors"

	"gorm.io/gorm"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
	"finhub/internal/pagination"
)

// adminService is the read-only view over every user's data.
type adminService struct {
	db       *gorm.DB
	username string
	password string
}

// NewAdminService creates a new AdminServicer checking logins against the
// configured credentials. An empty password disables admin login.
func NewAdminService(db *gorm.DB, username, password string) AdminServicer {
	return &adminService{db: db, username: username, password: password}
}

// Authenticate compares the credentials in constant time.
func (s *adminService) Authenticate(username, password string) error {
	if s.password == "" {
		return apperrors.ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return apperrors.WithMessage(apperrors.ErrInvalidCredentials, "Invalid username or password")
	}
	return nil
}

func (s *adminService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	base := s.db.Model(&models.User{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var users []models.User
	if err := base.Scopes(pagination.Paginate(page)).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(users, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *adminService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &user, nil
}

// ListGoals returns every goal with its extension columns, ordered by id.
func (s *adminService) ListGoals(page pagination.PageRequest) (*pagination.PageResponse[models.GoalDetails], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Goal{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var goals []models.GoalDetails
	err := s.db.Raw(goalDetailsUnion("")+" ORDER BY id LIMIT ? OFFSET ?", page.PageSize, page.Offset()).
		Scan(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *adminService) GetGoal(id uint) (*models.GoalDetails, error) {
	var rows []models.GoalDetails
	err := s.db.Raw("SELECT "+goalDetailsColumns+" "+goalDetailsFrom("")+" WHERE g.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrGoalNotFound
	}
	return &rows[0], nil
}

func (s *adminService) transactionsQuery() *gorm.DB {
	return s.db.Table("transactions t").
		Select("t.*, u.name AS user_name, g.title AS goal_title").
		Joins("JOIN users u ON u.id = t.user_id").
		Joins("LEFT JOIN goals g ON g.id = t.goal_id")
}

// ListTransactions returns every transaction with its owner's name and goal
// title, newest first.
func (s *adminService) ListTransactions(page pagination.PageRequest) (*pagination.PageResponse[models.AdminTransaction], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Transaction{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.AdminTransaction
	if err := s.transactionsQuery().
		Scopes(pagination.Paginate(page)).
		Order("t.occurred_at DESC, t.id DESC").
		Scan(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *adminService) GetTransaction(id uint) (*models.AdminTransaction, error) {
	var rows []models.AdminTransaction
	if err := s.transactionsQuery().Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}
	return &rows[0], nil
}

// AllTransactions returns every transaction unpaginated, for export.
func (s *adminService) AllTransactions() ([]models.AdminTransaction, error) {
	transactions := []models.AdminTransaction{}
	if err := s.transactionsQuery().Order("t.occurred_at DESC, t.id DESC").Scan(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return transactions, nil
}

func (s *adminService) billsQuery() *gorm.DB {
	return s.db.Table("bills b").
		Select("b.*, u.name AS user_name").
		Joins("JOIN users u ON u.id = b.user_id")
}

func (s *adminService) ListBills(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBill], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Bill{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var bills []models.AdminBill
	if err := s.billsQuery().
		Scopes(pagination.Paginate(page)).
		Order("b.due_date ASC, b.id ASC").
		Scan(&bills).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(bills, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *adminService) GetBill(id uint) (*models.AdminBill, error) {
	var rows []models.AdminBill
	if err := s.billsQuery().Where("b.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrBillNotFound
	}
	return &rows[0], nil
}

func (s *adminService) balancesQuery() *gorm.DB {
	return s.db.Table("balances bl").
		Select("bl.*, u.name AS user_name").
		Joins("JOIN users u ON u.id = bl.user_id")
}

func (s *adminService) ListBalances(page pagination.PageRequest) (*pagination.PageResponse[models.AdminBalance], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Balance{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var balances []models.AdminBalance
	if err := s.balancesQuery().
		Scopes(pagination.Paginate(page)).
		Order("bl.year DESC, bl.month DESC, bl.id ASC").
		Scan(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(balances, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *adminService) GetBalance(id uint) (*models.AdminBalance, error) {
	var rows []models.AdminBalance
	if err := s.balancesQuery().Where("bl.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrBalanceNotFound
	}
	return &rows[0], nil
}
