package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finhub/internal/models"

	"github.com/bxcodec/faker/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses s into a decimal and panics on malformed input. Test use only.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password, a generated name and a
// unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d.%s", nextID(), faker.Email())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     faker.Name(),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSavingGoal creates a saving goal with a target of 1000.00.
func CreateTestSavingGoal(t *testing.T, db *gorm.DB, userID uint) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:      userID,
		Type:        models.GoalTypeSaving,
		Title:       fmt.Sprintf("Saving %s %d", faker.Word(), nextID()),
		Description: faker.Sentence(),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	ext := &models.SavingGoal{GoalID: goal.ID, TargetAmount: Amount("1000.00"), CurrentAmount: Amount("100.00")}
	if err := db.Create(ext).Error; err != nil {
		t.Fatalf("failed to create test saving goal: %v", err)
	}
	return goal
}

// CreateTestTransaction creates a transaction of the given type and amount at occurredAt.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount string, occurredAt time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Category:    faker.Word(),
		Amount:      Amount(amount),
		OccurredAt:  occurredAt.UTC(),
		Description: faker.Sentence(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBill creates an unpaid, non-recurring bill due on dueDate.
func CreateTestBill(t *testing.T, db *gorm.DB, userID uint, amount string, dueDate time.Time) *models.Bill {
	t.Helper()

	bill := &models.Bill{
		UserID:   userID,
		Name:     fmt.Sprintf("Bill %s %d", faker.Word(), nextID()),
		Amount:   Amount(amount),
		Category: "utilities",
		DueDate:  dueDate.UTC(),
	}
	if err := db.Create(bill).Error; err != nil {
		t.Fatalf("failed to create test bill: %v", err)
	}
	return bill
}

// CreateTestBalance stores a month-end balance snapshot.
func CreateTestBalance(t *testing.T, db *gorm.DB, userID uint, year, month int, amount string) *models.Balance {
	t.Helper()

	balance := &models.Balance{UserID: userID, Year: year, Month: month, Balance: Amount(amount)}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("failed to create test balance: %v", err)
	}
	return balance
}
