package testutil_test

import (
	"testing"
	"time"

	"finhub/internal/errors"
	"finhub/internal/models"
	"finhub/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "goals", "saving_goals", "debt_reduction_goals", "spending_control_goals", "transactions", "bills", "balances"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	testutil.CreateTestUser(t, first)

	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected a fresh database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if user.Name == "" {
		t.Error("user should have a generated name")
	}

	goal := testutil.CreateTestSavingGoal(t, db, user.ID)
	var ext models.SavingGoal
	if err := db.First(&ext, "goal_id = ?", goal.ID).Error; err != nil {
		t.Fatalf("saving goal extension missing: %v", err)
	}
	if !ext.TargetAmount.Equal(testutil.Amount("1000")) {
		t.Errorf("expected target 1000, got %s", ext.TargetAmount)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "10.50", time.Now())
	if !tx.Amount.Equal(testutil.Amount("10.5")) {
		t.Errorf("expected amount 10.50, got %s", tx.Amount)
	}

	bill := testutil.CreateTestBill(t, db, user.ID, "42.00", testutil.Date(2024, time.March, 1))
	if bill.IsPaid {
		t.Error("new bill should be unpaid")
	}

	balance := testutil.CreateTestBalance(t, db, user.ID, 2024, 3, "1500.00")
	if balance.Month != 3 {
		t.Errorf("expected month 3, got %d", balance.Month)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrGoalNotFound, "custom message")
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
