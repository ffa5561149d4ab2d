package services

import (
	"testing"

	"finhub/internal/models"
	"finhub/internal/testutil"
)

func TestCreateOrUpdateBalance(t *testing.T) {
	t.Run("second_write_overwrites", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateOrUpdate(user.ID, 2024, 3, testutil.Amount("100"))
		testutil.AssertNoError(t, err)
		balance, err := svc.CreateOrUpdate(user.ID, 2024, 3, testutil.Amount("500"))
		testutil.AssertNoError(t, err)

		if !balance.Balance.Equal(testutil.Amount("500")) {
			t.Errorf("expected balance 500, got %s", balance.Balance)
		}

		var count int64
		db.Model(&models.Balance{}).Where("user_id = ? AND year = ? AND month = ?", user.ID, 2024, 3).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one row, got %d", count)
		}
	})

	t.Run("periods_are_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		_, err := svc.CreateOrUpdate(user.ID, 2024, 3, testutil.Amount("100"))
		testutil.AssertNoError(t, err)
		_, err = svc.CreateOrUpdate(other.ID, 2024, 3, testutil.Amount("200"))
		testutil.AssertNoError(t, err)

		mine, err := svc.GetBalance(user.ID, 2024, 3)
		testutil.AssertNoError(t, err)
		if !mine.Balance.Equal(testutil.Amount("100")) {
			t.Errorf("expected 100, got %s", mine.Balance)
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateOrUpdate(user.ID, 2024, 13, testutil.Amount("1"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateOrUpdate(user.ID, 1800, 1, testutil.Amount("1"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListAndDeleteBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBalanceService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestBalance(t, db, user.ID, 2023, 12, "900")
	testutil.CreateTestBalance(t, db, user.ID, 2024, 2, "1100")
	testutil.CreateTestBalance(t, db, user.ID, 2024, 1, "1000")

	balances, err := svc.ListBalances(user.ID)
	testutil.AssertNoError(t, err)
	if len(balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(balances))
	}
	if balances[0].Year != 2024 || balances[0].Month != 2 || balances[2].Year != 2023 {
		t.Errorf("expected newest first, got %d-%d ... %d-%d",
			balances[0].Year, balances[0].Month, balances[2].Year, balances[2].Month)
	}

	deleted, err := svc.DeleteBalance(user.ID, 2024, 1)
	testutil.AssertNoError(t, err)
	if !deleted.Balance.Equal(testutil.Amount("1000")) {
		t.Errorf("expected deleted balance 1000, got %s", deleted.Balance)
	}

	_, err = svc.GetBalance(user.ID, 2024, 1)
	testutil.AssertAppError(t, err, "BALANCE_NOT_FOUND")

	_, err = svc.DeleteBalance(user.ID, 2024, 1)
	testutil.AssertAppError(t, err, "BALANCE_NOT_FOUND")
}
