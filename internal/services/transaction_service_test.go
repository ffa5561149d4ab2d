package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finhub/internal/models"
	"finhub/internal/pagination"
	"finhub/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		when := time.Date(2024, time.May, 3, 14, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			Type:        models.TransactionTypeIncome,
			Category:    "salary",
			Amount:      testutil.Amount("2500.75"),
			OccurredAt:  &when,
			Description: "May salary",
		})
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if tx.OccurredAt.Location() != time.UTC || !tx.OccurredAt.Equal(when) {
			t.Errorf("expected occurred_at normalized to UTC, got %v", tx.OccurredAt)
		}

		stored, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if !stored.Amount.Equal(testutil.Amount("2500.75")) {
			t.Errorf("expected amount 2500.75, got %s", stored.Amount)
		}
	})

	t.Run("defaults_occurred_at_to_now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		before := time.Now().Add(-time.Second)
		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeExpense, Amount: testutil.Amount("5")})
		testutil.AssertNoError(t, err)
		if tx.OccurredAt.Before(before) {
			t.Errorf("expected occurred_at ~now, got %v", tx.OccurredAt)
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeIncome, Amount: decimal.Zero})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Amount: testutil.Amount("10")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("goal_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestSavingGoal(t, db, other.ID)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: testutil.Amount("10"),
			GoalID: &goal.ID,
		})
		testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	jan := testutil.Date(2024, time.January, 10)
	feb := testutil.Date(2024, time.February, 10)
	mar := testutil.Date(2024, time.March, 10)
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "100", jan)
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "40", feb)
	newest := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "25", mar)
	testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "999", mar)

	page := pagination.PageRequest{Page: 1, PageSize: 20}

	t.Run("newest_first_own_only", func(t *testing.T) {
		result, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].ID != newest.ID {
			t.Errorf("expected newest transaction first, got id %d", result.Data[0].ID)
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		expense := models.TransactionTypeExpense
		result, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{Type: &expense})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 expenses, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_date_range", func(t *testing.T) {
		from := testutil.Date(2024, time.February, 1)
		to := testutil.Date(2024, time.February, 28)
		result, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 transaction in February, got %d", result.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 || result.TotalPages != 2 {
			t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(result.Data), result.TotalPages)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("applies_patch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "20", time.Now())

		amount := testutil.Amount("35.50")
		category := "dining"
		updated, changed, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{Amount: &amount, Category: &category})
		testutil.AssertNoError(t, err)
		if !changed {
			t.Error("expected updated=true")
		}
		if !updated.Amount.Equal(amount) || updated.Category != category {
			t.Errorf("unexpected transaction after update: %+v", updated)
		}
		if updated.Type != models.TransactionTypeExpense {
			t.Errorf("type should be unchanged, got %s", updated.Type)
		}
	})

	t.Run("empty_patch_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "20", time.Now())

		got, changed, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{})
		testutil.AssertNoError(t, err)
		if changed {
			t.Error("expected updated=false for empty patch")
		}
		if got.ID != tx.ID {
			t.Errorf("expected transaction %d, got %d", tx.ID, got.ID)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "20", time.Now())

		amount := testutil.Amount("-1")
		_, _, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{Amount: &amount})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		desc := "x"
		_, _, err := svc.UpdateTransaction(user.ID, 9999, TransactionPatch{Description: &desc})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("clear_goal_detaches", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestSavingGoal(t, db, user.ID)
		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: testutil.Amount("15"),
			GoalID: &goal.ID,
		})
		testutil.AssertNoError(t, err)

		updated, changed, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{ClearGoal: true})
		testutil.AssertNoError(t, err)
		if !changed {
			t.Error("expected updated=true")
		}
		if updated.GoalID != nil {
			t.Errorf("expected goal_id to be null, got %d", *updated.GoalID)
		}
	})

	t.Run("goal_and_clear_goal_together", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestSavingGoal(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "20", time.Now())

		_, _, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{GoalID: &goal.ID, ClearGoal: true})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTransactions_Before(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	page := pagination.PageRequest{Page: 1, PageSize: 20}

	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "12", time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC))
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "8", time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC))

	t.Run("end_of_day_included", func(t *testing.T) {
		before := testutil.Date(2024, time.March, 11)
		result, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{Before: &before})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected the afternoon transaction only, got %d", result.TotalItems)
		}
	})

	t.Run("inclusive_to_date_at_midnight", func(t *testing.T) {
		to := testutil.Date(2024, time.March, 10)
		result, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{ToDate: &to})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected no transactions up to midnight, got %d", result.TotalItems)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("returns_deleted_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "100", time.Now())

		deleted, err := svc.DeleteTransaction(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if deleted == nil || deleted.ID != tx.ID {
			t.Fatalf("expected deleted transaction %d, got %+v", tx.ID, deleted)
		}

		_, err = svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("missing_id_returns_nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		deleted, err := svc.DeleteTransaction(user.ID, 424242)
		testutil.AssertNoError(t, err)
		if deleted != nil {
			t.Errorf("expected nil, got %+v", deleted)
		}
	})
}
