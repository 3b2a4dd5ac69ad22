package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createGroup(t *testing.T, store *SQLiteStore, members ...string) *models.Group {
	t.Helper()

	group := &models.Group{Name: "Roommates", Members: members}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func dinner(groupID string) *models.Expense {
	return &models.Expense{
		GroupID:     groupID,
		Description: "Dinner",
		Category:    models.CategoryFood,
		Amount:      money.MustParse("100.00"),
		PaidBy:      "Alice",
		Shares: []models.Share{
			{Person: "Bob", Type: models.SharePercentage, Value: decimal.RequireFromString("33.33")},
			{Person: "Alice", Type: models.SharePercentage, Value: decimal.RequireFromString("33.33")},
			{Person: "Charlie", Type: models.SharePercentage, Value: decimal.RequireFromString("33.34")},
		},
	}
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and sorts members", func(t *testing.T) {
		group := createGroup(t, store, "Charlie", "Alice", "Alice")

		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 || got.Members[0] != "Alice" || got.Members[1] != "Charlie" {
			t.Errorf("Members = %v, want [Alice Charlie]", got.Members)
		}
	})

	t.Run("AddGroupMembers ignores existing members", func(t *testing.T) {
		group := createGroup(t, store, "Alice")

		if err := store.AddGroupMembers(ctx, group.ID, []string{"Alice", "Bob"}); err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("Expected 2 members, got %v", got.Members)
		}
	})

	t.Run("AddGroupMembers on unknown group", func(t *testing.T) {
		err := store.AddGroupMembers(ctx, "nonexistent-id", []string{"Alice"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("Expected 2 groups, got %d", len(groups))
		}
		for _, g := range groups {
			if len(g.Members) == 0 {
				t.Errorf("Group %s has no members", g.ID)
			}
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob", "Charlie")

	t.Run("CreateExpense and GetExpense round trip", func(t *testing.T) {
		original := dinner(group.ID)
		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if original.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		got, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}

		if got.Amount != original.Amount {
			t.Errorf("Amount mismatch: got %s, want %s", got.Amount, original.Amount)
		}
		if got.Category != models.CategoryFood {
			t.Errorf("Category mismatch: got %s", got.Category)
		}
		if len(got.Shares) != 3 {
			t.Fatalf("Expected 3 shares, got %d", len(got.Shares))
		}
		// Entry order is preserved, not alphabetical.
		if got.Shares[0].Person != "Bob" || got.Shares[2].Person != "Charlie" {
			t.Errorf("Share order mismatch: %+v", got.Shares)
		}
		if !got.Shares[2].Value.Equal(decimal.RequireFromString("33.34")) {
			t.Errorf("Share value mismatch: got %s, want 33.34", got.Shares[2].Value)
		}
	})

	t.Run("UpdateExpense replaces shares", func(t *testing.T) {
		expense := dinner(group.ID)
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		update := &models.Expense{
			ID:          expense.ID,
			Description: "Dinner (corrected)",
			Category:    models.CategoryFood,
			Amount:      money.MustParse("80.00"),
			PaidBy:      "Bob",
			Shares: []models.Share{
				{Person: "Alice", Type: models.ShareExact, Value: decimal.RequireFromString("80.00")},
			},
		}
		if err := store.UpdateExpense(ctx, update); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if update.GroupID != group.ID {
			t.Errorf("Expected GroupID to be reloaded, got %q", update.GroupID)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.PaidBy != "Bob" || got.Amount != money.MustParse("80.00") || len(got.Shares) != 1 {
			t.Errorf("Unexpected expense after update: %+v", got)
		}
	})

	t.Run("UpdateExpense on unknown expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "nonexistent-id", Amount: 100, Category: models.CategoryOther})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		expense := dinner(group.ID)
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("CreateExpense rejects unknown group", func(t *testing.T) {
		if err := store.CreateExpense(ctx, dinner("nonexistent-group")); err == nil {
			t.Error("Expected foreign key error, got nil")
		}
	})
}

func TestListExpensesByGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice")

	for i, category := range []models.Category{models.CategoryFood, models.CategoryTravel, models.CategoryFood} {
		expense := dinner(group.ID)
		expense.Category = category
		expense.CreatedAt = int64(1000 + i)
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter storage.ExpenseFilter
		want   int
	}{
		{"no filter", storage.ExpenseFilter{}, 3},
		{"category", storage.ExpenseFilter{Category: models.CategoryFood}, 2},
		{"limit", storage.ExpenseFilter{Limit: 2}, 2},
		{"skip", storage.ExpenseFilter{Skip: 2}, 1},
		{"skip past end", storage.ExpenseFilter{Skip: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListExpensesByGroup(ctx, group.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListExpensesByGroup failed: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("Expected %d expenses, got %d", tt.want, len(got))
			}
			for _, e := range got {
				if len(e.Shares) != 3 {
					t.Errorf("Expense %s has %d shares, want 3", e.ID, len(e.Shares))
				}
			}
		})
	}

	got, err := store.ListExpensesByGroup(ctx, group.ID, storage.ExpenseFilter{})
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if got[0].CreatedAt != 1002 {
		t.Errorf("Expected newest first, got CreatedAt=%d", got[0].CreatedAt)
	}
}

func TestListExpensesByGroup_LargeGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large group test in short mode")
	}

	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob")

	// More expenses than SQLite allows bound parameters in one statement.
	const count = 33000

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("expense-%05d", i)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, description, category, amount_cents, paid_by, created_at, updated_at)
			 VALUES (?, ?, 'Coffee', 'food', 300, 'Alice', ?, ?)`,
			id, group.ID, i, i)
		if err != nil {
			t.Fatalf("insert expense failed: %v", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, position, person, share_type, value) VALUES (?, 0, 'Bob', 'percentage', '100')",
			id)
		if err != nil {
			t.Fatalf("insert share failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	t.Run("unbounded", func(t *testing.T) {
		got, err := store.ListExpensesByGroup(ctx, group.ID, storage.ExpenseFilter{})
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(got) != count {
			t.Fatalf("Expected %d expenses, got %d", count, len(got))
		}
		for _, e := range got {
			if len(e.Shares) != 1 || e.Shares[0].Person != "Bob" {
				t.Fatalf("Expense %s has shares %+v, want one share for Bob", e.ID, e.Shares)
			}
		}
	})

	t.Run("page", func(t *testing.T) {
		got, err := store.ListExpensesByGroup(ctx, group.ID, storage.ExpenseFilter{Skip: 10, Limit: 5})
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("Expected 5 expenses, got %d", len(got))
		}
		if got[0].ID != fmt.Sprintf("expense-%05d", count-11) {
			t.Errorf("Expected page to start at expense-%05d, got %s", count-11, got[0].ID)
		}
		for _, e := range got {
			if len(e.Shares) != 1 {
				t.Errorf("Expense %s has %d shares, want 1", e.ID, len(e.Shares))
			}
		}
	})
}

func TestPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "Alice", "Bob")

	payment := &models.Payment{
		GroupID: group.ID,
		From:    "Bob",
		To:      "Alice",
		Amount:  money.MustParse("12.34"),
		Note:    "cash",
	}
	if err := store.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if err := store.CreatePayment(ctx, &models.Payment{GroupID: group.ID, From: "Alice", To: "Bob", Amount: 1}); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	payments, err := store.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByGroup failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments, got %d", len(payments))
	}

	var found *models.Payment
	for _, p := range payments {
		if p.ID == payment.ID {
			found = p
		}
	}
	if found == nil {
		t.Fatal("Created payment not listed")
	}
	if found.Amount != payment.Amount || found.Note != "cash" {
		t.Errorf("Payment mismatch: got %+v", found)
	}

	if err := store.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("DeletePayment failed: %v", err)
	}
	if err := store.DeletePayment(ctx, payment.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
