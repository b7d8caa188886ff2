package service

import (
	"context"
	"errors"
	"testing"

	"splitbook/internal/apperr"
)

func TestCreateEqualSplit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	t.Run("thirty split among payer and two participants", func(t *testing.T) {
		expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "dinner", dec(t, "30"), []string{bob.ID, carol.ID}, "")
		if err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		if len(expense.Splits) != 2 {
			t.Fatalf("expected 2 splits, got %d", len(expense.Splits))
		}
		for _, split := range expense.Splits {
			if !split.Amount.Equal(dec(t, "10")) {
				t.Errorf("split amount = %s, want 10.00", split.Amount)
			}
			if split.UserID == alice.ID {
				t.Error("payer must never get a split")
			}
		}
	})

	t.Run("payer in participant list is dropped silently", func(t *testing.T) {
		expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "lunch", dec(t, "20"), []string{alice.ID, bob.ID}, "")
		if err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		if len(expense.Splits) != 1 {
			t.Fatalf("expected 1 split, got %d", len(expense.Splits))
		}
		// Alice dropped, so the division is between two heads.
		if !expense.Splits[0].Amount.Equal(dec(t, "10")) {
			t.Errorf("split amount = %s, want 10", expense.Splits[0].Amount)
		}
		if expense.Splits[0].UserID != bob.ID {
			t.Errorf("split user = %s, want %s", expense.Splits[0].UserID, bob.ID)
		}
	})

	t.Run("duplicate participants count once", func(t *testing.T) {
		expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "taxi", dec(t, "9"), []string{bob.ID, bob.ID, carol.ID}, "")
		if err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		if len(expense.Splits) != 2 {
			t.Fatalf("expected 2 splits, got %d", len(expense.Splits))
		}
		for _, split := range expense.Splits {
			if !split.Amount.Equal(dec(t, "3")) {
				t.Errorf("split amount = %s, want 3", split.Amount)
			}
		}
	})

	t.Run("no participants records debt-free expense", func(t *testing.T) {
		expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "groceries", dec(t, "15"), nil, "")
		if err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		if len(expense.Splits) != 0 {
			t.Errorf("expected no splits, got %d", len(expense.Splits))
		}
	})

	t.Run("per-participant rounding, no remainder redistribution", func(t *testing.T) {
		expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "drinks", dec(t, "10"), []string{bob.ID, carol.ID}, "")
		if err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		total := dec(t, "0")
		for _, split := range expense.Splits {
			if !split.Amount.Equal(dec(t, "3.33")) {
				t.Errorf("split amount = %s, want 3.33", split.Amount)
			}
			total = total.Add(split.Amount)
		}
		if total.GreaterThan(expense.Amount) {
			t.Errorf("splits %s exceed expense amount %s", total, expense.Amount)
		}
	})

	tests := []struct {
		name         string
		payerID      string
		description  string
		amount       string
		participants []string
		wantErr      error
	}{
		{"zero amount", "", "x", "0", nil, apperr.ErrValidation},
		{"negative amount", "", "x", "-1", nil, apperr.ErrValidation},
		{"empty description", "", "  ", "10", nil, apperr.ErrValidation},
		{"unknown payer", "ghost", "x", "10", nil, apperr.ErrNotFound},
		{"unknown participant", "", "x", "10", []string{"ghost"}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payerID := tt.payerID
			if payerID == "" {
				payerID = alice.ID
			}
			_, err := env.expenses.CreateEqualSplit(ctx, payerID, tt.description, dec(t, tt.amount), tt.participants, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "x", dec(t, "10"), nil, "ghost")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestCreateOwedInFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	t.Run("single split for the full amount", func(t *testing.T) {
		expense, err := env.expenses.CreateOwedInFull(ctx, bob.ID, alice.ID, "covered by alice", dec(t, "6"), "")
		if err != nil {
			t.Fatalf("CreateOwedInFull failed: %v", err)
		}
		if expense.PayerID != alice.ID {
			t.Errorf("payer = %s, want %s", expense.PayerID, alice.ID)
		}
		if len(expense.Splits) != 1 {
			t.Fatalf("expected 1 split, got %d", len(expense.Splits))
		}
		if expense.Splits[0].UserID != bob.ID || !expense.Splits[0].Amount.Equal(dec(t, "6")) {
			t.Errorf("split = %s/%s, want %s/6", expense.Splits[0].UserID, expense.Splits[0].Amount, bob.ID)
		}
	})

	t.Run("actor cannot owe themselves", func(t *testing.T) {
		_, err := env.expenses.CreateOwedInFull(ctx, bob.ID, bob.ID, "x", dec(t, "6"), "")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestDeleteExpense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "dinner", dec(t, "30"), []string{bob.ID}, "")
	if err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}

	t.Run("only the payer may delete", func(t *testing.T) {
		err := env.expenses.DeleteExpense(ctx, expense.ID, bob.ID)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete removes expense and splits", func(t *testing.T) {
		if err := env.expenses.DeleteExpense(ctx, expense.ID, alice.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := env.expenses.GetExpense(ctx, expense.ID, alice.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		balance, err := env.balances.NetBalance(ctx, alice.ID, bob.ID, "")
		if err != nil {
			t.Fatalf("NetBalance failed: %v", err)
		}
		if !balance.IsZero() {
			t.Errorf("balance after delete = %s, want 0", balance)
		}
	})
}

func TestGetExpenseVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	expense, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "dinner", dec(t, "30"), []string{bob.ID}, "")
	if err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}

	for _, userID := range []string{alice.ID, bob.ID} {
		if _, err := env.expenses.GetExpense(ctx, expense.ID, userID); err != nil {
			t.Errorf("GetExpense as involved user failed: %v", err)
		}
	}
	if _, err := env.expenses.GetExpense(ctx, expense.ID, carol.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("uninvolved user should see not-found, got %v", err)
	}
}
