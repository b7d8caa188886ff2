package service

import (
	"context"
	"errors"
	"testing"

	"splitbook/internal/apperr"
)

// TestBalanceLifecycle walks the canonical scenario: a shared dinner, a
// counter-expense, a single settlement, and a deletion.
func TestBalanceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	// Alice pays 30, split equally with Bob and Carol.
	dinner, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "dinner", dec(t, "30"), []string{bob.ID, carol.ID}, "")
	if err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}

	assertBalance := func(t *testing.T, selfID, otherID, want string) {
		t.Helper()
		got, err := env.balances.NetBalance(ctx, selfID, otherID, "")
		if err != nil {
			t.Fatalf("NetBalance failed: %v", err)
		}
		if !got.Equal(dec(t, want)) {
			t.Errorf("NetBalance = %s, want %s", got, want)
		}
	}

	t.Run("bob owes alice his share", func(t *testing.T) {
		assertBalance(t, alice.ID, bob.ID, "10")
	})

	t.Run("antisymmetry", func(t *testing.T) {
		assertBalance(t, bob.ID, alice.ID, "-10")
	})

	t.Run("counter-expense nets across both directions", func(t *testing.T) {
		// Alice pays 6 and Bob owes it in full; both debts are Bob's, so
		// the pair's balance grows to 16 in Alice's favor.
		if _, err := env.expenses.CreateOwedInFull(ctx, bob.ID, alice.ID, "cab", dec(t, "6"), ""); err != nil {
			t.Fatalf("CreateOwedInFull failed: %v", err)
		}
		assertBalance(t, alice.ID, bob.ID, "16")

		// Now Bob pays 4 for Alice: a genuine reverse debt.
		if _, err := env.expenses.CreateEqualSplit(ctx, bob.ID, "coffee", dec(t, "8"), []string{alice.ID}, ""); err != nil {
			t.Fatalf("CreateEqualSplit failed: %v", err)
		}
		assertBalance(t, alice.ID, bob.ID, "12")
		assertBalance(t, bob.ID, alice.ID, "-12")
	})

	t.Run("settling one split shifts the balance once", func(t *testing.T) {
		var bobSplitID string
		got, err := env.expenses.GetExpense(ctx, dinner.ID, alice.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		for _, split := range got.Splits {
			if split.UserID == bob.ID {
				bobSplitID = split.ID
			}
		}

		if err := env.settlements.SettleSplit(ctx, bobSplitID, bob.ID); err != nil {
			t.Fatalf("SettleSplit failed: %v", err)
		}
		assertBalance(t, alice.ID, bob.ID, "2")

		// A second settlement attempt errors and changes nothing.
		if err := env.settlements.SettleSplit(ctx, bobSplitID, bob.ID); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		assertBalance(t, alice.ID, bob.ID, "2")
	})

	t.Run("deleting the expense removes its remaining obligations", func(t *testing.T) {
		if err := env.expenses.DeleteExpense(ctx, dinner.ID, alice.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		// Carol's unsettled 10 from the dinner is gone with it.
		assertBalance(t, alice.ID, carol.ID, "0")
	})
}

func TestNetBalanceSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	_, err := env.balances.NetBalance(context.Background(), alice.ID, alice.ID, "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNetBalanceUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	_, err := env.balances.NetBalance(context.Background(), alice.ID, "ghost", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActiveBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	dave := env.user(t, "dave")

	for _, friendID := range []string{bob.ID, carol.ID, dave.ID} {
		if err := env.friends.AddFriend(ctx, alice.ID, friendID); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}
	}

	// Bob and Carol owe; Dave's debts cancel out exactly.
	if _, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "dinner", dec(t, "30"), []string{bob.ID, carol.ID}, ""); err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}
	if _, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "cab", dec(t, "10"), []string{dave.ID}, ""); err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}
	if _, err := env.expenses.CreateEqualSplit(ctx, dave.ID, "snacks", dec(t, "10"), []string{alice.ID}, ""); err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}

	balances, err := env.balances.ActiveBalances(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ActiveBalances failed: %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("expected 2 active balances (zero omitted), got %d", len(balances))
	}
	for _, balance := range balances {
		if balance.UserID == dave.ID {
			t.Error("zero balance with dave should be omitted")
		}
		if !balance.Amount.Equal(dec(t, "10")) {
			t.Errorf("balance with %s = %s, want 10", balance.UserID, balance.Amount)
		}
	}
	// Stable ordering by friend ID.
	if balances[0].UserID > balances[1].UserID {
		t.Errorf("balances not ordered by user ID: %v, %v", balances[0].UserID, balances[1].UserID)
	}

	// The zero pair is still retrievable via the direct pairwise query.
	zero, err := env.balances.NetBalance(ctx, alice.ID, dave.ID, "")
	if err != nil {
		t.Fatalf("NetBalance failed: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("NetBalance with dave = %s, want 0", zero)
	}
}

func TestGroupBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	group, err := env.groups.CreateGroup(ctx, alice.ID, "trip", []string{bob.ID})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// One group expense and one personal expense with the same pair.
	if _, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "hotel", dec(t, "40"), []string{bob.ID}, group.ID); err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}
	if _, err := env.expenses.CreateEqualSplit(ctx, alice.ID, "lunch", dec(t, "10"), []string{bob.ID}, ""); err != nil {
		t.Fatalf("CreateEqualSplit failed: %v", err)
	}

	t.Run("scoped to the group's expenses", func(t *testing.T) {
		balances, err := env.balances.GroupBalances(ctx, alice.ID, group.ID)
		if err != nil {
			t.Fatalf("GroupBalances failed: %v", err)
		}
		if len(balances) != 1 {
			t.Fatalf("expected 1 balance, got %d", len(balances))
		}
		if balances[0].UserID != bob.ID || !balances[0].Amount.Equal(dec(t, "20")) {
			t.Errorf("balance = %s/%s, want %s/20", balances[0].UserID, balances[0].Amount, bob.ID)
		}
	})

	t.Run("pairwise query accepts the group filter", func(t *testing.T) {
		got, err := env.balances.NetBalance(ctx, bob.ID, alice.ID, group.ID)
		if err != nil {
			t.Fatalf("NetBalance failed: %v", err)
		}
		if !got.Equal(dec(t, "-20")) {
			t.Errorf("NetBalance = %s, want -20", got)
		}
	})

	t.Run("non-members cannot read group balances", func(t *testing.T) {
		_, err := env.balances.GroupBalances(ctx, carol.ID, group.ID)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
