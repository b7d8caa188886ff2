package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"splitbook/internal/models"
	"splitbook/internal/storage/sqlite"
)

// testEnv bundles a temp-database store with every service under test.
type testEnv struct {
	store       *sqlite.Store
	expenses    *ExpenseService
	balances    *BalanceService
	settlements *SettlementService
	friends     *FriendService
	groups      *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &testEnv{
		store:       store,
		expenses:    NewExpenseService(store),
		balances:    NewBalanceService(store),
		settlements: NewSettlementService(store),
		friends:     NewFriendService(store),
		groups:      NewGroupService(store),
	}
}

func (env *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := env.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
