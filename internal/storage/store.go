// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"splitbook/internal/models"
)

// BalanceFilter selects the unsettled splits feeding one directed sum:
// splits where the expense's payer is PayerID, the debtor is DebtorID, and,
// when GroupID is non-empty, the expense belongs to that group.
type BalanceFilter struct {
	PayerID  string
	DebtorID string
	GroupID  string
}

// Store defines the persistence interface consumed by the service layer.
// The abstraction allows swapping storage backends without touching the
// services.
type Store interface {
	// CreateUser persists a new user. Duplicate username or email returns
	// an apperr.ErrConflict-wrapped error.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user, or apperr.ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername retrieves a user by handle, or apperr.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Missing users are
	// omitted from the result, not errors.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateExpenseWithSplits persists an expense and all of its splits in
	// one transaction. A failure leaves neither visible.
	CreateExpenseWithSplits(ctx context.Context, expense *models.Expense, splits []models.Split) error

	// GetExpense retrieves an expense with its splits, or apperr.ErrNotFound.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// DeleteExpense removes an expense; its splits cascade with it.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByPayer returns a payer's expenses, newest first.
	ListExpensesByPayer(ctx context.Context, payerID string) ([]*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// GetSplit retrieves a split, or apperr.ErrNotFound.
	GetSplit(ctx context.Context, splitID string) (*models.Split, error)

	// SettleSplit marks an unsettled split settled at the given time. The
	// update is conditional on the split still being unsettled, so a
	// concurrent second writer observes apperr.ErrConflict rather than
	// overwriting the timestamp.
	SettleSplit(ctx context.Context, splitID string, settledAt int64) error

	// SettleAllBetween settles every unsettled split in either direction
	// between the pair in one transaction, stamping all of them with the
	// same settledAt. Returns how many rows changed.
	SettleAllBetween(ctx context.Context, userA, userB string, settledAt int64) (int, error)

	// SumUnsettled folds the amounts of the unsettled splits matching the
	// filter into one exact decimal sum.
	SumUnsettled(ctx context.Context, f BalanceFilter) (decimal.Decimal, error)

	// AddFriendship inserts the canonical edge for the pair.
	// An existing edge returns apperr.ErrConflict.
	AddFriendship(ctx context.Context, userA, userB string) error

	// RemoveFriendship deletes the canonical edge for the pair.
	// A missing edge returns apperr.ErrNotFound.
	RemoveFriendship(ctx context.Context, userA, userB string) error

	// AreFriends reports whether the pair's edge exists.
	AreFriends(ctx context.Context, userA, userB string) (bool, error)

	// ListFriendIDs returns a user's friend IDs, sorted ascending.
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)

	// CreateGroupWithMembers persists a group and its initial memberships
	// (creator included) in one transaction.
	CreateGroupWithMembers(ctx context.Context, group *models.Group, memberIDs []string) error

	// GetGroup retrieves a group with its member IDs, or apperr.ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddGroupMember inserts one membership. Duplicate membership returns
	// apperr.ErrConflict.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// ListGroupsForUser returns the groups a user belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// Close releases any resources held by the store.
	Close() error
}
