package models

import "github.com/shopspring/decimal"

// Expense represents one payment event: the payer paid Amount for Description
// at SpentAt, optionally attributed to a group.
//
// An Expense exclusively owns its Splits: deleting the expense deletes every
// split with it. Expenses are never edited after creation.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is a non-empty, human-readable label.
	Description string

	// Amount is the full amount paid by the payer. Always positive.
	Amount decimal.Decimal

	// SpentAt is the Unix timestamp of the expense.
	SpentAt int64

	// PayerID is the user who paid. The payer never owes themselves: no
	// split of this expense may reference the payer.
	PayerID string

	// GroupID scopes the expense to a group, or is empty for a personal
	// expense between friends. Non-owning reference; group deletion does
	// not cascade here.
	GroupID string

	// Splits are the obligations this expense generated. Populated on reads
	// that load the full expense.
	Splits []Split
}

// Split is one non-payer participant's obligation to reimburse the payer.
//
// Splits are created together with their expense in one transaction and are
// mutated exactly once afterwards: the settlement flip. SettledAt is stamped
// on that first transition and never changes.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ExpenseID is the owning expense.
	ExpenseID string

	// UserID is the debtor. Never equal to the expense's PayerID.
	UserID string

	// Amount is the debtor's owed amount. Always positive.
	Amount decimal.Decimal

	// Settled reports whether the obligation has been retired.
	Settled bool

	// SettledAt is the Unix timestamp of the settlement, zero while
	// unsettled. Immutable once set.
	SettledAt int64
}
