// Package models defines the core domain models for Splitbook.
//
// The entities mirror the relational layout one-to-one:
//   - User: registered account, payer of zero or more Expenses
//   - Friendship: one undirected edge per unordered pair of users
//   - Group: named collection of users around shared expenses
//   - Membership: join record between a User and a Group
//   - Expense: a payment event that owns a set of Splits
//   - Split: one participant's obligation to reimburse the payer
//
// Net balances are derived, never stored: they are recomputed from unsettled
// splits on every read (see service.BalanceService).
//
// Design notes:
//  1. Relationships use ID strings instead of pointers to avoid circular
//     references; ownership (Expense -> Splits) is expressed by cascade
//     delete at the store.
//  2. Amounts are decimal.Decimal everywhere. Rounding to two places happens
//     only at the documented points: per-participant shares and net balances.
//  3. Models are never edited after creation; the only mutation in the system
//     is a Split's settlement flip.
package models
