package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"splitbook/internal/apperr"
	"splitbook/internal/models"
	"splitbook/internal/storage"
)

// CreateExpenseWithSplits persists an expense and its splits atomically.
// A failure partway leaves neither the expense nor any split visible.
func (s *Store) CreateExpenseWithSplits(ctx context.Context, expense *models.Expense, splits []models.Split) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.SpentAt == 0 {
		expense.SpentAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID any
	if expense.GroupID != "" {
		groupID = expense.GroupID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, spent_at, payer_id, group_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount.String(), expense.SpentAt, expense.PayerID, groupID,
	)
	if isForeignKeyViolation(err) {
		return apperr.Integrityf("expense references missing user or group")
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range splits {
		split := &splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		_, err = tx.ExecContext(ctx,
			`INSERT INTO splits (id, expense_id, user_id, amount, settled, settled_at)
			 VALUES (?, ?, ?, ?, 0, NULL)`,
			split.ID, split.ExpenseID, split.UserID, split.Amount.String(),
		)
		if isForeignKeyViolation(err) {
			return apperr.Integrityf("split references missing user")
		}
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	expense.Splits = splits
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string
	var groupID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, amount, spent_at, payer_id, group_id
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.Description, &amount, &expense.SpentAt, &expense.PayerID, &groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("expense %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expense amount: %w", err)
	}
	if groupID.Valid {
		expense.GroupID = groupID.String
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, user_id, amount, settled, settled_at
		 FROM splits WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		expense.Splits = append(expense.Splits, *split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense; the splits cascade via foreign key.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFoundf("expense %s", expenseID)
	}
	return nil
}

// ListExpensesByPayer returns a payer's expenses, newest first.
// Splits are not populated.
func (s *Store) ListExpensesByPayer(ctx context.Context, payerID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id, description, amount, spent_at, payer_id, group_id
		 FROM expenses WHERE payer_id = ? ORDER BY spent_at DESC, id`,
		payerID,
	)
}

// ListExpensesByGroup returns a group's expenses, newest first.
// Splits are not populated.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id, description, amount, spent_at, payer_id, group_id
		 FROM expenses WHERE group_id = ? ORDER BY spent_at DESC, id`,
		groupID,
	)
}

func (s *Store) listExpenses(ctx context.Context, query string, arg any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var amount string
		var groupID sql.NullString
		if err := rows.Scan(&expense.ID, &expense.Description, &amount, &expense.SpentAt, &expense.PayerID, &groupID); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expense amount: %w", err)
		}
		if groupID.Valid {
			expense.GroupID = groupID.String
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// GetSplit retrieves a split by ID.
func (s *Store) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, expense_id, user_id, amount, settled, settled_at
		 FROM splits WHERE id = ?`,
		splitID,
	)
	split, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("split %s", splitID)
	}
	return split, err
}

// SettleSplit flips a split to settled, conditional on it being unsettled.
// The WHERE settled = 0 guard serializes concurrent settlement attempts: the
// loser changes zero rows and sees ErrConflict (or ErrNotFound if the split
// never existed), and the original timestamp survives.
func (s *Store) SettleSplit(ctx context.Context, splitID string, settledAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE splits SET settled = 1, settled_at = ? WHERE id = ? AND settled = 0",
		settledAt, splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM splits WHERE id = ?", splitID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("split %s", splitID)
	}
	if err != nil {
		return fmt.Errorf("failed to check split existence: %w", err)
	}
	return apperr.Conflictf("split %s already settled", splitID)
}

// SettleAllBetween settles every unsettled split between the pair, in either
// direction, in one transaction with one shared timestamp.
func (s *Store) SettleAllBetween(ctx context.Context, userA, userB string, settledAt int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE splits SET settled = 1, settled_at = ?
		 WHERE settled = 0
		   AND id IN (
			SELECT s.id FROM splits s
			JOIN expenses e ON e.id = s.expense_id
			WHERE (e.payer_id = ? AND s.user_id = ?)
			   OR (e.payer_id = ? AND s.user_id = ?)
		 )`,
		settledAt, userA, userB, userB, userA,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to settle splits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(n), nil
}

// SumUnsettled folds the unsettled split amounts matching the filter into an
// exact decimal sum. Amounts are stored as text and summed in Go so no float
// coercion sneaks in.
func (s *Store) SumUnsettled(ctx context.Context, f storage.BalanceFilter) (decimal.Decimal, error) {
	query := `SELECT s.amount FROM splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.payer_id = ? AND s.user_id = ? AND s.settled = 0`
	args := []any{f.PayerID, f.DebtorID}
	if f.GroupID != "" {
		query += " AND e.group_id = ?"
		args = append(args, f.GroupID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query unsettled splits: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan split amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse split amount: %w", err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate split amounts: %w", err)
	}
	return total, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSplit(row rowScanner) (*models.Split, error) {
	split := &models.Split{}
	var amount string
	var settled int
	var settledAt sql.NullInt64

	err := row.Scan(&split.ID, &split.ExpenseID, &split.UserID, &amount, &settled, &settledAt)
	if err != nil {
		return nil, err
	}

	split.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse split amount: %w", err)
	}
	split.Settled = settled != 0
	if settledAt.Valid {
		split.SettledAt = settledAt.Int64
	}
	return split, nil
}
