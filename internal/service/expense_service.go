package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"splitbook/internal/apperr"
	"splitbook/internal/metrics"
	"splitbook/internal/models"
	"splitbook/internal/splitter"
	"splitbook/internal/storage"
)

// ExpenseService is the split engine: it decomposes a paid expense into
// per-participant obligations and persists expense plus splits atomically.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateEqualSplit records an expense the payer paid, divided equally among
// the payer and the named participants. Each participant gets one split of
// round(amount/(n+1), 2); the payer's own share is implicit and never
// materialized. The payer is silently dropped from the participant list, and
// an empty list is legal: it records an expense with no reimbursable debt.
func (s *ExpenseService) CreateEqualSplit(ctx context.Context, payerID, description string, amount decimal.Decimal, participantIDs []string, groupID string) (*models.Expense, error) {
	if err := s.validateExpense(ctx, payerID, description, amount, groupID); err != nil {
		return nil, err
	}

	participants := dedupe(participantIDs, payerID)
	if err := s.ensureUsersExist(ctx, participants); err != nil {
		return nil, err
	}

	var splits []models.Split
	if len(participants) > 0 {
		share, err := splitter.EqualShare(amount, len(participants))
		if err != nil {
			return nil, apperr.Validationf("%v", err)
		}
		for _, userID := range participants {
			splits = append(splits, models.Split{UserID: userID, Amount: share})
		}
	}

	expense := &models.Expense{
		Description: strings.TrimSpace(description),
		Amount:      amount,
		PayerID:     payerID,
		GroupID:     groupID,
	}
	if err := s.store.CreateExpenseWithSplits(ctx, expense, splits); err != nil {
		slog.Error("CreateEqualSplit failed", "payer_id", payerID, "error", err)
		return nil, err
	}

	metrics.ExpensesCreated.WithLabelValues("equal").Inc()
	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"payer_id", payerID,
		"amount", amount.String(),
		"splits", len(splits),
	)
	return expense, nil
}

// CreateOwedInFull records an expense someone else paid and the acting user
// owes in full: one split for the actor at the complete amount, with the
// named payer as the expense's payer. This is the degenerate single-debtor
// case, not a generalized arbitrary split.
func (s *ExpenseService) CreateOwedInFull(ctx context.Context, actorID, payerID, description string, amount decimal.Decimal, groupID string) (*models.Expense, error) {
	if actorID == payerID {
		return nil, apperr.Validationf("payer and debtor must differ")
	}
	if err := s.validateExpense(ctx, payerID, description, amount, groupID); err != nil {
		return nil, err
	}
	if err := s.ensureUsersExist(ctx, []string{actorID}); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Description: strings.TrimSpace(description),
		Amount:      amount,
		PayerID:     payerID,
		GroupID:     groupID,
	}
	splits := []models.Split{{UserID: actorID, Amount: amount}}
	if err := s.store.CreateExpenseWithSplits(ctx, expense, splits); err != nil {
		slog.Error("CreateOwedInFull failed", "payer_id", payerID, "debtor_id", actorID, "error", err)
		return nil, err
	}

	metrics.ExpensesCreated.WithLabelValues("owed_in_full").Inc()
	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"payer_id", payerID,
		"debtor_id", actorID,
		"amount", amount.String(),
	)
	return expense, nil
}

// GetExpense retrieves an expense with its splits. Only the payer or a
// debtor may see it.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID, actorID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !involvesUser(expense, actorID) {
		return nil, apperr.NotFoundf("expense %s", expenseID)
	}
	return expense, nil
}

// DeleteExpense removes an expense and, via cascade, all of its splits.
// Only the payer may delete; anyone else sees not-found.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID, actorID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.PayerID != actorID {
		return apperr.NotFoundf("expense %s", expenseID)
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}
	slog.Info("Expense deleted", "expense_id", expenseID, "payer_id", actorID)
	return nil
}

// ExpensesByPayer returns the expenses a user paid for, newest first.
func (s *ExpenseService) ExpensesByPayer(ctx context.Context, payerID string) ([]*models.Expense, error) {
	return s.store.ListExpensesByPayer(ctx, payerID)
}

func (s *ExpenseService) validateExpense(ctx context.Context, payerID, description string, amount decimal.Decimal, groupID string) error {
	if strings.TrimSpace(description) == "" {
		return apperr.Validationf("description must not be empty")
	}
	if !amount.IsPositive() {
		return apperr.Validationf("amount must be positive, got %s", amount)
	}
	if _, err := s.store.GetUserByID(ctx, payerID); err != nil {
		return err
	}
	if groupID != "" {
		if _, err := s.store.GetGroup(ctx, groupID); err != nil {
			return err
		}
	}
	return nil
}

// ensureUsersExist fails with not-found if any referenced user is missing.
func (s *ExpenseService) ensureUsersExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return apperr.NotFoundf("user %s", id)
		}
	}
	return nil
}

// dedupe removes duplicates and the excluded ID while preserving order.
func dedupe(ids []string, exclude string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// involvesUser reports whether the user is the payer or one of the debtors.
func involvesUser(expense *models.Expense, userID string) bool {
	if expense.PayerID == userID {
		return true
	}
	for _, split := range expense.Splits {
		if split.UserID == userID {
			return true
		}
	}
	return false
}
