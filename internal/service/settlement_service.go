package service

import (
	"context"
	"log/slog"
	"time"

	"splitbook/internal/apperr"
	"splitbook/internal/metrics"
	"splitbook/internal/storage"
)

// SettlementService retires obligations. Settlement is a bookkeeping state
// change only; no money moves.
type SettlementService struct {
	store storage.Store

	// now is the logical clock for settlement timestamps, swappable in
	// tests.
	now func() time.Time
}

// NewSettlementService creates a new SettlementService with the given
// storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store, now: time.Now}
}

// SettleSplit marks one split settled. Only the debtor may settle their own
// obligation; a split belonging to someone else is reported as not found. A
// second attempt on an already-settled split errors with a conflict, and the
// failed call leaves both state and timestamp untouched: the timestamp must
// reflect the first transition only.
func (s *SettlementService) SettleSplit(ctx context.Context, splitID, actorID string) error {
	split, err := s.store.GetSplit(ctx, splitID)
	if err != nil {
		return err
	}
	if split.UserID != actorID {
		return apperr.NotFoundf("split %s", splitID)
	}
	if err := s.store.SettleSplit(ctx, splitID, s.now().Unix()); err != nil {
		return err
	}

	metrics.SplitsSettled.WithLabelValues("single").Inc()
	slog.Info("Split settled", "split_id", splitID, "user_id", actorID)
	return nil
}

// SettleAllWith settles every unsettled split between self and other, in
// either direction, in one transaction with one shared timestamp. Returns
// how many splits changed; zero is fine. Afterwards the pair's net balance
// is zero.
func (s *SettlementService) SettleAllWith(ctx context.Context, selfID, otherID string) (int, error) {
	if selfID == otherID {
		return 0, apperr.Validationf("cannot settle with yourself")
	}
	if _, err := s.store.GetUserByID(ctx, otherID); err != nil {
		return 0, err
	}

	count, err := s.store.SettleAllBetween(ctx, selfID, otherID, s.now().Unix())
	if err != nil {
		slog.Error("SettleAllWith failed", "self_id", selfID, "other_id", otherID, "error", err)
		return 0, err
	}

	metrics.SplitsSettled.WithLabelValues("bulk").Add(float64(count))
	slog.Info("Settled all splits with user",
		"self_id", selfID,
		"other_id", otherID,
		"count", count,
	)
	return count, nil
}
