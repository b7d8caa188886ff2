package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"splitbook/internal/apperr"
	"splitbook/internal/metrics"
	"splitbook/internal/splitter"
	"splitbook/internal/storage"
)

// FriendBalance is one entry of an active-balances listing: the counterpart
// user and the signed net amount. Positive means the counterpart owes the
// user the listing was computed for.
type FriendBalance struct {
	UserID string
	Amount decimal.Decimal
}

// BalanceService derives net balances from unsettled splits. Balances are
// never stored; every read recomputes them from the ledger.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new BalanceService with the given storage
// backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// NetBalance returns the signed net amount between self and other, scoped to
// a group when groupID is non-empty.
//
// The sign convention is fixed: the result is owedToMe minus iOwe, so a
// positive value means other owes self. Reversing it anywhere is a
// correctness bug, and NetBalance(a, b) == -NetBalance(b, a) always holds.
// Zero is a legitimate return value, not an error.
func (s *BalanceService) NetBalance(ctx context.Context, selfID, otherID, groupID string) (decimal.Decimal, error) {
	if selfID == otherID {
		return decimal.Zero, apperr.Validationf("self-balance has no meaning")
	}
	if err := s.ensureExists(ctx, selfID, otherID); err != nil {
		return decimal.Zero, err
	}
	return s.net(ctx, selfID, otherID, groupID)
}

// net computes the two directed sums and diffs them. Both directions always;
// a single-direction sum is wrong whenever both users have paid for each
// other.
func (s *BalanceService) net(ctx context.Context, selfID, otherID, groupID string) (decimal.Decimal, error) {
	owedToMe, err := s.store.SumUnsettled(ctx, storage.BalanceFilter{
		PayerID:  selfID,
		DebtorID: otherID,
		GroupID:  groupID,
	})
	if err != nil {
		return decimal.Zero, err
	}
	iOwe, err := s.store.SumUnsettled(ctx, storage.BalanceFilter{
		PayerID:  otherID,
		DebtorID: selfID,
		GroupID:  groupID,
	})
	if err != nil {
		return decimal.Zero, err
	}

	metrics.BalanceQueries.Inc()
	return splitter.Net(owedToMe, iOwe), nil
}

// ActiveBalances returns the non-zero net balances between self and each of
// their friends, ordered by friend ID for stable display. A zero balance is
// settled in substance and omitted; it remains retrievable via NetBalance.
func (s *BalanceService) ActiveBalances(ctx context.Context, selfID string) ([]FriendBalance, error) {
	friendIDs, err := s.store.ListFriendIDs(ctx, selfID)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, selfID, friendIDs, "")
}

// GroupBalances returns the non-zero net balances between self and the other
// members of a group, restricted to the group's expenses. Self must be a
// member.
func (s *BalanceService) GroupBalances(ctx context.Context, selfID, groupID string) ([]FriendBalance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	var others []string
	member := false
	for _, id := range group.MemberIDs {
		if id == selfID {
			member = true
			continue
		}
		others = append(others, id)
	}
	if !member {
		return nil, apperr.NotFoundf("group %s", groupID)
	}
	return s.collect(ctx, selfID, others, groupID)
}

// collect nets self against each counterpart in order, dropping zeros.
func (s *BalanceService) collect(ctx context.Context, selfID string, counterparts []string, groupID string) ([]FriendBalance, error) {
	var balances []FriendBalance
	for _, otherID := range counterparts {
		amount, err := s.net(ctx, selfID, otherID, groupID)
		if err != nil {
			slog.Error("Balance computation failed", "self_id", selfID, "other_id", otherID, "error", err)
			return nil, err
		}
		if amount.IsZero() {
			continue
		}
		balances = append(balances, FriendBalance{UserID: otherID, Amount: amount})
	}
	return balances, nil
}

func (s *BalanceService) ensureExists(ctx context.Context, ids ...string) error {
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
