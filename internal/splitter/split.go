// Package splitter holds the pure split and netting arithmetic.
//
// Everything here is side-effect free; persistence and validation of
// references live in the service layer.
package splitter

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the rounding precision for all monetary results.
const Places = 2

// EqualShare computes one participant's share of an expense split equally
// among the payer and n other participants: round(amount / (n+1), 2).
//
// Rounding is applied per participant independently, not redistributed. The
// sum of all shares plus the payer's implicit remainder can therefore differ
// from amount by up to a cent per participant. That drift is an accepted
// approximation; the payer's own share is never materialized, so totals are
// only ever read through per-pair netting.
func EqualShare(amount decimal.Decimal, participants int) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	if participants < 1 {
		return decimal.Zero, fmt.Errorf("need at least one participant, got %d", participants)
	}
	heads := decimal.NewFromInt(int64(participants) + 1)
	return amount.DivRound(heads, Places), nil
}

// Net combines the two directed unsettled sums between a pair of users into
// one signed balance: round(owedToMe - iOwe, 2).
//
// Positive means the other user owes the computing user. The subtraction must
// always run over both directions; summing only one direction is wrong as
// soon as both users have paid for each other.
func Net(owedToMe, iOwe decimal.Decimal) decimal.Decimal {
	return owedToMe.Sub(iOwe).Round(Places)
}

// Sum adds a list of amounts without rounding. Used to fold unsettled split
// amounts before netting.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
