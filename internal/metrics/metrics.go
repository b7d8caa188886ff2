// Package metrics registers Prometheus counters for the core operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExpensesCreated counts expenses recorded, labeled by split mode
	// ("equal" or "owed_in_full").
	ExpensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitbook_expenses_created_total",
		Help: "Number of expenses recorded, by split mode.",
	}, []string{"mode"})

	// SplitsSettled counts settled splits, labeled by path ("single" or
	// "bulk").
	SplitsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitbook_splits_settled_total",
		Help: "Number of splits settled, by settlement path.",
	}, []string{"path"})

	// BalanceQueries counts net-balance computations.
	BalanceQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitbook_balance_queries_total",
		Help: "Number of pairwise net balance computations.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
