// Package metrics registers the Prometheus instrumentation shared by
// the HTTP layer and the expense service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled HTTP requests by path and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitter_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"path", "status"})

	// ExpensesCreated counts successfully persisted expenses.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitter_expenses_created_total",
		Help: "Expenses persisted to the ledger.",
	})

	// TokensRegistered counts newly registered push tokens. Duplicate
	// registrations are not counted.
	TokensRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitter_tokens_registered_total",
		Help: "Push tokens added to the registry.",
	})

	// PushDispatches counts dispatch outcomes: delivered, skipped
	// (no recipients) or failed.
	PushDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitter_push_dispatches_total",
		Help: "Outbound push gateway dispatch attempts by outcome.",
	}, []string{"outcome"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
