// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the recipe domain. Collectors register on the default registry at init and
// are served by promhttp at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foodgram"

var (
	// HTTP

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Domain

	RecipeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_mutations_total",
			Help:      "Recipe creates, updates and deletes",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Favorite, cart and subscription toggles by outcome",
		},
		[]string{"relation", "operation", "outcome"},
	)

	ShoppingListExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopping_list_exports_total",
			Help:      "Shopping lists rendered for download",
		},
	)

	ShoppingListItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shopping_list_items",
			Help:      "Number of aggregated lines per exported shopping list",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"}, // "success", "failure", "rate_limited"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Full-text recipe searches",
		},
	)
)

// Ledger outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeConflict   = "conflict"
	OutcomeNotPresent = "not_present"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecipeMutation counts a successful recipe write.
func RecordRecipeMutation(operation string) {
	RecipeMutations.WithLabelValues(operation).Inc()
}

// RecordLedger counts one ledger toggle.
func RecordLedger(relation, operation, outcome string) {
	LedgerOperations.WithLabelValues(relation, operation, outcome).Inc()
}

// RecordShoppingListExport counts an export and observes its size.
func RecordShoppingListExport(items int) {
	ShoppingListExports.Inc()
	ShoppingListItems.Observe(float64(items))
}

// RecordLogin counts a login attempt.
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per route pattern. The chi
// route pattern is used as the label so path parameters don't explode
// cardinality; unmatched requests are labelled "unmatched".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		APIActiveRequests.Inc()
		defer APIActiveRequests.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordAPIRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
