package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	transactionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_created_total",
			Help: "Total purchase transactions created",
		},
	)

	transactionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_transitions_total",
			Help: "Total state transitions by target status and trigger",
		},
		[]string{"status", "trigger"},
	)

	sweeperProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_processed_total",
			Help: "Total stale transactions processed by the sweeper per category",
		},
		[]string{"category"},
	)

	pointsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_expired_total",
			Help: "Total loyalty points written off by the expiry sweep",
		},
	)
)

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

func TransactionCreated() {
	transactionsCreated.Inc()
}

func TransactionTransitioned(status, trigger string) {
	transactionTransitions.WithLabelValues(status, trigger).Inc()
}

func SweeperProcessed(category string, count int) {
	sweeperProcessed.WithLabelValues(category).Add(float64(count))
}

func PointsExpired(amount int) {
	pointsExpired.Add(float64(amount))
}
