package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/totegamma/misblock/internal/domain"
)

const namespace = "misblock"

var (
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations by name and result kind",
		},
		[]string{"operation", "result"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations including the transaction",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	PointsCredited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_credited_total",
			Help:      "Points credited by reason",
		},
		[]string{"reason"},
	)

	PointsDebited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_debited_total",
			Help:      "Points debited by reason",
		},
		[]string{"reason"},
	)

	TokensTransferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_transferred_units_total",
			Help:      "MIS units sent from the contract account",
		},
	)

	PendingTransfers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_token_transfers",
			Help:      "Committed token transfers still waiting for the token service",
		},
	)

	TotalPointSupply = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_point_supply",
			Help:      "Total point supply after the last committed operation",
		},
	)

	TransfersReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_notifications_total",
			Help:      "Inbound token transfer notifications by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	TokenBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_breaker_state",
			Help:      "State of the token service circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)
)

// ObserveOperation records the result of one ledger operation.
func ObserveOperation(operation string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = domain.KindOf(err).String()
	}
	Operations.WithLabelValues(operation, result).Inc()
	OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
