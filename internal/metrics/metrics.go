// Package metrics registers the Prometheus gauges and counters named
// in spec.md §6, grounded on
// BlockCraftsman-Aegis-Defi-Agent/internal/monitoring/monitor.go's
// promauto-based registration (the only example repo in the pack that
// ships a Prometheus registry).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Oracle holds the per-asset oracle gauges and the process-wide
// oracle counters named in spec.md §6.
type Oracle struct {
	PriceUSD            *prometheus.GaugeVec
	Confidence          *prometheus.GaugeVec
	StalenessSeconds    *prometheus.GaugeVec
	DivergencePercent   *prometheus.GaugeVec
	FailuresTotal       *prometheus.CounterVec
	CircuitBreakerTotal *prometheus.CounterVec
}

// Keeper holds the keeper's update-cycle counters and gauges (spec.md
// §4.8: "successful_updates, failed_updates, last_update_time,
// last_error, avg_update_duration, consecutive failures"). last_error
// itself is a string, not representable as a Prometheus sample; it is
// tracked in-process on keeper.Keeper and logged, not exported here.
type Keeper struct {
	UpdateSuccessTotal  prometheus.Counter
	UpdateFailureTotal  prometheus.Counter
	AvgDurationSeconds  prometheus.Gauge
	LastUpdateTimestamp prometheus.Gauge
	ConsecutiveFailures prometheus.Gauge
}

// Registry bundles every metric the process publishes under a single
// owner, analogous to the teacher's Metrics struct.
type Registry struct {
	Oracle Oracle
	Keeper Keeper
}

// NewRegistry registers all metrics against the default Prometheus
// registerer via promauto, the same as the teacher does.
func NewRegistry() *Registry {
	return &Registry{
		Oracle: Oracle{
			PriceUSD: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "oracle_price_usd",
				Help: "Consensus oracle price in USD for a stablecoin.",
			}, []string{"asset"}),
			Confidence: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "oracle_confidence",
				Help: "Oracle aggregator confidence score, [0,1].",
			}, []string{"asset"}),
			StalenessSeconds: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "oracle_staleness_seconds",
				Help: "Seconds since the oracle last refreshed a price.",
			}, []string{"asset"}),
			DivergencePercent: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "oracle_divergence_percent",
				Help: "Max pairwise deviation among providers contributing to a consensus price.",
			}, []string{"asset"}),
			FailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "oracle_failures_total",
				Help: "Total oracle provider call failures by kind.",
			}, []string{"provider", "kind"}),
			CircuitBreakerTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "oracle_circuit_breaker_total",
				Help: "Total times the multiplier circuit breaker clamped a product's total_bps.",
			}, []string{"product"}),
		},
		Keeper: Keeper{
			UpdateSuccessTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "keeper_update_success_total",
				Help: "Total successful on-chain keeper updates.",
			}),
			UpdateFailureTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "keeper_update_failure_total",
				Help: "Total failed on-chain keeper updates.",
			}),
			AvgDurationSeconds: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "keeper_avg_duration_seconds",
				Help: "Running average duration of a successful keeper update iteration, in seconds.",
			}),
			LastUpdateTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "keeper_last_update_timestamp",
				Help: "Unix timestamp of the last completed keeper iteration.",
			}),
			ConsecutiveFailures: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "keeper_consecutive_failures",
				Help: "Number of consecutive failed keeper iterations.",
			}),
		},
	}
}
