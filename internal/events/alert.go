// Package events defines the risk-monitor's alert types and the sinks
// that deliver them, grounded on the teacher's monitoring-service
// alert/severity/log pattern (internal/reliability/monitoring_service.go)
// generalized from a fixed in-process slice to a pluggable Sink.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity mirrors the teacher's AlertLevel shape (a small closed enum
// mapping to a zerolog level and a PagerDuty severity), with the
// four levels spec.md §4.7 names.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Kind identifies which risk condition triggered the alert (spec.md §4.7).
type Kind string

const (
	KindLTVBreach            Kind = "ltv_breach"
	KindReserveBreach        Kind = "reserve_breach"
	KindConcentrationBreach  Kind = "concentration_breach"
	KindCorrelationBreach    Kind = "correlation_breach"
	KindOracleDivergence     Kind = "oracle_divergence"
	KindCircuitBreakerTrip   Kind = "circuit_breaker_trip"
	KindBridgeHealthDegraded Kind = "bridge_health_degraded"
	KindStaleSnapshot        Kind = "stale_snapshot"
)

// Alert is one threshold breach or anomaly observed by the risk
// monitor or oracle keeper.
type Alert struct {
	ID           string // unique per occurrence; distinct from Key, which is stable across occurrences
	Kind         Kind
	Severity     Severity
	Message      string
	CurrentValue float64
	LimitValue   float64
	Product      string // optional product name; empty for portfolio-wide alerts
	Timestamp    time.Time
}

// NewID generates a unique identifier for a single alert occurrence,
// distinct from Key's stable per-condition identity.
func NewID() string {
	return uuid.New().String()
}

// Key returns a stable identity used for deduplication: same kind and
// product within the dedup window collapse to one delivered alert.
func (a Alert) Key() string {
	if a.Product == "" {
		return string(a.Kind)
	}
	return fmt.Sprintf("%s:%s", a.Kind, a.Product)
}

// String renders a one-line human-readable summary, used for log
// messages and as the PagerDuty summary field.
func (a Alert) String() string {
	if a.Product != "" {
		return fmt.Sprintf("[%s] %s (%s): %s (current=%.4f limit=%.4f)",
			a.Severity, a.Kind, a.Product, a.Message, a.CurrentValue, a.LimitValue)
	}
	return fmt.Sprintf("[%s] %s: %s (current=%.4f limit=%.4f)",
		a.Severity, a.Kind, a.Message, a.CurrentValue, a.LimitValue)
}
