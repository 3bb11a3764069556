package riskmonitor

import (
	"fmt"
	"time"

	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/riskmodel"
)

// checkThresholds evaluates a snapshot's portfolio metrics against
// the configured warn/crit thresholds (spec.md §4.7 step 4) and
// returns the Alerts to emit. Breaches above crit are Critical; above
// warn but below crit are High; everything else produces no alert for
// that metric.
func checkThresholds(s Snapshot, t config.RiskThresholds, now time.Time) []events.Alert {
	var alerts []events.Alert

	if a, ok := thresholdAlert(events.KindLTVBreach, "portfolio LTV", s.LTV, t.LTVWarn, t.LTVCrit, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := reserveAlert(s.ReserveRatio, t.ReserveWarn, t.ReserveCrit, now); ok {
		alerts = append(alerts, a)
	}
	if maxConc := maxConcentration(s.AssetConcentration); maxConc > 0 {
		if a, ok := thresholdAlert(events.KindConcentrationBreach, "asset concentration", maxConc, t.ConcentrationWarn, t.ConcentrationCrit, now); ok {
			alerts = append(alerts, a)
		}
	}
	if a, ok := correlationAlert(s.CorrelationRegime, s.Correlation.MeanAbsolute(), t.CorrelationWarn, t.CorrelationCrit, now); ok {
		alerts = append(alerts, a)
	}

	for i := range alerts {
		alerts[i].ID = events.NewID()
	}
	return alerts
}

// thresholdAlert handles the common "higher is worse" shape (LTV,
// concentration): breach crit -> Critical, breach warn -> High.
func thresholdAlert(kind events.Kind, label string, value, warn, crit float64, ts time.Time) (events.Alert, bool) {
	switch {
	case value > crit:
		return events.Alert{
			Kind: kind, Severity: events.SeverityCritical,
			Message:      fmt.Sprintf("%s %.4f exceeds critical threshold %.4f", label, value, crit),
			CurrentValue: value, LimitValue: crit, Timestamp: ts,
		}, true
	case value > warn:
		return events.Alert{
			Kind: kind, Severity: events.SeverityHigh,
			Message:      fmt.Sprintf("%s %.4f exceeds warn threshold %.4f", label, value, warn),
			CurrentValue: value, LimitValue: warn, Timestamp: ts,
		}, true
	default:
		return events.Alert{}, false
	}
}

// reserveAlert handles the "lower is worse" shape: reserve ratio
// falling below crit is Critical, below warn is High.
func reserveAlert(ratio, warn, crit float64, ts time.Time) (events.Alert, bool) {
	switch {
	case ratio < crit:
		return events.Alert{
			Kind: events.KindReserveBreach, Severity: events.SeverityCritical,
			Message:      fmt.Sprintf("reserve ratio %.4f below critical threshold %.4f", ratio, crit),
			CurrentValue: ratio, LimitValue: crit, Timestamp: ts,
		}, true
	case ratio < warn:
		return events.Alert{
			Kind: events.KindReserveBreach, Severity: events.SeverityHigh,
			Message:      fmt.Sprintf("reserve ratio %.4f below warn threshold %.4f", ratio, warn),
			CurrentValue: ratio, LimitValue: warn, Timestamp: ts,
		}, true
	default:
		return events.Alert{}, false
	}
}

// correlationAlert fires on the correlation mean-absolute statistic
// against the configured warn/crit thresholds, annotating the message
// with the classified regime.
func correlationAlert(regime riskmodel.CorrelationRegime, meanAbs, warn, crit float64, ts time.Time) (events.Alert, bool) {
	a, ok := thresholdAlert(events.KindCorrelationBreach, fmt.Sprintf("correlation (regime=%s)", regime), meanAbs, warn, crit, ts)
	return a, ok
}
