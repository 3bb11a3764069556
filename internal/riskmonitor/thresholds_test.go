package riskmonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/riskmodel"
)

func TestThresholdAlertCriticalAboveCrit(t *testing.T) {
	a, ok := thresholdAlert(events.KindLTVBreach, "ltv", 0.80, 0.70, 0.75, time.Now())
	assert.True(t, ok)
	assert.Equal(t, events.SeverityCritical, a.Severity)
}

func TestThresholdAlertHighAboveWarnOnly(t *testing.T) {
	a, ok := thresholdAlert(events.KindLTVBreach, "ltv", 0.72, 0.70, 0.75, time.Now())
	assert.True(t, ok)
	assert.Equal(t, events.SeverityHigh, a.Severity)
}

func TestThresholdAlertNoneBelowWarn(t *testing.T) {
	_, ok := thresholdAlert(events.KindLTVBreach, "ltv", 0.50, 0.70, 0.75, time.Now())
	assert.False(t, ok)
}

func TestReserveAlertCriticalBelowCrit(t *testing.T) {
	a, ok := reserveAlert(0.10, 0.20, 0.15, time.Now())
	assert.True(t, ok)
	assert.Equal(t, events.SeverityCritical, a.Severity)
	assert.Equal(t, events.KindReserveBreach, a.Kind)
}

func TestReserveAlertHighBelowWarnOnly(t *testing.T) {
	a, ok := reserveAlert(0.18, 0.20, 0.15, time.Now())
	assert.True(t, ok)
	assert.Equal(t, events.SeverityHigh, a.Severity)
}

func TestReserveAlertNoneAboveWarn(t *testing.T) {
	_, ok := reserveAlert(0.50, 0.20, 0.15, time.Now())
	assert.False(t, ok)
}

func TestCorrelationAlertAnnotatesRegimeInMessage(t *testing.T) {
	a, ok := correlationAlert(riskmodel.RegimeHigh, 0.90, 0.70, 0.85, time.Now())
	assert.True(t, ok)
	assert.Contains(t, a.Message, "regime=high")
}

func TestCheckThresholdsSkipsConcentrationWhenNoCoverage(t *testing.T) {
	s := Snapshot{AssetConcentration: map[catalog.Asset]float64{}}
	alerts := checkThresholds(s, testThresholds(), time.Now())
	for _, a := range alerts {
		assert.NotEqual(t, events.KindConcentrationBreach, a.Kind)
	}
}

func TestCheckThresholdsCollectsAllBreaches(t *testing.T) {
	s := Snapshot{
		LTV:                0.90,
		ReserveRatio:       0.05,
		AssetConcentration: map[catalog.Asset]float64{catalog.USDC: 0.95},
		Correlation:        riskmodel.CorrelationMatrix{},
		CorrelationRegime:  riskmodel.RegimeLow,
	}
	alerts := checkThresholds(s, testThresholds(), time.Now())

	kinds := make(map[events.Kind]bool)
	for _, a := range alerts {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[events.KindLTVBreach])
	assert.True(t, kinds[events.KindReserveBreach])
	assert.True(t, kinds[events.KindConcentrationBreach])
}
