package riskmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/riskmodel"
)

func TestMaxConcentrationEmptyMap(t *testing.T) {
	assert.Equal(t, 0.0, maxConcentration(map[catalog.Asset]float64{}))
}

func TestMaxConcentrationPicksHighestShare(t *testing.T) {
	m := map[catalog.Asset]float64{catalog.USDC: 0.40, catalog.USDT: 0.60, catalog.DAI: 0.0}
	assert.Equal(t, 0.60, maxConcentration(m))
}

func TestSnapshotRiskAdjustedMultiplierNeutralWhenHealthy(t *testing.T) {
	s := Snapshot{
		LTV:                0.40,
		ReserveRatio:       0.50,
		AssetConcentration: map[catalog.Asset]float64{catalog.USDC: 0.10},
		CorrelationRegime:  riskmodel.RegimeLow,
	}
	assert.Equal(t, 1.0, s.RiskAdjustedMultiplier())
}

func TestSnapshotRiskAdjustedMultiplierElevatedWhenStressed(t *testing.T) {
	s := Snapshot{
		LTV:                0.80,
		ReserveRatio:       0.10,
		AssetConcentration: map[catalog.Asset]float64{catalog.USDC: 0.35},
		CorrelationRegime:  riskmodel.RegimeHigh,
	}
	assert.Greater(t, s.RiskAdjustedMultiplier(), 1.0)
}
