package riskmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/catalog"
)

func TestLogReturns(t *testing.T) {
	r := LogReturns([]float64{1.0, 1.0, 1.0})
	require.Len(t, r, 2)
	assert.InDelta(t, 0.0, r[0], 1e-9)
}

func TestLogReturnsTooShort(t *testing.T) {
	assert.Nil(t, LogReturns([]float64{1.0}))
}

func TestBuildCorrelationMatrixPerfectlyCorrelated(t *testing.T) {
	histories := map[catalog.Asset][]float64{
		catalog.USDC: {1.00, 0.99, 0.98, 0.99, 1.00},
		catalog.USDT: {1.00, 0.99, 0.98, 0.99, 1.00},
	}
	m, err := BuildCorrelationMatrix(histories)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.At(catalog.USDC, catalog.USDT), 1e-6)
	assert.Equal(t, RegimeHigh, m.Regime())
}

func TestBuildCorrelationMatrixInsufficientData(t *testing.T) {
	_, err := BuildCorrelationMatrix(map[catalog.Asset][]float64{catalog.USDC: {1.0, 1.0}})
	require.Error(t, err)
	var mathErr *MathError
	assert.ErrorAs(t, err, &mathErr)
}

func TestRegimeLowForUncorrelatedSeries(t *testing.T) {
	histories := map[catalog.Asset][]float64{
		catalog.USDC: {1.00, 1.01, 0.995, 1.003, 0.998, 1.01},
		catalog.DAI:  {1.00, 0.995, 1.01, 0.99, 1.02, 0.98},
	}
	m, err := BuildCorrelationMatrix(histories)
	require.NoError(t, err)
	assert.LessOrEqual(t, m.MeanAbsolute(), 1.0)
}
