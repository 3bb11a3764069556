package riskmodel

import (
	"math"

	"github.com/tonsurance/core/internal/catalog"
)

// CorrelationMatrix holds pairwise Pearson correlation of log-returns
// across a fixed, ordered set of assets (spec.md §4.6), computed with
// gonum/stat the same way the teacher's pkg/formulas.Correlation does
// for securities.
type CorrelationMatrix struct {
	Assets []catalog.Asset
	Values [][]float64
}

// At returns the correlation between two assets, or NaN if either is
// absent from the matrix.
func (m CorrelationMatrix) At(a, b catalog.Asset) float64 {
	ia, ib := -1, -1
	for i, asset := range m.Assets {
		if asset == a {
			ia = i
		}
		if asset == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return math.NaN()
	}
	return m.Values[ia][ib]
}

// MeanAbsolute returns the mean of |ρ| over all distinct pairs,
// the statistic the regime classification is based on.
func (m CorrelationMatrix) MeanAbsolute() float64 {
	n := len(m.Assets)
	if n < 2 {
		return 0
	}
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += math.Abs(m.Values[i][j])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Regime classifies MeanAbsolute() per spec.md §4.6: High if > 0.70,
// Medium if > 0.40, else Low.
func (m CorrelationMatrix) Regime() CorrelationRegime {
	mean := m.MeanAbsolute()
	switch {
	case mean > 0.70:
		return RegimeHigh
	case mean > 0.40:
		return RegimeMedium
	default:
		return RegimeLow
	}
}

// LogReturns converts a price series to log-returns: ln(p[i]/p[i-1]).
// Non-positive prices are skipped defensively (they cannot occur for
// a real stablecoin price but would otherwise produce NaN/Inf).
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

// BuildCorrelationMatrix computes pairwise Pearson correlation of
// log-returns across the supplied price histories. Assets with fewer
// than 2 usable data points are excluded. Returns a MathError if fewer
// than two assets have enough history to correlate.
func BuildCorrelationMatrix(histories map[catalog.Asset][]float64) (CorrelationMatrix, error) {
	type series struct {
		asset   catalog.Asset
		returns []float64
	}

	var usable []series
	for asset, prices := range histories {
		r := LogReturns(prices)
		if len(r) >= 2 {
			usable = append(usable, series{asset: asset, returns: r})
		}
	}
	if len(usable) < 2 {
		return CorrelationMatrix{}, &MathError{Reason: "fewer than two assets have sufficient price history to correlate"}
	}

	n := len(usable)
	assets := make([]catalog.Asset, n)
	for i, s := range usable {
		assets[i] = s.asset
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		values[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			rho := pearsonTruncated(usable[i].returns, usable[j].returns)
			values[i][j] = rho
			values[j][i] = rho
		}
	}

	return CorrelationMatrix{Assets: assets, Values: values}, nil
}
