package riskmodel

import "github.com/tonsurance/core/pkg/formulas"

// pearsonTruncated computes Pearson correlation over the common
// leading window of two return series, using the teacher's
// pkg/formulas.Correlation (gonum/stat-backed) and tolerating
// unequal-length histories — real price feeds rarely align exactly
// on sample count.
func pearsonTruncated(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	return formulas.Correlation(x[:n], y[:n])
}
