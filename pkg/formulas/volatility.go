package formulas

import (
	"github.com/markcheno/go-talib"
)

// RealizedVolatility computes a windowed standard deviation of prices
// using go-talib, the same call shape the teacher used for
// CalculateRSI (talib.Rsi replaced by talib.StdDev). Used for a
// quick, data-source-agnostic volatility read where the full
// log-return/annualized pipeline in stats.go is unnecessary — e.g. a
// raw oracle price feed with no return series computed yet.
//
// Returns nil if there are fewer than period+1 data points.
func RealizedVolatility(prices []float64, period int) *float64 {
	if len(prices) < period+1 {
		return nil
	}

	values := talib.StdDev(prices, period, 1)
	if len(values) == 0 || isNaN(values[len(values)-1]) {
		return nil
	}
	result := values[len(values)-1]
	return &result
}

func isNaN(f float64) bool {
	return f != f
}
