package curves

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBounds(t *testing.T) {
	kinds := []Kind{Flat, Linear, Logarithmic, Sigmoidal, Quadratic, Exponential}
	const min, max = 5.0, 15.0

	for _, k := range kinds {
		prev := math.Inf(-1)
		for u := 0.0; u <= 1.0; u += 0.05 {
			v := Evaluate(k, u, min, max)
			assert.GreaterOrEqualf(t, v, min-1e-9, "%s(%f) below min", k, u)
			assert.LessOrEqualf(t, v, max+1e-9, "%s(%f) above max", k, u)
			if k == Flat {
				assert.InDelta(t, min, v, 1e-9)
			} else {
				assert.GreaterOrEqualf(t, v, prev-1e-9, "%s not monotone nondecreasing at u=%f", k, u)
			}
			prev = v
		}
	}
}

func TestEvaluateClampsOutOfRange(t *testing.T) {
	assert.Equal(t, Evaluate(Linear, 0, 0, 10), Evaluate(Linear, -5, 0, 10))
	assert.Equal(t, Evaluate(Linear, 1, 0, 10), Evaluate(Linear, 5, 0, 10))
}

func TestEvaluateNaNClampsToZero(t *testing.T) {
	assert.Equal(t, Evaluate(Linear, 0, 3, 9), Evaluate(Linear, math.NaN(), 3, 9))
}

func TestLinearEndpoints(t *testing.T) {
	assert.InDelta(t, 9.0, Evaluate(Linear, 0.0, 9, 15), 1e-9)
	assert.InDelta(t, 12.0, Evaluate(Linear, 0.5, 9, 15), 1e-9)
	assert.InDelta(t, 15.0, Evaluate(Linear, 1.0, 9, 15), 1e-9)
}
