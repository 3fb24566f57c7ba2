//go:build unit
// +build unit

package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimize(t *testing.T) {
	objective := func(x []float64) float64 {
		return (x[0]-2)*(x[0]-2) + (x[1]+1)*(x[1]+1)
	}
	r, err := Minimize(objective, []float64{0, 0}, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, r.X[0], 1e-4)
	assert.InDelta(t, -1.0, r.X[1], 1e-4)
	assert.InDelta(t, 0.0, r.F, 1e-6)
}

func TestMinimizeWithBudget(t *testing.T) {
	calls := 0
	objective := func(x []float64) float64 {
		calls++
		return x[0] * x[0]
	}
	r, err := Minimize(objective, []float64{3}, 10)
	assert.NoError(t, err)
	assert.NotNil(t, r)
	assert.LessOrEqual(t, calls, 12)
}
