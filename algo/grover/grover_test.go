//go:build unit
// +build unit

package grover

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/algo"
)

func TestRunTwoQubits(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 11})
	assert.NoError(t, err)
	defer s.Close()

	// one iteration is exact for two qubits, so every shot lands on the target
	r, err := Run(s, "10", 1024)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Iterations)
	assert.True(t, r.Found)
	assert.InDelta(t, 1.0, r.Probability, 1e-9)
	assert.Equal(t, uint32(1024), r.Counts["10"])
	assert.Len(t, r.Counts, 1)
}

func TestRunThreeQubits(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 11})
	assert.NoError(t, err)
	defer s.Close()

	r, err := Run(s, "101", 2048)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Iterations)
	assert.True(t, r.Found)
	assert.Greater(t, r.Probability, 0.85)
}

func TestRunFourQubits(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 11})
	assert.NoError(t, err)
	defer s.Close()

	r, err := Run(s, "0110", 2048)
	assert.NoError(t, err)
	assert.Equal(t, 3, r.Iterations)
	assert.True(t, r.Found)
	assert.Greater(t, r.Probability, 0.85)
	for key := range r.Counts {
		assert.Len(t, key, 4)
	}
}

func TestRunRejectsBadTargets(t *testing.T) {
	testCases := []string{"", "1", "10102", "1x0"}
	for _, target := range testCases {
		t.Run(fmt.Sprintf("target %q", target), func(t *testing.T) {
			err := validateTarget(target)
			assert.Error(t, err)
		})
	}
}

func TestOptimalIterations(t *testing.T) {
	assert.Equal(t, 1, optimalIterations(2))
	assert.Equal(t, 2, optimalIterations(3))
	assert.Equal(t, 3, optimalIterations(4))
}
