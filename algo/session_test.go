//go:build unit
// +build unit

package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/core"
)

func TestSessionSample(t *testing.T) {
	s, err := NewSession(Options{Shots: 2000, Seed: 7})
	assert.NoError(t, err)
	defer s.Close()

	qasmText, err := common.GetAsset("bell_pair.qasm")
	assert.NoError(t, err)

	jd, err := s.Sample(qasmText, 0)
	assert.NoError(t, err)
	assert.Equal(t, core.SUCCEEDED, jd.Status)

	total := uint32(0)
	for key, c := range jd.Result.Counts {
		assert.Contains(t, []string{"00", "11"}, key)
		total += c
	}
	assert.Equal(t, uint32(2000), total)
}

func TestSessionEstimate(t *testing.T) {
	s, err := NewSession(Options{Seed: 7})
	assert.NoError(t, err)
	defer s.Close()

	// |1> has <Z> = -1 exactly, so sampling noise cannot move it.
	exp, stds, err := s.Estimate(
		"OPENQASM 3;\nqubit[1] q;\nx q[0];\n",
		[]PauliTerm{{Pauli: "Z 0", Coeff: 2.0}},
		1000,
	)
	assert.NoError(t, err)
	assert.InDelta(t, -2.0, exp, 1e-6)
	assert.InDelta(t, 0.0, stds, 1e-6)
}

func TestSessionSampleFailure(t *testing.T) {
	s, err := NewSession(Options{Seed: 7})
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Sample("OPENQASM 3;\nqubit[1] q;\nnop q[0];\n", 100)
	assert.Error(t, err)
}
