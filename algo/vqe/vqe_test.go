//go:build unit
// +build unit

package vqe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/algo"
)

const h2Ground = -1.8572750302023797

func TestExactGround(t *testing.T) {
	ground, err := exactGround(Hamiltonian())
	assert.NoError(t, err)
	assert.InDelta(t, h2Ground, ground, 1e-9)
}

func TestExactGroundRejectsYFactors(t *testing.T) {
	_, err := exactGround([]algo.PauliTerm{{Pauli: "Y 0", Coeff: 1.0}})
	assert.Error(t, err)
}

func TestRunExact(t *testing.T) {
	r, err := Run(nil, Config{Exact: true})
	assert.NoError(t, err)
	assert.InDelta(t, h2Ground, r.ExactGround, 1e-9)
	// variational bound: no parameter point can dip below the spectrum
	assert.GreaterOrEqual(t, r.Energy, r.ExactGround-1e-6)
	assert.Less(t, r.Energy, -1.8)
	assert.Len(t, r.Params, 4)
	assert.NotEmpty(t, r.Trace)

	best := r.Trace[0]
	for _, e := range r.Trace {
		if e < best {
			best = e
		}
	}
	assert.InDelta(t, best, r.Energy, 1e-9)
}

func TestRunSampled(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 5})
	assert.NoError(t, err)
	defer s.Close()

	r, err := Run(s, Config{Shots: 512, MaxEvaluations: 60})
	assert.NoError(t, err)
	assert.Less(t, r.Energy, -1.0)
	assert.GreaterOrEqual(t, r.Energy, r.ExactGround-0.1)
	assert.NotEmpty(t, r.Trace)
	assert.InDelta(t, h2Ground, r.ExactGround, 1e-9)
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := Run(nil, Config{})
	assert.Error(t, err)

	_, err = Run(nil, Config{Exact: true, InitialParams: []float64{0.1}})
	assert.Error(t, err)
}
