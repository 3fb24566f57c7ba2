//go:build unit
// +build unit

package tomo

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/core"
)

func TestEnumerate(t *testing.T) {
	assert.Equal(t, []string{"i", "x", "y", "z"}, enumerate(1, "ixyz"))
	assert.Len(t, enumerate(2, "xyz"), 9)
	assert.Len(t, enumerate(2, "ixyz"), 16)
}

func TestExpectation(t *testing.T) {
	runs := map[string]basisRun{
		"z": {counts: core.Counts{"0": 800, "1": 200}, shots: 1000},
	}
	assert.InDelta(t, 0.6, expectation("z", runs), 1e-12)
	assert.InDelta(t, 1.0, expectation("i", runs), 1e-12)
}

func TestPauliElem(t *testing.T) {
	assert.Equal(t, complex(0, -1), pauliElem("y", 0, 1))
	assert.Equal(t, complex(0, 1), pauliElem("y", 1, 0))
	assert.Equal(t, complex(1, 0), pauliElem("zz", 3, 3))
	assert.Equal(t, complex(-1, 0), pauliElem("zz", 1, 1))
	assert.Equal(t, complex(0, 0), pauliElem("zi", 0, 1))
}

func TestRunBellPair(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 17})
	assert.NoError(t, err)
	defer s.Close()

	r, err := Run(s, "OPENQASM 3;\nqubit[2] q;\nh q[0];\ncx q[0], q[1];\n", 4096)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Qubits)
	assert.Equal(t, 9, r.Bases)
	assert.InDelta(t, 1.0, r.Purity, 0.05)
	assert.Greater(t, r.Fidelity, 0.95)
	assert.Less(t, r.Fidelity, 1.05)

	rows, cols := r.Rho.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
	assert.InDelta(t, 0.5, real(r.Rho.At(0, 0)), 0.07)
	assert.InDelta(t, 0.5, real(r.Rho.At(3, 3)), 0.07)
	assert.InDelta(t, 0.5, real(r.Rho.At(0, 3)), 0.07)

	// hermiticity is exact by construction
	diff := r.Rho.At(0, 3) - cmplx.Conj(r.Rho.At(3, 0))
	assert.InDelta(t, 0.0, cmplx.Abs(diff), 1e-9)
}

func TestRunPlusState(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 17})
	assert.NoError(t, err)
	defer s.Close()

	r, err := Run(s, "OPENQASM 3;\nqubit[1] q;\nh q[0];\n", 4096)
	assert.NoError(t, err)
	assert.Equal(t, 3, r.Bases)
	assert.Greater(t, r.Fidelity, 0.95)
	assert.InDelta(t, 0.5, real(r.Rho.At(0, 1)), 0.05)
}

func TestRunRejectsUnsupportedCircuits(t *testing.T) {
	s, err := algo.NewSession(algo.Options{Seed: 17})
	assert.NoError(t, err)
	defer s.Close()

	_, err = Run(s, "OPENQASM 3;\nqubit[3] q;\nh q[0];\n", 100)
	assert.Error(t, err)

	_, err = Run(s, "OPENQASM 3;\nqubit[1] q;\nbit[1] c;\nc[0] = measure q[0];\n", 100)
	assert.Error(t, err)
}
