// Package vqe finds the ground state energy of the two-qubit molecular
// hydrogen Hamiltonian with the variational quantum eigensolver.
package vqe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"
)

const HAMILTONIAN_QUBITS = 2

// Sampled objectives are noisy, so the optimizer gets a finite budget
// instead of chasing convergence below the shot noise floor.
const DEFAULT_SAMPLED_EVALUATIONS = 150

// Hamiltonian returns the H2 operator at the equilibrium bond distance
// in the two-qubit parity encoding.
func Hamiltonian() []algo.PauliTerm {
	return []algo.PauliTerm{
		{Pauli: "I 0 I 1", Coeff: -1.052373245772859},
		{Pauli: "Z 0", Coeff: 0.39793742484318045},
		{Pauli: "Z 1", Coeff: -0.39793742484318045},
		{Pauli: "Z 0 Z 1", Coeff: -0.01128010425623538},
		{Pauli: "X 0 X 1", Coeff: 0.18093119978423156},
	}
}

type Config struct {
	// Reps is the number of entangling blocks in the ansatz.
	Reps int
	// Shots per estimation job in sampled mode.
	Shots int
	// MaxEvaluations bounds the objective calls. Zero means the sampled
	// default, or unlimited in exact mode.
	MaxEvaluations int
	// Exact evaluates energies on the statevector instead of sampling.
	Exact bool
	// InitialParams optionally fixes the start point, length 2*(Reps+1).
	InitialParams []float64
}

type Result struct {
	Energy      float64
	Params      []float64
	Trace       []float64
	ExactGround float64
	QASM        string
}

// Run minimizes the Hamiltonian energy over the ansatz parameters and
// reports the best point together with the exact ground energy.
func Run(s *algo.Session, cfg Config) (*Result, error) {
	if cfg.Reps <= 0 {
		cfg.Reps = 1
	}
	if !cfg.Exact {
		if s == nil {
			return nil, fmt.Errorf("a session is required to sample the objective")
		}
		if cfg.MaxEvaluations <= 0 {
			cfg.MaxEvaluations = DEFAULT_SAMPLED_EVALUATIONS
		}
	}
	paramCount := 2 * (cfg.Reps + 1)
	initial := cfg.InitialParams
	if len(initial) == 0 {
		initial = make([]float64, paramCount)
		for i := range initial {
			initial[i] = 0.1
		}
	} else if len(initial) != paramCount {
		return nil, fmt.Errorf("the ansatz with %d reps needs %d parameters, got %d",
			cfg.Reps, paramCount, len(initial))
	}
	terms := Hamiltonian()
	ground, err := exactGround(terms)
	if err != nil {
		return nil, err
	}

	trace := []float64{}
	var evalErr error
	objective := func(x []float64) float64 {
		e, err := energy(s, cfg, terms, x)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.Inf(1)
		}
		trace = append(trace, e)
		return e
	}
	result, err := algo.Minimize(objective, initial, cfg.MaxEvaluations)
	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil {
		return nil, err
	}
	qasmText, err := ansatz(result.X, cfg.Reps).QASM()
	if err != nil {
		return nil, err
	}
	return &Result{
		Energy:      result.F,
		Params:      result.X,
		Trace:       trace,
		ExactGround: ground,
		QASM:        qasmText,
	}, nil
}

// ansatz is the two-local RY ladder: a rotation layer per block
// boundary with a CX between neighbours inside each block.
func ansatz(params []float64, reps int) *qasm.Builder {
	b := qasm.NewBuilder(HAMILTONIAN_QUBITS, 0)
	i := 0
	for layer := 0; layer <= reps; layer++ {
		b.RY(params[i], 0)
		b.RY(params[i+1], 1)
		i += 2
		if layer < reps {
			b.CX(0, 1)
		}
	}
	return b
}

func energy(s *algo.Session, cfg Config, terms []algo.PauliTerm, params []float64) (float64, error) {
	b := ansatz(params, cfg.Reps)
	if cfg.Exact {
		prog, err := b.IR()
		if err != nil {
			return 0, err
		}
		total := 0.0
		for _, term := range terms {
			v, err := statevec.Expectation(prog, term.Pauli)
			if err != nil {
				return 0, err
			}
			total += term.Coeff * v
		}
		return total, nil
	}
	qasmText, err := b.QASM()
	if err != nil {
		return 0, err
	}
	exp, _, err := s.Estimate(qasmText, terms, cfg.Shots)
	return exp, err
}

// exactGround assembles the dense Hamiltonian column by column through
// the simulator and takes the lowest eigenvalue. Factors stay within
// I/X/Z here, so the matrix is real symmetric.
func exactGround(terms []algo.PauliTerm) (float64, error) {
	dim := 1 << HAMILTONIAN_QUBITS
	cols := make([][]float64, dim)
	for j := 0; j < dim; j++ {
		col := make([]float64, dim)
		for _, term := range terms {
			factors, err := statevec.ParsePauli(term.Pauli, HAMILTONIAN_QUBITS)
			if err != nil {
				return 0, err
			}
			st, err := statevec.NewState(HAMILTONIAN_QUBITS)
			if err != nil {
				return 0, err
			}
			for q := 0; q < HAMILTONIAN_QUBITS; q++ {
				if j>>q&1 == 1 {
					if err := st.Apply("x", nil, q); err != nil {
						return 0, err
					}
				}
			}
			for q, gate := range factors {
				if gate == "y" {
					return 0, fmt.Errorf("the exact reference covers only real operators, got a Y factor in %q",
						term.Pauli)
				}
				if err := st.Apply(gate, nil, q); err != nil {
					return 0, err
				}
			}
			for i := 0; i < dim; i++ {
				amp, err := st.Amplitude(statevec.BasisLabel(i, HAMILTONIAN_QUBITS))
				if err != nil {
					return 0, err
				}
				col[i] += term.Coeff * real(amp)
			}
		}
		cols[j] = col
	}
	h := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			h.SetSym(i, j, cols[j][i])
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(h, false) {
		return 0, fmt.Errorf("failed to factorize the hamiltonian")
	}
	values := eig.Values(nil)
	return values[0], nil
}
