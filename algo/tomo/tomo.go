// Package tomo reconstructs the density matrix of a small prepared
// state from measurements in all Pauli bases.
package tomo

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"
)

const MAX_TOMO_QUBITS = 2

// matrix element <row|P|col> per single-qubit factor
var pauliMats = map[byte][2][2]complex128{
	'i': {{1, 0}, {0, 1}},
	'x': {{0, 1}, {1, 0}},
	'y': {{0, -1i}, {1i, 0}},
	'z': {{1, 0}, {0, -1}},
}

type Result struct {
	Qubits   int
	Rho      *mat.CDense
	Purity   float64
	Fidelity float64
	Bases    int
}

type basisRun struct {
	counts core.Counts
	shots  int
}

// Run measures the circuit in every Pauli basis and rebuilds the state
// by linear inversion. Fidelity compares against the ideal statevector
// of the same circuit.
func Run(s *algo.Session, qasmText string, shots int) (*Result, error) {
	prog, err := qasm.ParseQASM(qasmText)
	if err != nil {
		return nil, err
	}
	n := prog.QubitCount
	if n < 1 || n > MAX_TOMO_QUBITS {
		return nil, fmt.Errorf("tomography covers 1 to %d qubits, got %d", MAX_TOMO_QUBITS, n)
	}
	ideal, err := statevec.Evolve(prog)
	if err != nil {
		return nil, err
	}

	bases := enumerate(n, "xyz")
	runs := make(map[string]basisRun, len(bases))
	for _, basis := range bases {
		text, err := basisCircuit(prog, basis)
		if err != nil {
			return nil, err
		}
		jd, err := s.Sample(text, shots)
		if err != nil {
			return nil, err
		}
		runs[basis] = basisRun{counts: jd.Result.Counts, shots: jd.Shots}
	}

	rho := reconstruct(n, runs)
	purity, err := purity(rho)
	if err != nil {
		return nil, err
	}
	fidelity, err := fidelity(rho, ideal)
	if err != nil {
		return nil, err
	}
	return &Result{
		Qubits:   n,
		Rho:      rho,
		Purity:   purity,
		Fidelity: fidelity,
		Bases:    len(bases),
	}, nil
}

// enumerate lists all letter assignments over the qubits, index q
// holding the letter for qubit q.
func enumerate(n int, letters string) []string {
	out := []string{""}
	for q := 0; q < n; q++ {
		next := make([]string, 0, len(out)*len(letters))
		for _, prefix := range out {
			for i := 0; i < len(letters); i++ {
				next = append(next, prefix+string(letters[i]))
			}
		}
		out = next
	}
	return out
}

// basisCircuit replays the preparation and appends the basis change
// and the readout. Barriers carry no state, so they are dropped.
func basisCircuit(prog *qasm.ProgramIR, basis string) (string, error) {
	n := prog.QubitCount
	b := qasm.NewBuilder(n, n)
	for _, stmt := range prog.Statements {
		switch st := stmt.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR,
			*qasm.BarrierStatementIR:
		case *qasm.GateCallStatementIR:
			abs, err := prog.AbsQubits(st.Operands)
			if err != nil {
				return "", err
			}
			b.GateP(st.GateName, st.Params, abs...)
		default:
			return "", fmt.Errorf("tomography needs a measurement-free circuit, got a %s statement",
				qasm.StatementKind(stmt))
		}
	}
	for q := 0; q < n; q++ {
		switch basis[q] {
		case 'x':
			b.H(q)
		case 'y':
			b.Sdg(q)
			b.H(q)
		}
	}
	b.MeasureAll()
	return b.QASM()
}

// reconstruct sums expectation-weighted Pauli matrices,
// rho = sum <P> P / 2^n over all 4^n labels.
func reconstruct(n int, runs map[string]basisRun) *mat.CDense {
	dim := 1 << n
	rho := mat.NewCDense(dim, dim, nil)
	for _, p := range enumerate(n, "ixyz") {
		exp := expectation(p, runs)
		if exp == 0 {
			continue
		}
		w := complex(exp/float64(dim), 0)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				if elem := pauliElem(p, i, j); elem != 0 {
					rho.Set(i, j, rho.At(i, j)+w*elem)
				}
			}
		}
	}
	return rho
}

// expectation estimates <P> from the run of the matching basis, with
// identity positions read in the z basis.
func expectation(p string, runs map[string]basisRun) float64 {
	n := len(p)
	key := make([]byte, n)
	identity := true
	for q := 0; q < n; q++ {
		if p[q] == 'i' {
			key[q] = 'z'
		} else {
			key[q] = p[q]
			identity = false
		}
	}
	if identity {
		return 1
	}
	run := runs[string(key)]
	if run.shots == 0 {
		return 0
	}
	total := 0.0
	for bits, c := range run.counts {
		sign := 1.0
		for q := 0; q < n; q++ {
			if p[q] != 'i' && bits[n-1-q] == '1' {
				sign = -sign
			}
		}
		total += sign * float64(c)
	}
	return total / float64(run.shots)
}

func pauliElem(p string, i, j int) complex128 {
	elem := complex(1, 0)
	for q := 0; q < len(p); q++ {
		elem *= pauliMats[p[q]][i>>q&1][j>>q&1]
		if elem == 0 {
			return 0
		}
	}
	return elem
}

// purity is Tr(rho^2), 1 for a pure state.
func purity(rho *mat.CDense) (float64, error) {
	dim, cols := rho.Dims()
	if dim != cols {
		return 0, fmt.Errorf("the density matrix must be square, got %dx%d", dim, cols)
	}
	var squared mat.CDense
	squared.Mul(rho, rho)
	trace := complex(0, 0)
	for i := 0; i < dim; i++ {
		trace += squared.At(i, i)
	}
	return real(trace), nil
}

// fidelity is <psi|rho|psi> against the ideal state.
func fidelity(rho *mat.CDense, ideal *statevec.State) (float64, error) {
	n := ideal.Qubits()
	dim := 1 << n
	psi := make([]complex128, dim)
	for i := 0; i < dim; i++ {
		amp, err := ideal.Amplitude(statevec.BasisLabel(i, n))
		if err != nil {
			return 0, err
		}
		psi[i] = amp
	}
	f := complex(0, 0)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			f += cmplx.Conj(psi[i]) * rho.At(i, j) * psi[j]
		}
	}
	return real(f), nil
}
