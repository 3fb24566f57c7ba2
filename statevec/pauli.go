package statevec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BrianOtieno/quantum-computing/qasm"
)

// ParsePauli reads an operator of the form "X 0 Z 2" into a map from
// qubit to lowercase gate name. Identity factors are dropped, so an
// all-identity operator yields an empty map.
func ParsePauli(s string, n int) (map[int]string, error) {
	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("pauli string %q must be letter-index pairs", s)
	}
	ops := map[int]string{}
	for i := 0; i < len(fields); i += 2 {
		letter := fields[i]
		idx, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("bad qubit index %q in pauli string %q", fields[i+1], s)
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("qubit %d in pauli string %q out of range [0, %d)", idx, s, n)
		}
		if _, dup := ops[idx]; dup {
			return nil, fmt.Errorf("qubit %d appears twice in pauli string %q", idx, s)
		}
		switch letter {
		case "I":
		case "X", "Y", "Z":
			ops[idx] = strings.ToLower(letter)
		default:
			return nil, fmt.Errorf("bad pauli letter %q in %q", letter, s)
		}
	}
	return ops, nil
}

// Expectation evaluates <psi|P|psi> exactly, with psi the state the
// program's gates prepare. The program must be measurement-free.
func Expectation(prog *qasm.ProgramIR, pauli string) (float64, error) {
	if prog == nil {
		return 0, fmt.Errorf("no program to evaluate")
	}
	state, err := Evolve(prog)
	if err != nil {
		return 0, err
	}
	ops, err := ParsePauli(pauli, prog.QubitCount)
	if err != nil {
		return 0, err
	}
	phi := state.Clone()
	for q, gate := range ops {
		if err := phi.Apply(gate, nil, q); err != nil {
			return 0, err
		}
	}
	return real(state.innerProduct(phi)), nil
}
