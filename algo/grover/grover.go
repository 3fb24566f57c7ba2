// Package grover searches a small register for a marked bitstring.
package grover

import (
	"fmt"
	"math"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
)

const (
	MIN_DATA_QUBITS = 2
	MAX_DATA_QUBITS = 4
)

// Result reports one search run. Target and the counts keys share the
// engine orientation with qubit 0 rightmost.
type Result struct {
	Target      string
	Iterations  int
	Probability float64
	Found       bool
	Counts      core.Counts
	QASM        string
}

// Run amplifies the target bitstring and samples the register. Found
// means no other bitstring was drawn more often than the target.
func Run(s *algo.Session, target string, shots int) (*Result, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	n := len(target)
	iterations := optimalIterations(n)
	qasmText, err := circuit(target, iterations)
	if err != nil {
		return nil, err
	}
	jd, err := s.Sample(qasmText, shots)
	if err != nil {
		return nil, err
	}
	counts := jd.Result.Counts
	hit := counts[target]
	found := hit > 0
	for key, c := range counts {
		if key != target && c > hit {
			found = false
			break
		}
	}
	return &Result{
		Target:      target,
		Iterations:  iterations,
		Probability: float64(hit) / float64(jd.Shots),
		Found:       found,
		Counts:      counts,
		QASM:        qasmText,
	}, nil
}

func validateTarget(target string) error {
	if len(target) < MIN_DATA_QUBITS || len(target) > MAX_DATA_QUBITS {
		return fmt.Errorf("the target must have %d to %d bits, got %d",
			MIN_DATA_QUBITS, MAX_DATA_QUBITS, len(target))
	}
	for _, c := range target {
		if c != '0' && c != '1' {
			return fmt.Errorf("the target must be a bitstring, got %q", target)
		}
	}
	return nil
}

func optimalIterations(n int) int {
	iterations := int(math.Pi / 4.0 * math.Sqrt(math.Pow(2.0, float64(n))))
	if iterations < 1 {
		iterations = 1
	}
	return iterations
}

func circuit(target string, iterations int) (string, error) {
	n := len(target)
	qubits := n
	if n == MAX_DATA_QUBITS {
		qubits = n + 1 // ancilla for the four-bit phase flip
	}
	b := qasm.NewBuilder(qubits, n)
	for q := 0; q < n; q++ {
		b.H(q)
	}
	for i := 0; i < iterations; i++ {
		oracle(b, target)
		diffusion(b, n)
	}
	for q := 0; q < n; q++ {
		b.Measure(q, q)
	}
	return b.QASM()
}

// oracle flips the phase of the target state. Data bits that must be 0
// are X-sandwiched around the multi-controlled Z.
func oracle(b *qasm.Builder, target string) {
	n := len(target)
	for q := 0; q < n; q++ {
		if target[n-1-q] == '0' {
			b.X(q)
		}
	}
	phaseFlip(b, n)
	for q := 0; q < n; q++ {
		if target[n-1-q] == '0' {
			b.X(q)
		}
	}
}

// diffusion inverts the amplitudes about their mean.
func diffusion(b *qasm.Builder, n int) {
	for q := 0; q < n; q++ {
		b.H(q)
	}
	for q := 0; q < n; q++ {
		b.X(q)
	}
	phaseFlip(b, n)
	for q := 0; q < n; q++ {
		b.X(q)
	}
	for q := 0; q < n; q++ {
		b.H(q)
	}
}

// phaseFlip negates the amplitude of the all-ones state on the data
// qubits. The four-bit variant ANDs the low pair into the ancilla so
// only doubly-controlled gates are needed.
func phaseFlip(b *qasm.Builder, n int) {
	switch n {
	case 2:
		b.CZ(0, 1)
	case 3:
		b.H(2).CCX(0, 1, 2).H(2)
	case 4:
		const anc = 4
		b.CCX(0, 1, anc)
		b.H(3).CCX(2, anc, 3).H(3)
		b.CCX(0, 1, anc)
	}
}
