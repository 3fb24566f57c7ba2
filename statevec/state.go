package statevec

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/BrianOtieno/quantum-computing/qasm"
)

// MAX_SIMULATED_QUBITS bounds the amplitude vector to 2^24 entries,
// 256MB of complex128.
const MAX_SIMULATED_QUBITS = 24

// State is a full statevector over n qubits. Qubit 0 is the least
// significant bit of a basis index.
type State struct {
	amps []complex128
	n    int
}

func NewState(n int) (*State, error) {
	if n < 1 {
		return nil, fmt.Errorf("state needs at least one qubit, got %d", n)
	}
	if n > MAX_SIMULATED_QUBITS {
		return nil, fmt.Errorf("too many qubits to simulate (%d > %d)", n, MAX_SIMULATED_QUBITS)
	}
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &State{amps: amps, n: n}, nil
}

func (s *State) Qubits() int {
	return s.n
}

func (s *State) Clone() *State {
	amps := make([]complex128, len(s.amps))
	copy(amps, s.amps)
	return &State{amps: amps, n: s.n}
}

// Apply dispatches a standard gate to its kernel. The call is checked
// against the standard gate table first, so operand and parameter
// mistakes surface as errors instead of silent misapplication.
func (s *State) Apply(name string, params []float64, qubits ...int) error {
	spec, ok := qasm.LookupGate(name)
	if !ok {
		return fmt.Errorf("unsupported gate %q", name)
	}
	if len(qubits) != spec.Operands {
		return fmt.Errorf("gate %s takes %d operand(s), got %d", name, spec.Operands, len(qubits))
	}
	if len(params) != spec.Params {
		return fmt.Errorf("gate %s takes %d parameter(s), got %d", name, spec.Params, len(params))
	}
	seen := map[int]struct{}{}
	for _, q := range qubits {
		if q < 0 || q >= s.n {
			return fmt.Errorf("qubit index %d out of range [0, %d)", q, s.n)
		}
		if _, dup := seen[q]; dup {
			return fmt.Errorf("gate %s has duplicate operands", name)
		}
		seen[q] = struct{}{}
	}

	switch name {
	case "h":
		s.applyH(qubits[0])
	case "x":
		s.applyX(qubits[0])
	case "y":
		s.applyY(qubits[0])
	case "z":
		s.applyPhase(qubits[0], -1)
	case "s":
		s.applyPhase(qubits[0], 1i)
	case "sdg":
		s.applyPhase(qubits[0], -1i)
	case "t":
		s.applyPhase(qubits[0], cmplx.Exp(complex(0, math.Pi/4)))
	case "tdg":
		s.applyPhase(qubits[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case "sx":
		s.applySX(qubits[0])
	case "rx":
		s.applyRX(qubits[0], params[0])
	case "ry":
		s.applyRY(qubits[0], params[0])
	case "rz":
		s.applyRZ(qubits[0], params[0])
	case "cx":
		s.applyCX(qubits[0], qubits[1])
	case "cz":
		s.applyCZ(qubits[0], qubits[1])
	case "swap":
		s.applySWAP(qubits[0], qubits[1])
	case "ccx":
		s.applyCCX(qubits[0], qubits[1], qubits[2])
	default:
		return fmt.Errorf("unsupported gate %q", name)
	}
	return nil
}

func (s *State) applyH(q int) {
	f := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = f * (a + b)
			s.amps[j] = f * (a - b)
		}
	}
}

func (s *State) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyY(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = 1i*s.amps[j], -1i*s.amps[i]
		}
	}
}

// applyPhase multiplies the |1> component of qubit q by the factor.
// Covers z, s, sdg, t and tdg.
func (s *State) applyPhase(q int, factor complex128) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *State) applySX(q int) {
	bit := 1 << q
	p := complex(0.5, 0.5)
	m := complex(0.5, -0.5)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = p*a + m*b
			s.amps[j] = m*a + p*b
		}
	}
}

func (s *State) applyRX(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a + js*b
			s.amps[j] = js*a + c*b
		}
	}
}

func (s *State) applyRY(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a - sn*b
			s.amps[j] = sn*a + c*b
		}
	}
}

func (s *State) applyRZ(q int, theta float64) {
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	conj := cmplx.Conj(phase)
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= conj
		}
	}
}

func (s *State) applyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyCZ(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] *= -1
		}
	}
}

func (s *State) applySWAP(q1, q2 int) {
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.amps {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyCCX(c1, c2, target int) {
	b1 := 1 << c1
	b2 := 1 << c2
	tBit := 1 << target
	for i := range s.amps {
		if i&b1 != 0 && i&b2 != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// Measure collapses qubit q to a sampled outcome and returns it.
func (s *State) Measure(q int, r *rand.Rand) int {
	bit := 1 << q
	prob1 := 0.0
	for i := range s.amps {
		if i&bit != 0 {
			prob1 += prob(s.amps[i])
		}
	}
	outcome := 0
	if r.Float64() < prob1 {
		outcome = 1
	}
	s.project(q, outcome)
	return outcome
}

// Reset projects qubit q to |0>. State |1> on q maps to |0> as well,
// matching the measure-then-flip channel outcome by outcome.
func (s *State) Reset(q int, r *rand.Rand) {
	outcome := s.Measure(q, r)
	if outcome == 1 {
		s.applyX(q)
	}
}

// project zeroes the non-matching component of qubit q and
// renormalizes.
func (s *State) project(q, outcome int) {
	bit := 1 << q
	kept := 0.0
	for i := range s.amps {
		has := i&bit != 0
		if has == (outcome == 1) {
			kept += prob(s.amps[i])
		} else {
			s.amps[i] = 0
		}
	}
	if kept == 0 {
		// numerically impossible outcome, restore |0...0>
		for i := range s.amps {
			s.amps[i] = 0
		}
		s.amps[0] = 1
		return
	}
	norm := complex(math.Sqrt(kept), 0)
	for i := range s.amps {
		s.amps[i] /= norm
	}
}

// Probabilities returns |amp|^2 for every basis state.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = prob(a)
	}
	return probs
}

// QubitProbability holds the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal distribution per qubit.
func (s *State) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.n)
	for i, a := range s.amps {
		p := prob(a)
		for q := 0; q < s.n; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Amplitude returns the amplitude of a basis state given as a
// bitstring with qubit 0 rightmost.
func (s *State) Amplitude(bitstring string) (complex128, error) {
	if len(bitstring) != s.n {
		return 0, fmt.Errorf("bitstring length %d does not match %d qubits", len(bitstring), s.n)
	}
	idx := 0
	for i := 0; i < len(bitstring); i++ {
		switch bitstring[i] {
		case '0':
		case '1':
			idx |= 1 << (s.n - 1 - i)
		default:
			return 0, fmt.Errorf("bad bitstring %q", bitstring)
		}
	}
	return s.amps[idx], nil
}

// BasisLabel renders a basis-state index as the bitstring Amplitude
// accepts, qubit 0 rightmost.
func BasisLabel(index, qubits int) string {
	buf := make([]byte, qubits)
	for q := 0; q < qubits; q++ {
		if index>>q&1 == 1 {
			buf[qubits-1-q] = '1'
		} else {
			buf[qubits-1-q] = '0'
		}
	}
	return string(buf)
}

// Norm returns the 2-norm of the state, 1 for any valid state.
func (s *State) Norm() float64 {
	total := 0.0
	for _, a := range s.amps {
		total += prob(a)
	}
	return math.Sqrt(total)
}

func (s *State) innerProduct(t *State) complex128 {
	sum := complex128(0)
	for i := range s.amps {
		sum += cmplx.Conj(s.amps[i]) * t.amps[i]
	}
	return sum
}

func prob(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}
