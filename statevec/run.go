package statevec

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/BrianOtieno/quantum-computing/qasm"
)

// Counts maps classical-register bitstrings to how often they were
// read out. Bit 0 is the rightmost character.
type Counts map[string]uint32

// ReadoutError models classical misreads per qubit. P10 is the chance
// of reading 1 from a qubit measured as 0, P01 the reverse.
type ReadoutError struct {
	P10 []float64
	P01 []float64
}

func (e *ReadoutError) validate(n int) error {
	if len(e.P10) != n || len(e.P01) != n {
		return fmt.Errorf("readout error needs %d probabilities per direction, got %d/%d",
			n, len(e.P10), len(e.P01))
	}
	for i := 0; i < n; i++ {
		if e.P10[i] < 0 || e.P10[i] > 1 || e.P01[i] < 0 || e.P01[i] > 1 {
			return fmt.Errorf("readout error probabilities for qubit %d out of [0, 1]", i)
		}
	}
	return nil
}

// Options tunes a Run. Seed 0 means a time-based seed.
type Options struct {
	Seed    int64
	Readout *ReadoutError
}

type instrKind int

const (
	instrGate instrKind = iota
	instrMeasure
	instrBranch
	instrReset
)

type instr struct {
	kind   instrKind
	name   string
	params []float64
	qubits []int
	bit    int
	val    int
}

type measurePair struct {
	qubit int
	bit   int
}

// Run samples a parsed program for the requested number of shots.
// Programs without mid-circuit classical feedback are simulated in a
// single statevector pass with multinomial sampling; conditionals,
// resets and gates after measurement fall back to per-shot collapse.
func Run(prog *qasm.ProgramIR, shots int, opts Options) (Counts, error) {
	if prog == nil {
		return nil, fmt.Errorf("no program to run")
	}
	if shots <= 0 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if prog.QubitCount == 0 {
		return nil, fmt.Errorf("no qubits declared")
	}
	instrs, err := compile(prog)
	if err != nil {
		return nil, err
	}
	measures := 0
	for _, in := range instrs {
		if in.kind == instrMeasure {
			measures++
		}
	}
	if measures == 0 {
		return nil, fmt.Errorf("circuit has no measurements")
	}
	if opts.Readout != nil {
		if err := opts.Readout.validate(prog.QubitCount); err != nil {
			return nil, err
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if needsPerShot(instrs) {
		return runPerShot(prog, instrs, shots, rng, opts.Readout)
	}
	return runSinglePass(prog, instrs, shots, rng, opts.Readout)
}

// Evolve applies the gates of a measurement-free program to a fresh
// state and returns the prepared state.
func Evolve(prog *qasm.ProgramIR) (*State, error) {
	if prog == nil {
		return nil, fmt.Errorf("no program to run")
	}
	if prog.QubitCount == 0 {
		return nil, fmt.Errorf("no qubits declared")
	}
	instrs, err := compile(prog)
	if err != nil {
		return nil, err
	}
	state, err := NewState(prog.QubitCount)
	if err != nil {
		return nil, err
	}
	for _, in := range instrs {
		if in.kind != instrGate {
			return nil, fmt.Errorf("evolution requires a measurement-free circuit")
		}
		if err := state.Apply(in.name, in.params, in.qubits...); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func compile(prog *qasm.ProgramIR) ([]instr, error) {
	instrs := make([]instr, 0, len(prog.Statements))
	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR,
			*qasm.BarrierStatementIR:
			continue
		case *qasm.GateCallStatementIR:
			if err := prog.CheckGateCall(st); err != nil {
				return nil, err
			}
			qs, err := prog.AbsQubits(st.Operands)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, instr{
				kind: instrGate, name: st.GateName, params: st.Params, qubits: qs})
		case *qasm.AssignmentStatementIR:
			qs, err := prog.AbsQubits([]qasm.QCbitIdentifier{st.Right.QCbitIdentifier})
			if err != nil {
				return nil, err
			}
			bit, err := prog.AbsBit(st.Left)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, instr{kind: instrMeasure, qubits: qs, bit: bit})
		case *qasm.BranchStatementIR:
			if err := prog.CheckGateCall(st.Call); err != nil {
				return nil, err
			}
			qs, err := prog.AbsQubits(st.Call.Operands)
			if err != nil {
				return nil, err
			}
			bit, err := prog.AbsBit(st.Bit)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, instr{
				kind: instrBranch, name: st.Call.GateName, params: st.Call.Params,
				qubits: qs, bit: bit, val: st.Val})
		case *qasm.ResetStatementIR:
			qs, err := prog.AbsQubits([]qasm.QCbitIdentifier{st.Target})
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, instr{kind: instrReset, qubits: qs})
		default:
			return nil, fmt.Errorf("unsupported statement type %T", s)
		}
	}
	return instrs, nil
}

// needsPerShot reports whether a measurement outcome can influence
// later statements, which rules out the single-pass shortcut.
func needsPerShot(instrs []instr) bool {
	measuredQubits := map[int]struct{}{}
	writtenBits := map[int]struct{}{}
	for _, in := range instrs {
		switch in.kind {
		case instrBranch, instrReset:
			return true
		case instrMeasure:
			if _, again := measuredQubits[in.qubits[0]]; again {
				return true
			}
			if _, again := writtenBits[in.bit]; again {
				return true
			}
			measuredQubits[in.qubits[0]] = struct{}{}
			writtenBits[in.bit] = struct{}{}
		case instrGate:
			for _, q := range in.qubits {
				if _, measured := measuredQubits[q]; measured {
					return true
				}
			}
		}
	}
	return false
}

func runSinglePass(prog *qasm.ProgramIR, instrs []instr, shots int,
	rng *rand.Rand, readout *ReadoutError) (Counts, error) {
	state, err := NewState(prog.QubitCount)
	if err != nil {
		return nil, err
	}
	pairs := make([]measurePair, 0, prog.BitCount)
	for _, in := range instrs {
		switch in.kind {
		case instrGate:
			if err := state.Apply(in.name, in.params, in.qubits...); err != nil {
				return nil, err
			}
		case instrMeasure:
			pairs = append(pairs, measurePair{qubit: in.qubits[0], bit: in.bit})
		}
	}

	// joint distribution over the measured qubits only
	dist := map[uint64]float64{}
	for i, p := range state.Probabilities() {
		if p == 0 {
			continue
		}
		var key uint64
		for k, mp := range pairs {
			if i&(1<<mp.qubit) != 0 {
				key |= 1 << k
			}
		}
		dist[key] += p
	}
	outcomes := make([]uint64, 0, len(dist))
	for o := range dist {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
	cum := make([]float64, len(outcomes))
	total := 0.0
	for i, o := range outcomes {
		total += dist[o]
		cum[i] = total
	}

	counts := Counts{}
	bits := make([]int, prog.BitCount)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cum, r)
		if idx == len(cum) {
			idx = len(cum) - 1
		}
		outcome := outcomes[idx]
		for i := range bits {
			bits[i] = 0
		}
		for k, mp := range pairs {
			v := int((outcome >> k) & 1)
			bits[mp.bit] = readBit(v, mp.qubit, rng, readout)
		}
		counts[bitsKey(bits)]++
	}
	return counts, nil
}

func runPerShot(prog *qasm.ProgramIR, instrs []instr, shots int,
	rng *rand.Rand, readout *ReadoutError) (Counts, error) {
	counts := Counts{}
	bits := make([]int, prog.BitCount)
	for shot := 0; shot < shots; shot++ {
		state, err := NewState(prog.QubitCount)
		if err != nil {
			return nil, err
		}
		for i := range bits {
			bits[i] = 0
		}
		for _, in := range instrs {
			switch in.kind {
			case instrGate:
				if err := state.Apply(in.name, in.params, in.qubits...); err != nil {
					return nil, err
				}
			case instrMeasure:
				v := state.Measure(in.qubits[0], rng)
				bits[in.bit] = readBit(v, in.qubits[0], rng, readout)
			case instrBranch:
				if bits[in.bit] != in.val {
					continue
				}
				if err := state.Apply(in.name, in.params, in.qubits...); err != nil {
					return nil, err
				}
			case instrReset:
				state.Reset(in.qubits[0], rng)
			}
		}
		counts[bitsKey(bits)]++
	}
	return counts, nil
}

// readBit applies the classical misread channel to one measured value.
func readBit(v, qubit int, rng *rand.Rand, readout *ReadoutError) int {
	if readout == nil {
		return v
	}
	if v == 0 {
		if rng.Float64() < readout.P10[qubit] {
			return 1
		}
		return 0
	}
	if rng.Float64() < readout.P01[qubit] {
		return 0
	}
	return 1
}

func bitsKey(bits []int) string {
	key := make([]byte, len(bits))
	for i, v := range bits {
		key[len(bits)-1-i] = byte('0' + v)
	}
	return string(key)
}
