package qasm

import (
	"fmt"
)

// Builder assembles a circuit against single q/c registers and renders
// it as a ProgramIR or OpenQASM text. Gate methods chain, and the first
// out-of-range operand is kept as the builder error so call sites check
// once at the end.
type Builder struct {
	qubits int
	bits   int
	stmts  []StatementIR
	err    error
}

func NewBuilder(qubits, bits int) *Builder {
	b := &Builder{
		qubits: qubits,
		bits:   bits,
		stmts:  make([]StatementIR, 0),
	}
	if qubits <= 0 {
		b.err = fmt.Errorf("builder needs at least one qubit, got %d", qubits)
	}
	if bits < 0 {
		b.err = fmt.Errorf("negative classical register size %d", bits)
	}
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) qubitRefs(qubits []int) ([]QCbitIdentifier, bool) {
	refs := make([]QCbitIdentifier, len(qubits))
	for i, q := range qubits {
		if q < 0 || q >= b.qubits {
			b.setErr(fmt.Errorf("qubit index %d out of range [0, %d)", q, b.qubits))
			return nil, false
		}
		refs[i] = QCbitIdentifier{Name: "q", Index: q}
	}
	return refs, true
}

func (b *Builder) bitRef(bit int) (QCbitIdentifier, bool) {
	if bit < 0 || bit >= b.bits {
		b.setErr(fmt.Errorf("bit index %d out of range [0, %d)", bit, b.bits))
		return QCbitIdentifier{}, false
	}
	return QCbitIdentifier{Name: "c", Index: bit}, true
}

// Gate appends a parameterless gate call.
func (b *Builder) Gate(name string, qubits ...int) *Builder {
	return b.GateP(name, nil, qubits...)
}

// GateP appends a gate call with parameters.
func (b *Builder) GateP(name string, params []float64, qubits ...int) *Builder {
	if b.err != nil {
		return b
	}
	if len(qubits) == 0 {
		b.setErr(fmt.Errorf("gate %s needs at least one operand", name))
		return b
	}
	refs, ok := b.qubitRefs(qubits)
	if !ok {
		return b
	}
	b.stmts = append(b.stmts, &GateCallStatementIR{
		GateName: name,
		Params:   params,
		Operands: refs,
	})
	return b
}

func (b *Builder) H(q int) *Builder   { return b.Gate("h", q) }
func (b *Builder) X(q int) *Builder   { return b.Gate("x", q) }
func (b *Builder) Y(q int) *Builder   { return b.Gate("y", q) }
func (b *Builder) Z(q int) *Builder   { return b.Gate("z", q) }
func (b *Builder) S(q int) *Builder   { return b.Gate("s", q) }
func (b *Builder) Sdg(q int) *Builder { return b.Gate("sdg", q) }
func (b *Builder) T(q int) *Builder   { return b.Gate("t", q) }
func (b *Builder) Tdg(q int) *Builder { return b.Gate("tdg", q) }
func (b *Builder) SX(q int) *Builder  { return b.Gate("sx", q) }

func (b *Builder) RX(theta float64, q int) *Builder { return b.GateP("rx", []float64{theta}, q) }
func (b *Builder) RY(theta float64, q int) *Builder { return b.GateP("ry", []float64{theta}, q) }
func (b *Builder) RZ(theta float64, q int) *Builder { return b.GateP("rz", []float64{theta}, q) }

func (b *Builder) CX(control, target int) *Builder { return b.Gate("cx", control, target) }
func (b *Builder) CZ(control, target int) *Builder { return b.Gate("cz", control, target) }
func (b *Builder) SWAP(a, q int) *Builder          { return b.Gate("swap", a, q) }
func (b *Builder) CCX(c1, c2, target int) *Builder { return b.Gate("ccx", c1, c2, target) }

// Measure records qubit q into classical bit c.
func (b *Builder) Measure(q, c int) *Builder {
	if b.err != nil {
		return b
	}
	refs, ok := b.qubitRefs([]int{q})
	if !ok {
		return b
	}
	bit, ok := b.bitRef(c)
	if !ok {
		return b
	}
	b.stmts = append(b.stmts, &AssignmentStatementIR{
		Left:  bit,
		Right: MeasureExpressionIR{QCbitIdentifier: refs[0]},
	})
	return b
}

// MeasureAll measures qubit i into bit i for every qubit.
func (b *Builder) MeasureAll() *Builder {
	if b.err != nil {
		return b
	}
	if b.bits < b.qubits {
		b.setErr(fmt.Errorf("classical register too small to measure all: %d bits for %d qubits",
			b.bits, b.qubits))
		return b
	}
	for i := 0; i < b.qubits; i++ {
		b.Measure(i, i)
	}
	return b
}

func (b *Builder) Reset(q int) *Builder {
	if b.err != nil {
		return b
	}
	refs, ok := b.qubitRefs([]int{q})
	if !ok {
		return b
	}
	b.stmts = append(b.stmts, &ResetStatementIR{Target: refs[0]})
	return b
}

func (b *Builder) Barrier(qubits ...int) *Builder {
	if b.err != nil {
		return b
	}
	refs, ok := b.qubitRefs(qubits)
	if !ok {
		return b
	}
	b.stmts = append(b.stmts, &BarrierStatementIR{Operands: refs})
	return b
}

// If appends a gate executed only when classical bit c equals val.
func (b *Builder) If(c, val int, gateName string, qubits ...int) *Builder {
	if b.err != nil {
		return b
	}
	if val != 0 && val != 1 {
		b.setErr(fmt.Errorf("condition value must be 0 or 1, got %d", val))
		return b
	}
	bit, ok := b.bitRef(c)
	if !ok {
		return b
	}
	refs, ok := b.qubitRefs(qubits)
	if !ok {
		return b
	}
	b.stmts = append(b.stmts, &BranchStatementIR{
		Bit: bit,
		Val: val,
		Call: &GateCallStatementIR{
			GateName: gateName,
			Operands: refs,
		},
	})
	return b
}

func (b *Builder) Err() error {
	return b.err
}

// IR finalizes the builder into a ProgramIR with the register
// declarations up front.
func (b *Builder) IR() (*ProgramIR, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := newProgramIR()
	p.Version = "3"
	p.Statements = append(p.Statements, &QuantumDeclarationStatementIR{
		Identifier: "q",
		Designator: b.qubits,
	})
	for i := 0; i < b.qubits; i++ {
		p.QubitAbsNum[QCbitIdentifier{Name: "q", Index: i}] = i
	}
	p.QubitCount = b.qubits
	if b.bits > 0 {
		p.Statements = append(p.Statements, &ClassicalDeclarationStatementIR{
			Identifier: "c",
			Designator: b.bits,
		})
		for i := 0; i < b.bits; i++ {
			p.BitAbsNum[QCbitIdentifier{Name: "c", Index: i}] = i
		}
		p.BitCount = b.bits
	}
	p.Statements = append(p.Statements, b.stmts...)
	return p, nil
}

// QASM finalizes the builder into OpenQASM text.
func (b *Builder) QASM() (string, error) {
	ir, err := b.IR()
	if err != nil {
		return "", err
	}
	return ir.QASM()
}
