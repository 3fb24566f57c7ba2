package qasm

import (
	"fmt"
	"sort"
	"strings"
)

// ProgramIR is the in-memory form of an OpenQASM 3 program. Qubits and
// classical bits are numbered in declaration order, so QubitAbsNum and
// BitAbsNum give the flat index the simulator and transpiler work with.
type ProgramIR struct {
	Version    string
	Statements []StatementIR

	QubitCount  int
	QubitAbsNum map[QCbitIdentifier]int // Get absolute qubit number
	BitCount    int
	BitAbsNum   map[QCbitIdentifier]int // Get absolute bit number
}

type QCbitIdentifier struct {
	Name  string
	Index int
}

type MeasureExpressionIR struct {
	QCbitIdentifier QCbitIdentifier
}

type StatementIR interface {
	String() string
	IsStatementIR()
}

type QuantumDeclarationStatementIR struct {
	Identifier string
	Designator int
}

func (QuantumDeclarationStatementIR) IsStatementIR() {}
func (QuantumDeclarationStatementIR) String() string {
	return "QuantumDeclarationStatementIR"
}

type ClassicalDeclarationStatementIR struct {
	Identifier string
	Designator int
}

func (ClassicalDeclarationStatementIR) IsStatementIR() {}
func (ClassicalDeclarationStatementIR) String() string {
	return "ClassicalDeclarationStatementIR"
}

type GateCallStatementIR struct {
	GateName string
	Params   []float64
	Operands []QCbitIdentifier
}

func (GateCallStatementIR) IsStatementIR() {}
func (GateCallStatementIR) String() string {
	return "GateCallStatementIR"
}

type AssignmentStatementIR struct {
	Left  QCbitIdentifier
	Right MeasureExpressionIR
}

func (AssignmentStatementIR) IsStatementIR() {}
func (AssignmentStatementIR) String() string {
	return "AssignmentStatementIR"
}

// BranchStatementIR is the single-gate conditional form
// "if (c[i] == v) gate ...;".
type BranchStatementIR struct {
	Bit  QCbitIdentifier
	Val  int
	Call *GateCallStatementIR
}

func (BranchStatementIR) IsStatementIR() {}
func (BranchStatementIR) String() string {
	return "BranchStatementIR"
}

type ResetStatementIR struct {
	Target QCbitIdentifier
}

func (ResetStatementIR) IsStatementIR() {}
func (ResetStatementIR) String() string {
	return "ResetStatementIR"
}

type BarrierStatementIR struct {
	Operands []QCbitIdentifier
}

func (BarrierStatementIR) IsStatementIR() {}
func (BarrierStatementIR) String() string {
	return "BarrierStatementIR"
}

// StatementKind returns the short lowercase name used by the device
// allow and deny lists, e.g. "gatecall" for a GateCallStatementIR.
func StatementKind(s StatementIR) string {
	n := strings.ToLower(s.String())
	return strings.TrimSuffix(n, "statementir")
}

// GateNames collects the distinct gate names called in the program,
// conditional calls included, sorted for stable logging.
func (p *ProgramIR) GateNames() []string {
	set := make(map[string]struct{})
	for _, s := range p.Statements {
		switch st := s.(type) {
		case *GateCallStatementIR:
			set[st.GateName] = struct{}{}
		case *BranchStatementIR:
			set[st.Call.GateName] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AbsQubits resolves gate operands to flat qubit numbers.
func (p *ProgramIR) AbsQubits(ops []QCbitIdentifier) ([]int, error) {
	abs := make([]int, len(ops))
	for i, op := range ops {
		n, ok := p.QubitAbsNum[op]
		if !ok {
			return nil, fmt.Errorf("undeclared qubit %s[%d]", op.Name, op.Index)
		}
		abs[i] = n
	}
	return abs, nil
}

// AbsBit resolves one classical bit reference to its flat number.
func (p *ProgramIR) AbsBit(b QCbitIdentifier) (int, error) {
	n, ok := p.BitAbsNum[b]
	if !ok {
		return 0, fmt.Errorf("undeclared bit %s[%d]", b.Name, b.Index)
	}
	return n, nil
}

func newProgramIR() *ProgramIR {
	return &ProgramIR{
		QubitCount:  0,
		QubitAbsNum: make(map[QCbitIdentifier]int),
		BitCount:    0,
		BitAbsNum:   make(map[QCbitIdentifier]int),
	}
}
