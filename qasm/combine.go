package qasm

import (
	"fmt"
)

// CombineResult holds a merged multi-program circuit. QubitsList is
// ordered for result division: entry 0 is the qubit count of the LAST
// input program, because that program occupies the highest qubits and
// therefore the leftmost chunk of each counts bitstring.
type CombineResult struct {
	QASM       string
	QubitsList []int32
}

// Combine merges independent programs into one circuit over shared q/c
// registers. Program 0 is placed at the lowest qubits, each following
// program above it. Every program must measure all of its qubits so the
// counts bitstring can be cut back into per-program chunks.
func Combine(qasms []string, maxQubits int) (*CombineResult, error) {
	if len(qasms) == 0 {
		return nil, fmt.Errorf("no programs to combine")
	}
	progs := make([]*ProgramIR, len(qasms))
	totalQubits := 0
	for i, q := range qasms {
		p, err := ParseQASM(q)
		if err != nil {
			return nil, fmt.Errorf("program %d: %s", i, err.Error())
		}
		if p.QubitCount == 0 {
			return nil, fmt.Errorf("program %d declares no qubits", i)
		}
		if p.BitCount != p.QubitCount {
			return nil, fmt.Errorf(
				"program %d must measure every qubit for result division (qubits=%d, bits=%d)",
				i, p.QubitCount, p.BitCount)
		}
		progs[i] = p
		totalQubits += p.QubitCount
	}
	if totalQubits > maxQubits {
		return nil, fmt.Errorf("combined circuit needs %d qubits but the device has only %d",
			totalQubits, maxQubits)
	}

	combined := NewBuilder(totalQubits, totalQubits)
	offset := 0
	for i, p := range progs {
		if i > 0 {
			combined.Barrier()
		}
		if err := appendShifted(combined, p, offset); err != nil {
			return nil, fmt.Errorf("program %d: %s", i, err.Error())
		}
		offset += p.QubitCount
	}
	qasmText, err := combined.QASM()
	if err != nil {
		return nil, err
	}

	qubitsList := make([]int32, len(progs))
	for i, p := range progs {
		qubitsList[len(progs)-1-i] = int32(p.QubitCount)
	}
	return &CombineResult{
		QASM:       qasmText,
		QubitsList: qubitsList,
	}, nil
}

func appendShifted(b *Builder, p *ProgramIR, offset int) error {
	shiftQubits := func(ops []QCbitIdentifier) ([]int, error) {
		abs, err := p.AbsQubits(ops)
		if err != nil {
			return nil, err
		}
		for i := range abs {
			abs[i] += offset
		}
		return abs, nil
	}
	for _, s := range p.Statements {
		switch st := s.(type) {
		case *QuantumDeclarationStatementIR, *ClassicalDeclarationStatementIR:
			continue
		case *GateCallStatementIR:
			qs, err := shiftQubits(st.Operands)
			if err != nil {
				return err
			}
			b.GateP(st.GateName, st.Params, qs...)
		case *AssignmentStatementIR:
			qs, err := shiftQubits([]QCbitIdentifier{st.Right.QCbitIdentifier})
			if err != nil {
				return err
			}
			bit, err := p.AbsBit(st.Left)
			if err != nil {
				return err
			}
			b.Measure(qs[0], bit+offset)
		case *BranchStatementIR:
			qs, err := shiftQubits(st.Call.Operands)
			if err != nil {
				return err
			}
			bit, err := p.AbsBit(st.Bit)
			if err != nil {
				return err
			}
			if len(st.Call.Params) > 0 {
				return fmt.Errorf("parameterized conditional gates are not combinable")
			}
			b.If(bit+offset, st.Val, st.Call.GateName, qs...)
		case *ResetStatementIR:
			qs, err := shiftQubits([]QCbitIdentifier{st.Target})
			if err != nil {
				return err
			}
			b.Reset(qs[0])
		case *BarrierStatementIR:
			qs, err := shiftQubits(st.Operands)
			if err != nil {
				return err
			}
			b.Barrier(qs...)
		default:
			return fmt.Errorf("unsupported statement type %T", s)
		}
	}
	return b.Err()
}
