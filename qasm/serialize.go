package qasm

import (
	"fmt"
	"strconv"
	"strings"
)

// QASM renders the program back to OpenQASM 3 text. The output is
// canonical, so parse-serialize round trips are stable even when the
// input used broadcast or register-wide forms.
func (p *ProgramIR) QASM() (string, error) {
	var sb strings.Builder
	version := p.Version
	if version == "" {
		version = "3"
	}
	sb.WriteString(fmt.Sprintf("OPENQASM %s;\n", version))
	for _, s := range p.Statements {
		line, err := serializeStatement(s)
		if err != nil {
			return "", err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func serializeStatement(s StatementIR) (string, error) {
	switch st := s.(type) {
	case *QuantumDeclarationStatementIR:
		return fmt.Sprintf("qubit[%d] %s;", st.Designator, st.Identifier), nil
	case *ClassicalDeclarationStatementIR:
		return fmt.Sprintf("bit[%d] %s;", st.Designator, st.Identifier), nil
	case *GateCallStatementIR:
		return serializeGateCall(st), nil
	case *AssignmentStatementIR:
		return fmt.Sprintf("%s = measure %s;",
			formatQCbit(st.Left), formatQCbit(st.Right.QCbitIdentifier)), nil
	case *BranchStatementIR:
		return fmt.Sprintf("if (%s == %d) %s",
			formatQCbit(st.Bit), st.Val, serializeGateCall(st.Call)), nil
	case *ResetStatementIR:
		return fmt.Sprintf("reset %s;", formatQCbit(st.Target)), nil
	case *BarrierStatementIR:
		if len(st.Operands) == 0 {
			return "barrier;", nil
		}
		return fmt.Sprintf("barrier %s;", formatOperands(st.Operands)), nil
	default:
		return "", fmt.Errorf("unsupported statement type %T", s)
	}
}

func serializeGateCall(c *GateCallStatementIR) string {
	if len(c.Params) == 0 {
		return fmt.Sprintf("%s %s;", c.GateName, formatOperands(c.Operands))
	}
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return fmt.Sprintf("%s(%s) %s;",
		c.GateName, strings.Join(params, ", "), formatOperands(c.Operands))
}

func formatOperands(ops []QCbitIdentifier) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = formatQCbit(op)
	}
	return strings.Join(parts, ", ")
}

func formatQCbit(id QCbitIdentifier) string {
	return fmt.Sprintf("%s[%d]", id.Name, id.Index)
}
