package visual

import (
	"fmt"
	"strings"

	"github.com/BrianOtieno/quantum-computing/qasm"
)

// column is one drawn step. cells maps a wire row to its glyph, links
// marks the gaps a multi-qubit gate spans.
type column struct {
	cells   map[int]string
	links   map[int]bool
	barrier bool
}

// CircuitDiagram draws the program as a text grid, one wire per qubit
// and one column per statement. Controls render as ●, targets as ⊕,
// readout as [M] and conditional gates carry a ? inside the box.
func CircuitDiagram(prog *qasm.ProgramIR) (string, error) {
	n := prog.QubitCount
	if n < 1 {
		return "", fmt.Errorf("a circuit diagram needs at least one declared qubit")
	}
	cols := make([]column, 0, len(prog.Statements))
	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR:
		case *qasm.GateCallStatementIR:
			abs, err := prog.AbsQubits(st.Operands)
			if err != nil {
				return "", err
			}
			cols = append(cols, gateColumn(st.GateName, abs, false))
		case *qasm.BranchStatementIR:
			abs, err := prog.AbsQubits(st.Call.Operands)
			if err != nil {
				return "", err
			}
			cols = append(cols, gateColumn(st.Call.GateName, abs, true))
		case *qasm.AssignmentStatementIR:
			abs, err := prog.AbsQubits([]qasm.QCbitIdentifier{st.Right.QCbitIdentifier})
			if err != nil {
				return "", err
			}
			cols = append(cols, column{cells: map[int]string{abs[0]: "[M]"}})
		case *qasm.ResetStatementIR:
			abs, err := prog.AbsQubits([]qasm.QCbitIdentifier{st.Target})
			if err != nil {
				return "", err
			}
			cols = append(cols, column{cells: map[int]string{abs[0]: "[0]"}})
		case *qasm.BarrierStatementIR:
			cols = append(cols, barrierColumn(n))
		default:
			return "", fmt.Errorf("cannot draw a %s statement", qasm.StatementKind(s))
		}
	}
	return renderGrid(n, cols), nil
}

func gateColumn(name string, abs []int, conditional bool) column {
	col := column{cells: map[int]string{}, links: map[int]bool{}}
	box := "[" + name + "]"
	if conditional {
		box = "[" + name + "?]"
	}
	switch {
	case len(abs) == 1:
		col.cells[abs[0]] = box
	case name == "cx":
		col.cells[abs[0]] = "●"
		col.cells[abs[1]] = "⊕"
	case name == "cz":
		col.cells[abs[0]] = "●"
		col.cells[abs[1]] = "●"
	case name == "swap":
		col.cells[abs[0]] = "x"
		col.cells[abs[1]] = "x"
	case name == "ccx":
		col.cells[abs[0]] = "●"
		col.cells[abs[1]] = "●"
		col.cells[abs[2]] = "⊕"
	default:
		for _, q := range abs[:len(abs)-1] {
			col.cells[q] = "●"
		}
		col.cells[abs[len(abs)-1]] = box
	}
	if len(abs) > 1 {
		lo, hi := abs[0], abs[0]
		for _, q := range abs {
			if q < lo {
				lo = q
			}
			if q > hi {
				hi = q
			}
		}
		for r := lo; r < hi; r++ {
			col.links[r] = true
		}
	}
	return col
}

func barrierColumn(n int) column {
	col := column{cells: map[int]string{}, links: map[int]bool{}, barrier: true}
	for q := 0; q < n; q++ {
		col.cells[q] = "░"
	}
	for r := 0; r < n-1; r++ {
		col.links[r] = true
	}
	return col
}

func renderGrid(n int, cols []column) string {
	widths := make([]int, len(cols))
	for i, col := range cols {
		w := 1
		for _, c := range col.cells {
			if l := len([]rune(c)); l > w {
				w = l
			}
		}
		widths[i] = w
	}
	margin := len(fmt.Sprintf("q%d: ", n-1))

	var sb strings.Builder
	for q := 0; q < n; q++ {
		label := fmt.Sprintf("q%d: ", q)
		sb.WriteString(label)
		sb.WriteString(strings.Repeat(" ", margin-len(label)))
		sb.WriteString("─")
		for i, col := range cols {
			sb.WriteString(padCell(col.cells[q], widths[i], "─"))
			sb.WriteString("─")
		}
		sb.WriteString("\n")
		if q == n-1 {
			continue
		}
		var link strings.Builder
		link.WriteString(strings.Repeat(" ", margin+1))
		blank := true
		for i, col := range cols {
			cell := ""
			if col.links[q] {
				cell = "│"
				if col.barrier {
					cell = "░"
				}
				blank = false
			}
			link.WriteString(padCell(cell, widths[i], " "))
			link.WriteString(" ")
		}
		if !blank {
			sb.WriteString(strings.TrimRight(link.String(), " "))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func padCell(cell string, width int, fill string) string {
	pad := width - len([]rune(cell))
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	return strings.Repeat(fill, left) + cell + strings.Repeat(fill, pad-left)
}
