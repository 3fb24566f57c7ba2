package estimation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"
)

type operator struct {
	Pauli string  `json:"pauli"`
	CoEff float64 `json:"coeff"`
}

type measuredOperator struct {
	operator
	factors map[int]string // qubit to x|y|z, identities dropped
}

// label renders the operator in the compact device form, qubit n-1 on
// the left so it lines up with counts keys.
func (o measuredOperator) label(qubitCount int) string {
	var sb strings.Builder
	for q := qubitCount - 1; q >= 0; q-- {
		p, ok := o.factors[q]
		if !ok {
			sb.WriteByte('I')
			continue
		}
		sb.WriteString(strings.ToUpper(p))
	}
	return sb.String()
}

type operatorGroup struct {
	operators []measuredOperator
	basis     map[int]string
}

// accepts reports whether the operator commutes qubit-wise with every
// operator already in the group.
func (g *operatorGroup) accepts(op measuredOperator) bool {
	for q, p := range op.factors {
		if have, ok := g.basis[q]; ok && have != p {
			return false
		}
	}
	return true
}

func (g *operatorGroup) add(op measuredOperator) {
	g.operators = append(g.operators, op)
	for q, p := range op.factors {
		g.basis[q] = p
	}
}

func (g *operatorGroup) rotatedQubits() []int {
	qs := make([]int, 0, len(g.basis))
	for q := range g.basis {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

func parseOperators(jinfo string, qubitCount int) ([]measuredOperator, error) {
	rawOps := []operator{}
	if err := json.Unmarshal([]byte(jinfo), &rawOps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operators:%s", err)
	}
	if len(rawOps) == 0 {
		return nil, fmt.Errorf("no operators to estimate")
	}
	parsed := make([]measuredOperator, 0, len(rawOps))
	for _, op := range rawOps {
		factors, err := statevec.ParsePauli(op.Pauli, qubitCount)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, measuredOperator{operator: op, factors: factors})
	}
	return parsed, nil
}

// groupOperators packs the operators into measurement groups greedily.
// Operators land in the first group they commute qubit-wise with, so
// every group is measurable with one basis rotation per qubit. With
// grouping disabled each operator gets its own circuit.
func groupOperators(ops []measuredOperator, grouping bool) []*operatorGroup {
	groups := []*operatorGroup{}
	for _, op := range ops {
		var placed *operatorGroup
		if grouping {
			for _, g := range groups {
				if g.accepts(op) {
					placed = g
					break
				}
			}
		}
		if placed == nil {
			placed = &operatorGroup{basis: map[int]string{}}
			groups = append(groups, placed)
		}
		placed.add(op)
	}
	return groups
}

func serializeGroups(groups []*operatorGroup, qubitCount int) string {
	labels := make([][]string, len(groups))
	coeffs := make([][]float64, len(groups))
	for i, g := range groups {
		labels[i] = make([]string, 0, len(g.operators))
		coeffs[i] = make([]float64, 0, len(g.operators))
		for _, op := range g.operators {
			labels[i] = append(labels[i], op.label(qubitCount))
			coeffs[i] = append(coeffs[i], op.CoEff)
		}
	}
	serialized, err := json.Marshal([]interface{}{labels, coeffs})
	if err != nil {
		return ""
	}
	return string(serialized)
}

// measurementCircuit replays the preparation circuit into a builder and
// appends the basis rotations of one group and a full measurement.
// X rotates with h, Y with sdg then h, Z measures directly.
func measurementCircuit(prog *qasm.ProgramIR, g *operatorGroup) (string, error) {
	b := qasm.NewBuilder(prog.QubitCount, prog.QubitCount)
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR:
		case *qasm.GateCallStatementIR:
			qubits, err := prog.AbsQubits(s.Operands)
			if err != nil {
				return "", err
			}
			b.GateP(s.GateName, s.Params, qubits...)
		case *qasm.BarrierStatementIR:
			qubits, err := prog.AbsQubits(s.Operands)
			if err != nil {
				return "", err
			}
			b.Barrier(qubits...)
		case *qasm.ResetStatementIR:
			qubit, err := prog.AbsQubits([]qasm.QCbitIdentifier{s.Target})
			if err != nil {
				return "", err
			}
			b.Reset(qubit[0])
		default:
			return "", fmt.Errorf("the estimation circuit must be measurement-free, found a %s statement",
				qasm.StatementKind(stmt))
		}
	}
	for _, q := range g.rotatedQubits() {
		switch g.basis[q] {
		case "x":
			b.H(q)
		case "y":
			b.Sdg(q)
			b.H(q)
		}
	}
	b.MeasureAll()
	return b.QASM()
}

// expectationFromCounts evaluates one diagonalized operator on the
// counts of its group circuit. Bit i of a counts key is qubit i, read
// from the right.
func expectationFromCounts(counts core.Counts, op measuredOperator) (mean float64, variance float64, err error) {
	shots := float64(0)
	sum := float64(0)
	for key, c := range counts {
		sign := 1.0
		for q := range op.factors {
			if q >= len(key) {
				return 0, 0, fmt.Errorf("counts key %q is too short for qubit %d", key, q)
			}
			if key[len(key)-1-q] == '1' {
				sign = -sign
			}
		}
		sum += sign * float64(c)
		shots += float64(c)
	}
	if shots == 0 {
		return 0, 0, fmt.Errorf("empty counts for the measurement circuit")
	}
	mean = sum / shots
	variance = (1 - mean*mean) / shots
	if variance < 0 {
		variance = 0
	}
	return mean, variance, nil
}

// estimate combines the per-group counts into the expectation value of
// the operator sum. The standard deviation propagates the per-operator
// shot noise, var = (1 - <P>^2) / shots, through the coefficients.
func estimate(groups []*operatorGroup, countsList []core.Counts) (float32, float32, error) {
	if len(countsList) != len(groups) {
		return 0, 0, fmt.Errorf("got %d counts for %d measurement circuits", len(countsList), len(groups))
	}
	expValue := float64(0)
	variance := float64(0)
	for i, g := range groups {
		for _, op := range g.operators {
			mean, v, err := expectationFromCounts(countsList[i], op)
			if err != nil {
				return 0, 0, err
			}
			expValue += op.CoEff * mean
			variance += op.CoEff * op.CoEff * v
		}
	}
	return float32(expValue), float32(math.Sqrt(variance)), nil
}
