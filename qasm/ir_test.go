//go:build unit
// +build unit

package qasm

import (
	"math"
	"testing"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestSuperpositionIR(t *testing.T) {
	testQASM, commonErr := common.GetAsset("superposition.qasm")
	assert.Nil(t, commonErr)
	prog, parseErr := ParseQASM(testQASM)
	assert.Nil(t, parseErr)
	assert.Equal(t, prog.Version, "3")
	assert.Equal(t, prog.QubitCount, 1)
	assert.Equal(t, prog.BitCount, 1)
}

func TestBellPairIR(t *testing.T) {
	testQASM, commonErr := common.GetAsset("bell_pair.qasm")
	assert.Nil(t, commonErr)
	prog, parseErr := ParseQASM(testQASM)
	assert.Nil(t, parseErr)

	assert.Equal(t, prog.Version, "3")

	assert.Equal(t, len(prog.QubitAbsNum), 2)
	assert.Equal(t, prog.QubitAbsNum[QCbitIdentifier{Name: "q", Index: 0}], 0)
	assert.Equal(t, prog.QubitAbsNum[QCbitIdentifier{Name: "q", Index: 1}], 1)
	assert.Equal(t, prog.QubitCount, 2)

	assert.Equal(t, len(prog.BitAbsNum), 2)
	assert.Equal(t, prog.BitAbsNum[QCbitIdentifier{Name: "c", Index: 0}], 0)
	assert.Equal(t, prog.BitAbsNum[QCbitIdentifier{Name: "c", Index: 1}], 1)
	assert.Equal(t, prog.BitCount, 2)

	assert.Equal(t, len(prog.Statements), 6)
	assert.Equal(t, prog.Statements[0], &QuantumDeclarationStatementIR{Identifier: "q", Designator: 2})
	assert.Equal(t, prog.Statements[1], &ClassicalDeclarationStatementIR{Identifier: "c", Designator: 2})
	assert.Equal(
		t,
		prog.Statements[2],
		&GateCallStatementIR{
			GateName: "h",
			Operands: []QCbitIdentifier{
				QCbitIdentifier{Name: "q", Index: 0},
			}})
	assert.Equal(
		t,
		prog.Statements[3],
		&GateCallStatementIR{
			GateName: "cx",
			Operands: []QCbitIdentifier{
				QCbitIdentifier{Name: "q", Index: 0},
				QCbitIdentifier{Name: "q", Index: 1},
			}})

	assert.Equal(
		t,
		prog.Statements[4],
		&AssignmentStatementIR{
			Left: QCbitIdentifier{Name: "c", Index: 0},
			Right: MeasureExpressionIR{
				QCbitIdentifier: QCbitIdentifier{Name: "q", Index: 0}}})
	assert.Equal(
		t,
		prog.Statements[5],
		&AssignmentStatementIR{
			Left: QCbitIdentifier{Name: "c", Index: 1},
			Right: MeasureExpressionIR{
				QCbitIdentifier: QCbitIdentifier{Name: "q", Index: 1}}})
}

func TestTeleportationIR(t *testing.T) {
	testQASM, commonErr := common.GetAsset("teleportation.qasm")
	assert.Nil(t, commonErr)
	prog, parseErr := ParseQASM(testQASM)
	assert.Nil(t, parseErr)

	assert.Equal(t, prog.QubitCount, 3)
	assert.Equal(t, prog.BitCount, 3)

	assert.Equal(
		t,
		prog.Statements[2],
		&GateCallStatementIR{
			GateName: "ry",
			Params:   []float64{0.9272952180016122},
			Operands: []QCbitIdentifier{
				QCbitIdentifier{Name: "q", Index: 0},
			}})

	assert.Equal(
		t,
		prog.Statements[9],
		&BranchStatementIR{
			Bit: QCbitIdentifier{Name: "c", Index: 1},
			Val: 1,
			Call: &GateCallStatementIR{
				GateName: "x",
				Operands: []QCbitIdentifier{
					QCbitIdentifier{Name: "q", Index: 2},
				}}})
	assert.Equal(
		t,
		prog.Statements[10],
		&BranchStatementIR{
			Bit: QCbitIdentifier{Name: "c", Index: 0},
			Val: 1,
			Call: &GateCallStatementIR{
				GateName: "z",
				Operands: []QCbitIdentifier{
					QCbitIdentifier{Name: "q", Index: 2},
				}}})
}

func TestBroadcastIR(t *testing.T) {
	testQASM := heredoc.Doc(`
		OPENQASM 3;
		qubit[3] q;
		bit[3] c;
		h q;
		c = measure q;
	`)
	prog, parseErr := ParseQASM(testQASM)
	assert.Nil(t, parseErr)

	assert.Equal(t, len(prog.Statements), 8)
	for i := 0; i < 3; i++ {
		assert.Equal(
			t,
			prog.Statements[2+i],
			&GateCallStatementIR{
				GateName: "h",
				Operands: []QCbitIdentifier{
					QCbitIdentifier{Name: "q", Index: i},
				}})
	}
	assert.Equal(
		t,
		prog.Statements[7],
		&AssignmentStatementIR{
			Left: QCbitIdentifier{Name: "c", Index: 2},
			Right: MeasureExpressionIR{
				QCbitIdentifier: QCbitIdentifier{Name: "q", Index: 2}}})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		qasm string
		msg  string
	}{
		{
			name: "empty input",
			qasm: "",
			msg:  "no input qasm",
		},
		{
			name: "missing header",
			qasm: "qubit[1] q;\n",
			msg:  "line 1: missing OPENQASM header",
		},
		{
			name: "unknown statement",
			qasm: "OPENQASM 3;\nqubit[1] q;\ndummy_string;\n",
			msg:  "line 3: unknown statement \"dummy_string\"",
		},
		{
			name: "bad designator",
			qasm: "OPENQASM 3;\nqubit[zero] q;\n",
			msg:  "line 2: bad designator in \"qubit[zero] q\"",
		},
		{
			name: "undeclared register",
			qasm: "OPENQASM 3;\nqubit[1] q;\nh r;\n",
			msg:  "line 3: undeclared register \"r\"",
		},
		{
			name: "bad condition value",
			qasm: "OPENQASM 3;\nqubit[1] q;\nbit[1] c;\nif (c[0] == 2) x q[0];\n",
			msg:  "line 4: bad comparison value in condition \"c[0] == 2\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM(tt.qasm)
			assert.NotNil(t, err)
			assert.Equal(t, err.Error(), tt.msg)
		})
	}
}

func TestParamExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{expr: "pi", want: math.Pi},
		{expr: "-pi", want: -math.Pi},
		{expr: "pi/2", want: math.Pi / 2},
		{expr: "-pi/4", want: -math.Pi / 4},
		{expr: "2*pi", want: 2 * math.Pi},
		{expr: "pi/4 + pi/4", want: math.Pi / 2},
		{expr: "tau", want: 2 * math.Pi},
		{expr: "0.5", want: 0.5},
		{expr: "1e-3", want: 0.001},
		{expr: "1.5e+2", want: 150},
		{expr: "(pi + pi)/2", want: math.Pi},
		{expr: "3*(1 + 1)", want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalParamExpr(tt.expr)
			assert.Nil(t, err)
			assert.InDelta(t, tt.want, got, 1e-15)
		})
	}

	_, err := evalParamExpr("foo")
	assert.NotNil(t, err)
	_, err = evalParamExpr("pi/0")
	assert.NotNil(t, err)
	_, err = evalParamExpr("(pi")
	assert.NotNil(t, err)
}

func TestGateNames(t *testing.T) {
	testQASM, commonErr := common.GetAsset("teleportation.qasm")
	assert.Nil(t, commonErr)
	prog, parseErr := ParseQASM(testQASM)
	assert.Nil(t, parseErr)
	assert.Equal(t, prog.GateNames(), []string{"cx", "h", "ry", "x", "z"})
}
