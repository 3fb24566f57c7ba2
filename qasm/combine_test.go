//go:build unit
// +build unit

package qasm

import (
	"testing"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestCombineTwoPrograms(t *testing.T) {
	bell, commonErr := common.GetAsset("bell_pair.qasm")
	assert.Nil(t, commonErr)
	single, commonErr := common.GetAsset("superposition.qasm")
	assert.Nil(t, commonErr)

	res, err := Combine([]string{bell, single}, 4)
	assert.Nil(t, err)
	assert.Equal(t, res.QubitsList, []int32{1, 2})
	assert.Equal(t, res.QASM, heredoc.Doc(`
		OPENQASM 3;
		qubit[3] q;
		bit[3] c;
		h q[0];
		cx q[0], q[1];
		c[0] = measure q[0];
		c[1] = measure q[1];
		barrier;
		h q[2];
		c[2] = measure q[2];
	`))

	prog, parseErr := ParseQASM(res.QASM)
	assert.Nil(t, parseErr)
	assert.Equal(t, prog.QubitCount, 3)
	assert.Equal(t, prog.BitCount, 3)
}

func TestCombineTooManyQubits(t *testing.T) {
	bell, commonErr := common.GetAsset("bell_pair.qasm")
	assert.Nil(t, commonErr)
	single, commonErr := common.GetAsset("superposition.qasm")
	assert.Nil(t, commonErr)

	_, err := Combine([]string{bell, single}, 2)
	assert.NotNil(t, err)
	assert.Equal(t, err.Error(), "combined circuit needs 3 qubits but the device has only 2")
}

func TestCombineUnmeasuredQubits(t *testing.T) {
	partial := heredoc.Doc(`
		OPENQASM 3;
		qubit[2] q;
		bit[1] c;
		h q[0];
		c[0] = measure q[0];
	`)
	_, err := Combine([]string{partial}, 4)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "must measure every qubit")
}

func TestCombineParseError(t *testing.T) {
	bell, commonErr := common.GetAsset("bell_pair.qasm")
	assert.Nil(t, commonErr)

	_, err := Combine([]string{bell, "OPENQASM 3;\ndummy_string;\n"}, 4)
	assert.NotNil(t, err)
	assert.Equal(t, err.Error(), "program 1: line 2: unknown statement \"dummy_string\"")
}

func TestCombineNothing(t *testing.T) {
	_, err := Combine([]string{}, 4)
	assert.NotNil(t, err)
}
