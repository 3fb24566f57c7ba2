//go:build unit
// +build unit

package transpiler

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"
)

func jobForTranspileTest(t *testing.T, jm *core.JobManager,
	qasmText string, options json.RawMessage) core.Job {
	t.Helper()
	jd := core.NewJobData()
	jd.ID = "transpile-test"
	jd.QASM = qasmText
	jd.Shots = 100
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	if options != nil {
		jd.Transpiler.TranspilerOptions = options
	}
	jd.JobType = core.NORMAL_JOB
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	j, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)
	return j
}

func gateCallsOf(t *testing.T, qasmText string) []*qasm.GateCallStatementIR {
	t.Helper()
	prog, err := qasm.ParseQASM(qasmText)
	assert.Nil(t, err)
	calls := []*qasm.GateCallStatementIR{}
	for _, s := range prog.Statements {
		if c, ok := s.(*qasm.GateCallStatementIR); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

func TestNativeTranspilerLifecycle(t *testing.T) {
	tr := &NativeTranspiler{}
	assert.Nil(t, tr.Setup(&core.Conf{}))
	assert.Nil(t, tr.GetHealth())
	assert.True(t, tr.IsAcceptableTranspilerLib("qlab_native"))
	assert.False(t, tr.IsAcceptableTranspilerLib("qiskit"))
	assert.False(t, tr.IsAcceptableTranspilerLib(""))
	tr.TearDown()
}

func TestParseNativeOptions(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantLevel    int
		wantErrorMsg string
	}{
		{
			name:      "empty raw keeps defaults",
			raw:       "",
			wantLevel: 1,
		},
		{
			name:      "level can be lowered",
			raw:       `{"optimization_level":0}`,
			wantLevel: 0,
		},
		{
			name:      "basis order does not matter",
			raw:       `{"basis_gates":["cx","sx","rz"]}`,
			wantLevel: 1,
		},
		{
			name:         "unsupported basis",
			raw:          `{"basis_gates":["h","cx"]}`,
			wantErrorMsg: "unsupported basis gates:[h cx]. only the sx/rz/cx basis is available",
		},
		{
			name:         "negative level",
			raw:          `{"optimization_level":-1}`,
			wantErrorMsg: "invalid optimization level:-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseNativeOptions(json.RawMessage(tt.raw))
			if tt.wantErrorMsg != "" {
				assert.EqualError(t, err, tt.wantErrorMsg)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.wantLevel, opts.OptimizationLevel)
		})
	}
}

func TestTranspileBellCircuit(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)

	j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[2] q;
bit[2] c;
h q[0];
cx q[0], q[1];
c[0] = measure q[0];
c[1] = measure q[1];`, nil)

	tr := &NativeTranspiler{}
	assert.Nil(t, tr.Transpile(j))

	want := `OPENQASM 3;
qubit[2] q;
bit[2] c;
rz(1.5707963267948966) q[0];
sx q[0];
rz(1.5707963267948966) q[0];
cx q[0], q[1];
c[0] = measure q[0];
c[1] = measure q[1];
`
	assert.Equal(t, want, j.JobData().TranspiledQASM)

	ti := j.JobData().Result.TranspilerInfo
	assert.Equal(t, core.VirtualPhysicalMappingMap{0: 0, 1: 1}, ti.VirtualPhysicalMappingMap)
	assert.Equal(t, core.PhysicalVirtualMapping{0: 0, 1: 1}, ti.PhysicalVirtualMapping)
	assert.Equal(t, `{"0":0,"1":1}`, string(ti.VirtualPhysicalMappingRaw))
	assert.JSONEq(t,
		`{"before":{"n_qubits":2,"n_gates":2},"after":{"n_qubits":2,"n_gates":4}}`,
		string(ti.StatsRaw))
}

func TestTranspileUsesBestFidelityWindow(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)

	// the mock calibration has its best single-qubit fidelity on qubit 1
	j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[1] q;
bit[1] c;
x q[0];
c[0] = measure q[0];`, nil)

	tr := &NativeTranspiler{}
	assert.Nil(t, tr.Transpile(j))

	want := `OPENQASM 3;
qubit[2] q;
bit[1] c;
sx q[1];
sx q[1];
c[0] = measure q[1];
`
	assert.Equal(t, want, j.JobData().TranspiledQASM)

	ti := j.JobData().Result.TranspilerInfo
	assert.Equal(t, core.VirtualPhysicalMappingMap{0: 1}, ti.VirtualPhysicalMappingMap)
	assert.Equal(t, core.PhysicalVirtualMapping{1: 0}, ti.PhysicalVirtualMapping)
	assert.Equal(t, `{"0":1}`, string(ti.VirtualPhysicalMappingRaw))
	assert.JSONEq(t,
		`{"before":{"n_qubits":1,"n_gates":1},"after":{"n_qubits":2,"n_gates":2}}`,
		string(ti.StatsRaw))

	prog, err := qasm.ParseQASM(j.JobData().TranspiledQASM)
	assert.Nil(t, err)
	counts, err := statevec.Run(prog, 50, statevec.Options{Seed: 1})
	assert.Nil(t, err)
	assert.Equal(t, statevec.Counts{"1": 50}, counts)
}

func TestTranspileCancelAndMerge(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)
	tr := &NativeTranspiler{}

	t.Run("adjacent self-inverse pairs cancel", func(t *testing.T) {
		j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[2] q;
bit[2] c;
h q[0];
h q[0];
x q[1];
x q[1];
cx q[0], q[1];
cx q[0], q[1];
c[0] = measure q[0];
c[1] = measure q[1];`, nil)
		assert.Nil(t, tr.Transpile(j))
		assert.Empty(t, gateCallsOf(t, j.JobData().TranspiledQASM))
		assert.JSONEq(t,
			`{"before":{"n_qubits":2,"n_gates":6},"after":{"n_qubits":2,"n_gates":0}}`,
			string(j.JobData().Result.TranspilerInfo.StatsRaw))
	})

	t.Run("rz chain merges into one rotation", func(t *testing.T) {
		j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[2] q;
bit[2] c;
z q[0];
s q[0];
sdg q[0];
t q[0];
c[0] = measure q[0];
c[1] = measure q[1];`, nil)
		assert.Nil(t, tr.Transpile(j))
		calls := gateCallsOf(t, j.JobData().TranspiledQASM)
		assert.Equal(t, 1, len(calls))
		assert.Equal(t, "rz", calls[0].GateName)
		assert.Equal(t, qasm.QCbitIdentifier{Name: "q", Index: 0}, calls[0].Operands[0])
		assert.InDelta(t, -3*math.Pi/4, calls[0].Params[0], 1e-12)
	})

	t.Run("rotations summing to zero are dropped", func(t *testing.T) {
		j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[2] q;
bit[2] c;
x q[0];
s q[0];
sdg q[0];
c[0] = measure q[0];
c[1] = measure q[1];`, nil)
		assert.Nil(t, tr.Transpile(j))
		calls := gateCallsOf(t, j.JobData().TranspiledQASM)
		assert.Equal(t, 2, len(calls))
		for _, c := range calls {
			assert.Equal(t, "sx", c.GateName)
		}
	})

	t.Run("optimization level zero only decomposes", func(t *testing.T) {
		j := jobForTranspileTest(t, jm, `OPENQASM 3;
qubit[2] q;
bit[2] c;
h q[0];
h q[0];
c[0] = measure q[0];
c[1] = measure q[1];`, json.RawMessage(`{"optimization_level":0}`))
		assert.Nil(t, tr.Transpile(j))
		calls := gateCallsOf(t, j.JobData().TranspiledQASM)
		assert.Equal(t, 6, len(calls))
		assert.JSONEq(t,
			`{"before":{"n_qubits":2,"n_gates":2},"after":{"n_qubits":2,"n_gates":6}}`,
			string(j.JobData().Result.TranspilerInfo.StatsRaw))
	})
}

func TestTranspilePreservesStatistics(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)
	tr := &NativeTranspiler{}

	tests := []struct {
		name   string
		qasm   string
		paulis []string
	}{
		{
			name:   "hadamard",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nh q[0];",
			paulis: []string{"X 0", "Z 0"},
		},
		{
			name:   "bell pair",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nh q[0];\ncx q[0], q[1];",
			paulis: []string{"Z 0 Z 1", "X 0 X 1", "Z 0"},
		},
		{
			name:   "phase family",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nh q[0];\ns q[0];\nt q[0];\nsdg q[0];\ntdg q[0];\nz q[0];",
			paulis: []string{"X 0", "Y 0"},
		},
		{
			name:   "pauli y",
			qasm:   "OPENQASM 3;\nqubit[2] q;\ny q[0];",
			paulis: []string{"Z 0", "X 0"},
		},
		{
			name:   "rotations",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nrx(0.7) q[0];\nry(1.1) q[1];\nrz(0.3) q[0];",
			paulis: []string{"Z 0", "Z 1", "Y 0", "X 1"},
		},
		{
			name:   "controlled z",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nh q[0];\nh q[1];\ncz q[0], q[1];",
			paulis: []string{"X 0 Z 1", "Z 0 X 1"},
		},
		{
			name:   "swap",
			qasm:   "OPENQASM 3;\nqubit[2] q;\nx q[0];\nswap q[0], q[1];",
			paulis: []string{"Z 0", "Z 1"},
		},
		{
			name:   "toffoli",
			qasm:   "OPENQASM 3;\nqubit[3] q;\nx q[0];\nx q[1];\nccx q[0], q[1], q[2];",
			paulis: []string{"Z 2", "Z 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := jobForTranspileTest(t, jm, tt.qasm, nil)
			assert.Nil(t, tr.Transpile(j))

			original, err := qasm.ParseQASM(tt.qasm)
			assert.Nil(t, err)
			transpiled, err := qasm.ParseQASM(j.JobData().TranspiledQASM)
			assert.Nil(t, err)
			assert.Subset(t, []string{"cx", "rz", "sx"}, transpiled.GateNames())

			for _, pauli := range tt.paulis {
				want, err := statevec.Expectation(original, pauli)
				assert.Nil(t, err)
				got, err := statevec.Expectation(transpiled, pauli)
				assert.Nil(t, err)
				assert.InDelta(t, want, got, 1e-9, "pauli %s", pauli)
			}
		})
	}
}

func TestTranspileErrors(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)
	tr := &NativeTranspiler{}

	tests := []struct {
		name         string
		qasm         string
		options      string
		wantErrorMsg string
	}{
		{
			name:         "broken qasm",
			qasm:         "hoge",
			wantErrorMsg: "line 1: missing OPENQASM header",
		},
		{
			name:         "unknown gate",
			qasm:         "OPENQASM 3;\nqubit[1] q;\nfrob q[0];",
			wantErrorMsg: `unknown gate "frob"`,
		},
		{
			name:         "wider than the calibration",
			qasm:         "OPENQASM 3;\nqubit[5] q;\nx q[4];",
			wantErrorMsg: "the circuit needs 5 qubits but the calibration has only 4",
		},
		{
			name:         "unsupported basis request",
			qasm:         "OPENQASM 3;\nqubit[1] q;\nx q[0];",
			options:      `{"basis_gates":["h","cx"]}`,
			wantErrorMsg: "unsupported basis gates:[h cx]. only the sx/rz/cx basis is available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var options json.RawMessage
			if tt.options != "" {
				options = json.RawMessage(tt.options)
			}
			j := jobForTranspileTest(t, jm, tt.qasm, options)
			assert.EqualError(t, tr.Transpile(j), tt.wantErrorMsg)
		})
	}
}
