//go:build unit
// +build unit

package multiprog

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/stretchr/testify/assert"
)

const bellProgramForTest = "OPENQASM 3;\nqubit[2] q;\nbit[2] c;\nh q[0];\ncx q[0], q[1];\nc[0] = measure q[0];\nc[1] = measure q[1];\n"

const oneQubitProgramForTest = "OPENQASM 3;\nqubit[1] q;\nbit[1] c;\nh q[0];\nc[0] = measure q[0];\n"

const fourQubitProgramForTest = "OPENQASM 3;\nqubit[4] q;\nbit[4] c;\nh q[0];\ncx q[0], q[1];\ncx q[1], q[2];\ncx q[2], q[3];\n" +
	"c[0] = measure q[0];\nc[1] = measure q[1];\nc[2] = measure q[2];\nc[3] = measure q[3];\n"

const combinedBellsForTest = "OPENQASM 3;\nqubit[4] q;\nbit[4] c;\n" +
	"h q[0];\ncx q[0], q[1];\nc[0] = measure q[0];\nc[1] = measure q[1];\n" +
	"barrier;\n" +
	"h q[2];\ncx q[2], q[3];\nc[2] = measure q[2];\nc[3] = measure q[3];\n"

type sendErrorQPUForTest struct {
	core.UnimplementedQPU
}

func (sendErrorQPUForTest) Send(j core.Job) error {
	return errors.New("failed to send")
}

func programArrayForTest(t *testing.T, programs ...string) string {
	b, err := json.Marshal(programs)
	assert.Nil(t, err)
	return string(b)
}

func manualJobForTest(t *testing.T, qasmJSON string, shots int) *ManualJob {
	jm, err := core.NewJobManager(&ManualJob{})
	assert.Nil(t, err)
	assert.NotNil(t, jm)

	jd := core.NewJobData()
	jd.ID = "multiprog-test-" + t.Name()
	jd.QASM = qasmJSON
	jd.Shots = shots
	jd.JobType = MULTIPROG_MANUAL_JOB
	jd.Transpiler = &core.TranspilerConfig{}
	jc, err := core.NewJobContext()
	assert.Nil(t, err)

	job, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)
	return job.(*ManualJob)
}

func TestManualPreProcess(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	twoBells := programArrayForTest(t, bellProgramForTest, bellProgramForTest)
	mj := manualJobForTest(t, twoBells, 1000)
	mj.PreProcess()

	assert.False(t, mj.IsFinished())
	assert.Equal(t, combinedBellsForTest, mj.JobData().QASM)
	assert.Equal(t, combinedBellsForTest, mj.combinedQASM)
	assert.Equal(t, []int32{2, 2}, mj.combinedQubitsList)
	assert.Equal(t, twoBells, mj.originalQASMs)
}

func TestManualPreProcessFailures(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	ninePrograms := make([]string, 9)
	for i := range ninePrograms {
		ninePrograms[i] = oneQubitProgramForTest
	}

	tests := []struct {
		name        string
		qasm        string
		shots       int
		wantMessage string
	}{
		{
			name:        "not a json array",
			qasm:        bellProgramForTest,
			shots:       1000,
			wantMessage: "must be a JSON array",
		},
		{
			name:        "empty array",
			qasm:        "[]",
			shots:       1000,
			wantMessage: "no program to combine",
		},
		{
			name:        "unmeasured qubit",
			qasm:        programArrayForTest(t, "OPENQASM 3;\nqubit[1] q;\nh q[0];\n"),
			shots:       1000,
			wantMessage: "must measure every qubit",
		},
		{
			name:        "over device size",
			qasm:        programArrayForTest(t, fourQubitProgramForTest, fourQubitProgramForTest, fourQubitProgramForTest),
			shots:       1000,
			wantMessage: "combined circuit needs 12 qubits but the device has only 10",
		},
		{
			name:        "too many programs",
			qasm:        programArrayForTest(t, ninePrograms...),
			shots:       1000,
			wantMessage: "number of programs(9) is over the limit(8)",
		},
		{
			name:        "zero shots",
			qasm:        programArrayForTest(t, bellProgramForTest),
			shots:       0,
			wantMessage: "shots(0) must be greater than 0",
		},
		{
			name:        "over max shots",
			qasm:        programArrayForTest(t, bellProgramForTest),
			shots:       20000,
			wantMessage: "shots(20000) is over the limit(10000)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mj := manualJobForTest(t, tt.qasm, tt.shots)
			mj.PreProcess()

			jd := mj.JobData()
			assert.Equal(t, core.FAILED, jd.Status)
			assert.True(t, mj.IsFinished())
			assert.Contains(t, jd.Result.Message, tt.wantMessage)
			assert.Equal(t, tt.qasm, jd.QASM)
		})
	}
}

func TestManualProcessAndPostProcess(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	twoBells := programArrayForTest(t, bellProgramForTest, bellProgramForTest)
	mj := manualJobForTest(t, twoBells, 1000)
	mj.PreProcess()
	assert.False(t, mj.IsFinished())

	mj.Process()
	jd := mj.JobData()
	assert.Equal(t, core.SUCCEEDED, jd.Status)

	jd.Result.Counts = core.Counts{"0000": 300, "1111": 300, "0011": 200, "1100": 200}
	mj.PostProcess()

	assert.True(t, mj.IsFinished())
	assert.Equal(t, core.SUCCEEDED, jd.Status)
	assert.Equal(t, core.DividedResult{
		0: {"00": 500, "11": 500},
		1: {"00": 500, "11": 500},
	}, jd.Result.DividedResult)
	assert.False(t, time.Time(jd.Ended).IsZero())

	var qasmMap map[string]string
	assert.Nil(t, json.Unmarshal([]byte(jd.QASM), &qasmMap))
	assert.Equal(t, combinedBellsForTest, qasmMap["combined_qasm"])
	assert.Equal(t, twoBells, qasmMap["original_qasms"])
}

func TestManualProcessSendFailure(t *testing.T) {
	s := core.SCWithQPU(&sendErrorQPUForTest{})
	defer s.TearDown()

	twoBells := programArrayForTest(t, bellProgramForTest, bellProgramForTest)
	mj := manualJobForTest(t, twoBells, 1000)
	mj.PreProcess()
	assert.False(t, mj.IsFinished())

	mj.Process()
	assert.Equal(t, core.FAILED, mj.JobData().Status)
	assert.True(t, mj.IsFinished())
	assert.Equal(t, twoBells, mj.JobData().QASM)
}

func TestManualClone(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	twoBells := programArrayForTest(t, bellProgramForTest, bellProgramForTest)
	mj := manualJobForTest(t, twoBells, 1000)
	mj.PreProcess()

	cloned := mj.Clone().(*ManualJob)
	assert.NotSame(t, mj.JobData(), cloned.JobData())
	assert.Equal(t, mj.JobData().ID, cloned.JobData().ID)
	assert.Equal(t, []int32{2, 2}, cloned.combinedQubitsList)
	assert.Equal(t, combinedBellsForTest, cloned.combinedQASM)
	assert.Equal(t, twoBells, cloned.originalQASMs)

	mj.combinedQubitsList[0] = 99
	assert.Equal(t, []int32{2, 2}, cloned.combinedQubitsList)
}
