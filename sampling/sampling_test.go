//go:build unit
// +build unit

package sampling

import (
	"testing"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	m.Run()
}

type mitigationQPUForTest struct {
	core.UnimplementedQPU
}

func (mitigationQPUForTest) GetDeviceInfo() *core.DeviceInfo {
	return &core.DeviceInfo{
		DeviceName: "mitigationQPUForTest",
		MaxQubits:  2,
		MaxShots:   10000,
		BasisGates: []string{"sx", "rz", "cx"},
		DeviceInfoSpecJson: `
			{
			"device_id": "MitigationDevice",
			"qubits":
			[{
			"id": 0, "fidelity": 0.99, "meas_error": {"prob_meas0_prep1": 0.0, "prob_meas1_prep0": 0.2}
			},
			{
			"id": 1, "fidelity": 0.99, "meas_error": {"prob_meas0_prep1": 0.0, "prob_meas1_prep0": 0.0}
			}],
			"couplings":
			[{"control": 0, "target": 1, "fidelity": 0.97}]
			}`,
	}
}

func samplingJobForTest(t *testing.T, mitigationInfo string) *SamplingJob {
	t.Helper()
	jm, err := core.NewJobManager(&SamplingJob{})
	assert.Nil(t, err)

	jd := core.NewJobData()
	jd.ID = "sampling-test-" + t.Name()
	jd.QASM = "OPENQASM 3;\nqubit[2] q;\nbit[2] c;\nh q[0];\ncx q[0], q[1];\nc[0] = measure q[0];\nc[1] = measure q[1];\n"
	jd.Shots = 1000
	jd.JobType = SAMPLING_JOB
	jd.Status = core.READY
	jd.Transpiler = &core.TranspilerConfig{}
	jd.MitigationInfo = mitigationInfo
	jc, err := core.NewJobContext()
	assert.Nil(t, err)

	job, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)
	return job.(*SamplingJob)
}

func TestSamplingJobLifecycle(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	sj := samplingJobForTest(t, "")
	sj.PreProcess()
	assert.Equal(t, core.READY, sj.JobData().Status)
	assert.False(t, sj.IsFinished())
	assert.False(t, sj.mitigationInfo.NeedToBeMitigated)

	sj.Process()
	assert.Equal(t, core.SUCCEEDED, sj.JobData().Status)
	assert.True(t, sj.IsFinished())
}

func TestSamplingJobPreProcessConflict(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()

	first := samplingJobForTest(t, "")
	first.PreProcess()
	assert.Equal(t, core.READY, first.JobData().Status)

	second := samplingJobForTest(t, "")
	second.PreProcess()
	assert.Equal(t, core.FAILED, second.JobData().Status)
	assert.True(t, second.IsFinished())
}

func TestPostProcessMitigation(t *testing.T) {
	s := core.SCWithQPU(&mitigationQPUForTest{})
	defer s.TearDown()

	sj := samplingJobForTest(t, `{"readout": "pseudo_inverse"}`)
	sj.JobData().Result.Counts = core.Counts{"00": 800, "01": 200}
	sj.JobData().Result.TranspilerInfo.VirtualPhysicalMappingMap = core.VirtualPhysicalMappingMap{0: 0, 1: 1}

	sj.PreProcess()
	assert.True(t, sj.mitigationInfo.NeedToBeMitigated)

	// the job is not finished until the counts are mitigated
	sj.JobData().Status = core.SUCCEEDED
	assert.False(t, sj.IsFinished())

	sj.PostProcess()
	assert.True(t, sj.mitigationInfo.Mitigated)
	assert.True(t, sj.IsFinished())
	assert.Equal(t, core.SUCCEEDED, sj.JobData().Status)
	assert.Equal(t, core.Counts{"00": 1000}, sj.JobData().Result.Counts)
}

func TestSkipMitigationInPostProcess(t *testing.T) {
	s := core.SCWithQPU(&mitigationQPUForTest{})
	defer s.TearDown()

	sj := samplingJobForTest(t, `{"readout": "none"}`)
	sj.JobData().Result.Counts = core.Counts{"00": 800, "01": 200}

	sj.PreProcess()
	assert.False(t, sj.mitigationInfo.NeedToBeMitigated)

	sj.JobData().Status = core.SUCCEEDED
	sj.PostProcess()
	assert.Equal(t, core.Counts{"00": 800, "01": 200}, sj.JobData().Result.Counts)
}

func TestCloneDropsMitigationState(t *testing.T) {
	s := core.SCWithQPU(&mitigationQPUForTest{})
	defer s.TearDown()

	sj := samplingJobForTest(t, `{"readout": "pseudo_inverse"}`)
	sj.PreProcess()
	assert.NotNil(t, sj.mitigationInfo)

	cloned := sj.Clone().(*SamplingJob)
	assert.Nil(t, cloned.mitigationInfo)
	assert.Equal(t, sj.JobData().ID, cloned.JobData().ID)
	assert.NotSame(t, sj.JobData(), cloned.JobData())

	// a stored snapshot finishes on its status alone
	cloned.JobData().Status = core.SUCCEEDED
	assert.True(t, cloned.IsFinished())
}
