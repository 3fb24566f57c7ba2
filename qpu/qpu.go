package qpu

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"

	"go.uber.org/zap"
)

const successPropability float32 = 0.9

const DummyDeviceName = "DummyQPU"
const DummyProviderName = "DummyProvider"

type DummyQPU struct {
	deviceSetting *DeviceSetting
	randGenerator *rand.Rand
}

func (d *DummyQPU) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up Dummy-QPU")
	d.deviceSetting = NewDeviceSetting()
	seed := conf.SimulatorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d.randGenerator = rand.New(rand.NewSource(seed))
	return nil
}

func (d *DummyQPU) Send(inputJob core.Job) error {
	outputJobData := core.CloneJobData(inputJob.JobData())

	zap.L().Info("[Dummy] starting QPU execution")
	half := uint32(outputJobData.Shots / 2)
	outputJobData.Result.Counts = core.Counts{
		"00": half,
		"11": uint32(outputJobData.Shots) - half,
	}
	outputJobData.Result.Message = d.successOrFailure()
	outputJobData.Ended = strfmt.DateTime(time.Now())
	zap.L().Info("[Dummy] finished QPU execution")
	jm := core.GetJobManager()
	job, err := jm.NewJobFromJobData(outputJobData, inputJob.JobContext())
	if err != nil {
		return err
	}
	job.JobContext().DBChan <- job
	return nil
}

func (d *DummyQPU) Validate(qasmText string) error {
	return circuitValidate(qasmText, d.deviceSetting)
}

func (d *DummyQPU) GetDeviceInfo() *core.DeviceInfo {
	return &core.DeviceInfo{
		DeviceName:   DummyDeviceName,
		ProviderName: DummyProviderName,
		Type:         "DummyQPU",
		Status:       core.Available,
		MaxQubits:    statevec.MAX_SIMULATED_QUBITS,
		MaxShots:     10000,
	}
}

func (d *DummyQPU) successOrFailure() string {
	if d.randGenerator.Intn(100) < int(100*successPropability) {
		return "dummy success result"
	}
	return "dummy failure result"
}

// SimulatorQPU runs jobs on the in-process statevector backend. It
// fills the QPUManager role the way a hardware gateway would, with the
// device model synthesized from the device setting.
type SimulatorQPU struct {
	deviceSetting     *DeviceSetting
	currentDeviceInfo *core.DeviceInfo
	readout           *statevec.ReadoutError
	seed              int64
}

func (q *SimulatorQPU) Setup(conf *core.Conf) error {
	zap.L().Debug("Setting up Simulator QPU")
	var ds *DeviceSetting
	if conf.UseDummyDevice {
		zap.L().Debug("ignoring the device setting file and using defaults")
		ds = NewDeviceSetting()
	} else {
		loaded, err := LoadDeviceSetting(conf.DeviceSettingPath)
		if err != nil {
			zap.L().Error(fmt.Sprintf("Failed to load a device setting. Reason:%s", err))
			return err
		}
		ds = loaded
	}
	di, err := buildDeviceInfo(ds)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build a device info. Reason:%s", err))
		return err
	}
	readout, err := readoutForPreset(ds.NoisePreset, ds.MaxQubits)
	if err != nil {
		return err
	}
	q.deviceSetting = ds
	q.currentDeviceInfo = di
	q.readout = readout
	q.seed = conf.SimulatorSeed
	zap.L().Info(fmt.Sprintf("simulator device %s is ready/qubits:%d/max shots:%d/noise preset:%s",
		ds.DeviceName, ds.MaxQubits, ds.MaxShots, ds.NoisePreset))
	return nil
}

func (q *SimulatorQPU) Validate(qasmText string) error {
	return circuitValidate(qasmText, q.deviceSetting)
}

func (q *SimulatorQPU) Send(j core.Job) error {
	jd := j.JobData()
	zap.L().Info("Starting Simulator QPU execution of Job ID:" + jd.ID)

	prog, err := q.program(jd)
	if err != nil {
		msg := core.SetFailureWithError(j, err)
		zap.L().Info(msg)
		return err
	}
	if prog.QubitCount > q.currentDeviceInfo.MaxQubits {
		err := fmt.Errorf("Too many quibits in your circuit. We only have %d qubits.",
			q.currentDeviceInfo.MaxQubits)
		msg := core.SetFailureWithError(j, err)
		zap.L().Info(msg)
		return err
	}
	started := time.Now()
	counts, err := statevec.Run(prog, jd.Shots, statevec.Options{
		Seed:    q.seed,
		Readout: q.readoutFor(prog.QubitCount),
	})
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to run the job (%s) on %s. Reason:%s",
			jd.ID, q.deviceSetting.DeviceName, err))
		msg := core.SetFailureWithError(j, err)
		zap.L().Info(msg)
		return err
	}
	jd.Result.Counts = core.Counts(counts)
	jd.Result.ExecutionTime = time.Since(started)
	jd.Status = core.SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
	zap.L().Debug(fmt.Sprintf("Job ID:%s is processed/status: %s", jd.ID, jd.Status))
	return nil
}

func (q *SimulatorQPU) GetDeviceInfo() *core.DeviceInfo {
	return q.currentDeviceInfo
}

// program prefers the transpiled circuit and falls back to the raw one
// when the transpiled text does not parse.
func (q *SimulatorQPU) program(jd *core.JobData) (*qasm.ProgramIR, error) {
	if jd.TranspiledQASM != "" {
		prog, err := qasm.ParseQASM(jd.TranspiledQASM)
		if err == nil {
			return prog, nil
		}
		zap.L().Info(fmt.Sprintf(
			"failed to parse the transpiled qasm of the job (%s). falling back to the raw qasm. Reason:%s",
			jd.ID, err))
	}
	return qasm.ParseQASM(jd.QASM)
}

// readoutFor narrows the device-wide readout model to the first qubits
// of the circuit actually being run.
func (q *SimulatorQPU) readoutFor(qubits int) *statevec.ReadoutError {
	if q.readout == nil {
		return nil
	}
	return &statevec.ReadoutError{
		P10: q.readout.P10[:qubits],
		P01: q.readout.P01[:qubits],
	}
}
