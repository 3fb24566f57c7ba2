package multiprog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BrianOtieno/quantum-computing/core"
	mpgmconf "github.com/BrianOtieno/quantum-computing/multiprog/manual/conf"
	rd "github.com/BrianOtieno/quantum-computing/multiprog/manual/resultdivider"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

const (
	MULTIPROG_MANUAL_JOB = "multi_manual"
	DEFAULT_MAX_PROGRAMS = 8
)

type ManualJob struct {
	jobData            *core.JobData
	jobContext         *core.JobContext
	combinedQubitsList []int32
	combinedQASM       string
	originalQASMs      string

	postProcessed bool
}

func (j *ManualJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	return &ManualJob{
		jobData:            jd,
		jobContext:         jc,
		combinedQubitsList: make([]int32, 0),
		combinedQASM:       "",
		originalQASMs:      "",
		postProcessed:      false,
	}
}

func (j *ManualJob) JobData() *core.JobData {
	return j.jobData
}

func (j *ManualJob) JobType() string {
	return MULTIPROG_MANUAL_JOB
}

func (j *ManualJob) JobContext() *core.JobContext {
	return j.jobContext
}

func (j *ManualJob) UpdateStatus(st core.Status) {
	j.jobData.Status = st
}

func (j *ManualJob) IsFinished() bool {
	return j.postProcessed || j.JobData().Status == core.FAILED
}

func (j *ManualJob) PreProcess() {
	jd := j.JobData()
	p := &core.JobParam{
		JobID:      jd.ID,
		QASM:       jd.QASM,
		Shots:      jd.Shots,
		Transpiler: jd.Transpiler,
		JobType:    jd.JobType,
	}
	if err := validateJobParam(p); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate job data. Reason:%s", err.Error()))
		core.SetFailureWithError(j, err)
		return
	}

	j.originalQASMs = jd.QASM
	if err := j.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a job(%s). Reason:%s",
			jd.ID, err.Error()))
		j.rollbackQASM()
		core.SetFailureWithError(j, err)
		jd.UseJobInfoUpdate = true
		return
	}
}

func (j *ManualJob) preProcessImpl() (err error) {
	err = nil
	jd := j.JobData()
	container := core.GetSystemComponents().Container
	err = container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}

	combined_qasm, combined_qubits_list, err := combineJobdata(j, mpgmconf.GetMPGMConf())
	if err != nil {
		jd.Result.Message = err.Error()
		zap.L().Error(fmt.Sprintf("failed to combine a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}
	j.combinedQubitsList = combined_qubits_list
	jd.QASM = combined_qasm // this field is processd on QPU
	j.combinedQASM = combined_qasm

	if jd.NeedTranspiling() {
		err = container.Invoke(
			func(t core.Transpiler) error {
				return t.Transpile(j)
			})
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to transpile a job(%s). Reason:%s", jd.ID, err.Error()))
			return
		}
	}

	return
}

func (j *ManualJob) Process() {
	c := core.GetSystemComponents().Container
	err := c.Invoke(
		func(q core.QPUManager) error {
			return q.Send(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to send a job(%s) to QPU. Reason:%s", j.JobData().ID, err.Error()))
		j.jobData.Status = core.FAILED
		j.rollbackQASM()
		return
	}
	zap.L().Debug(fmt.Sprintf("PostProcess goroutine for job(%s) is started", j.JobData().ID))
}

func (j *ManualJob) PostProcess() {
	jd := j.JobData()
	j.postProcessed = true

	if err := j.setQASMJson(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set qasm json in a job(%s). Reason:%s", jd.ID, err.Error()))
		core.SetFailureWithError(j, fmt.Errorf("Post-process failed"))
		j.rollbackQASM()
		return
	}

	// Split the result of the combined run back into per-program counts
	if err := rd.DivideResult(jd, j.combinedQubitsList); err != nil {
		zap.L().Error(fmt.Sprintf("failed to divide a job(%s). Reason:%s", jd.ID, err.Error()))
		core.SetFailureWithError(j, fmt.Errorf("Post-process failed"))
		return
	}
	jd.Status = core.SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
}

func (j *ManualJob) setQASMJson() (err error) {
	// set combined circuit to jobData.QASM
	err = nil

	var originalQasmArray []string
	err = json.Unmarshal([]byte(j.originalQASMs), &originalQasmArray)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal original QASM string in a job(%s). Reason:%s", j.JobData().ID, err.Error()))
		j.rollbackQASM()
		return
	}

	allQasmMap := make(map[string]string)
	allQasmMap["combined_qasm"] = j.combinedQASM
	allQasmMap["original_qasms"] = j.originalQASMs

	qasmJSON, err := json.Marshal(allQasmMap)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal QASM map in a job(%s). Reason:%s", j.JobData().ID, err.Error()))
		j.rollbackQASM()
		return
	}
	j.jobData.QASM = string(qasmJSON)
	return
}

func (j *ManualJob) rollbackQASM() {
	j.jobData.QASM = j.originalQASMs
}

func (j *ManualJob) Clone() core.Job {
	copy_combined_qubits_list := make([]int32, len(j.combinedQubitsList))
	copy(copy_combined_qubits_list, j.combinedQubitsList)
	cloned := &ManualJob{
		jobData:            j.jobData.Clone(),
		jobContext:         j.jobContext,
		combinedQubitsList: copy_combined_qubits_list,
		combinedQASM:       j.combinedQASM,
		originalQASMs:      j.originalQASMs,
	}
	return cloned
}

func validateJobParam(p *core.JobParam) (err error) {
	err = nil
	if p.Shots <= 0 {
		msg := fmt.Sprintf("shots(%d) must be greater than 0", p.Shots)
		zap.L().Info(msg + fmt.Sprintf("/jobID:%s", p.JobID))
		return fmt.Errorf(msg)
	}
	maxShots := core.GetSystemComponents().GetDeviceInfo().MaxShots
	if p.Shots > maxShots {
		msg := fmt.Sprintf("shots(%d) is over the limit(%d)",
			p.Shots, maxShots)
		zap.L().Info(msg + fmt.Sprintf("/jobID:%s", p.JobID))
		return fmt.Errorf(msg)
	}

	container := core.GetSystemComponents().Container
	err = container.Invoke(
		func(t core.Transpiler) error {
			if p.Transpiler.TranspilerLib == nil {
				return nil // use no transpiler
			}
			if t.IsAcceptableTranspilerLib(*p.Transpiler.TranspilerLib) {
				return nil
			}
			return fmt.Errorf("transpiler lib %s is not acceptable", *p.Transpiler.TranspilerLib)
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate transpiler lib/JobID:%s/reason:%s", p.JobID, err.Error()))
		return err
	}

	return err
}

func combineJobdata(inputJob core.Job, conf *mpgmconf.MPGMConf) (combinedQASM string, combinedQubitsList []int32, err error) {
	combinedQASM = ""
	combinedQubitsList = []int32{}
	err = nil
	jd := inputJob.JobData()

	var programs []string
	if err = json.Unmarshal([]byte(jd.QASM), &programs); err != nil {
		zap.L().Info(fmt.Sprintf("failed to unmarshal QASM array in a job(%s). Reason:%s", jd.ID, err.Error()))
		err = fmt.Errorf("qasm of a multiprogramming job must be a JSON array of OpenQASM programs")
		return
	}
	if len(programs) == 0 {
		err = fmt.Errorf("no program to combine")
		return
	}
	maxPrograms := conf.MaxPrograms
	if maxPrograms <= 0 {
		maxPrograms = DEFAULT_MAX_PROGRAMS
		zap.L().Warn(fmt.Sprintf("max programs is not set. Use default: %d", maxPrograms))
	}
	if len(programs) > maxPrograms {
		err = fmt.Errorf("number of programs(%d) is over the limit(%d)", len(programs), maxPrograms)
		return
	}

	deviceInfo := core.GetSystemComponents().GetDeviceInfo()
	res, err := qasm.Combine(programs, deviceInfo.MaxQubits)
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to combine programs in a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}
	combinedQASM = res.QASM
	combinedQubitsList = res.QubitsList

	totalQubits := int32(0)
	for _, q := range combinedQubitsList {
		totalQubits += q
	}
	zap.L().Debug(fmt.Sprintf("combined %d programs in a job(%s) into %d qubits",
		len(programs), jd.ID, totalQubits))
	return
}
