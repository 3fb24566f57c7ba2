package estimation

import (
	"encoding/json"
	"fmt"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/mitig"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"go.uber.org/zap"
)

const (
	ESTIMATION_JOB         = "estimation"
	ESTIMATION_SETTING_KEY = "estimation"
)

type EstimationSetting struct {
	Grouping bool `toml:"grouping"`
}

func NewEstimationSetting() EstimationSetting {
	return EstimationSetting{
		Grouping: true,
	}
}

type EstimationJob struct {
	setting           EstimationSetting
	jobData           *core.JobData
	jobContext        *core.JobContext
	preprocessedQASMs []string
	origOperators     string
	groupedOperators  string
	groups            []*operatorGroup
	countsList        []core.Counts

	useTranspiler bool
	finished      bool
}

func (j *EstimationJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	setting := NewEstimationSetting()
	s, ok := core.GetComponentSetting(ESTIMATION_SETTING_KEY)
	if !ok {
		zap.L().Debug("estimation setting is not found. using the default")
	} else {
		// TODO: fix this long adhoc
		mapped, ok := s.(map[string]interface{})
		if !ok {
			zap.L().Debug("estimation setting is not set")
		} else {
			if g, ok := mapped["grouping"].(bool); ok {
				setting.Grouping = g
			}
		}
	}
	return &EstimationJob{
		setting:           setting,
		jobData:           jd,
		jobContext:        jc,
		preprocessedQASMs: make([]string, 0),
		origOperators:     "",
		groupedOperators:  "",
		countsList:        make([]core.Counts, 0),
		useTranspiler:     false,
		finished:          false,
	}
}

func (j *EstimationJob) PreProcess() {
	if err := j.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a job(%s). Reason:%s",
			j.JobData().ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}
	return
}

func (j *EstimationJob) preProcessImpl() (err error) {
	err = nil
	jd := j.JobData()
	container := core.GetSystemComponents().Container
	// TODO refactor this part
	// make jobID pool in syscomponent
	err = container.Invoke(
		func(d core.DBManager) error {
			if d.ExistInInnerJobIDSet(jd.ID) {
				return core.ErrorJobIDConflict
			}
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to check the existence of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}
	err = container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}
	zap.L().Debug(fmt.Sprintf("QASM:%s", jd.QASM))
	prog, err := qasm.ParseQASM(jd.QASM)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse the circuit of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}

	zap.L().Debug(fmt.Sprintf("JobInfo:%s", jd.Info))
	sj, err := serializeOperators(jd.Info)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to serialize operators from :%s/reason:%s",
			jd.Info, err.Error()))
		return err
	}
	zap.L().Debug(fmt.Sprintf("serialized operators:%s", sj))
	j.origOperators = sj

	ops, err := parseOperators(jd.Info, prog.QubitCount)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse operators of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return err
	}
	j.groups = groupOperators(ops, j.setting.Grouping)
	j.groupedOperators = serializeGroups(j.groups, prog.QubitCount)
	zap.L().Debug(fmt.Sprintf("grouped operators:%s", j.groupedOperators))

	if jd.NeedTranspiling() {
		j.useTranspiler = true
		err = container.Invoke(
			func(t core.Transpiler) error {
				return t.Transpile(j)
			})
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to transpile a job(%s). Reason:%s", jd.ID, err.Error()))
			return
		}
	}

	for _, g := range j.groups {
		circuit, cerr := measurementCircuit(prog, g)
		if cerr != nil {
			zap.L().Error(fmt.Sprintf("failed to build a measurement circuit of a job(%s). Reason:%s",
				jd.ID, cerr.Error()))
			return cerr
		}
		if j.useTranspiler {
			circuit, cerr = j.transpileGroupCircuit(circuit)
			if cerr != nil {
				zap.L().Error(fmt.Sprintf("failed to transpile a measurement circuit of a job(%s). Reason:%s",
					jd.ID, cerr.Error()))
				return cerr
			}
		}
		j.preprocessedQASMs = append(j.preprocessedQASMs, circuit)
	}

	_ = container.Invoke(
		func(d core.DBManager) error {
			d.AddToInnerJobIDSet(jd.ID)
			return nil
		})
	return
}

// transpileGroupCircuit runs one measurement circuit through the
// transpiler on a scratch job so the main job data stays untouched.
func (j *EstimationJob) transpileGroupCircuit(circuit string) (string, error) {
	jd := core.NewJobData()
	jd.ID = j.JobData().ID
	jd.QASM = circuit
	jd.Shots = j.JobData().Shots
	jd.Transpiler = j.JobData().Transpiler
	jd.JobType = core.NORMAL_JOB
	scratch := (&core.SamplingJob{}).New(jd, j.jobContext)
	err := core.GetSystemComponents().Container.Invoke(
		func(t core.Transpiler) error {
			return t.Transpile(scratch)
		})
	if err != nil {
		return "", err
	}
	if jd.TranspiledQASM == "" {
		// a pass-through transpiler leaves the circuit as is
		return circuit, nil
	}
	return jd.TranspiledQASM, nil
}

func (j *EstimationJob) Process() {
	c := core.GetSystemComponents().Container
	jd := j.jobData
	origQASM := jd.QASM
	origTranspiledQASM := jd.TranspiledQASM
	defer func() {
		jd.QASM = origQASM
		jd.TranspiledQASM = origTranspiledQASM
	}()
	for i := range j.preprocessedQASMs {
		if j.useTranspiler {
			jd.TranspiledQASM = j.preprocessedQASMs[i]
		} else {
			jd.QASM = j.preprocessedQASMs[i]
		}
		err := c.Invoke(
			func(q core.QPUManager) error {
				return q.Send(j)
			})
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to send a job(%s) to QPU. Reason:%s", jd.ID, err.Error()))
			jd.Status = core.FAILED
			j.finished = true
			return
		}
		if jd.Status == core.FAILED {
			zap.L().Error(fmt.Sprintf("result status of QPU is FAILED for job(%s)", jd.ID))
			j.finished = true
			return
		}
		j.countsList = append(j.countsList, jd.Result.Counts)
	}
	zap.L().Debug(fmt.Sprintf("finished to process a job(%s)/collected %d counts", jd.ID, len(j.countsList)))
}

func (j *EstimationJob) PostProcess() {
	j.finished = true
	jd := j.JobData()
	countsList := j.countsList
	m := mitig.NewMitigationInfoFromJobData(jd)
	if m.NeedToBeMitigated {
		mitigated := make([]core.Counts, 0, len(j.countsList))
		for i := range j.countsList {
			jd.Result.Counts = j.countsList[i]
			mitig.PseudoInverseMitigation(jd)
			if jd.Status == core.FAILED {
				zap.L().Error(fmt.Sprintf("failed to mitigate the counts of a job(%s)", jd.ID))
				return
			}
			mitigated = append(mitigated, jd.Result.Counts)
		}
		countsList = mitigated
	}
	expValue, stds, err := estimate(j.groups, countsList)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to post-process a job(%s). Reason:%s",
			jd.ID, err.Error()))
		core.SetFailureWithError(j, err)
		return
	}
	jd.Result.Estimation = &core.Estimation{
		Exp_value: expValue,
		Stds:      stds,
	}
	zap.L().Debug(fmt.Sprintf("exp_value:%f, stds:%f", expValue, stds))
	jd.Status = core.SUCCEEDED
	return
}

func (j *EstimationJob) IsFinished() bool {
	return j.finished
}

func (j *EstimationJob) JobData() *core.JobData {
	return j.jobData
}

func (j *EstimationJob) JobType() string {
	return ESTIMATION_JOB
}

func (j *EstimationJob) JobContext() *core.JobContext {
	return j.jobContext
}

func (j *EstimationJob) UpdateJobData(jd *core.JobData) {
	j.jobData = jd
}

func (j *EstimationJob) Clone() core.Job {
	cloned := &EstimationJob{
		setting:    j.setting,
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

func serializeOperators(jinfo string) (string, error) {
	operators := []operator{}
	err := json.Unmarshal([]byte(jinfo), &operators)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal operators from :%s/reason:%s",
			jinfo, err.Error()))
		return "", err
	}
	serialized := "["
	for i, op := range operators {
		serialized += fmt.Sprintf("[\"%s\", %g]", op.Pauli, op.CoEff)
		if i != len(operators)-1 {
			serialized += ", "
		}
	}
	serialized += "]"
	return serialized, nil
}
