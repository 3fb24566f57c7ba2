package api

import (
	"encoding/json"
	"fmt"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/estimation"
	multiprog "github.com/BrianOtieno/quantum-computing/multiprog/manual"
	"github.com/BrianOtieno/quantum-computing/sampling"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Wire types of the REST surface. The result block is nested per job
// family: sampling jobs fill "sampling" (multiprogramming adds the
// per-circuit division), estimation jobs fill "estimation".

type JobRequest struct {
	JobID          string                 `json:"job_id,omitempty"`
	JobType        string                 `json:"job_type,omitempty"`
	Program        []string               `json:"program"`
	Shots          int                    `json:"shots"`
	Operator       []OperatorItem         `json:"operator,omitempty"`
	TranspilerInfo *core.TranspilerConfig `json:"transpiler_info,omitempty"`
	MitigationInfo map[string]string      `json:"mitigation_info,omitempty"`
}

type OperatorItem struct {
	Pauli string  `json:"pauli"`
	Coeff float64 `json:"coeff"`
}

type JobDef struct {
	JobID          string                 `json:"job_id"`
	JobType        string                 `json:"job_type"`
	Status         string                 `json:"status"`
	Shots          int                    `json:"shots"`
	TranspilerInfo *core.TranspilerConfig `json:"transpiler_info,omitempty"`
	MitigationInfo json.RawMessage        `json:"mitigation_info,omitempty"`
	JobInfo        JobInfo                `json:"job_info"`
	SubmittedAt    strfmt.DateTime        `json:"submitted_at,omitempty"`
	EndedAt        strfmt.DateTime        `json:"ended_at,omitempty"`
	ExecutionTime  float64                `json:"execution_time,omitempty"`
}

type JobInfo struct {
	Program         []string         `json:"program"`
	CombinedProgram string           `json:"combined_program,omitempty"`
	Result          *JobResult       `json:"result,omitempty"`
	TranspileResult *TranspileResult `json:"transpile_result,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type JobResult struct {
	Sampling   *SamplingResult   `json:"sampling,omitempty"`
	Estimation *EstimationResult `json:"estimation,omitempty"`
}

type SamplingResult struct {
	Counts        core.Counts        `json:"counts"`
	DividedCounts core.DividedResult `json:"divided_counts,omitempty"`
}

type EstimationResult struct {
	ExpValue float64 `json:"exp_value"`
	Stds     float64 `json:"stds"`
}

type TranspileResult struct {
	TranspiledProgram      string          `json:"transpiled_program"`
	Stats                  json.RawMessage `json:"stats,omitempty"`
	VirtualPhysicalMapping json.RawMessage `json:"virtual_physical_mapping,omitempty"`
}

type DeviceDef struct {
	DeviceName   string          `json:"device_name"`
	ProviderName string          `json:"provider_name,omitempty"`
	Type         string          `json:"type,omitempty"`
	Status       string          `json:"status"`
	MaxQubits    int             `json:"max_qubits"`
	MaxShots     int             `json:"max_shots"`
	BasisGates   []string        `json:"basis_gates"`
	DeviceInfo   json.RawMessage `json:"device_info,omitempty"`
	CalibratedAt string          `json:"calibrated_at,omitempty"`
}

func ConvertToDeviceDef(di *core.DeviceInfo) *DeviceDef {
	var spec json.RawMessage
	if di.DeviceInfoSpecJson != "" {
		spec = json.RawMessage(di.DeviceInfoSpecJson)
	}
	return &DeviceDef{
		DeviceName:   di.DeviceName,
		ProviderName: di.ProviderName,
		Type:         di.Type,
		Status:       di.Status.String(),
		MaxQubits:    di.MaxQubits,
		MaxShots:     di.MaxShots,
		BasisGates:   di.BasisGates,
		DeviceInfo:   spec,
		CalibratedAt: di.CalibratedAt,
	}
}

func ConvertToJobDef(j *core.JobData) *JobDef {
	var (
		jr              *JobResult
		combinedProgram string
		program         []string
	)
	program = []string{j.QASM}
	switch j.JobType {
	case sampling.SAMPLING_JOB:
		jr = &JobResult{
			Sampling: &SamplingResult{
				Counts: j.Result.Counts,
			},
		}
	case multiprog.MULTIPROG_MANUAL_JOB:
		jr = &JobResult{
			Sampling: &SamplingResult{
				Counts:        j.Result.Counts,
				DividedCounts: j.Result.DividedResult,
			},
		}
		// after the run QASM holds {"combined_qasm": ..., "original_qasms": ...},
		// before it the submitted program array
		var qasmMap map[string]string
		if err := json.Unmarshal([]byte(j.QASM), &qasmMap); err == nil {
			combinedProgram = qasmMap["combined_qasm"]
			program = programList(qasmMap["original_qasms"])
		} else {
			program = programList(j.QASM)
		}
	case estimation.ESTIMATION_JOB:
		er := &EstimationResult{}
		if j.Result.Estimation != nil {
			er.ExpValue = float64(j.Result.Estimation.Exp_value)
			er.Stds = float64(j.Result.Estimation.Stds)
		}
		jr = &JobResult{Estimation: er}
	default:
		zap.L().Error(fmt.Sprintf("unknown job type %s", j.JobType))
		jr = &JobResult{}
	}

	var tr *TranspileResult
	if j.TranspiledQASM != "" && j.Result.TranspilerInfo != nil {
		tr = &TranspileResult{
			TranspiledProgram:      j.TranspiledQASM,
			Stats:                  json.RawMessage(j.Result.TranspilerInfo.StatsRaw),
			VirtualPhysicalMapping: json.RawMessage(j.Result.TranspilerInfo.VirtualPhysicalMappingRaw),
		}
	}

	var mi json.RawMessage
	if j.MitigationInfo != "" {
		mi = json.RawMessage(j.MitigationInfo)
	}

	return &JobDef{
		JobID:          j.ID,
		JobType:        j.JobType,
		Status:         j.Status.String(),
		Shots:          j.Shots,
		TranspilerInfo: j.Transpiler,
		MitigationInfo: mi,
		JobInfo: JobInfo{
			Program:         program,
			CombinedProgram: combinedProgram,
			Result:          jr,
			TranspileResult: tr,
			Message:         j.Result.Message,
		},
		SubmittedAt:   j.Created,
		EndedAt:       j.Ended,
		ExecutionTime: j.Result.ExecutionTime.Seconds(),
	}
}

// programList renders the stored QASM of a multiprogramming job back
// into the submitted program array.
func programList(qasm string) []string {
	var programs []string
	if err := json.Unmarshal([]byte(qasm), &programs); err != nil {
		zap.L().Debug(fmt.Sprintf("failed to unmarshal program array/reason:%s", err))
		return []string{qasm}
	}
	return programs
}

func ConvertFromJobRequest(req *JobRequest) (*core.JobData, error) {
	jd := core.NewJobData()
	if req.JobID == "" {
		jd.ID = uuid.NewString()
	} else {
		jd.ID = req.JobID
	}
	if req.JobType == "" {
		jd.JobType = core.NORMAL_JOB
	} else {
		jd.JobType = req.JobType
	}
	jd.Shots = req.Shots

	switch jd.JobType {
	case sampling.SAMPLING_JOB, estimation.ESTIMATION_JOB:
		if len(req.Program) != 1 {
			return nil, fmt.Errorf("%s jobs take exactly one program, got %d", jd.JobType, len(req.Program))
		}
		jd.QASM = req.Program[0]
	case multiprog.MULTIPROG_MANUAL_JOB:
		if len(req.Program) == 0 {
			return nil, fmt.Errorf("%s jobs take at least one program", jd.JobType)
		}
		programArray, err := json.Marshal(req.Program)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal program array/reason:%s", err)
		}
		jd.QASM = string(programArray)
	default:
		return nil, fmt.Errorf("job type %s is not registered", jd.JobType)
	}

	if jd.JobType == estimation.ESTIMATION_JOB {
		if len(req.Operator) == 0 {
			return nil, fmt.Errorf("estimation jobs take at least one operator")
		}
		b, err := json.Marshal(req.Operator)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal operator items/reason:%s", err)
		}
		jd.Info = string(b)
	}

	if req.TranspilerInfo == nil {
		zap.L().Debug("use default transpiler config")
		jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	} else {
		jd.Transpiler = req.TranspilerInfo
	}

	if len(req.MitigationInfo) > 0 {
		b, err := json.Marshal(req.MitigationInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mitigation info/reason:%s", err)
		}
		jd.MitigationInfo = string(b)
	}

	jd.Status = core.SUBMITTED
	return jd, nil
}
