// Package algo hosts the educational algorithm drivers. Each driver
// builds circuits with the qasm Builder and runs them through a
// Session, a self-contained engine wired for synchronous execution.
package algo

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/estimation"
	"github.com/BrianOtieno/quantum-computing/qpu"
	"github.com/BrianOtieno/quantum-computing/sampling"
	"github.com/BrianOtieno/quantum-computing/scheduler"
	"github.com/BrianOtieno/quantum-computing/transpiler"
)

const DEFAULT_SHOTS = 1024

// PauliTerm is one weighted factor of an operator sum. The pauli is
// written as letter-index pairs, e.g. "Z 0 Z 1".
type PauliTerm struct {
	Pauli string  `json:"pauli"`
	Coeff float64 `json:"coeff"`
}

type Options struct {
	// Shots is the default shot count for runs that do not pick their own.
	Shots int
	// Seed fixes the simulator backend. Zero means time-based.
	Seed int64
}

// Session owns a private engine on the local simulator and runs jobs
// through the full scheduler lifecycle, blocking until each finishes.
// Sessions are not safe for concurrent use.
type Session struct {
	opts Options
	sc   *core.SystemComponents
	nsc  *scheduler.NormalScheduler
	jm   *core.JobManager
}

func NewSession(opts Options) (*Session, error) {
	if opts.Shots <= 0 {
		opts.Shots = DEFAULT_SHOTS
	}
	nsc := &scheduler.NormalScheduler{}
	c := dig.New()
	if err := c.Provide(func() core.QPUManager { return &qpu.SimulatorQPU{} }); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.DBManager { return &core.MemoryDB{} }); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.Transpiler { return &transpiler.NativeTranspiler{} }); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.Scheduler { return nsc }); err != nil {
		return nil, err
	}
	s := core.NewSystemComponents(c)
	conf := &core.Conf{
		UseDummyDevice:       true,
		SimulatorSeed:        opts.Seed,
		QueueMaxSize:         100,
		QueueRefillThreshold: 10,
	}
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up a session. Reason:%s", err.Error()))
		return nil, err
	}
	if err := s.StartContainer(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to start a session. Reason:%s", err.Error()))
		return nil, err
	}
	jm, err := core.NewJobManager(&sampling.SamplingJob{}, &estimation.EstimationJob{})
	if err != nil {
		return nil, err
	}
	return &Session{
		opts: opts,
		sc:   s,
		nsc:  nsc,
		jm:   jm,
	}, nil
}

func (s *Session) Shots() int {
	return s.opts.Shots
}

func (s *Session) Close() {
	s.sc.TearDown()
}

// Sample runs a measured circuit for the given shots and returns the
// finished job data. Non-positive shots fall back to the session default.
func (s *Session) Sample(qasmText string, shots int) (*core.JobData, error) {
	jd := s.newJobData(sampling.SAMPLING_JOB, qasmText, shots)
	return s.run(jd)
}

// Estimate measures the expectation value of an operator sum on a
// measurement-free circuit and returns the estimate with its standard
// deviation.
func (s *Session) Estimate(qasmText string, terms []PauliTerm, shots int) (float64, float64, error) {
	info, err := json.Marshal(terms)
	if err != nil {
		return 0, 0, err
	}
	jd := s.newJobData(estimation.ESTIMATION_JOB, qasmText, shots)
	jd.Info = string(info)
	finished, err := s.run(jd)
	if err != nil {
		return 0, 0, err
	}
	est := finished.Result.Estimation
	if est == nil {
		return 0, 0, fmt.Errorf("the job(%s) finished without an estimation", finished.ID)
	}
	return float64(est.Exp_value), float64(est.Stds), nil
}

func (s *Session) newJobData(jobType, qasmText string, shots int) *core.JobData {
	if shots <= 0 {
		shots = s.opts.Shots
	}
	jd := core.NewJobData()
	jd.ID = uuid.NewString()
	jd.QASM = qasmText
	jd.Shots = shots
	jd.JobType = jobType
	jd.Status = core.READY
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	return jd
}

func (s *Session) run(jd *core.JobData) (*core.JobData, error) {
	jc, err := core.NewJobContext()
	if err != nil {
		return nil, err
	}
	job, err := s.jm.NewJobFromJobDataWithValidation(jd, jc)
	if err != nil {
		return nil, err
	}
	var wg sync.WaitGroup
	wg.Add(1)
	s.nsc.HandleJobForTest(job, &wg)
	wg.Wait()
	finished := job.JobData()
	if finished.Status != core.SUCCEEDED {
		return nil, fmt.Errorf("the job(%s) finished in %s. Reason:%s",
			finished.ID, finished.Status.String(), finished.Result.Message)
	}
	return finished, nil
}
