//go:build unit
// +build unit

package poller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPoll(t *testing.T) {
	tests := []struct {
		name                    string
		client                  pollClient
		wantCurrentPollerStates []state
	}{
		{
			name:   "normal",
			client: &oneJobPollClient{},
			wantCurrentPollerStates: []state{
				POLLING,
				POLLING,
				POLLING,
			},
		},
		{
			name:   "no jobs count",
			client: &zeroJobsPollClient{},
			wantCurrentPollerStates: []state{
				POLLING,
				SUB_IDLE,
				SUB_IDLE,
				IDLE,
			},
		},
		{
			name:   "recover to polling state",
			client: &recoveringPollClient{},
			wantCurrentPollerStates: []state{
				POLLING,
				SUB_IDLE,
				SUB_IDLE,
				IDLE,
				IDLE,
				POLLING,
			},
		},
	}

	for _, tt := range tests {
		s := core.SCWithDBContainer()
		defer s.TearDown()
		p := &Poller{
			PlaylistDir:  t.TempDir(),
			Count:        1,
			NormalPeriod: 1,
			IdlePeriod:   1,
			MaxRetry:     3,
		}
		err := p.Setup()
		assert.Nil(t, err)
		p.pollClient = tt.client
		t.Run(tt.name, func(t *testing.T) {
			periodicTask := &core.PeriodicTask{
				PeriodicTaskImpl: p,
			}
			for _, want := range tt.wantCurrentPollerStates {
				assert.Equal(t, want, p.state, "want %v, got %v", want, p.state)
				periodicTask.Task()
			}

		})
	}
}

func TestDirPollClientRequest(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	_, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)

	dir := t.TempDir()
	client, err := newDirPollClient(&dirPollClientParams{playlistDir: dir, count: 10, shots: 100})
	assert.Nil(t, err)

	qasmText := "OPENQASM 3;\nqubit[1] q;\nbit[1] c;\nh q[0];\nc[0] = measure q[0];\n"
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "first.qasm"), []byte(qasmText), 0644))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "second.qasm"), []byte(qasmText), 0644))

	jobs, err := client.request()
	assert.Nil(t, err)
	assert.Len(t, jobs, 2)
	assert.Contains(t, jobs[0].JobData().ID, "playlist-first-")
	assert.Contains(t, jobs[1].JobData().ID, "playlist-second-")
	assert.Equal(t, qasmText, jobs[0].JobData().QASM)
	assert.Equal(t, 100, jobs[0].JobData().Shots)
	assert.Equal(t, core.READY, jobs[0].JobData().Status)

	_, err = os.Stat(filepath.Join(dir, PROCESSED_DIR_NAME, "first.qasm"))
	assert.Nil(t, err)

	jobs, err = client.request()
	assert.Nil(t, err)
	assert.Len(t, jobs, 0)
}

func TestDirPollClientCount(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	_, err := core.NewJobManager(&core.SamplingJob{})
	assert.Nil(t, err)

	dir := t.TempDir()
	client, err := newDirPollClient(&dirPollClientParams{playlistDir: dir, count: 2, shots: 100})
	assert.Nil(t, err)

	qasmText := "OPENQASM 3;\nqubit[1] q;\nbit[1] c;\nh q[0];\nc[0] = measure q[0];\n"
	for _, name := range []string{"a.qasm", "b.qasm", "c.qasm"} {
		assert.Nil(t, os.WriteFile(filepath.Join(dir, name), []byte(qasmText), 0644))
	}

	jobs, err := client.request()
	assert.Nil(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = client.request()
	assert.Nil(t, err)
	assert.Len(t, jobs, 1)
}

type zeroJobsPollClient struct{}

func (m *zeroJobsPollClient) request() ([]core.Job, error) {
	return []core.Job{}, nil
}

type oneJobPollClient struct{}

func (m *oneJobPollClient) request() ([]core.Job, error) {
	return oneJobRequestImpl(core.READY)
}

type recoveringPollClient struct {
	count int
}

func (m *recoveringPollClient) request() ([]core.Job, error) {
	m.count++
	if m.count >= 5 {
		return oneJobRequestImpl(core.READY)
	} else {
		return []core.Job{}, nil
	}
}

func oneJobRequestImpl(st core.Status) ([]core.Job, error) {
	nj, err := core.NewJobManager(&core.SamplingJob{})
	if err != nil {
		return []core.Job{}, err
	}
	jc, err := core.NewJobContext()
	if err != nil {
		return []core.Job{}, err
	}

	jd := core.NewJobData()
	jd.ID = uuid.NewString()
	jd.QASM = "OPENQASM 3;\nqubit[2] q;\nbit[2] c;\nh q[1];\ncx q[1], q[0];\nc[0] = measure q[0];\nc[1] = measure q[1];\n"
	jd.Shots = 1
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	jd.JobType = core.NORMAL_JOB
	jd.Status = st
	j, err := nj.NewJobFromJobDataWithValidation(jd, jc)
	if err != nil {
		return []core.Job{}, err
	}
	return []core.Job{j}, nil
}
