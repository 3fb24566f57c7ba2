//go:build unit
// +build unit

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/core/mock_core"
	"github.com/BrianOtieno/quantum-computing/estimation"
	multiprog "github.com/BrianOtieno/quantum-computing/multiprog/manual"
	"github.com/BrianOtieno/quantum-computing/sampling"
	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

type recordingSchedulerForTest struct {
	mu      sync.Mutex
	handled []core.Job
}

func (r *recordingSchedulerForTest) Setup(*core.Conf) error { return nil }
func (r *recordingSchedulerForTest) Start() error           { return nil }
func (r *recordingSchedulerForTest) HandleJob(j core.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, j)
}
func (r *recordingSchedulerForTest) GetCurrentQueueSize() int    { return 0 }
func (r *recordingSchedulerForTest) IsOverRefillThreshold() bool { return false }

func (r *recordingSchedulerForTest) handledJobs() []core.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handled
}

func serverForTest(t *testing.T) *Server {
	t.Helper()
	_, err := core.NewJobManager(
		&sampling.SamplingJob{},
		&estimation.EstimationJob{},
		&multiprog.ManualJob{})
	assert.NoError(t, err)
	s := &Server{}
	assert.NoError(t, s.Setup())
	return s
}

func submitBodyForTest(t *testing.T, req *JobRequest) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(req)
	assert.NoError(t, err)
	return bytes.NewReader(b)
}

func insertJobForTest(t *testing.T, sc *core.SystemComponents, jd *core.JobData) {
	t.Helper()
	jc, err := core.NewJobContext()
	assert.NoError(t, err)
	job, err := core.GetJobManager().NewJobFromJobData(jd, jc)
	assert.NoError(t, err)
	err = sc.Container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(job)
		})
	assert.NoError(t, err)
}

func TestSubmitJob(t *testing.T) {
	rec := &recordingSchedulerForTest{}
	sc := core.SCWithScheduler(rec)
	defer sc.TearDown()
	s := serverForTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", submitBodyForTest(t, &JobRequest{
		JobID:   "submit-test",
		Program: []string{measuredBellForTest},
		Shots:   1000,
	}))
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "submit-test", resp["job_id"])
	assert.Equal(t, "ready", resp["status"])

	handled := rec.handledJobs()
	assert.Len(t, handled, 1)
	assert.Equal(t, "submit-test", handled[0].JobData().ID)
	assert.Equal(t, core.READY, handled[0].JobData().Status)

	// the job is already visible before the scheduler touched it
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/jobs/submit-test", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var def JobDef
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&def))
	assert.Equal(t, "submit-test", def.JobID)
	assert.Equal(t, "ready", def.Status)
	assert.Equal(t, 1000, def.Shots)
}

func TestSubmitJobFailures(t *testing.T) {
	sc := core.SCWithUnimplementedContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantMessage string
	}{
		{
			name:        "broken json body",
			body:        `{"program":`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
		{
			name:        "no program",
			body:        `{"shots":1000}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "sampling jobs take exactly one program, got 0",
		},
		{
			name:        "zero shots",
			body:        fmt.Sprintf(`{"program":[%q],"shots":0}`, measuredBellForTest),
			wantCode:    http.StatusBadRequest,
			wantMessage: "shots(0) must be greater than 0",
		},
		{
			name:        "over max shots",
			body:        fmt.Sprintf(`{"program":[%q],"shots":20000}`, measuredBellForTest),
			wantCode:    http.StatusBadRequest,
			wantMessage: fmt.Sprintf("shots(20000) is over the limit(%d)", core.MockMaxShots),
		},
		{
			name:        "unknown job type",
			body:        fmt.Sprintf(`{"program":[%q],"shots":1000,"job_type":"teleportation"}`, measuredBellForTest),
			wantCode:    http.StatusBadRequest,
			wantMessage: "job type teleportation is not registered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/jobs", bytes.NewReader([]byte(tt.body)))
			s.router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			var resp map[string]string
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Contains(t, resp["message"], tt.wantMessage)
		})
	}
}

func TestSubmitJobWithInvalidProgram(t *testing.T) {
	sc := core.SCWithValidateErrorContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", submitBodyForTest(t, &JobRequest{
		Program: []string{"dummy_string"},
		Shots:   1000,
	}))
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["message"], "invalid program")
}

func TestGetJob(t *testing.T) {
	sc := core.SCWithDBContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	jd := core.NewJobData()
	jd.ID = "get-test"
	jd.JobType = core.NORMAL_JOB
	jd.Shots = 1000
	jd.QASM = measuredBellForTest
	jd.Status = core.SUCCEEDED
	jd.Result.Counts = core.Counts{"00": 490, "11": 510}
	insertJobForTest(t, sc, jd)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/jobs/get-test", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var def JobDef
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&def))
	assert.Equal(t, "get-test", def.JobID)
	assert.Equal(t, "succeeded", def.Status)
	assert.Equal(t, core.Counts{"00": 490, "11": 510}, def.JobInfo.Result.Sampling.Counts)
}

func TestGetJobNotFound(t *testing.T) {
	sc := core.SCWithDBContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/jobs/no-such-job", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "job no-such-job is not found", resp["message"])
}

func TestListJobs(t *testing.T) {
	sc := core.SCWithDBContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	running := core.NewJobData()
	running.ID = "list-running"
	running.JobType = core.NORMAL_JOB
	running.Shots = 1000
	running.QASM = measuredBellForTest
	running.Status = core.RUNNING
	insertJobForTest(t, sc, running)

	succeeded := core.NewJobData()
	succeeded.ID = "list-succeeded"
	succeeded.JobType = core.NORMAL_JOB
	succeeded.Shots = 1000
	succeeded.QASM = measuredBellForTest
	succeeded.Status = core.SUCCEEDED
	insertJobForTest(t, sc, succeeded)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/jobs", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var defs []*JobDef
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&defs))
	assert.Len(t, defs, 2)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/jobs?status=succeeded", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	defs = nil
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&defs))
	assert.Len(t, defs, 1)
	assert.Equal(t, "list-succeeded", defs[0].JobID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/jobs?status=bogus", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelJob(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockDB := mock_core.NewMockDBManager(mockCtrl)
	mockDB.EXPECT().Setup(gomock.Any(), gomock.Any()).Return(nil)
	sc := core.SCWithDB(mockDB)
	defer sc.TearDown()
	s := serverForTest(t)

	jd := core.NewJobData()
	jd.ID = "cancel-test"
	jd.JobType = core.NORMAL_JOB
	jd.Shots = 1000
	jd.Status = core.RUNNING
	jc, err := core.NewJobContext()
	assert.NoError(t, err)
	job, err := core.GetJobManager().NewJobFromJobData(jd, jc)
	assert.NoError(t, err)

	var cancelled core.Job
	mockDB.EXPECT().Get("cancel-test").Return(job, nil)
	mockDB.EXPECT().Update(gomock.Any()).DoAndReturn(
		func(j core.Job) error {
			cancelled = j
			return nil
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/jobs/cancel-test", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "cancelled", resp["status"])
	assert.Equal(t, core.CANCELLED, cancelled.JobData().Status)
	assert.Equal(t, "cancelled by user request", cancelled.JobData().Result.Message)
	assert.False(t, time.Time(cancelled.JobData().Ended).IsZero())
}

func TestCancelFinishedJob(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockDB := mock_core.NewMockDBManager(mockCtrl)
	mockDB.EXPECT().Setup(gomock.Any(), gomock.Any()).Return(nil)
	sc := core.SCWithDB(mockDB)
	defer sc.TearDown()
	s := serverForTest(t)

	jd := core.NewJobData()
	jd.ID = "cancel-finished"
	jd.JobType = core.NORMAL_JOB
	jd.Shots = 1000
	jd.Status = core.SUCCEEDED
	jc, err := core.NewJobContext()
	assert.NoError(t, err)
	job, err := core.GetJobManager().NewJobFromJobData(jd, jc)
	assert.NoError(t, err)

	mockDB.EXPECT().Get("cancel-finished").Return(job, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/jobs/cancel-finished", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["message"], "already finished")
}

func TestCancelJobNotFound(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mockDB := mock_core.NewMockDBManager(mockCtrl)
	mockDB.EXPECT().Setup(gomock.Any(), gomock.Any()).Return(nil)
	sc := core.SCWithDB(mockDB)
	defer sc.TearDown()
	s := serverForTest(t)

	mockDB.EXPECT().Get("missing").Return(nil, errors.New("not found missing"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/jobs/missing", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDevice(t *testing.T) {
	sc := core.SCWithUnimplementedContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/device", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var def DeviceDef
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&def))
	assert.Equal(t, core.MockMaxQubits, def.MaxQubits)
	assert.Equal(t, core.MockMaxShots, def.MaxShots)
	assert.Equal(t, "Available", def.Status)
	assert.NotEmpty(t, def.DeviceInfo)
}

func TestHealth(t *testing.T) {
	sc := core.SCWithUnimplementedContainer()
	defer sc.TearDown()
	s := serverForTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status   string   `json:"status"`
		JobTypes []string `json:"job_types"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Contains(t, resp.JobTypes, "sampling")
	assert.Contains(t, resp.JobTypes, "estimation")
	assert.Contains(t, resp.JobTypes, "multi_manual")
}

func TestServerParams(t *testing.T) {
	tests := []struct {
		name     string
		params   interface{}
		wantErr  bool
		wantAddr string
	}{
		{
			name:     "nil params keep the default endpoint",
			params:   nil,
			wantAddr: "localhost:8088",
		},
		{
			name:     "toml params set host and port",
			params:   map[string]interface{}{"host": "0.0.0.0", "port": "9000"},
			wantAddr: "0.0.0.0:9000",
		},
		{
			name:    "broken params type",
			params:  "host=0.0.0.0",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{}
			err := s.SetParams(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, s.Setup())
			assert.Equal(t, tt.wantAddr, s.server.Addr)
		})
	}
}

func TestServerSetupWithInvalidPort(t *testing.T) {
	s := &Server{Host: "localhost", Port: "not-a-port"}
	err := s.Setup()
	assert.EqualError(t, err, "not-a-port is an invalid port number")
}
