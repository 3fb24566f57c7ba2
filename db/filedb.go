package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// TODO to dependent container
var innerJobIDSet map[string]struct{}

// FileDB archives every job update as one JSONL line in a per-day file
// under the archive dir. The archive is append-only: Update appends a
// fresh record and Get returns the newest record of a job ID.
type FileDB struct {
	archiveDir string
	dbc        core.DBChan

	mu sync.Mutex
}

type jobRecord struct {
	ID             string             `json:"job_id"`
	Status         string             `json:"status"`
	JobType        string             `json:"job_type"`
	Shots          int                `json:"shots"`
	QASM           string             `json:"qasm"`
	TranspiledQASM string             `json:"transpiled_qasm,omitempty"`
	MitigationInfo string             `json:"mitigation_info,omitempty"`
	Counts         core.Counts        `json:"counts,omitempty"`
	DividedResult  core.DividedResult `json:"divided_result,omitempty"`
	Estimation     *core.Estimation   `json:"estimation,omitempty"`
	Message        string             `json:"message,omitempty"`
	Created        string             `json:"created"`
	Ended          string             `json:"ended,omitempty"`
	ArchivedAt     string             `json:"archived_at"`
}

func toRecord(jd *core.JobData) *jobRecord {
	r := &jobRecord{
		ID:             jd.ID,
		Status:         jd.Status.String(),
		JobType:        jd.JobType,
		Shots:          jd.Shots,
		QASM:           jd.QASM,
		TranspiledQASM: jd.TranspiledQASM,
		MitigationInfo: jd.MitigationInfo,
		Created:        jd.Created.String(),
		ArchivedAt:     strfmt.DateTime(time.Now()).String(),
	}
	if !time.Time(jd.Ended).IsZero() {
		r.Ended = jd.Ended.String()
	}
	if jd.Result != nil {
		r.Counts = jd.Result.Counts
		r.DividedResult = jd.Result.DividedResult
		r.Estimation = jd.Result.Estimation
		r.Message = jd.Result.Message
	}
	return r
}

func (r *jobRecord) toJobData() (*core.JobData, error) {
	st, err := core.StatusFromString(r.Status)
	if err != nil {
		return nil, err
	}
	jd := core.NewJobData()
	jd.ID = r.ID
	jd.Status = st
	jd.JobType = r.JobType
	jd.Shots = r.Shots
	jd.QASM = r.QASM
	jd.TranspiledQASM = r.TranspiledQASM
	jd.MitigationInfo = r.MitigationInfo
	jd.Result.Counts = r.Counts
	jd.Result.DividedResult = r.DividedResult
	jd.Result.Estimation = r.Estimation
	jd.Result.Message = r.Message
	if r.Created != "" {
		if t, perr := strfmt.ParseDateTime(r.Created); perr == nil {
			jd.Created = t
		}
	}
	if r.Ended != "" {
		if t, perr := strfmt.ParseDateTime(r.Ended); perr == nil {
			jd.Ended = t
		}
	}
	return jd, nil
}

func (f *FileDB) Setup(dbc core.DBChan, c *core.Conf) error {
	innerJobIDSet = make(map[string]struct{})
	zap.L().Debug("Setting up File DB")
	if c.ArchiveDir == "" {
		return fmt.Errorf("archive dir is not set")
	}
	f.archiveDir = c.ArchiveDir
	if err := os.MkdirAll(f.archiveDir, 0755); err != nil {
		zap.L().Error(fmt.Sprintf("failed to create the archive dir %s/reason:%s", f.archiveDir, err))
		return err
	}
	f.dbc = dbc
	go func() {
		for {
			job := <-f.dbc
			zap.L().Debug(fmt.Sprintf("[FileDB] Received %s", job.JobData().ID))
			f.Update(job)
		}
	}()

	return nil
}

func (f *FileDB) Insert(j core.Job) error {
	jd := j.JobData()
	zap.L().Debug(fmt.Sprintf("[FileDB] Inserting %s", jd.ID))
	return f.appendRecord(toRecord(jd))
}

func (f *FileDB) Get(jobID string) (core.Job, error) {
	rec, err := f.latestRecord(jobID)
	if err != nil {
		return &core.SamplingJob{}, err
	}
	jd, err := rec.toJobData()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to restore the record of %s/reason:%s", jobID, err))
		return &core.SamplingJob{}, err
	}
	jc, err := core.NewJobContext()
	if err != nil {
		return &core.SamplingJob{}, err
	}
	return (&core.SamplingJob{}).New(jd, jc), nil
}

func (f *FileDB) Update(j core.Job) error {
	jd := j.JobData()
	zap.L().Debug(fmt.Sprintf("[FileDB] Updating %s/status:%s", jd.ID, jd.Status))
	return f.appendRecord(toRecord(jd))
}

func (f *FileDB) Delete(jobID string) error {
	// the archive is append-only
	zap.L().Debug("[FileDB] Does not delete " + jobID)
	return nil
}

// List returns the newest archived record of every job ID, newest
// created first.
func (f *FileDB) List() ([]*core.JobData, error) {
	records, err := f.scan()
	if err != nil {
		return nil, err
	}
	latest := make(map[string]*jobRecord)
	order := []string{}
	for _, r := range records {
		if _, ok := latest[r.ID]; !ok {
			order = append(order, r.ID)
		}
		latest[r.ID] = r
	}
	jds := make([]*core.JobData, 0, len(order))
	for _, id := range order {
		jd, err := latest[id].toJobData()
		if err != nil {
			zap.L().Warn(fmt.Sprintf("skipping a broken record of %s/reason:%s", id, err))
			continue
		}
		jds = append(jds, jd)
	}
	sort.SliceStable(jds, func(i, k int) bool {
		return time.Time(jds[i].Created).After(time.Time(jds[k].Created))
	})
	return jds, nil
}

func (f *FileDB) AddToInnerJobIDSet(jobID string) {
	innerJobIDSet[jobID] = struct{}{}
}

func (f *FileDB) RemoveFromInnerJobIDSet(jobID string) {
	delete(innerJobIDSet, jobID)
}

func (f *FileDB) ExistInInnerJobIDSet(jobID string) bool {
	_, ok := innerJobIDSet[jobID]
	return ok
}

// ArchiveDir exposes the archive location for the export command.
func (f *FileDB) ArchiveDir() string {
	return f.archiveDir
}

func (f *FileDB) latestRecord(jobID string) (*jobRecord, error) {
	records, err := f.scan()
	if err != nil {
		return nil, err
	}
	var found *jobRecord
	for _, r := range records {
		if r.ID == jobID {
			found = r
		}
	}
	if found == nil {
		return nil, fmt.Errorf("not found %s", jobID)
	}
	return found, nil
}

// scan returns every record in the archive in append order.
func (f *FileDB) scan() ([]*jobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files, err := filepath.Glob(filepath.Join(f.archiveDir, "jobs-*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	records := []*jobRecord{}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to read the archive file %s/reason:%s", path, err))
			return nil, err
		}
		for _, line := range strings.Split(string(raw), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			r := &jobRecord{}
			if err := jsonIter.Unmarshal([]byte(line), r); err != nil {
				zap.L().Warn(fmt.Sprintf("skipping a broken line in %s/reason:%s", path, err))
				continue
			}
			records = append(records, r)
		}
	}
	return records, nil
}

func (f *FileDB) appendRecord(r *jobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	line, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal the record of %s/reason:%s", r.ID, err))
		return err
	}
	path := filepath.Join(f.archiveDir, archiveName(time.Now()))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to open the archive file %s/reason:%s", path, err))
		return err
	}
	defer file.Close()
	if _, err := file.Write(append(line, '\n')); err != nil {
		zap.L().Error(fmt.Sprintf("failed to append to the archive file %s/reason:%s", path, err))
		return err
	}
	return nil
}

func archiveName(t time.Time) string {
	return fmt.Sprintf("jobs-%s.jsonl", t.Format("20060102"))
}
