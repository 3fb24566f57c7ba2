package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryDB keeps all jobs in a process-local map. Deleted jobs are
// gone for good; the file-backed archive is the durable alternative.
type MemoryDB struct {
	dbMap          map[string]Job
	innerJobIDSet  map[string]struct{}
	dbChan         <-chan Job
	mu             sync.RWMutex
	innerJobIDSetM sync.Mutex
}

func (d *MemoryDB) Setup(dbc DBChan, c *Conf) error {
	d.dbMap = make(map[string]Job)
	d.innerJobIDSet = make(map[string]struct{})
	d.dbChan = dbc
	go func() {
		for {
			job := <-d.dbChan
			if job == nil { // when dbChan is closed
				return // TODO: move this loop into the RunContext actors
			}
			zap.L().Debug(fmt.Sprintf("[MemoryDB] Received %s", job.JobData().ID))
			if err := d.Update(job); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a job(%s). Reason:%s",
					job.JobData().ID, err.Error()))
			}
		}
	}()
	return nil
}

func (d *MemoryDB) Insert(j Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[j.JobData().ID] = j
	return nil
}

func (d *MemoryDB) Get(jobID string) (Job, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if val, ok := d.dbMap[jobID]; ok {
		return val, nil
	}
	err := fmt.Errorf("not found %s", jobID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return &SamplingJob{}, err
}

func (d *MemoryDB) Update(j Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[j.JobData().ID] = j
	return nil
}

func (d *MemoryDB) Delete(jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[jobID]; ok {
		delete(d.dbMap, jobID)
		zap.L().Info(fmt.Sprintf("[MemoryDB] deleted %s from DB", jobID))
		return nil
	}
	err := fmt.Errorf("failed to find %s", jobID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return err
}

func (d *MemoryDB) List() ([]*JobData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	jds := make([]*JobData, 0, len(d.dbMap))
	for _, j := range d.dbMap {
		jds = append(jds, j.JobData().Clone())
	}
	sort.Slice(jds, func(i, j int) bool {
		return time.Time(jds[i].Created).After(time.Time(jds[j].Created))
	})
	return jds, nil
}

func (d *MemoryDB) UpdateQASM(jobID string, qasm_str string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job := d.dbMap[jobID]
	job.JobData().QASM = qasm_str
	d.dbMap[jobID] = job
}

// The inner job ID set tracks jobs spawned by other jobs, so shared
// post-processing can tell them apart from user-submitted ones.

func (d *MemoryDB) AddToInnerJobIDSet(jobID string) {
	d.innerJobIDSetM.Lock()
	defer d.innerJobIDSetM.Unlock()
	d.innerJobIDSet[jobID] = struct{}{}
}

func (d *MemoryDB) RemoveFromInnerJobIDSet(jobID string) {
	d.innerJobIDSetM.Lock()
	defer d.innerJobIDSetM.Unlock()
	delete(d.innerJobIDSet, jobID)
}

func (d *MemoryDB) ExistInInnerJobIDSet(jobID string) bool {
	d.innerJobIDSetM.Lock()
	defer d.innerJobIDSetM.Unlock()
	_, ok := d.innerJobIDSet[jobID]
	return ok
}
