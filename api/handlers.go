package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

// jobLister is the optional listing extension of a DBManager. Both the
// in-memory store and the archive implement it.
type jobLister interface {
	List() ([]*core.JobData, error)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"job_types": core.GetJobManager().AcceptableJobTypes(),
	})
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	var deviceInfo *core.DeviceInfo
	err := s.sysCom.Container.Invoke(
		func(q core.QPUManager) error {
			deviceInfo = q.GetDeviceInfo()
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to get the device info. Reason:%s", err))
		s.writeError(w, http.StatusInternalServerError, "failed to get the device info")
		return
	}
	s.writeJSON(w, http.StatusOK, ConvertToDeviceDef(deviceInfo))
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		zap.L().Info(fmt.Sprintf("received a broken job request. Reason:%s", err))
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jd, err := ConvertFromJobRequest(&req)
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to convert a job request. Reason:%s", err))
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Validate every program before the job carries it to the scheduler
	err = s.sysCom.Container.Invoke(
		func(q core.QPUManager) error {
			for _, p := range req.Program {
				if err := q.Validate(p); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("invalid program in a job request(%s). Reason:%s", jd.ID, err))
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid program: %s", err))
		return
	}

	jc, err := core.NewJobContext()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to make a job context. Reason:%s", err))
		s.writeError(w, http.StatusInternalServerError, "engine is not ready")
		return
	}
	jd.Status = core.READY
	job, err := core.GetJobManager().NewJobFromJobDataWithValidation(jd, jc)
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to accept a job(%s). Reason:%s", jd.ID, err))
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Store before handing off, so the job is visible right after accept
	err = s.sysCom.Container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(job.Clone())
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to store a job(%s). Reason:%s", jd.ID, err))
		s.writeError(w, http.StatusInternalServerError, "failed to store the job")
		return
	}
	err = s.sysCom.Container.Invoke(
		func(sc core.Scheduler) error {
			sc.HandleJob(job)
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to hand a job(%s) to the scheduler. Reason:%s", jd.ID, err))
		s.writeError(w, http.StatusInternalServerError, "failed to schedule the job")
		return
	}
	zap.L().Info(fmt.Sprintf("accepted a job(%s)/jobType:%s/shots:%d", jd.ID, jd.JobType, jd.Shots))
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"job_id": jd.ID,
		"status": jd.Status.String(),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	var job core.Job
	err := s.sysCom.Container.Invoke(
		func(d core.DBManager) error {
			var getErr error
			job, getErr = d.Get(jobID)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a job(%s)", jobID))
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("job %s is not found", jobID))
		return
	}
	s.writeJSON(w, http.StatusOK, ConvertToJobDef(job.JobData().Clone()))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	var wantStatus core.Status
	if statusFilter != "" {
		var err error
		wantStatus, err = core.StatusFromString(statusFilter)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var jds []*core.JobData
	err := s.sysCom.Container.Invoke(
		func(d core.DBManager) error {
			lister, ok := d.(jobLister)
			if !ok {
				return fmt.Errorf("the job store does not support listing")
			}
			var listErr error
			jds, listErr = lister.List()
			return listErr
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to list jobs. Reason:%s", err))
		s.writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	defs := make([]*JobDef, 0, len(jds))
	for _, jd := range jds {
		if statusFilter != "" && jd.Status != wantStatus {
			continue
		}
		defs = append(defs, ConvertToJobDef(jd))
	}
	s.writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	var job core.Job
	err := s.sysCom.Container.Invoke(
		func(d core.DBManager) error {
			var getErr error
			job, getErr = d.Get(jobID)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a job(%s)", jobID))
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("job %s is not found", jobID))
		return
	}
	jd := job.JobData()
	if jd.Status == core.SUCCEEDED || jd.Status == core.FAILED || jd.Status == core.CANCELLED {
		s.writeError(w, http.StatusConflict,
			fmt.Sprintf("job %s is already finished with status %s", jobID, jd.Status))
		return
	}
	// Cancellation only rewrites the store. A copy already handed to
	// the simulator runs to completion on its own.
	jd.Status = core.CANCELLED
	jd.Ended = strfmt.DateTime(time.Now())
	jd.Result.Message = "cancelled by user request"
	err = s.sysCom.Container.Invoke(
		func(d core.DBManager) error {
			return d.Update(job)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to cancel a job(%s). Reason:%s", jobID, err))
		s.writeError(w, http.StatusInternalServerError, "failed to cancel the job")
		return
	}
	zap.L().Info(fmt.Sprintf("cancelled a job(%s)", jobID))
	s.writeJSON(w, http.StatusOK, map[string]string{
		"job_id": jobID,
		"status": jd.Status.String(),
	})
}
