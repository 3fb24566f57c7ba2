package poller

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/sampling"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const PROCESSED_DIR_NAME = "processed"

// dirPollClient turns playlist files into jobs. A picked-up file moves
// to the processed subdirectory so a restart does not submit it again.
type dirPollClient struct {
	playlistDir  string
	processedDir string
	count        int
	shots        int
}

type dirPollClientParams struct {
	playlistDir string
	count       int
	shots       int
}

func newDirPollClient(p *dirPollClientParams) (*dirPollClient, error) {
	processedDir := filepath.Join(p.playlistDir, PROCESSED_DIR_NAME)
	for _, dir := range []string{p.playlistDir, processedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			zap.L().Error(fmt.Sprintf("failed to create the playlist dir %s/reason:%s", dir, err))
			return nil, err
		}
	}
	return &dirPollClient{
		playlistDir:  p.playlistDir,
		processedDir: processedDir,
		count:        p.count,
		shots:        p.shots,
	}, nil
}

func (c *dirPollClient) request() ([]core.Job, error) {
	files, err := filepath.Glob(filepath.Join(c.playlistDir, "*.qasm"))
	if err != nil {
		return []core.Job{}, fmt.Errorf("failed to scan the playlist dir/reason:%s", err)
	}
	sort.Strings(files)
	if len(files) > c.count {
		files = files[:c.count]
	}

	jobs := []core.Job{}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to read the playlist file %s/reason:%s", path, err))
			continue
		}
		job, err := c.toJob(path, string(raw))
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to build a job from %s/reason:%s", path, err))
			return jobs, err
		}
		if err := os.Rename(path, filepath.Join(c.processedDir, filepath.Base(path))); err != nil {
			zap.L().Error(fmt.Sprintf("failed to move the playlist file %s/reason:%s", path, err))
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (c *dirPollClient) toJob(path, qasmText string) (core.Job, error) {
	jm := core.GetJobManager()
	jc, err := core.NewJobContext()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to create a job context. Reason:%s", err))
		return nil, err
	}

	jd := core.NewJobData()
	jd.ID = playlistJobID(path)
	jd.QASM = qasmText
	jd.Shots = c.shots
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	jd.JobType = sampling.SAMPLING_JOB
	jd.Status = core.READY

	newJob, err := jm.NewJobFromJobDataWithValidation(jd, jc)
	if err != nil {
		msg := core.SetFailureWithErrorToJobData(jd, err)
		zap.L().Error(fmt.Sprintf("Failed to validate a job. Reason:%s", msg))
		newJob = (&core.UnknownJob{}).New(jd, jc)
	} else {
		zap.L().Debug(fmt.Sprintf("Created a job. Job ID:%s created:%s, status:%s, transpiler:%v",
			jd.ID, jd.Created, jd.Status, jd.Transpiler))
	}
	return newJob, nil
}

// playlistJobID keeps the file stem in the ID so the archive stays
// traceable back to the playlist.
func playlistJobID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("playlist-%s-%s", stem, uuid.NewString()[:8])
}
