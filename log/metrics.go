package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/core"
	"go.uber.org/zap"
)

const MetricsLogTaskName = "metrics_log"
const DEFAULT_METRICS_DIR = "./shares/metrics"

const (
	queueLengthKeyInMetrics   = "queue_length"
	jobsSucceededKeyInMetrics = "jobs_succeeded"
	jobsFailedKeyInMetrics    = "jobs_failed"
	shotsExecutedKeyInMetrics = "shots_executed"
)

// jobLister is the optional listing extension of a DBManager.
type jobLister interface {
	List() ([]*core.JobData, error)
}

type MetricsLogTaskImpl struct {
	FileDir string `toml:"file_dir"`

	disabled bool
	dl       *dailyLogger
	sc       *core.SystemComponents

	core.DefaultTaskImpl
}

func setupMetricsLogTask(fileDir string) (*dailyLogger, error) {
	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to make %s: %w", fileDir, err)
	}
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	newDailyLogger := newDailyLogger(fileDir)
	slog.SetDefault(slog.New(slog.NewJSONHandler(newDailyLogger, nil)))
	return newDailyLogger, nil
}

func (m *MetricsLogTaskImpl) Setup() error {
	if core.CurrentInfo != nil && core.CurrentInfo.Conf.DisableMetricsLog {
		zap.L().Info("metrics log task is disabled")
		m.disabled = true
		return nil
	}
	if m.FileDir == "" {
		m.FileDir = DEFAULT_METRICS_DIR
	}
	dl, err := setupMetricsLogTask(m.FileDir)
	if err != nil {
		zap.L().Error("failed to set up metrics log task", zap.Error(err))
		return err
	}
	sc := core.GetSystemComponents()
	m.dl = dl
	m.sc = sc
	return nil
}

func (m *MetricsLogTaskImpl) GetEmptyParams() interface{} {
	return m
}

func (m *MetricsLogTaskImpl) SetParams(p interface{}) error {
	if p == nil {
		msg := "no params for metrics log task"
		zap.L().Debug(msg)
		return nil
	}
	mp, ok := p.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for metrics log task/params: %s", p)
		zap.L().Error(msg.Error())
		return msg
	}
	if fileDir, ok := mp["file_dir"].(string); ok {
		m.FileDir = fileDir
	}
	return nil
}

func (m *MetricsLogTaskImpl) Task() {
	if m.disabled {
		return
	}
	succeeded, failed, shots := m.jobTotals()
	slog.Info(
		"Metrics",
		slog.Int(
			queueLengthKeyInMetrics,
			m.sc.GetCurrentQueueSize()),
		slog.Int(jobsSucceededKeyInMetrics, succeeded),
		slog.Int(jobsFailedKeyInMetrics, failed),
		slog.Int(shotsExecutedKeyInMetrics, shots),
	)
}

// jobTotals sums finished jobs and their shots from the job store.
// A store without listing support reports zeros.
func (m *MetricsLogTaskImpl) jobTotals() (succeeded, failed, shots int) {
	err := m.sc.Container.Invoke(
		func(d core.DBManager) error {
			lister, ok := d.(jobLister)
			if !ok {
				return nil
			}
			jds, listErr := lister.List()
			if listErr != nil {
				return listErr
			}
			for _, jd := range jds {
				switch jd.Status {
				case core.SUCCEEDED:
					succeeded++
					shots += jd.Shots
				case core.FAILED:
					failed++
				}
			}
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to sum job metrics/reason:%s", err))
	}
	return
}

func (m *MetricsLogTaskImpl) Cleanup() {
	if m.dl != nil {
		m.dl.Close()
	}
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
	}
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := fmt.Sprintf("metrics-%s.log", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dl.fileDir, fileName)
	currentFilePath := filepath.Join(dl.fileDir, dl.currentFileName)

	if dl.file == nil || currentFilePath != filePath {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		return dl.file.Close()
	}
	return nil
}
