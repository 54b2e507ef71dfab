// Package job holds the background tasks registered against the process's
// gocron scheduler, mirroring the teacher's internal/job package name and
// its one-job-per-file layout.
package job

import (
	"time"

	"go.uber.org/zap"

	"fde/internal/upload"
	"fde/pkg/log"
)

// MaxTaskAge is the default staleness window spec §4.3 names for the
// hourly sweep: any upload task untouched for longer than this is removed.
const MaxTaskAge = 24 * time.Hour

// SweepJob removes abandoned chunk upload tasks from the chunk root.
type SweepJob struct {
	coordinator *upload.Coordinator
	logger      *log.Logger
	maxAge      time.Duration
}

func NewSweepJob(coordinator *upload.Coordinator, logger *log.Logger) *SweepJob {
	return &SweepJob{coordinator: coordinator, logger: logger, maxAge: MaxTaskAge}
}

// Run is the entrypoint gocron invokes on its hourly schedule.
func (j *SweepJob) Run() {
	removed, err := j.coordinator.Sweep(j.maxAge)
	if err != nil {
		j.logger.Error("chunk sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("swept stale upload tasks", zap.Int("removed", removed))
	}
}
