package server

import (
	"context"
	"time"

	"fde/internal/job"
	"fde/pkg/log"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// JobServer wraps the background sweep job in a gocron.Scheduler so
// pkg/app.App can start and stop it alongside the HTTP server.
type JobServer struct {
	scheduler *gocron.Scheduler
	logger    *log.Logger
}

func NewJobServer(sweepJob *job.SweepJob, logger *log.Logger) *JobServer {
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(1).Hour().Do(sweepJob.Run); err != nil {
		logger.Error("failed to register sweep job", zap.Error(err))
	}
	return &JobServer{scheduler: scheduler, logger: logger}
}

func (s *JobServer) Start(ctx context.Context) error {
	s.scheduler.StartAsync()
	return nil
}

func (s *JobServer) Stop(ctx context.Context) error {
	s.scheduler.Stop()
	return nil
}
