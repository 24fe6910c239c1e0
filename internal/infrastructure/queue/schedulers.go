package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	uploadModel "menucms-backend/internal/domains/upload/model"
	"menucms-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterMaintenanceJobs wires the periodic jobs.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerStagingSweepJob()
}

// registerStagingSweepJob schedules the staging-directory sweep: every 30
// minutes, staged files older than an hour get removed. Normal request flow
// cleans up after itself; this catches files leaked by crashed processes.
func (s *Scheduler) registerStagingSweepJob() error {
	payload, err := json.Marshal(uploadModel.SweepStagingPayload{MaxAgeMinutes: 60})
	if err != nil {
		return fmt.Errorf("failed to marshal sweep payload: %w", err)
	}

	task := asynq.NewTask(uploadModel.TaskSweepStaging, payload)
	entryID, err := s.scheduler.Register("*/30 * * * *", task)
	if err != nil {
		return fmt.Errorf("failed to register staging sweep: %w", err)
	}

	logger.Info("Registered staging sweep job", map[string]interface{}{
		"entry_id": entryID,
		"schedule": "*/30 * * * *",
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
