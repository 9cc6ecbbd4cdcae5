package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	return s.registerCleanupExpiredTokensJob()
}

// Verification token cleanup. Daily at 2 AM, off-peak.
func (s *Scheduler) registerCleanupExpiredTokensJob() error {
	payload, err := json.Marshal(shared.CleanupExpiredTokensPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, payload)

	_, err = s.scheduler.Register(
		"0 2 * * *",
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupExpiredTokens job", err)
		return err
	}

	logger.Info("Registered CleanupExpiredTokens: daily at 2 AM", map[string]interface{}{})
	return nil
}

// Start launches the scheduler without blocking.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
