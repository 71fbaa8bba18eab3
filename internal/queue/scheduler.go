package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/doc2voice/internal/config"
)

// RedisOpt builds the asynq connection settings from the shared redis config.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(cfg config.RedisConfig) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(RedisOpt(cfg), nil),
	}
}

// RegisterRetentionSweep enqueues a sweep every interval. Unique keeps a
// slow sweep from piling up behind itself.
func (s *Scheduler) RegisterRetentionSweep(interval time.Duration) (string, error) {
	data, err := json.Marshal(RetentionSweepPayload{Reason: "scheduled"})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(TypeRetentionSweep, data)
	id, err := s.scheduler.Register(
		fmt.Sprintf("@every %s", interval),
		task,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(0),
		asynq.Timeout(interval),
		asynq.Unique(interval),
	)
	if err != nil {
		return "", fmt.Errorf("register %s: %w", TypeRetentionSweep, err)
	}
	return id, nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
