package queue

import (
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/doc2voice/internal/config"
)

// QueueMaintenance carries housekeeping tasks such as retention sweeps.
const QueueMaintenance = "maintenance"

// NewServer builds the asynq worker server. Sweeps touch the local disk of
// the host running the worker, so one worker per host is enough.
func NewServer(cfg config.RedisConfig) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			QueueMaintenance: 1,
		},
	})
}

type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{
		mux: asynq.NewServeMux(),
	}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}
