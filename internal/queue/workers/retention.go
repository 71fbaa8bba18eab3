package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/doc2voice/internal/queue"
	"github.com/nikhilbhutani/doc2voice/internal/retention"
)

type Sweeper interface {
	Sweep(ctx context.Context) retention.Report
}

type RetentionWorker struct {
	sweeper Sweeper
}

func NewRetentionWorker(s Sweeper) *RetentionWorker {
	return &RetentionWorker{sweeper: s}
}

// ProcessTask runs one sweep cycle. Per-file failures are part of the
// report, not task errors, so the task itself is never retried for them.
func (w *RetentionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.RetentionSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	report := w.sweeper.Sweep(ctx)
	slog.Info("retention task done",
		"reason", payload.Reason,
		"scanned", report.Scanned,
		"deleted", report.Deleted,
		"failed", report.Failed,
	)
	return nil
}
