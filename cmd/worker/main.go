package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/doc2voice/internal/config"
	"github.com/nikhilbhutani/doc2voice/internal/queue"
	"github.com/nikhilbhutani/doc2voice/internal/queue/workers"
	"github.com/nikhilbhutani/doc2voice/internal/retention"
	"github.com/nikhilbhutani/doc2voice/internal/storage"
)

// The worker runs retention sweeps from an asynq schedule for deployments
// that set RETENTION_IN_PROCESS=false on the API. It must share the API
// host's upload and audio directories.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	uploads, err := storage.NewLocalStorage("uploads", cfg.Storage.UploadDir)
	if err != nil {
		slog.Error("failed to open upload area", "error", err)
		os.Exit(1)
	}
	audio, err := storage.NewLocalStorage("audio", cfg.Storage.AudioDir)
	if err != nil {
		slog.Error("failed to open audio area", "error", err)
		os.Exit(1)
	}

	sweeper := retention.NewSweeper(
		[]retention.Area{uploads, audio},
		retention.WithMaxAge(cfg.Retention.MaxAge),
		retention.WithLogger(logger),
	)

	scheduler := queue.NewScheduler(cfg.Redis)
	entryID, err := scheduler.RegisterRetentionSweep(cfg.Retention.Interval)
	if err != nil {
		slog.Error("failed to register retention schedule", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		slog.Error("scheduler error", "error", err)
		os.Exit(1)
	}
	defer scheduler.Shutdown()

	registry := queue.NewHandlersRegistry()
	retentionWorker := workers.NewRetentionWorker(sweeper)
	registry.Register(queue.TypeRetentionSweep, asynq.HandlerFunc(retentionWorker.ProcessTask))

	srv := queue.NewServer(cfg.Redis)
	slog.Info("starting worker", "schedule_entry", entryID, "interval", cfg.Retention.Interval.String())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
