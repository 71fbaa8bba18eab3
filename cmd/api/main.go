package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/doc2voice/internal/api"
	"github.com/nikhilbhutani/doc2voice/internal/cache"
	"github.com/nikhilbhutani/doc2voice/internal/config"
	"github.com/nikhilbhutani/doc2voice/internal/document"
	"github.com/nikhilbhutani/doc2voice/internal/jobs"
	"github.com/nikhilbhutani/doc2voice/internal/retention"
	"github.com/nikhilbhutani/doc2voice/internal/storage"
	"github.com/nikhilbhutani/doc2voice/internal/tts"
	"github.com/nikhilbhutani/doc2voice/pkg/textextract"
)

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
		slog.Error("failed to prepare upload area", "error", err)
		os.Exit(1)
	}
	audio, err := storage.NewLocalStorage("audio", cfg.Storage.AudioDir)
	if err != nil {
		slog.Error("failed to prepare audio area", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis connection (optional, only job records depend on it)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var jobStore *jobs.Store
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without job records", "error", err)
	} else {
		jobStore = jobs.NewStore(cache.NewCache(rdb, "doc2voice:"), cfg.Retention.MaxAge)
	}

	provider := newProvider(cfg.TTS)
	slog.Info("synthesis backend configured",
		"backend", provider.Name(),
		"api_key_loaded", cfg.SynthesisKey() != "",
	)
	if cfg.SynthesisKey() == "" {
		slog.Warn("synthesis API key is not set; every upload will fail at the synthesis stage")
	}

	synth := tts.NewSynthesizer(provider, audio, cfg.TTS.MaxChars, logger)
	opts := []document.Option{
		document.WithLogger(logger),
		document.WithMaxSynthesisChars(cfg.TTS.MaxChars),
	}
	if jobStore != nil {
		opts = append(opts, document.WithJobRecorder(jobStore))
	}
	docSvc := document.NewService(uploads, synth, opts...)
	slog.Info("document service configured",
		"supported_types", textextract.SupportedTypes(),
		"max_synthesis_chars", cfg.TTS.MaxChars,
		"job_records", jobStore != nil,
	)

	router := api.NewRouter(cfg, api.Deps{
		Documents: docSvc,
		Uploads:   uploads,
		Audio:     audio,
		Jobs:      jobStore,
	})

	sweeper := retention.NewSweeper(
		[]retention.Area{uploads, audio},
		retention.WithMaxAge(cfg.Retention.MaxAge),
		retention.WithInterval(cfg.Retention.Interval),
		retention.WithLogger(logger),
	)
	if cfg.Retention.InProcess {
		sweeper.Start(ctx)
	} else {
		slog.Info("in-process retention disabled, expecting the worker to sweep")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.TTS.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	sweeper.Stop()
	slog.Info("server stopped")
}

func newProvider(cfg config.TTSConfig) tts.Provider {
	if cfg.Backend == config.BackendOpenAI {
		return tts.NewOpenAI(tts.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Voice:   cfg.OpenAIVoice,
			Timeout: cfg.Timeout,
		})
	}
	return tts.NewElevenLabs(tts.ElevenLabsConfig{
		APIKey:  cfg.ElevenLabsKey,
		BaseURL: cfg.ElevenLabsBaseURL,
		VoiceID: cfg.VoiceID,
		ModelID: cfg.ModelID,
		Timeout: cfg.Timeout,
	})
}
