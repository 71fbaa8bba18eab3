package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/doc2voice/pkg/sanitize"
)

// DefaultMaxChars is the largest prefix of a document sent for synthesis.
const DefaultMaxChars = 1000

// ArtifactWriter persists audio under its final name.
type ArtifactWriter interface {
	Put(ctx context.Context, name string, data io.Reader) error
}

// Synthesizer turns text into a stored audio artifact with a single
// provider call. It never retries.
type Synthesizer struct {
	provider Provider
	store    ArtifactWriter
	maxChars int
	logger   *slog.Logger
}

func NewSynthesizer(provider Provider, store ArtifactWriter, maxChars int, logger *slog.Logger) *Synthesizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		provider: provider,
		store:    store,
		maxChars: maxChars,
		logger:   logger,
	}
}

// Synthesize converts text and writes the audio to filename, returning the
// stored name. Nothing is written when the provider fails.
func (s *Synthesizer) Synthesize(ctx context.Context, text, filename string) (string, error) {
	input := sanitize.Truncate(text, s.maxChars)

	start := time.Now()
	result, err := s.provider.Synthesize(ctx, SynthesisRequest{Input: input})
	if err != nil {
		s.logger.Error("synthesis failed",
			"provider", s.provider.Name(),
			"chars", len([]rune(input)),
			"error", err,
		)
		return "", err
	}

	if err := s.store.Put(ctx, filename, bytes.NewReader(result.Audio)); err != nil {
		return "", fmt.Errorf("store audio: %w", err)
	}

	s.logger.Info("audio saved",
		"provider", s.provider.Name(),
		"file", filename,
		"bytes", len(result.Audio),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return filename, nil
}
