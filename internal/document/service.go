package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/doc2voice/internal/models"
	"github.com/nikhilbhutani/doc2voice/pkg/sanitize"
	"github.com/nikhilbhutani/doc2voice/pkg/textextract"
)

const (
	DefaultMaxSynthesisChars = 1000
	AudioURLPrefix           = "/audio/"
	audioExt                 = ".mp3"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text, filename string) (string, error)
}

type UploadStore interface {
	Put(ctx context.Context, name string, data io.Reader) error
	Path(name string) string
}

type JobRecorder interface {
	Save(ctx context.Context, job *models.Job) error
}

type Service struct {
	uploads   UploadStore
	extractor TextExtractor
	synth     Synthesizer
	jobs      JobRecorder
	maxChars  int
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Service)

// WithJobRecorder records each successful conversion. Recording is best
// effort and never fails the request.
func WithJobRecorder(r JobRecorder) Option {
	return func(s *Service) { s.jobs = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMaxSynthesisChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

func NewService(uploads UploadStore, synth Synthesizer, opts ...Option) *Service {
	s := &Service{
		uploads:   uploads,
		extractor: NewTextExtractor(),
		synth:     synth,
		maxChars:  DefaultMaxSynthesisChars,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type UploadRequest struct {
	OriginalName string
	MediaType    string
	FileSize     int64
	Data         io.Reader
}

// Convert runs store, extract, sanitize and synthesize in order. The first
// failing stage ends the pipeline; earlier artifacts are left for the
// retention sweeper.
func (s *Service) Convert(ctx context.Context, req UploadRequest) (*models.Conversion, error) {
	upload, err := s.store(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload received",
		"file", upload.OriginalName,
		"media_type", upload.MediaType,
		"size_bytes", upload.SizeBytes,
	)

	extracted, err := s.extractor.ExtractFile(ctx, upload.Path, upload.MediaType)
	if err != nil {
		s.logger.Warn("extraction failed", "file", upload.StoredName, "error", err)
		return nil, extractionError(err)
	}

	text := sanitize.Text(extracted.Content)
	if text == "" {
		return nil, &ValidationError{Message: MsgNoReadableText}
	}

	short := sanitize.Truncate(text, s.maxChars)
	audioName := fmt.Sprintf("%d%s", s.now().UnixNano(), audioExt)
	s.logger.Debug("text for synthesis", "chars", len([]rune(short)), "text", short)

	stored, err := s.synth.Synthesize(ctx, short, audioName)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	conv := &models.Conversion{
		JobID: uuid.New(),
		Text:  text,
		Audio: models.AudioArtifact{
			Name:      stored,
			URL:       AudioURLPrefix + stored,
			CreatedAt: s.now(),
		},
	}
	s.record(ctx, conv, upload, len([]rune(text)), len([]rune(short)))
	return conv, nil
}

func (s *Service) store(ctx context.Context, req UploadRequest) (*models.UploadedFile, error) {
	arrived := s.now()
	original := baseName(req.OriginalName)
	name := fmt.Sprintf("%d-%s", arrived.UnixMilli(), original)

	if err := s.uploads.Put(ctx, name, req.Data); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &models.UploadedFile{
		Path:         s.uploads.Path(name),
		StoredName:   name,
		OriginalName: req.OriginalName,
		MediaType:    resolveMediaType(req.MediaType, req.OriginalName),
		SizeBytes:    req.FileSize,
		CreatedAt:    arrived,
	}, nil
}

func (s *Service) record(ctx context.Context, conv *models.Conversion, upload *models.UploadedFile, textChars, synthChars int) {
	if s.jobs == nil {
		return
	}
	job := &models.Job{
		ID:             conv.JobID,
		OriginalName:   upload.OriginalName,
		MediaType:      upload.MediaType,
		SizeBytes:      upload.SizeBytes,
		UploadName:     upload.StoredName,
		AudioName:      conv.Audio.Name,
		AudioURL:       conv.Audio.URL,
		TextChars:      textChars,
		SynthesisChars: synthChars,
		Status:         models.JobStatusCompleted,
		CreatedAt:      conv.Audio.CreatedAt,
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Warn("failed to record job", "job_id", job.ID, "error", err)
	}
}

// resolveMediaType falls back to the file extension only when the client
// sent no Content-Type for the part. A declared type is taken as is.
func resolveMediaType(declared, name string) string {
	mt := strings.TrimSpace(declared)
	if mt == "" {
		if guessed := textextract.MediaTypeForName(name); guessed != "" {
			return guessed
		}
	}
	return mt
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || base == "" {
		return "upload"
	}
	return base
}
