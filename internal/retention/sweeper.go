package retention

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/nikhilbhutani/doc2voice/internal/storage"
)

const (
	DefaultMaxAge   = time.Hour
	DefaultInterval = time.Hour
)

// Area is a flat storage area the sweeper can scan and prune.
type Area interface {
	Name() string
	List(ctx context.Context) ([]storage.Entry, error)
	Stat(ctx context.Context, name string) (storage.Entry, error)
	Delete(ctx context.Context, name string) error
}

type Report struct {
	Scanned int
	Deleted int
	Failed  int
}

// Sweeper deletes files older than MaxAge from every area on a fixed
// interval. It is started and stopped by the owning process.
type Sweeper struct {
	areas    []Area
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Sweeper)

func WithMaxAge(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = l }
}

func NewSweeper(areas []Area, opts ...Option) *Sweeper {
	s := &Sweeper{
		areas:    areas,
		maxAge:   DefaultMaxAge,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs a sweep every interval until Stop is called or ctx ends. The
// first sweep happens one interval after Start.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.Info("retention sweeper started", "interval", s.interval.String(), "max_age", s.maxAge.String())
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("retention sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cycle over all areas. Failures are logged per entry and
// never stop the rest of the cycle.
func (s *Sweeper) Sweep(ctx context.Context) Report {
	var report Report
	for _, area := range s.areas {
		if ctx.Err() != nil {
			break
		}
		r := s.sweepArea(ctx, area)
		report.Scanned += r.Scanned
		report.Deleted += r.Deleted
		report.Failed += r.Failed
	}
	if report.Deleted > 0 || report.Failed > 0 {
		s.logger.Info("retention sweep finished",
			"scanned", report.Scanned,
			"deleted", report.Deleted,
			"failed", report.Failed,
		)
	}
	return report
}

func (s *Sweeper) sweepArea(ctx context.Context, area Area) Report {
	var report Report

	entries, err := area.List(ctx)
	if err != nil {
		s.logger.Error("list storage area", "area", area.Name(), "error", err)
		report.Failed++
		return report
	}

	for _, entry := range entries {
		report.Scanned++
		if !s.expired(entry) {
			continue
		}

		// The listing may be stale by now; decide on the current mtime.
		current, err := area.Stat(ctx, entry.Name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Debug("expired file already removed", "area", area.Name(), "file", entry.Name)
			continue
		case err != nil:
			report.Failed++
			s.logger.Warn("stat expired file", "area", area.Name(), "file", entry.Name, "error", err)
			continue
		case !s.expired(current):
			continue
		}

		err = area.Delete(ctx, entry.Name)
		switch {
		case err == nil:
			report.Deleted++
			s.logger.Info("deleted expired file", "area", area.Name(), "file", entry.Name)
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Debug("expired file already removed", "area", area.Name(), "file", entry.Name)
		default:
			report.Failed++
			s.logger.Warn("delete expired file", "area", area.Name(), "file", entry.Name, "error", err)
		}
	}
	return report
}

func (s *Sweeper) expired(entry storage.Entry) bool {
	return s.now().Sub(entry.ModTime) > s.maxAge
}
