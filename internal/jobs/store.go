package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/doc2voice/internal/cache"
	"github.com/nikhilbhutani/doc2voice/internal/models"
)

var ErrNotFound = errors.New("job not found")

// Store keeps conversion records for as long as their files are retained.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(c *cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, job *models.Job) error {
	if err := s.cache.Set(ctx, key(job.ID), job, s.ttl); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.cache.Get(ctx, key(id), &job)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Ping reports whether the backing redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func key(id uuid.UUID) string {
	return "job:" + id.String()
}
