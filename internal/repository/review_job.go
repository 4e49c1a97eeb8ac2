package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/entity"
)

var (
	ErrJobNotFound = fmt.Errorf("review job: %w", common.ErrNotFound)
	ErrJobExists   = fmt.Errorf("review job: %w", common.ErrAlreadyExists)
)

// ReviewJobRepository owns every ReviewJob. Readers only ever see clones.
type ReviewJobRepository interface {
	Put(ctx context.Context, job *entity.ReviewJob) error
	Get(ctx context.Context, id string) (*entity.ReviewJob, error)
	// Update applies fn atomically. If fn returns an error the stored job is untouched.
	Update(ctx context.Context, id string, fn func(*entity.ReviewJob) error) (*entity.ReviewJob, error)
	// DeleteFinishedBefore evicts terminal jobs last updated before cutoff.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) int
	Len() int
}

type memoryJobRepo struct {
	mu   sync.RWMutex
	jobs map[string]*entity.ReviewJob
	log  *slog.Logger
}

// NewMemoryJobRepository returns a process-local, mutex-guarded job store.
func NewMemoryJobRepository(log *slog.Logger) ReviewJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &memoryJobRepo{jobs: make(map[string]*entity.ReviewJob), log: log}
}

func (r *memoryJobRepo) Put(_ context.Context, job *entity.ReviewJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("put review job: %w", common.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		r.log.Warn("review_job put rejected, id exists", "job_id", job.ID)
		return ErrJobExists
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *memoryJobRepo) Get(_ context.Context, id string) (*entity.ReviewJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (r *memoryJobRepo) Update(_ context.Context, id string, fn func(*entity.ReviewJob) error) (*entity.ReviewJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	r.jobs[id] = next
	return next.Clone(), nil
}

func (r *memoryJobRepo) DeleteFinishedBefore(_ context.Context, cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, job := range r.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	if n > 0 {
		r.log.Info("review_job evicted", "count", n, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return n
}

func (r *memoryJobRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
