// Package jobs runs long workflows (ingestion commits, backfills) in the
// background on contexts detached from the HTTP request that started them.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
)

// State of a job
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Status is a snapshot of one job
type Status struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	State      State      `json:"state"`
	Error      string     `json:"error,omitempty"`
	Result     any        `json:"result,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Func is the body of a job. The returned value is kept as the job result.
type Func func(ctx context.Context) (any, error)

type job struct {
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner tracks jobs in memory. Finished jobs are kept until retention
// elapses so clients can poll the outcome.
type Runner struct {
	mu        sync.Mutex
	jobs      map[string]*job
	wg        sync.WaitGroup
	base      context.Context
	stop      context.CancelFunc
	retention time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewRunner creates a Runner. m may be nil.
func NewRunner(m *metrics.Metrics, logger zerolog.Logger) *Runner {
	base, stop := context.WithCancel(context.Background())
	return &Runner{
		jobs:      make(map[string]*job),
		base:      base,
		stop:      stop,
		retention: time.Hour,
		metrics:   m,
		logger:    logger.With().Str("component", "jobs").Logger(),
	}
}

// Start launches fn in its own goroutine and returns the job id
func (r *Runner) Start(name string, fn Func) string {
	ctx, cancel := context.WithCancel(r.base)
	j := &job{
		status: Status{ID: uuid.NewString(), Name: name, State: StateRunning, StartedAt: time.Now().UTC()},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.prune()
	r.jobs[j.status.ID] = j
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.JobsRunning.Inc()
	}
	r.wg.Add(1)
	r.logger.Info().Str("job", j.status.ID).Str("name", name).Msg("Job started")

	go func() {
		defer r.wg.Done()
		defer close(j.done)
		defer cancel()

		result, err := r.safeRun(ctx, fn)
		r.finish(j, result, err)
	}()

	return j.status.ID
}

func (r *Runner) safeRun(ctx context.Context, fn Func) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return fn(ctx)
}

func (r *Runner) finish(j *job, result any, err error) {
	now := time.Now().UTC()

	r.mu.Lock()
	j.status.FinishedAt = &now
	j.status.Result = result
	switch {
	case err == nil:
		j.status.State = StateSucceeded
	case errors.Is(err, context.Canceled):
		j.status.State = StateCancelled
		j.status.Error = err.Error()
	default:
		j.status.State = StateFailed
		j.status.Error = err.Error()
	}
	status := j.status
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.JobsRunning.Dec()
	}

	evt := r.logger.Info()
	if status.State == StateFailed {
		evt = r.logger.Error().Str("error", status.Error)
	}
	evt.Str("job", status.ID).Str("name", status.Name).Str("state", string(status.State)).
		Dur("elapsed", now.Sub(status.StartedAt)).Msg("Job finished")
}

// Status returns a snapshot of the job
func (r *Runner) Status(id string) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return Status{}, fmt.Errorf("job %s: %w", id, apperrors.ErrJobNotFound)
	}
	return j.status, nil
}

// Cancel requests cancellation. Writes the job has already issued stay.
func (r *Runner) Cancel(id string) (Status, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("job %s: %w", id, apperrors.ErrJobNotFound)
	}
	j.cancel()
	return r.Status(id)
}

// Wait blocks until the job ends or ctx is done
func (r *Runner) Wait(ctx context.Context, id string) (Status, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("job %s: %w", id, apperrors.ErrJobNotFound)
	}
	select {
	case <-j.done:
		return r.Status(id)
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Shutdown cancels every running job and waits for them to return
func (r *Runner) Shutdown(ctx context.Context) error {
	r.stop()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// prune drops finished jobs older than the retention window. Caller holds mu.
func (r *Runner) prune() {
	cutoff := time.Now().Add(-r.retention)
	for id, j := range r.jobs {
		if j.status.FinishedAt != nil && j.status.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
		}
	}
}
