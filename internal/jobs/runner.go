package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/metrics"
)

var (
	// ErrQueueFull is returned when the pending queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned when enqueueing after Stop.
	ErrStopped = errors.New("job runner is stopped")
)

// Config holds runner settings.
type Config struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	Sync        bool // run jobs inline inside Enqueue
}

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	cfg      Config
	registry *Registry
	logger   *zap.Logger

	queue chan Job

	mu      sync.Mutex
	pending map[string]struct{}
	stopped bool

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewRunner creates a runner. Call Start before enqueueing unless cfg.Sync is set.
func NewRunner(cfg Config, registry *Registry, log *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Runner{
		cfg:      cfg,
		registry: registry,
		logger:   log.With(zap.String("component", "jobs")),
		queue:    make(chan Job, cfg.QueueSize),
		pending:  make(map[string]struct{}),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	if r.cfg.Sync {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for range r.cfg.Workers {
		g.Go(func() error {
			r.work(gctx)
			return nil
		})
	}
	r.group = g
}

// Stop stops accepting jobs, lets workers drain the queue and waits for them.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	if r.group != nil {
		_ = r.group.Wait()
	}
	if r.cancel != nil {
		r.cancel()
	}
}

// Enqueue submits a job. It reports false when a job with the same key is
// already pending. In sync mode the job runs before Enqueue returns and its
// final error is returned.
func (r *Runner) Enqueue(ctx context.Context, job Job) (bool, error) {
	if _, ok := r.registry.Get(job.Type); !ok {
		return false, fmt.Errorf("no handler registered for job type %s", job.Type)
	}

	if r.cfg.Sync {
		return true, r.execute(ctx, job)
	}

	key := job.dedupeKey()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false, ErrStopped
	}
	if key != "" {
		if _, dup := r.pending[key]; dup {
			metrics.JobsTotal.WithLabelValues(job.Type, "dropped").Inc()
			return false, nil
		}
	}
	select {
	case r.queue <- job:
	default:
		return false, ErrQueueFull
	}
	if key != "" {
		r.pending[key] = struct{}{}
	}
	return true, nil
}

// Healthy reports whether the runner still accepts jobs.
func (r *Runner) Healthy() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	if !r.cfg.Sync && len(r.queue) == cap(r.queue) {
		return ErrQueueFull
	}
	return nil
}

func (r *Runner) work(ctx context.Context) {
	ctx = logger.ContextWithLogger(ctx, r.logger)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-r.queue:
			if !ok {
				return
			}
			r.release(job)
			if err := r.execute(ctx, job); err != nil {
				r.logger.Error("job failed",
					zap.String("type", job.Type),
					zap.String("key", job.Key),
					zap.Error(err),
				)
			}
		}
	}
}

// release clears the pending mark once a job is taken, so an equal job
// submitted while this one runs is queued again.
func (r *Runner) release(job Job) {
	key := job.dedupeKey()
	if key == "" {
		return
	}
	r.mu.Lock()
	delete(r.pending, key)
	r.mu.Unlock()
}

// execute runs a job with retries and panic recovery.
func (r *Runner) execute(ctx context.Context, job Job) error {
	h, ok := r.registry.Get(job.Type)
	if !ok {
		metrics.JobsTotal.WithLabelValues(job.Type, "failed").Inc()
		return fmt.Errorf("no handler registered for job type %s", job.Type)
	}

	ctx = logger.With(ctx, zap.String("job_type", job.Type), zap.String("job_key", job.Key))
	var err error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		err = runSafe(ctx, h, job)
		metrics.JobDuration.WithLabelValues(job.Type).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.JobsTotal.WithLabelValues(job.Type, "ok").Inc()
			return nil
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}
		metrics.JobsTotal.WithLabelValues(job.Type, "retry").Inc()
		r.logger.Warn("job attempt failed, retrying",
			zap.String("type", job.Type),
			zap.String("key", job.Key),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !sleep(ctx, r.cfg.RetryDelay*time.Duration(attempt)) {
			err = errors.Join(err, ctx.Err())
			break
		}
	}
	metrics.JobsTotal.WithLabelValues(job.Type, "failed").Inc()
	return fmt.Errorf("job %s %q: %w", job.Type, job.Key, err)
}

func runSafe(ctx context.Context, h Handler, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h.Run(ctx, job)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
