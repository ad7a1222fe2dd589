package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/lslt/portal-services/internal/observability"
)

const (
	defaultQueueSize = 64
	jobTimeout       = 5 * time.Minute
)

// JobFunc is the work a queued email job performs.
type JobFunc func(ctx context.Context) error

type queuedJob struct {
	id   string
	kind string
	run  JobFunc
}

// Queue executes email jobs on a single background worker so API handlers
// can return before delivery completes. Each job gets a generated ID.
type Queue struct {
	jobs    chan queuedJob
	logger  observability.Logger
	metrics observability.MetricsRecorder

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue with the given buffer size and starts its
// worker.
func NewQueue(size int, logger observability.Logger, metrics observability.MetricsRecorder) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}

	if logger == nil {
		logger = observability.NoopLogger()
	}

	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	q := &Queue{
		jobs:    make(chan queuedJob, size),
		logger:  logger,
		metrics: metrics,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue schedules a job and returns its ID without waiting for
// execution. A full or closed queue is rejected immediately.
func (q *Queue) Enqueue(kind string, run JobFunc) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", errors.WithStack(ErrQueueClosed)
	}

	job := queuedJob{id: uuid.NewString(), kind: kind, run: run}

	select {
	case q.jobs <- job:
	default:
		return "", errors.WithStack(ErrQueueFull)
	}

	q.logger.Debug("email job queued",
		observability.Field{Key: "job_id", Value: job.id},
		observability.Field{Key: "kind", Value: kind},
	)

	return job.id, nil
}

// Close stops accepting jobs, drains the ones already queued, and waits
// for the worker to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for job := range q.jobs {
		q.execute(job)
	}
}

func (q *Queue) execute(job queuedJob) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.run(ctx)
	duration := time.Since(start)

	q.metrics.RecordJob("mailer", job.kind, err == nil, duration)

	if err != nil {
		q.logger.Error("email job failed",
			observability.Field{Key: "job_id", Value: job.id},
			observability.Field{Key: "kind", Value: job.kind},
			observability.Field{Key: "error", Value: err.Error()},
		)

		return
	}

	q.logger.Info("email job finished",
		observability.Field{Key: "job_id", Value: job.id},
		observability.Field{Key: "kind", Value: job.kind},
		observability.Field{Key: "duration", Value: duration.String()},
	)
}
