package indexing

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// LocalQueue is an in-process IndexQueue: a bounded buffer drained by a fixed
// worker pool. Jobs are lost on process exit.
type LocalQueue struct {
	handler    Handler
	jobs       chan domain.IndexJob
	workers    int
	jobTimeout time.Duration
	metrics    *observability.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type QueueOption func(*LocalQueue)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) QueueOption {
	return func(q *LocalQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithBuffer sets how many jobs may wait before Enqueue starts dropping.
func WithBuffer(n int) QueueOption {
	return func(q *LocalQueue) {
		if n >= 0 {
			q.jobs = make(chan domain.IndexJob, n)
		}
	}
}

// WithJobTimeout bounds each handler call.
func WithJobTimeout(d time.Duration) QueueOption {
	return func(q *LocalQueue) {
		q.jobTimeout = d
	}
}

func WithMetrics(m *observability.Metrics) QueueOption {
	return func(q *LocalQueue) {
		q.metrics = m
	}
}

func NewLocalQueue(handler Handler, opts ...QueueOption) *LocalQueue {
	q := &LocalQueue{
		handler:    handler,
		jobs:       make(chan domain.IndexJob, 256),
		workers:    2,
		jobTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the workers. ctx is the parent of every job context and
// should outlive the requests that enqueue jobs.
func (q *LocalQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, i)
	}
}

// Enqueue hands the job to the workers without blocking. It returns false when
// the buffer is full or the queue is closed; the job is then dropped.
func (q *LocalQueue) Enqueue(job domain.IndexJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(job, "queue closed")
		return false
	}

	select {
	case q.jobs <- job:
		return true
	default:
		q.drop(job, "buffer full")
		return false
	}
}

// Close stops accepting jobs, lets the workers drain the buffer and waits for them.
func (q *LocalQueue) Close() {
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

func (q *LocalQueue) work(ctx context.Context, id int) {
	defer q.wg.Done()

	log := observability.WithFields("component", "index_queue", "worker", id)
	for job := range q.jobs {
		jobCtx, cancel := context.WithTimeout(ctx, q.jobTimeout)
		if err := q.handler(jobCtx, job); err != nil {
			log.Error("index job failed",
				"entity_type", job.EntityType,
				"entity_id", job.EntityID,
				"error", err)
		}
		cancel()
	}
}

func (q *LocalQueue) drop(job domain.IndexJob, reason string) {
	q.metrics.ObserveIndexJob("dropped")
	observability.WithFields("component", "index_queue").Warn("index job dropped",
		"reason", reason,
		"entity_type", job.EntityType,
		"entity_id", job.EntityID)
}
