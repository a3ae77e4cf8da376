// Package redis is a durable IndexQueue: jobs are pushed to a Redis list and
// popped by workers that may live in another process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// Queue implements domain.IndexQueue using a Redis list.
type Queue struct {
	client     *backend.Client
	key        string
	buffer     chan domain.IndexJob
	workers    int
	popTimeout time.Duration
	jobTimeout time.Duration
	metrics    *observability.Metrics

	mu      sync.RWMutex
	closed  bool
	cancel  context.CancelFunc
	pump    sync.WaitGroup
	workerG sync.WaitGroup
}

type Option func(*Queue)

// WithKey sets the Redis list holding pending jobs.
func WithKey(key string) Option {
	return func(q *Queue) {
		q.key = key
	}
}

// WithBuffer sets how many jobs may wait locally for the push to Redis.
func WithBuffer(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.buffer = make(chan domain.IndexJob, n)
		}
	}
}

// WithWorkers sets the number of consumers started by Start.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithPopTimeout bounds each BRPOP; it is also the worst-case Close latency.
func WithPopTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.popTimeout = d
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.jobTimeout = d
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

// New creates a new Redis queue with options.
func New(address, password string, db int, opts ...Option) *Queue {
	rdb := backend.NewClient(&backend.Options{
		Addr:                  address,
		Password:              password,
		DB:                    db,
		ContextTimeoutEnabled: true,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis queue from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Queue {
	q := &Queue{
		client:     client,
		key:        "planora:index:jobs",
		buffer:     make(chan domain.IndexJob, 256),
		workers:    2,
		popTimeout: time.Second,
		jobTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Ping checks connectivity.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Start launches the pump that moves enqueued jobs to Redis and, when handler
// is non-nil, the consumers. A nil handler makes a producer-only queue.
func (q *Queue) Start(ctx context.Context, handler indexing.Handler) {
	ctx, q.cancel = context.WithCancel(ctx)

	q.pump.Add(1)
	go q.runPump(context.WithoutCancel(ctx))

	if handler == nil {
		return
	}
	for i := 0; i < q.workers; i++ {
		q.workerG.Add(1)
		go q.consume(ctx, i, handler)
	}
}

// Enqueue never blocks on Redis. It returns false when the local buffer is
// full or the queue is closed.
func (q *Queue) Enqueue(job domain.IndexJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(job, "queue closed")
		return false
	}
	select {
	case q.buffer <- job:
		return true
	default:
		q.drop(job, "buffer full")
		return false
	}
}

// Close flushes buffered jobs to Redis, then stops the consumers. Jobs still
// in the Redis list are picked up by the next consumer to start.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.buffer)
	q.mu.Unlock()

	q.pump.Wait()
	if q.cancel != nil {
		q.cancel()
	}
	q.workerG.Wait()
}

func (q *Queue) runPump(ctx context.Context) {
	defer q.pump.Done()

	log := observability.WithFields("component", "redis_queue")
	for job := range q.buffer {
		data, err := json.Marshal(job)
		if err != nil {
			log.Error("encode index job", "error", err)
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = q.client.LPush(pushCtx, q.key, data).Err()
		cancel()
		if err != nil {
			q.metrics.ObserveIndexJob("dropped")
			log.Error("push index job failed",
				"entity_type", job.EntityType,
				"entity_id", job.EntityID,
				"error", err)
		}
	}
}

func (q *Queue) consume(ctx context.Context, id int, handler indexing.Handler) {
	defer q.workerG.Done()

	log := observability.WithFields("component", "redis_queue", "worker", id)
	for ctx.Err() == nil {
		res, err := q.client.BRPop(ctx, q.popTimeout, q.key).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("pop index job failed", "error", err)
			sleep(ctx, time.Second)
			continue
		}

		// res is [key, value]
		var job domain.IndexJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Error("decode index job", "error", err)
			continue
		}

		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.jobTimeout)
		if err := handler(jobCtx, job); err != nil {
			log.Error("index job failed",
				"entity_type", job.EntityType,
				"entity_id", job.EntityID,
				"error", err)
		}
		cancel()
	}
}

func (q *Queue) drop(job domain.IndexJob, reason string) {
	q.metrics.ObserveIndexJob("dropped")
	observability.WithFields("component", "redis_queue").Warn("index job dropped",
		"reason", reason,
		"entity_type", job.EntityType,
		"entity_id", job.EntityID)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
