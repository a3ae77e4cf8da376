package redis_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/queue/redis"
	"github.com/PabloGalante/planora/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), ContextTimeoutEnabled: true})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestProducerOnlyLeavesJobsInRedis(t *testing.T) {
	mr, client := newClient(t)

	q := redis.NewFromClient(client, redis.WithKey("test:jobs"))
	q.Start(context.Background(), nil)
	assert.True(t, q.Enqueue(domain.IndexJob{UserID: "alice", EntityType: domain.EntityNote, EntityID: "n1", Content: "wifi"}))
	assert.True(t, q.Enqueue(domain.IndexJob{UserID: "alice", EntityType: domain.EntityTask, EntityID: "t1", Content: "milk"}))
	q.Close()

	items, err := mr.List("test:jobs")
	require.NoError(t, err)
	require.Len(t, items, 2)

	var last domain.IndexJob
	require.NoError(t, json.Unmarshal([]byte(items[0]), &last))
	assert.Equal(t, "t1", last.EntityID, "LPUSH puts the newest job at the head")

	assert.False(t, q.Enqueue(domain.IndexJob{EntityID: "late"}), "closed queue drops")
}

func TestConsumerProcessesJobsInOrder(t *testing.T) {
	_, client := newClient(t)

	producer := redis.NewFromClient(client, redis.WithKey("test:jobs"))
	producer.Start(context.Background(), nil)
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, producer.Enqueue(domain.IndexJob{EntityID: id}))
	}
	producer.Close()

	var (
		mu   sync.Mutex
		seen []string
		done = make(chan struct{})
	)
	handler := func(_ context.Context, job domain.IndexJob) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.EntityID)
		if len(seen) == 3 {
			close(done)
		}
		return nil
	}

	consumer := redis.NewFromClient(client, redis.WithKey("test:jobs"), redis.WithWorkers(1))
	consumer.Start(context.Background(), handler)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs not consumed")
	}
	consumer.Close()

	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
