package indexing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/planora/internal/adapters/llm"
	"github.com/PabloGalante/planora/internal/adapters/storage/memory"
	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestIndexerUpsertsAndSkipsBlank(t *testing.T) {
	gen := llm.NewMockLLM()
	index := memory.NewVectorIndex()
	ix := indexing.NewIndexer(gen, index, nil)
	ctx := context.Background()

	require.NoError(t, ix.Index(ctx, domain.IndexJob{UserID: "alice", EntityType: domain.EntityNote, EntityID: "n1", Content: "   "}))
	assert.Equal(t, 0, index.Len())
	assert.Empty(t, gen.Embedded())

	job := domain.IndexJob{UserID: "alice", EntityType: domain.EntityNote, EntityID: "n1", Content: "wifi password hunter2"}
	require.NoError(t, ix.Index(ctx, job))
	require.NoError(t, ix.Index(ctx, job))
	assert.Equal(t, 1, index.Len(), "reindexing the same entity replaces it")

	q, err := gen.Embed(ctx, "wifi password")
	require.NoError(t, err)
	matches, err := index.Search(ctx, "alice", q, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "n1", matches[0].EntityID)
}

func TestIndexerReportsEmbeddingFailure(t *testing.T) {
	gen := llm.NewMockLLM().FailEmbeddings(errors.New("quota"))
	index := memory.NewVectorIndex()

	err := indexing.NewIndexer(gen, index, nil).Index(context.Background(), domain.IndexJob{
		UserID: "alice", EntityType: domain.EntityTask, EntityID: "t1", Content: "x",
	})
	assert.ErrorContains(t, err, "quota")
	assert.Equal(t, 0, index.Len())
}

func TestJobTextFromEntities(t *testing.T) {
	job := indexing.TaskJob(&domain.Task{ID: "t1", UserID: "alice", Title: "Call Ali", Description: "about the trip", Tags: []string{"family"}})
	assert.Equal(t, domain.IndexJob{UserID: "alice", EntityType: domain.EntityTask, EntityID: "t1", Content: "Call Ali about the trip family"}, job)

	note := indexing.NoteJob(&domain.Note{ID: "n1", UserID: "alice", Title: "Wifi", Content: "hunter2"})
	assert.Equal(t, "Wifi hunter2", note.Content)
}

type collector struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	want int
}

func (c *collector) handle(_ context.Context, job domain.IndexJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, job.EntityID)
	if len(c.seen) == c.want {
		close(c.done)
	}
	return nil
}

func TestLocalQueueProcessesJobs(t *testing.T) {
	c := &collector{done: make(chan struct{}), want: 3}
	q := indexing.NewLocalQueue(c.handle, indexing.WithWorkers(2))
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, q.Enqueue(domain.IndexJob{EntityID: id}))
	}

	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs not processed")
	}
	q.Close()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, c.seen)
	assert.False(t, q.Enqueue(domain.IndexJob{EntityID: "late"}), "closed queue drops")
}

func TestLocalQueueDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	block := func(ctx context.Context, _ domain.IndexJob) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}

	q := indexing.NewLocalQueue(block, indexing.WithWorkers(1), indexing.WithBuffer(1))
	q.Start(context.Background())

	require.True(t, q.Enqueue(domain.IndexJob{EntityID: "running"}))
	<-started
	require.True(t, q.Enqueue(domain.IndexJob{EntityID: "buffered"}))
	assert.False(t, q.Enqueue(domain.IndexJob{EntityID: "dropped"}))

	close(release)
	q.Close()
}

func TestLocalQueueJobTimeout(t *testing.T) {
	errs := make(chan error, 1)
	q := indexing.NewLocalQueue(func(ctx context.Context, _ domain.IndexJob) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	}, indexing.WithJobTimeout(10*time.Millisecond))
	q.Start(context.Background())

	require.True(t, q.Enqueue(domain.IndexJob{EntityID: "slow"}))
	assert.ErrorIs(t, <-errs, context.DeadlineExceeded)
	q.Close()
}
