package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/planora/internal/domain"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "planora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskRoundTripAndScoping(t *testing.T) {
	repos := openStore(t).Repositories()
	ctx := context.Background()
	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	task := &domain.Task{
		ID:        "t1",
		UserID:    "alice",
		Title:     "Call Ali",
		Status:    "todo",
		Priority:  domain.PriorityHigh,
		DueDate:   domain.DateOnly(2024, time.May, 2, time.UTC),
		Tags:      []string{"family"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repos.Tasks.CreateTask(ctx, task))
	assert.Error(t, repos.Tasks.CreateTask(ctx, task), "duplicate id")

	got, err := repos.Tasks.GetTask(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Call Ali", got.Title)
	assert.Equal(t, "2024-05-02", got.DueDate.String())
	assert.Equal(t, []string{"family"}, got.Tags)

	_, err = repos.Tasks.GetTask(ctx, "bob", "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got.Status = "done"
	got.UserID = "bob"
	assert.ErrorIs(t, repos.Tasks.UpdateTask(ctx, got), domain.ErrNotFound)

	got.UserID = "alice"
	require.NoError(t, repos.Tasks.UpdateTask(ctx, got))
	again, err := repos.Tasks.GetTask(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "done", again.Status)
}

func TestListReturnsMostRecentOldestFirst(t *testing.T) {
	repos := openStore(t).Repositories()
	ctx := context.Background()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repos.Projects.CreateProject(ctx, &domain.Project{
			ID: title, UserID: "alice", Title: title, CreatedAt: at, UpdatedAt: at,
		}))
	}

	got, err := repos.Projects.ListProjects(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "c", got[1].Title)

	none, err := repos.Projects.ListProjects(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVectorIndexUpsertAndSearch(t *testing.T) {
	index := openStore(t).VectorIndex()
	ctx := context.Background()

	entry := domain.IndexEntry{UserID: "alice", EntityType: domain.EntityNote, EntityID: "n1", Content: "old", Vector: []float32{1, 0}}
	require.NoError(t, index.Upsert(ctx, entry))
	entry.Content = "wifi password"
	require.NoError(t, index.Upsert(ctx, entry))
	require.NoError(t, index.Upsert(ctx, domain.IndexEntry{UserID: "alice", EntityType: domain.EntityTask, EntityID: "t1", Content: "other", Vector: []float32{0, 1}}))
	require.NoError(t, index.Upsert(ctx, domain.IndexEntry{UserID: "bob", EntityType: domain.EntityNote, EntityID: "n2", Content: "bob's", Vector: []float32{1, 0}}))

	got, err := index.Search(ctx, "alice", []float32{1, 0.1}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].EntityID)
	assert.Equal(t, "wifi password", got[0].Content)
	assert.InDelta(t, 0.995, got[0].Similarity, 0.001)
}
