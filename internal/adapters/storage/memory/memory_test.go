package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/storage/memory"
	"github.com/PabloGalante/planora/internal/domain"
)

func TestTaskStoreScopesByUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTaskStore()

	require.NoError(t, store.CreateTask(ctx, &domain.Task{ID: "t1", UserID: "alice", Title: "buy milk", Tags: []string{"home"}}))
	require.Error(t, store.CreateTask(ctx, &domain.Task{ID: "t1", UserID: "alice"}), "duplicate id")

	got, err := store.GetTask(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Title)

	_, err = store.GetTask(ctx, "bob", "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.UpdateTask(ctx, &domain.Task{ID: "t1", UserID: "bob", Title: "hijacked"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got.Tags[0] = "mutated"
	again, err := store.GetTask(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, again.Tags, "stored rows are copies")
}

func TestListReturnsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewNoteStore()

	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, store.CreateNote(ctx, &domain.Note{ID: id, UserID: "alice"}))
	}
	require.NoError(t, store.CreateNote(ctx, &domain.Note{ID: "other", UserID: "bob"}))

	notes, err := store.ListNotes(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n2", notes[0].ID)
	assert.Equal(t, "n3", notes[1].ID)

	all, err := store.ListNotes(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestVectorIndexUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewVectorIndex()

	entry := domain.IndexEntry{UserID: "alice", EntityType: domain.EntityNote, EntityID: "n1", Content: "groceries list", Vector: []float32{1, 0}}
	require.NoError(t, idx.Upsert(ctx, entry))
	require.NoError(t, idx.Upsert(ctx, entry))
	entry.Content = "groceries list v2"
	require.NoError(t, idx.Upsert(ctx, entry))
	assert.Equal(t, 1, idx.Len())

	require.NoError(t, idx.Upsert(ctx, domain.IndexEntry{UserID: "alice", EntityType: domain.EntityTask, EntityID: "t1", Vector: []float32{0.6, 0.8}}))
	require.NoError(t, idx.Upsert(ctx, domain.IndexEntry{UserID: "bob", EntityType: domain.EntityNote, EntityID: "n9", Vector: []float32{1, 0}}))

	matches, err := idx.Search(ctx, "alice", []float32{1, 0}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "n1", matches[0].EntityID)
	assert.Equal(t, "groceries list v2", matches[0].Content)
	assert.InDelta(t, 0.6, matches[1].Similarity, 1e-6)

	none, err := idx.Search(ctx, "alice", []float32{0, -1}, 0.5, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVectorIndexTiesAreOrderedByID(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewVectorIndex()

	for _, id := range []string{"n5", "n1", "n4", "n2", "n3"} {
		require.NoError(t, idx.Upsert(ctx, domain.IndexEntry{
			UserID: "alice", EntityType: domain.EntityNote, EntityID: id, Vector: []float32{1, 0},
		}))
	}
	require.NoError(t, idx.Upsert(ctx, domain.IndexEntry{
		UserID: "alice", EntityType: domain.EntityTask, EntityID: "t0", Vector: []float32{1, 0},
	}))

	for i := 0; i < 20; i++ {
		matches, err := idx.Search(ctx, "alice", []float32{1, 0}, 0.5, 4)
		require.NoError(t, err)

		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.EntityID)
		}
		require.Equal(t, []string{"n1", "n2", "n3", "n4"}, ids)
	}
}
