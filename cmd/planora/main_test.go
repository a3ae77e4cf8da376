package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/storage/memory"
	"github.com/PabloGalante/planora/internal/config"
	"github.com/PabloGalante/planora/internal/domain"
)

func TestSetupSharesSQLiteHandle(t *testing.T) {
	cfg := config.Defaults()
	cfg.Gemini.UseMock = true
	cfg.StorageBackend = "sqlite"
	cfg.IndexBackend = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "planora.db")

	c, err := setup(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Len(t, c.closers, 1, "storage and index should share one database")
	assert.NotNil(t, c.repos.Tasks)
	assert.NotNil(t, c.index)
}

func TestReindexEmbedsTasksAndNotes(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.Gemini.UseMock = true

	c, err := setup(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.repos.Tasks.CreateTask(ctx, &domain.Task{ID: "t1", UserID: "u1", Title: "Buy milk"}))
	require.NoError(t, c.repos.Notes.CreateNote(ctx, &domain.Note{ID: "n1", UserID: "u1", Title: "Wifi", Content: "password hunter2"}))
	require.NoError(t, c.repos.Tasks.CreateTask(ctx, &domain.Task{ID: "t2", UserID: "u2", Title: "Someone else's"}))

	done, failed, err := reindex(ctx, c, "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, done)
	assert.Zero(t, failed)
	assert.Equal(t, 2, c.index.(*memory.VectorIndex).Len())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "planora version dev\n", out.String())
}
