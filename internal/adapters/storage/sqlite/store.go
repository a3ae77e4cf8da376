// Package sqlite is a single-file durable backend for the repositories and
// the vector index.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/planora/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id, created_at);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, created_at);

CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id, created_at);

CREATE TABLE IF NOT EXISTS embeddings (
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL,
	embedding TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (entity_type, entity_id)
);
CREATE INDEX IF NOT EXISTS idx_embeddings_user ON embeddings(user_id);
`

// Store owns the database handle shared by every repository.
type Store struct {
	db *sql.DB
}

// Open creates the database file and tables if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Repositories returns the per-kind repositories backed by this store.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Tasks:    &TaskRepo{t: table[domain.Task]{db: s.db, name: "tasks"}},
		Notes:    &NoteRepo{t: table[domain.Note]{db: s.db, name: "notes"}},
		Projects: &ProjectRepo{t: table[domain.Project]{db: s.db, name: "projects"}},
		Habits:   &HabitRepo{t: table[domain.Habit]{db: s.db, name: "habits"}},
	}
}

// VectorIndex returns the embeddings table as a domain.VectorIndex.
func (s *Store) VectorIndex() *VectorIndex {
	return &VectorIndex{db: s.db}
}
