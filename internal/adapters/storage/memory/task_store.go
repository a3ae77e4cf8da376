package memory

import (
	"context"

	"github.com/PabloGalante/planora/internal/domain"
)

// TaskStore is an in-memory domain.TaskRepository.
// It is NOT persistent and is only suitable for development / local mode.
type TaskStore struct {
	rows *records[domain.Task]
}

func NewTaskStore() *TaskStore {
	return &TaskStore{rows: newRecords[domain.Task]()}
}

func (s *TaskStore) CreateTask(_ context.Context, t *domain.Task) error {
	return s.rows.create(t.ID, t.UserID, copyTask(t))
}

func (s *TaskStore) GetTask(_ context.Context, userID domain.UserID, id string) (*domain.Task, error) {
	t, err := s.rows.get(id, userID)
	if err != nil {
		return nil, err
	}
	out := copyTask(&t)
	return &out, nil
}

func (s *TaskStore) UpdateTask(_ context.Context, t *domain.Task) error {
	return s.rows.update(t.ID, t.UserID, copyTask(t))
}

func (s *TaskStore) ListTasks(_ context.Context, userID domain.UserID, limit int) ([]*domain.Task, error) {
	rows := s.rows.list(userID, limit)
	out := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		t := copyTask(&rows[i])
		out = append(out, &t)
	}
	return out, nil
}

func copyTask(t *domain.Task) domain.Task {
	cp := *t
	cp.Tags = cloneTags(t.Tags)
	return cp
}
