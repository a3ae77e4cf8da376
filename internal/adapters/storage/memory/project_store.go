package memory

import (
	"context"

	"github.com/PabloGalante/planora/internal/domain"
)

// ProjectStore is an in-memory domain.ProjectRepository.
type ProjectStore struct {
	rows *records[domain.Project]
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{rows: newRecords[domain.Project]()}
}

func (s *ProjectStore) CreateProject(_ context.Context, p *domain.Project) error {
	return s.rows.create(p.ID, p.UserID, *p)
}

func (s *ProjectStore) GetProject(_ context.Context, userID domain.UserID, id string) (*domain.Project, error) {
	p, err := s.rows.get(id, userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) ListProjects(_ context.Context, userID domain.UserID, limit int) ([]*domain.Project, error) {
	rows := s.rows.list(userID, limit)
	out := make([]*domain.Project, 0, len(rows))
	for i := range rows {
		p := rows[i]
		out = append(out, &p)
	}
	return out, nil
}
