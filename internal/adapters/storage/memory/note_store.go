package memory

import (
	"context"

	"github.com/PabloGalante/planora/internal/domain"
)

// NoteStore is an in-memory domain.NoteRepository.
type NoteStore struct {
	rows *records[domain.Note]
}

func NewNoteStore() *NoteStore {
	return &NoteStore{rows: newRecords[domain.Note]()}
}

func (s *NoteStore) CreateNote(_ context.Context, n *domain.Note) error {
	return s.rows.create(n.ID, n.UserID, copyNote(n))
}

func (s *NoteStore) GetNote(_ context.Context, userID domain.UserID, id string) (*domain.Note, error) {
	n, err := s.rows.get(id, userID)
	if err != nil {
		return nil, err
	}
	out := copyNote(&n)
	return &out, nil
}

func (s *NoteStore) UpdateNote(_ context.Context, n *domain.Note) error {
	return s.rows.update(n.ID, n.UserID, copyNote(n))
}

func (s *NoteStore) ListNotes(_ context.Context, userID domain.UserID, limit int) ([]*domain.Note, error) {
	rows := s.rows.list(userID, limit)
	out := make([]*domain.Note, 0, len(rows))
	for i := range rows {
		n := copyNote(&rows[i])
		out = append(out, &n)
	}
	return out, nil
}

func copyNote(n *domain.Note) domain.Note {
	cp := *n
	cp.Tags = cloneTags(n.Tags)
	return cp
}
