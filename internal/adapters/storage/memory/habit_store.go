package memory

import (
	"context"

	"github.com/PabloGalante/planora/internal/domain"
)

// HabitStore is an in-memory domain.HabitRepository.
type HabitStore struct {
	rows *records[domain.Habit]
}

func NewHabitStore() *HabitStore {
	return &HabitStore{rows: newRecords[domain.Habit]()}
}

func (s *HabitStore) CreateHabit(_ context.Context, h *domain.Habit) error {
	return s.rows.create(h.ID, h.UserID, *h)
}

func (s *HabitStore) GetHabit(_ context.Context, userID domain.UserID, id string) (*domain.Habit, error) {
	h, err := s.rows.get(id, userID)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HabitStore) UpdateHabit(_ context.Context, h *domain.Habit) error {
	return s.rows.update(h.ID, h.UserID, *h)
}

func (s *HabitStore) ListHabits(_ context.Context, userID domain.UserID, limit int) ([]*domain.Habit, error) {
	rows := s.rows.list(userID, limit)
	out := make([]*domain.Habit, 0, len(rows))
	for i := range rows {
		h := rows[i]
		out = append(out, &h)
	}
	return out, nil
}
