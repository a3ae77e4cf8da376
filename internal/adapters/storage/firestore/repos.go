package firestore

import (
	"context"
	"fmt"

	"github.com/PabloGalante/planora/internal/domain"
)

// ─────────────────────────────────────────
// Repository implementations
// ─────────────────────────────────────────

type TaskRepo struct{ s *Store }

func (r *TaskRepo) CreateTask(ctx context.Context, t *domain.Task) error {
	if _, err := r.s.col("tasks").Doc(t.ID).Create(ctx, toTaskDoc(t)); err != nil {
		return fmt.Errorf("firestore CreateTask: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetTask(ctx context.Context, userID domain.UserID, id string) (*domain.Task, error) {
	return getOwned(ctx, r.s.col("tasks").Doc(id), userID, (*taskDoc).owner, fromTaskDoc)
}

func (r *TaskRepo) UpdateTask(ctx context.Context, t *domain.Task) error {
	if err := r.s.updateOwned(ctx, r.s.col("tasks").Doc(t.ID), t.UserID, toTaskDoc(t)); err != nil {
		return fmt.Errorf("firestore UpdateTask: %w", err)
	}
	return nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Task, error) {
	return listOwned(ctx, r.s.col("tasks"), userID, limit, fromTaskDoc)
}

type NoteRepo struct{ s *Store }

func (r *NoteRepo) CreateNote(ctx context.Context, n *domain.Note) error {
	if _, err := r.s.col("notes").Doc(n.ID).Create(ctx, toNoteDoc(n)); err != nil {
		return fmt.Errorf("firestore CreateNote: %w", err)
	}
	return nil
}

func (r *NoteRepo) GetNote(ctx context.Context, userID domain.UserID, id string) (*domain.Note, error) {
	return getOwned(ctx, r.s.col("notes").Doc(id), userID, (*noteDoc).owner, fromNoteDoc)
}

func (r *NoteRepo) UpdateNote(ctx context.Context, n *domain.Note) error {
	if err := r.s.updateOwned(ctx, r.s.col("notes").Doc(n.ID), n.UserID, toNoteDoc(n)); err != nil {
		return fmt.Errorf("firestore UpdateNote: %w", err)
	}
	return nil
}

func (r *NoteRepo) ListNotes(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Note, error) {
	return listOwned(ctx, r.s.col("notes"), userID, limit, fromNoteDoc)
}

type ProjectRepo struct{ s *Store }

func (r *ProjectRepo) CreateProject(ctx context.Context, p *domain.Project) error {
	if _, err := r.s.col("projects").Doc(p.ID).Create(ctx, toProjectDoc(p)); err != nil {
		return fmt.Errorf("firestore CreateProject: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetProject(ctx context.Context, userID domain.UserID, id string) (*domain.Project, error) {
	return getOwned(ctx, r.s.col("projects").Doc(id), userID, (*projectDoc).owner, fromProjectDoc)
}

func (r *ProjectRepo) ListProjects(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Project, error) {
	return listOwned(ctx, r.s.col("projects"), userID, limit, fromProjectDoc)
}

type HabitRepo struct{ s *Store }

func (r *HabitRepo) CreateHabit(ctx context.Context, h *domain.Habit) error {
	if _, err := r.s.col("habits").Doc(h.ID).Create(ctx, toHabitDoc(h)); err != nil {
		return fmt.Errorf("firestore CreateHabit: %w", err)
	}
	return nil
}

func (r *HabitRepo) GetHabit(ctx context.Context, userID domain.UserID, id string) (*domain.Habit, error) {
	return getOwned(ctx, r.s.col("habits").Doc(id), userID, (*habitDoc).owner, fromHabitDoc)
}

func (r *HabitRepo) UpdateHabit(ctx context.Context, h *domain.Habit) error {
	if err := r.s.updateOwned(ctx, r.s.col("habits").Doc(h.ID), h.UserID, toHabitDoc(h)); err != nil {
		return fmt.Errorf("firestore UpdateHabit: %w", err)
	}
	return nil
}

func (r *HabitRepo) ListHabits(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Habit, error) {
	return listOwned(ctx, r.s.col("habits"), userID, limit, fromHabitDoc)
}
