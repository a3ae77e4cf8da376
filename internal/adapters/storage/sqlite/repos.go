package sqlite

import (
	"context"

	"github.com/PabloGalante/planora/internal/domain"
)

type TaskRepo struct{ t table[domain.Task] }

func (r *TaskRepo) CreateTask(ctx context.Context, v *domain.Task) error {
	return r.t.insert(ctx, v.ID, v.UserID, v.CreatedAt, v.UpdatedAt, v)
}

func (r *TaskRepo) GetTask(ctx context.Context, userID domain.UserID, id string) (*domain.Task, error) {
	return r.t.get(ctx, userID, id)
}

func (r *TaskRepo) UpdateTask(ctx context.Context, v *domain.Task) error {
	return r.t.update(ctx, v.ID, v.UserID, v.UpdatedAt, v)
}

func (r *TaskRepo) ListTasks(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Task, error) {
	return r.t.list(ctx, userID, limit)
}

type NoteRepo struct{ t table[domain.Note] }

func (r *NoteRepo) CreateNote(ctx context.Context, v *domain.Note) error {
	return r.t.insert(ctx, v.ID, v.UserID, v.CreatedAt, v.UpdatedAt, v)
}

func (r *NoteRepo) GetNote(ctx context.Context, userID domain.UserID, id string) (*domain.Note, error) {
	return r.t.get(ctx, userID, id)
}

func (r *NoteRepo) UpdateNote(ctx context.Context, v *domain.Note) error {
	return r.t.update(ctx, v.ID, v.UserID, v.UpdatedAt, v)
}

func (r *NoteRepo) ListNotes(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Note, error) {
	return r.t.list(ctx, userID, limit)
}

type ProjectRepo struct{ t table[domain.Project] }

func (r *ProjectRepo) CreateProject(ctx context.Context, v *domain.Project) error {
	return r.t.insert(ctx, v.ID, v.UserID, v.CreatedAt, v.UpdatedAt, v)
}

func (r *ProjectRepo) GetProject(ctx context.Context, userID domain.UserID, id string) (*domain.Project, error) {
	return r.t.get(ctx, userID, id)
}

func (r *ProjectRepo) ListProjects(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Project, error) {
	return r.t.list(ctx, userID, limit)
}

type HabitRepo struct{ t table[domain.Habit] }

func (r *HabitRepo) CreateHabit(ctx context.Context, v *domain.Habit) error {
	return r.t.insert(ctx, v.ID, v.UserID, v.CreatedAt, v.UpdatedAt, v)
}

func (r *HabitRepo) GetHabit(ctx context.Context, userID domain.UserID, id string) (*domain.Habit, error) {
	return r.t.get(ctx, userID, id)
}

func (r *HabitRepo) UpdateHabit(ctx context.Context, v *domain.Habit) error {
	return r.t.update(ctx, v.ID, v.UserID, v.UpdatedAt, v)
}

func (r *HabitRepo) ListHabits(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Habit, error) {
	return r.t.list(ctx, userID, limit)
}
