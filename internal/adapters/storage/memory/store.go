package memory

import "github.com/PabloGalante/planora/internal/domain"

// NewRepositories wires one in-memory store per kind.
func NewRepositories() domain.Repositories {
	return domain.Repositories{
		Tasks:    NewTaskStore(),
		Notes:    NewNoteStore(),
		Projects: NewProjectStore(),
		Habits:   NewHabitStore(),
	}
}
