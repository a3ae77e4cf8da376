package firestore

import (
	"time"

	"github.com/PabloGalante/planora/internal/domain"
)

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type taskDoc struct {
	UserID      string     `firestore:"user_id"`
	ProjectID   string     `firestore:"project_id"`
	Title       string     `firestore:"title"`
	Description string     `firestore:"description"`
	Status      string     `firestore:"status"`
	Priority    string     `firestore:"priority"`
	DueKind     string     `firestore:"due_kind"`
	DueAt       *time.Time `firestore:"due_at"`
	Tags        []string   `firestore:"tags"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

type noteDoc struct {
	UserID    string    `firestore:"user_id"`
	ProjectID string    `firestore:"project_id"`
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	Tags      []string  `firestore:"tags"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type projectDoc struct {
	UserID      string    `firestore:"user_id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Status      string    `firestore:"status"`
	Priority    string    `firestore:"priority"`
	Color       string    `firestore:"color"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

type habitDoc struct {
	UserID      string    `firestore:"user_id"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Frequency   string    `firestore:"frequency"`
	TargetCount int       `firestore:"target_count"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	doc := taskDoc{
		UserID:      string(t.UserID),
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    string(t.Priority),
		DueKind:     string(t.DueDate.Kind),
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if !t.DueDate.IsZero() {
		at := t.DueDate.Value
		doc.DueAt = &at
	}
	return doc
}

func fromTaskDoc(id string, d *taskDoc) *domain.Task {
	due := domain.NoDueDate()
	if d.DueAt != nil && d.DueKind != "" {
		due = domain.DueDate{Kind: domain.DueDateKind(d.DueKind), Value: *d.DueAt}
	}
	return &domain.Task{
		ID:          id,
		UserID:      domain.UserID(d.UserID),
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    domain.Priority(d.Priority),
		DueDate:     due,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toNoteDoc(n *domain.Note) noteDoc {
	return noteDoc{
		UserID:    string(n.UserID),
		ProjectID: n.ProjectID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func fromNoteDoc(id string, d *noteDoc) *domain.Note {
	return &domain.Note{
		ID:        id,
		UserID:    domain.UserID(d.UserID),
		ProjectID: d.ProjectID,
		Title:     d.Title,
		Content:   d.Content,
		Tags:      d.Tags,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toProjectDoc(p *domain.Project) projectDoc {
	return projectDoc{
		UserID:      string(p.UserID),
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Priority:    string(p.Priority),
		Color:       p.Color,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProjectDoc(id string, d *projectDoc) *domain.Project {
	return &domain.Project{
		ID:          id,
		UserID:      domain.UserID(d.UserID),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    domain.Priority(d.Priority),
		Color:       d.Color,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toHabitDoc(h *domain.Habit) habitDoc {
	return habitDoc{
		UserID:      string(h.UserID),
		Name:        h.Name,
		Description: h.Description,
		Frequency:   string(h.Frequency),
		TargetCount: h.TargetCount,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func fromHabitDoc(id string, d *habitDoc) *domain.Habit {
	return &domain.Habit{
		ID:          id,
		UserID:      domain.UserID(d.UserID),
		Name:        d.Name,
		Description: d.Description,
		Frequency:   domain.Frequency(d.Frequency),
		TargetCount: d.TargetCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d *taskDoc) owner() string    { return d.UserID }
func (d *noteDoc) owner() string    { return d.UserID }
func (d *projectDoc) owner() string { return d.UserID }
func (d *habitDoc) owner() string   { return d.UserID }
