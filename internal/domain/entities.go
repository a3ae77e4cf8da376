package domain

import "time"

// Record is any persisted domain item that can be returned in an ActionResult.
type Record interface {
	RecordID() string
	RecordType() EntityType
}

type Task struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	ProjectID   string    `json:"projectId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     DueDate   `json:"dueDate"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Task) RecordID() string       { return t.ID }
func (t *Task) RecordType() EntityType { return EntityTask }

type Note struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"userId"`
	ProjectID string    `json:"projectId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Note) RecordID() string       { return n.ID }
func (n *Note) RecordType() EntityType { return EntityNote }

// Project is the container entity tasks and notes may reference.
type Project struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    Priority  `json:"priority"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Project) RecordID() string       { return p.ID }
func (p *Project) RecordType() EntityType { return EntityProject }

type Habit struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
	TargetCount int       `json:"targetCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *Habit) RecordID() string       { return h.ID }
func (h *Habit) RecordType() EntityType { return EntityHabit }
