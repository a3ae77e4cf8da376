package domain

import (
	"context"
	"time"
)

// Part is one piece of a generation prompt: text or inline media.
type Part struct {
	Text  string
	Media *MediaBlob
}

// GenerateRequest describes a single structured generation call.
type GenerateRequest struct {
	Op                string // "transcribe", "infer"; used for error and metric labels
	SystemInstruction string
	History           []Turn
	Parts             []Part
	ResponseSchema    *Schema
	Temperature       float32
}

// Generator defines how the core application interacts with a generation model.
// Failures are reported as *UpstreamError so callers can decide on retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IndexEntry is one embedded piece of user content, keyed by (EntityType, EntityID).
type IndexEntry struct {
	UserID     UserID
	EntityType EntityType
	EntityID   string
	Content    string
	Vector     []float32
	UpdatedAt  time.Time
}

// Match is a similarity search hit.
type Match struct {
	EntityType EntityType
	EntityID   string
	Content    string
	Similarity float64
}

// VectorIndex stores embeddings and answers similarity queries scoped to one user.
type VectorIndex interface {
	Upsert(ctx context.Context, entry IndexEntry) error
	// Search returns at most topK matches with similarity >= threshold, best first.
	Search(ctx context.Context, userID UserID, query []float32, threshold float64, topK int) ([]Match, error)
}

// IndexJob asks for content of one entity to be embedded and upserted.
type IndexJob struct {
	UserID     UserID     `json:"userId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Content    string     `json:"content"`
}

// IndexQueue detaches indexing from request handling. Enqueue never blocks and
// reports whether the job was accepted.
type IndexQueue interface {
	Enqueue(job IndexJob) bool
}

// Repositories scope every read by user; a record owned by someone else is ErrNotFound.

type TaskRepository interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, userID UserID, id string) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, userID UserID, limit int) ([]*Task, error)
}

type NoteRepository interface {
	CreateNote(ctx context.Context, n *Note) error
	GetNote(ctx context.Context, userID UserID, id string) (*Note, error)
	UpdateNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, userID UserID, limit int) ([]*Note, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, userID UserID, id string) (*Project, error)
	ListProjects(ctx context.Context, userID UserID, limit int) ([]*Project, error)
}

type HabitRepository interface {
	CreateHabit(ctx context.Context, h *Habit) error
	GetHabit(ctx context.Context, userID UserID, id string) (*Habit, error)
	UpdateHabit(ctx context.Context, h *Habit) error
	ListHabits(ctx context.Context, userID UserID, limit int) ([]*Habit, error)
}

// Repositories groups the per-kind stores the executor routes to.
type Repositories struct {
	Tasks    TaskRepository
	Notes    NoteRepository
	Projects ProjectRepository
	Habits   HabitRepository
}

// Authenticator resolves an end-user credential to a principal or ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (Principal, error)
}

// SpeechSynthesizer renders reply text as audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*MediaBlob, error)
}
