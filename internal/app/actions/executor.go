// Package actions executes validated action intents against the domain repositories.
package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// Executor routes each ActionIntent to the repository owning its kind.
type Executor struct {
	repos   domain.Repositories
	queue   domain.IndexQueue
	metrics *observability.Metrics
	now     func() time.Time
	newID   func() string
}

// NewExecutor creates an Executor. queue may be nil, in which case nothing is indexed.
func NewExecutor(repos domain.Repositories, queue domain.IndexQueue, metrics *observability.Metrics) *Executor {
	return &Executor{
		repos:   repos,
		queue:   queue,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// actionContext carries per-call metadata to the kind handlers.
type actionContext struct {
	userID domain.UserID
	now    time.Time
}

// Execute runs the intents in order. Chat intents are skipped; a failing
// intent is logged and skipped without affecting the others. The result
// holds one entry per successful non-chat intent, in input order.
func (e *Executor) Execute(ctx context.Context, intents []domain.ActionIntent, principal domain.Principal) []domain.ActionResult {
	log := observability.LoggerFromContext(ctx).With("user_id", principal.UserID)

	results := make([]domain.ActionResult, 0, len(intents))
	for i, intent := range intents {
		kind := string(intent.Kind())
		if _, ok := intent.(domain.Chat); ok {
			e.metrics.ObserveAction(kind, "skipped")
			continue
		}

		actx := actionContext{userID: principal.UserID, now: e.now()}
		res, err := e.apply(ctx, actx, intent)
		if err != nil {
			log.Error("action failed",
				"action_index", i,
				"action_kind", kind,
				"error", err)
			e.metrics.ObserveAction(kind, "failed")
			continue
		}

		e.metrics.ObserveAction(kind, "ok")
		results = append(results, res)
	}
	return results
}

func (e *Executor) apply(ctx context.Context, actx actionContext, intent domain.ActionIntent) (domain.ActionResult, error) {
	switch in := intent.(type) {
	case domain.CreateTask:
		return e.createTask(ctx, actx, in)
	case domain.UpdateTask:
		return e.updateTask(ctx, actx, in)
	case domain.CreateNote:
		return e.createNote(ctx, actx, in)
	case domain.UpdateNote:
		return e.updateNote(ctx, actx, in)
	case domain.CreateProject:
		return e.createProject(ctx, actx, in)
	case domain.CreateHabit:
		return e.createHabit(ctx, actx, in)
	case domain.UpdateHabit:
		return e.updateHabit(ctx, actx, in)
	default:
		return domain.ActionResult{}, fmt.Errorf("unsupported action kind %q", intent.Kind())
	}
}

// checkProject rejects a project id that does not name one of the user's projects.
func (e *Executor) checkProject(ctx context.Context, userID domain.UserID, projectID string) error {
	if projectID == "" {
		return nil
	}
	if _, err := e.repos.Projects.GetProject(ctx, userID, projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrInvalidReference)
		}
		return fmt.Errorf("look up project %s: %w", projectID, err)
	}
	return nil
}

func (e *Executor) enqueue(job domain.IndexJob) {
	if e.queue == nil {
		return
	}
	e.queue.Enqueue(job)
}

func requireTarget(id string) error {
	if id == "" {
		return fmt.Errorf("missing target id: %w", domain.ErrNotFound)
	}
	return nil
}

func created(r domain.Record) domain.ActionResult {
	return domain.ActionResult{EntityType: r.RecordType(), Operation: domain.OperationCreate, Data: r}
}

func updated(r domain.Record) domain.ActionResult {
	return domain.ActionResult{EntityType: r.RecordType(), Operation: domain.OperationUpdate, Data: r}
}
