package actions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/storage/memory"
	"github.com/PabloGalante/planora/internal/app/actions"
	"github.com/PabloGalante/planora/internal/domain"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []domain.IndexJob
}

func (q *recordingQueue) Enqueue(job domain.IndexJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return true
}

func (q *recordingQueue) Jobs() []domain.IndexJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.IndexJob(nil), q.jobs...)
}

// failingTasks rejects every write.
type failingTasks struct{ domain.TaskRepository }

func (failingTasks) CreateTask(context.Context, *domain.Task) error {
	return errors.New("disk full")
}

var alice = domain.Principal{UserID: "alice"}

func strPtr(s string) *string { return &s }

func newExecutor(t *testing.T) (*actions.Executor, domain.Repositories, *recordingQueue) {
	t.Helper()
	repos := memory.NewRepositories()
	q := &recordingQueue{}
	return actions.NewExecutor(repos, q, nil), repos, q
}

func TestExecuteAppliesDefaults(t *testing.T) {
	exec, _, _ := newExecutor(t)

	results := exec.Execute(context.Background(), []domain.ActionIntent{
		domain.CreateTask{Priority: "URGENT", Tags: []string{" #home", "home", ""}},
		domain.CreateNote{Description: "Remember to call the dentist about the appointment"},
		domain.CreateNote{},
		domain.CreateProject{},
		domain.CreateHabit{Title: "Read", Frequency: "monthly"},
	}, alice)

	require.Len(t, results, 5)

	ignore := cmpopts.IgnoreFields(domain.Task{}, "ID", "CreatedAt", "UpdatedAt")
	wantTask := &domain.Task{
		UserID:   "alice",
		Title:    "New task",
		Status:   "todo",
		Priority: domain.PriorityMedium,
		DueDate:  domain.NoDueDate(),
		Tags:     []string{"home"},
	}
	if diff := cmp.Diff(wantTask, results[0].Data, ignore); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}

	note := results[1].Data.(*domain.Note)
	assert.Equal(t, "Remember to call the dentist about the appointment", note.Content)
	assert.Equal(t, "Remember to call the...", note.Title)

	assert.Equal(t, "New note", results[2].Data.(*domain.Note).Title)

	project := results[3].Data.(*domain.Project)
	assert.Equal(t, "New project", project.Title)
	assert.Equal(t, "sky", project.Color)
	assert.Equal(t, "active", project.Status)
	assert.Equal(t, domain.PriorityMedium, project.Priority)

	habit := results[4].Data.(*domain.Habit)
	assert.Equal(t, "Read", habit.Name)
	assert.Equal(t, domain.FrequencyDaily, habit.Frequency)
	assert.Equal(t, 1, habit.TargetCount)

	for _, r := range results {
		assert.Equal(t, domain.OperationCreate, r.Operation)
		assert.Equal(t, r.Data.RecordType(), r.EntityType)
		assert.NotEmpty(t, r.Data.RecordID())
	}
}

func TestExecuteIsolatesFailures(t *testing.T) {
	exec, repos, _ := newExecutor(t)
	ctx := context.Background()

	require.NoError(t, repos.Notes.CreateNote(ctx, &domain.Note{ID: "bobs-note", UserID: "bob", Title: "private"}))

	intents := []domain.ActionIntent{
		domain.CreateTask{Title: "buy milk"},
		domain.CreateTask{Title: "orphan", ProjectID: "no-such-project"},
		domain.Chat{},
		domain.UpdateNote{TargetID: "bobs-note", Content: strPtr("pwned")},
		domain.UpdateTask{},
		domain.CreateTask{Title: "call Ali"},
	}

	results := exec.Execute(ctx, intents, alice)

	// 5 non-chat intents, 3 constructed to fail.
	require.Len(t, results, 2)
	assert.Equal(t, "buy milk", results[0].Data.(*domain.Task).Title)
	assert.Equal(t, "call Ali", results[1].Data.(*domain.Task).Title)

	bobs, err := repos.Notes.GetNote(ctx, "bob", "bobs-note")
	require.NoError(t, err)
	assert.Empty(t, bobs.Content, "foreign note must not be mutated")
}

func TestExecuteRepositoryErrorDoesNotStopBatch(t *testing.T) {
	repos := memory.NewRepositories()
	repos.Tasks = failingTasks{repos.Tasks}
	exec := actions.NewExecutor(repos, nil, nil)

	results := exec.Execute(context.Background(), []domain.ActionIntent{
		domain.CreateTask{Title: "will fail"},
		domain.CreateHabit{Name: "stretch"},
	}, alice)

	require.Len(t, results, 1)
	assert.Equal(t, domain.EntityHabit, results[0].EntityType)
}

func TestExecuteValidProjectReference(t *testing.T) {
	exec, repos, _ := newExecutor(t)
	ctx := context.Background()
	require.NoError(t, repos.Projects.CreateProject(ctx, &domain.Project{ID: "p1", UserID: "alice", Title: "Home"}))
	require.NoError(t, repos.Projects.CreateProject(ctx, &domain.Project{ID: "p2", UserID: "bob", Title: "Work"}))

	results := exec.Execute(ctx, []domain.ActionIntent{
		domain.CreateTask{Title: "fix sink", ProjectID: "p1"},
		domain.CreateNote{Title: "salary", ProjectID: "p2"},
	}, alice)

	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].Data.(*domain.Task).ProjectID)
}

func TestExecuteUpdates(t *testing.T) {
	exec, repos, q := newExecutor(t)
	ctx := context.Background()

	due := domain.DateOnly(2024, time.May, 2, time.UTC)
	require.NoError(t, repos.Tasks.CreateTask(ctx, &domain.Task{ID: "t1", UserID: "alice", Title: "buy milk", Priority: domain.PriorityLow, Status: "todo"}))
	require.NoError(t, repos.Habits.CreateHabit(ctx, &domain.Habit{ID: "h1", UserID: "alice", Name: "run", Frequency: domain.FrequencyDaily, TargetCount: 1}))

	three := 3
	results := exec.Execute(ctx, []domain.ActionIntent{
		domain.UpdateTask{TargetID: "t1", Priority: strPtr("high"), DueDate: &due},
		domain.UpdateTask{TargetID: "t1", Status: strPtr("done")},
		domain.UpdateHabit{TargetID: "h1", Frequency: strPtr("weekly"), TargetCount: &three},
	}, alice)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, domain.OperationUpdate, r.Operation)
	}

	task, err := repos.Tasks.GetTask(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, "done", task.Status)
	assert.Equal(t, "2024-05-02", task.DueDate.String())
	assert.Equal(t, "buy milk", task.Title)

	habit, err := repos.Habits.GetHabit(ctx, "alice", "h1")
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyWeekly, habit.Frequency)
	assert.Equal(t, 3, habit.TargetCount)

	assert.Empty(t, q.Jobs(), "updates that leave indexed text unchanged are not re-indexed")
}

func TestExecuteEnqueuesIndexingForTasksAndNotes(t *testing.T) {
	exec, repos, q := newExecutor(t)
	ctx := context.Background()

	results := exec.Execute(ctx, []domain.ActionIntent{
		domain.CreateTask{Title: "buy milk", Description: "2 liters", Tags: []string{"groceries"}},
		domain.CreateNote{Title: "ideas", Content: "garden layout"},
		domain.CreateProject{Title: "Home"},
		domain.CreateHabit{Name: "stretch"},
	}, alice)
	require.Len(t, results, 4)

	jobs := q.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, domain.IndexJob{UserID: "alice", EntityType: domain.EntityTask, EntityID: results[0].Data.RecordID(), Content: "buy milk 2 liters groceries"}, jobs[0])
	assert.Equal(t, "ideas garden layout", jobs[1].Content)

	noteID := results[1].Data.RecordID()
	exec.Execute(ctx, []domain.ActionIntent{domain.UpdateNote{TargetID: noteID, Content: strPtr("vegetable garden layout")}}, alice)

	jobs = q.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, noteID, jobs[2].EntityID)
	assert.Equal(t, "ideas vegetable garden layout", jobs[2].Content)

	stored, err := repos.Notes.GetNote(ctx, "alice", noteID)
	require.NoError(t, err)
	assert.Equal(t, "vegetable garden layout", stored.Content)
}
