package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/domain"
)

func (e *Executor) createTask(ctx context.Context, actx actionContext, in domain.CreateTask) (domain.ActionResult, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if err := e.checkProject(ctx, actx.userID, projectID); err != nil {
		return domain.ActionResult{}, err
	}

	status := firstNonBlank(in.Status, domain.TaskStatusTodo)
	t := &domain.Task{
		ID:          e.newID(),
		UserID:      actx.userID,
		ProjectID:   projectID,
		Title:       firstNonBlank(in.Title, defaultTaskTitle),
		Description: strings.TrimSpace(in.Description),
		Status:      strings.ToLower(status),
		Priority:    domain.NormalizePriority(in.Priority),
		DueDate:     in.DueDate,
		Tags:        cleanTags(in.Tags),
		CreatedAt:   actx.now,
		UpdatedAt:   actx.now,
	}
	if t.DueDate.Kind == "" {
		t.DueDate = domain.NoDueDate()
	}

	if err := e.repos.Tasks.CreateTask(ctx, t); err != nil {
		return domain.ActionResult{}, fmt.Errorf("create task: %w", err)
	}

	e.enqueue(indexing.TaskJob(t))
	return created(t), nil
}

func (e *Executor) updateTask(ctx context.Context, actx actionContext, in domain.UpdateTask) (domain.ActionResult, error) {
	if err := requireTarget(in.TargetID); err != nil {
		return domain.ActionResult{}, err
	}

	t, err := e.repos.Tasks.GetTask(ctx, actx.userID, in.TargetID)
	if err != nil {
		return domain.ActionResult{}, fmt.Errorf("task %s: %w", in.TargetID, err)
	}

	before := indexing.TaskJob(t).Content

	if in.ProjectID != nil {
		projectID := strings.TrimSpace(*in.ProjectID)
		if err := e.checkProject(ctx, actx.userID, projectID); err != nil {
			return domain.ActionResult{}, err
		}
		t.ProjectID = projectID
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		t.Priority = domain.NormalizePriority(*in.Priority)
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		t.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Tags != nil {
		t.Tags = cleanTags(in.Tags)
	}
	t.UpdatedAt = actx.now

	if err := e.repos.Tasks.UpdateTask(ctx, t); err != nil {
		return domain.ActionResult{}, fmt.Errorf("update task %s: %w", t.ID, err)
	}

	if job := indexing.TaskJob(t); job.Content != before {
		e.enqueue(job)
	}
	return updated(t), nil
}
