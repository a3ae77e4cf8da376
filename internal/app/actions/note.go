package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/domain"
)

func (e *Executor) createNote(ctx context.Context, actx actionContext, in domain.CreateNote) (domain.ActionResult, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if err := e.checkProject(ctx, actx.userID, projectID); err != nil {
		return domain.ActionResult{}, err
	}

	content := firstNonBlank(in.Content, in.Description)
	n := &domain.Note{
		ID:        e.newID(),
		UserID:    actx.userID,
		ProjectID: projectID,
		Title:     firstNonBlank(in.Title, noteTitleFrom(content), defaultNoteTitle),
		Content:   content,
		Tags:      cleanTags(in.Tags),
		CreatedAt: actx.now,
		UpdatedAt: actx.now,
	}

	if err := e.repos.Notes.CreateNote(ctx, n); err != nil {
		return domain.ActionResult{}, fmt.Errorf("create note: %w", err)
	}

	e.enqueue(indexing.NoteJob(n))
	return created(n), nil
}

func (e *Executor) updateNote(ctx context.Context, actx actionContext, in domain.UpdateNote) (domain.ActionResult, error) {
	if err := requireTarget(in.TargetID); err != nil {
		return domain.ActionResult{}, err
	}

	n, err := e.repos.Notes.GetNote(ctx, actx.userID, in.TargetID)
	if err != nil {
		return domain.ActionResult{}, fmt.Errorf("note %s: %w", in.TargetID, err)
	}

	before := indexing.NoteJob(n).Content

	if in.ProjectID != nil {
		projectID := strings.TrimSpace(*in.ProjectID)
		if err := e.checkProject(ctx, actx.userID, projectID); err != nil {
			return domain.ActionResult{}, err
		}
		n.ProjectID = projectID
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		n.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		n.Content = strings.TrimSpace(*in.Content)
	}
	if in.Tags != nil {
		n.Tags = cleanTags(in.Tags)
	}
	n.UpdatedAt = actx.now

	if err := e.repos.Notes.UpdateNote(ctx, n); err != nil {
		return domain.ActionResult{}, fmt.Errorf("update note %s: %w", n.ID, err)
	}

	if job := indexing.NoteJob(n); job.Content != before {
		e.enqueue(job)
	}
	return updated(n), nil
}
