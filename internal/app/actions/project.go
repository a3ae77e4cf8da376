package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

func (e *Executor) createProject(ctx context.Context, actx actionContext, in domain.CreateProject) (domain.ActionResult, error) {
	p := &domain.Project{
		ID:          e.newID(),
		UserID:      actx.userID,
		Title:       firstNonBlank(in.Title, defaultProjectTitle),
		Description: strings.TrimSpace(in.Description),
		Status:      strings.ToLower(firstNonBlank(in.Status, domain.ProjectStatusActive)),
		Priority:    domain.NormalizePriority(in.Priority),
		Color:       strings.ToLower(firstNonBlank(in.Color, domain.DefaultProjectColor)),
		CreatedAt:   actx.now,
		UpdatedAt:   actx.now,
	}

	if err := e.repos.Projects.CreateProject(ctx, p); err != nil {
		return domain.ActionResult{}, fmt.Errorf("create project: %w", err)
	}
	return created(p), nil
}
