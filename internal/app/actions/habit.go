package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

func (e *Executor) createHabit(ctx context.Context, actx actionContext, in domain.CreateHabit) (domain.ActionResult, error) {
	target := in.TargetCount
	if target < 1 {
		target = 1
	}

	h := &domain.Habit{
		ID:          e.newID(),
		UserID:      actx.userID,
		Name:        firstNonBlank(in.Name, in.Title, defaultHabitName),
		Description: strings.TrimSpace(in.Description),
		Frequency:   domain.NormalizeFrequency(in.Frequency),
		TargetCount: target,
		CreatedAt:   actx.now,
		UpdatedAt:   actx.now,
	}

	if err := e.repos.Habits.CreateHabit(ctx, h); err != nil {
		return domain.ActionResult{}, fmt.Errorf("create habit: %w", err)
	}
	return created(h), nil
}

func (e *Executor) updateHabit(ctx context.Context, actx actionContext, in domain.UpdateHabit) (domain.ActionResult, error) {
	if err := requireTarget(in.TargetID); err != nil {
		return domain.ActionResult{}, err
	}

	h, err := e.repos.Habits.GetHabit(ctx, actx.userID, in.TargetID)
	if err != nil {
		return domain.ActionResult{}, fmt.Errorf("habit %s: %w", in.TargetID, err)
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		h.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		h.Description = strings.TrimSpace(*in.Description)
	}
	if in.Frequency != nil {
		h.Frequency = domain.NormalizeFrequency(*in.Frequency)
	}
	if in.TargetCount != nil && *in.TargetCount >= 1 {
		h.TargetCount = *in.TargetCount
	}
	h.UpdatedAt = actx.now

	if err := e.repos.Habits.UpdateHabit(ctx, h); err != nil {
		return domain.ActionResult{}, fmt.Errorf("update habit %s: %w", h.ID, err)
	}
	return updated(h), nil
}
