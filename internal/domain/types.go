package domain

import (
	"fmt"
	"strings"
	"time"
)

type UserID string

// Principal is the authenticated end user a request acts on behalf of.
type Principal struct {
	UserID UserID
}

type EntityType string

const (
	EntityTask    EntityType = "task"
	EntityNote    EntityType = "note"
	EntityProject EntityType = "project"
	EntityHabit   EntityType = "habit"
)

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// Mode selects which grounding stages run for a turn.
type Mode string

const (
	ModeAuto   Mode = "auto"   // decide from context
	ModeAction Mode = "action" // create/update items, no retrieval
	ModeMemory Mode = "memory" // answer from stored content
)

// ParseMode maps the wire value to a Mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "action":
		return ModeAction, nil
	case "memory":
		return ModeMemory, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NormalizePriority coerces anything outside low|medium|high to medium.
func NormalizePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// NormalizeFrequency coerces anything outside daily|weekly to daily.
func NormalizeFrequency(s string) Frequency {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyDaily, FrequencyWeekly:
		return f
	default:
		return FrequencyDaily
	}
}

const (
	TaskStatusTodo      = "todo"
	ProjectStatusActive = "active"
	DefaultProjectColor = "sky"
)

type Timestamp = time.Time
