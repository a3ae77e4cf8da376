package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/planora/internal/domain"
)

func TestTaskDocRoundTrip(t *testing.T) {
	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		due  domain.DueDate
	}{
		{"no due date", domain.NoDueDate()},
		{"date only", domain.DateOnly(2024, time.May, 2, time.UTC)},
		{"date and time", domain.DueDate{Kind: domain.DueKindDateTime, Value: time.Date(2024, time.May, 2, 17, 30, 0, 0, time.UTC)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &domain.Task{ID: "t1", UserID: "alice", Title: "x", DueDate: tt.due, CreatedAt: now, UpdatedAt: now}
			doc := toTaskDoc(in)
			out := fromTaskDoc("t1", &doc)

			assert.Equal(t, in.DueDate.Kind, out.DueDate.Kind)
			assert.Equal(t, in.DueDate.String(), out.DueDate.String())
			assert.Equal(t, "alice", doc.owner())
		})
	}
}

func TestHabitDocRoundTrip(t *testing.T) {
	in := &domain.Habit{ID: "h1", UserID: "alice", Name: "Read", Frequency: domain.FrequencyDaily, TargetCount: 2}
	doc := toHabitDoc(in)
	assert.Equal(t, in, fromHabitDoc("h1", &doc))
}
