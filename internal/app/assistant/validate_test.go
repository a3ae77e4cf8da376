package assistant_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/app/assistant"
	"github.com/PabloGalante/planora/internal/domain"
)

func newValidator(t *testing.T) *assistant.Validator {
	t.Helper()
	v, err := assistant.NewValidator(3, time.UTC)
	require.NoError(t, err)
	return v
}

func TestValidateDecodesTypedIntents(t *testing.T) {
	v := newValidator(t)

	out, err := v.Validate(context.Background(), "```json\n"+`{
		"transcript": "t",
		"reply": "r",
		"actions": [
			{"type": "UPDATE_TASK", "params": {"targetId": "t1", "status": "done", "dueDate": "", "tags": ["a"]}},
			{"type": "UPDATE_HABIT", "params": {"targetId": "h1", "targetCount": 4}},
			{"type": "CREATE_NOTE", "params": {"title": null, "content": "body"}}
		]
	}`+"\n```")
	require.NoError(t, err)

	assert.Equal(t, "t", out.Transcript)
	assert.Equal(t, "r", out.Reply)
	require.Len(t, out.Actions, 3)

	upd := out.Actions[0].(domain.UpdateTask)
	assert.Equal(t, "t1", upd.TargetID)
	require.NotNil(t, upd.Status)
	assert.Equal(t, "done", *upd.Status)
	assert.Nil(t, upd.Title)
	require.NotNil(t, upd.DueDate, "blank due date clears it")
	assert.True(t, upd.DueDate.IsZero())
	assert.Equal(t, []string{"a"}, upd.Tags)

	habit := out.Actions[1].(domain.UpdateHabit)
	require.NotNil(t, habit.TargetCount)
	assert.Equal(t, 4, *habit.TargetCount)

	note := out.Actions[2].(domain.CreateNote)
	assert.Equal(t, "", note.Title)
	assert.Equal(t, "body", note.Content)
}

func TestValidateUnparseableDueDateDegrades(t *testing.T) {
	v := newValidator(t)

	out, err := v.Validate(context.Background(), `{"actions": [
		{"type": "CREATE_TASK", "params": {"title": "x", "dueDate": "next tuesday"}},
		{"type": "UPDATE_TASK", "params": {"targetId": "t1", "dueDate": "soon"}}
	]}`)
	require.NoError(t, err)

	assert.True(t, out.Actions[0].(domain.CreateTask).DueDate.IsZero())
	assert.Nil(t, out.Actions[1].(domain.UpdateTask).DueDate, "unparseable update leaves the due date alone")
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPath string
	}{
		{"too many actions", `{"actions": [{"type":"CHAT","params":{}},{"type":"CHAT","params":{}},{"type":"CHAT","params":{}},{"type":"CHAT","params":{}}]}`, "/actions"},
		{"reply not string", `{"reply": 3, "actions": []}`, "/reply"},
		{"empty target", `{"actions": [{"type": "UPDATE_NOTE", "params": {"targetId": ""}}]}`, "/actions/0/params/targetId"},
		{"missing params", `{"actions": [{"type": "CHAT"}]}`, "/actions/0"},
		{"root not object", `[]`, ""},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.raw)
			require.ErrorIs(t, err, domain.ErrMalformedOutput)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Violations)

			paths := make([]string, 0, len(verr.Violations))
			for _, vi := range verr.Violations {
				paths = append(paths, vi.Path)
			}
			assert.Contains(t, paths, tt.wantPath)
		})
	}
}
