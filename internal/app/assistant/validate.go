package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

const validationSchemaURL = "planora://assistant/output.json"

// Output is a model response that passed validation, with typed intents.
type Output struct {
	Transcript string
	Reply      string
	Actions    []domain.ActionIntent
}

// Validator checks raw inference output against a JSON Schema and decodes it
// into typed intents. Nothing reaches the executor without passing through it.
type Validator struct {
	schema *jsonschema.Schema
	loc    *time.Location
}

// NewValidator compiles the output schema. Dates without a zone are read in loc.
func NewValidator(maxActions int, loc *time.Location) (*Validator, error) {
	if loc == nil {
		loc = time.UTC
	}

	doc, err := json.Marshal(validationDocument(maxActions))
	if err != nil {
		return nil, fmt.Errorf("marshal output schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(validationSchemaURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add output schema: %w", err)
	}
	schema, err := c.Compile(validationSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile output schema: %w", err)
	}

	return &Validator{schema: schema, loc: loc}, nil
}

// Validate parses raw, checks it, and decodes the action list. Any structural
// problem yields a *domain.ValidationError; the output is never partially accepted.
func (v *Validator) Validate(ctx context.Context, raw string) (*Output, error) {
	var doc any
	if err := json.Unmarshal([]byte(stripFences(raw)), &doc); err != nil {
		return nil, &domain.ValidationError{Violations: []domain.Violation{{Reason: "not valid JSON: " + err.Error()}}}
	}

	if err := v.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &domain.ValidationError{Violations: violations(verr)}
		}
		return nil, &domain.ValidationError{Violations: []domain.Violation{{Reason: err.Error()}}}
	}

	var out modelOutput
	if err := decode(doc, &out); err != nil {
		return nil, &domain.ValidationError{Violations: []domain.Violation{{Reason: err.Error()}}}
	}

	log := observability.LoggerFromContext(ctx)
	res := &Output{
		Transcript: deref(out.Transcript),
		Reply:      deref(out.Reply),
		Actions:    make([]domain.ActionIntent, 0, len(out.Actions)),
	}
	for i, a := range out.Actions {
		intent, err := v.toIntent(a, func(field, value string, err error) {
			log.Warn("ignoring unparseable action field",
				"action_index", i,
				"field", field,
				"value", value,
				"error", err)
		})
		if err != nil {
			return nil, &domain.ValidationError{Violations: []domain.Violation{{
				Path:   fmt.Sprintf("/actions/%d", i),
				Reason: err.Error(),
			}}}
		}
		res.Actions = append(res.Actions, intent)
	}
	return res, nil
}

// violations flattens the schema error tree into its leaves.
func violations(err *jsonschema.ValidationError) []domain.Violation {
	if len(err.Causes) == 0 {
		return []domain.Violation{{Path: err.InstanceLocation, Reason: err.Message}}
	}
	var out []domain.Violation
	for _, c := range err.Causes {
		out = append(out, violations(c)...)
	}
	return out
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

type modelOutput struct {
	Transcript *string       `mapstructure:"transcript"`
	Reply      *string       `mapstructure:"reply"`
	Actions    []modelAction `mapstructure:"actions"`
}

type modelAction struct {
	Type   string       `mapstructure:"type"`
	Params actionParams `mapstructure:"params"`
}

type actionParams struct {
	Title       *string  `mapstructure:"title"`
	Name        *string  `mapstructure:"name"`
	Description *string  `mapstructure:"description"`
	Content     *string  `mapstructure:"content"`
	Tags        []string `mapstructure:"tags"`
	TargetID    *string  `mapstructure:"targetId"`
	ProjectID   *string  `mapstructure:"projectId"`
	DueDate     *string  `mapstructure:"dueDate"`
	Priority    *string  `mapstructure:"priority"`
	Color       *string  `mapstructure:"color"`
	Status      *string  `mapstructure:"status"`
	Frequency   *string  `mapstructure:"frequency"`
	TargetCount *int     `mapstructure:"targetCount"`
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

type warnFunc func(field, value string, err error)

func (v *Validator) toIntent(a modelAction, warn warnFunc) (domain.ActionIntent, error) {
	p := a.Params

	switch domain.ActionKind(a.Type) {
	case domain.KindCreateTask:
		return domain.CreateTask{
			Title:       deref(p.Title),
			Description: deref(p.Description),
			ProjectID:   deref(p.ProjectID),
			DueDate:     v.dueDate(p.DueDate, warn),
			Priority:    deref(p.Priority),
			Status:      deref(p.Status),
			Tags:        p.Tags,
		}, nil
	case domain.KindCreateNote:
		return domain.CreateNote{
			Title:       deref(p.Title),
			Content:     deref(p.Content),
			Description: deref(p.Description),
			ProjectID:   deref(p.ProjectID),
			Tags:        p.Tags,
		}, nil
	case domain.KindCreateProject:
		return domain.CreateProject{
			Title:       deref(p.Title),
			Description: deref(p.Description),
			Color:       deref(p.Color),
			Priority:    deref(p.Priority),
			Status:      deref(p.Status),
		}, nil
	case domain.KindCreateHabit:
		h := domain.CreateHabit{
			Name:        deref(p.Name),
			Title:       deref(p.Title),
			Description: deref(p.Description),
			Frequency:   deref(p.Frequency),
		}
		if p.TargetCount != nil {
			h.TargetCount = *p.TargetCount
		}
		return h, nil
	case domain.KindUpdateTask:
		u := domain.UpdateTask{
			TargetID:    deref(p.TargetID),
			Title:       p.Title,
			Description: p.Description,
			ProjectID:   p.ProjectID,
			Priority:    p.Priority,
			Status:      p.Status,
			Tags:        p.Tags,
		}
		if p.DueDate != nil {
			if d := v.dueDate(p.DueDate, warn); !d.IsZero() || strings.TrimSpace(*p.DueDate) == "" {
				u.DueDate = &d
			}
		}
		return u, nil
	case domain.KindUpdateNote:
		return domain.UpdateNote{
			TargetID:  deref(p.TargetID),
			Title:     p.Title,
			Content:   p.Content,
			ProjectID: p.ProjectID,
			Tags:      p.Tags,
		}, nil
	case domain.KindUpdateHabit:
		return domain.UpdateHabit{
			TargetID:    deref(p.TargetID),
			Name:        firstSet(p.Name, p.Title),
			Description: p.Description,
			Frequency:   p.Frequency,
			TargetCount: p.TargetCount,
		}, nil
	case domain.KindChat:
		return domain.Chat{}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}
}

// dueDate parses a model-supplied due date. An unparseable value degrades to
// no due date.
func (v *Validator) dueDate(s *string, warn warnFunc) domain.DueDate {
	if s == nil {
		return domain.NoDueDate()
	}
	d, err := domain.ParseDueDate(*s, v.loc)
	if err != nil {
		warn("dueDate", *s, err)
		return domain.NoDueDate()
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstSet(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
