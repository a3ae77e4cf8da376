package assistant

import (
	"github.com/PabloGalante/planora/internal/domain"
)

func kindNames() []string {
	out := make([]string, 0, len(domain.ActionKinds))
	for _, k := range domain.ActionKinds {
		out = append(out, string(k))
	}
	return out
}

func nullable(t domain.SchemaType, desc string) *domain.Schema {
	return &domain.Schema{Type: t, Description: desc, Nullable: true}
}

// outputSchema is the response shape requested from the model for inference.
func outputSchema(maxActions int) *domain.Schema {
	params := &domain.Schema{
		Type: domain.SchemaObject,
		Properties: map[string]*domain.Schema{
			"title":       nullable(domain.SchemaString, ""),
			"name":        nullable(domain.SchemaString, "Name for habit"),
			"description": nullable(domain.SchemaString, ""),
			"content":     nullable(domain.SchemaString, "Body of a note"),
			"tags":        {Type: domain.SchemaArray, Items: &domain.Schema{Type: domain.SchemaString}, Nullable: true},
			"targetId":    nullable(domain.SchemaString, "ID of the item to update"),
			"projectId":   nullable(domain.SchemaString, "ID of an available project"),
			"dueDate":     nullable(domain.SchemaString, "YYYY-MM-DD or YYYY-MM-DDTHH:MM"),
			"priority":    {Type: domain.SchemaString, Enum: []string{"low", "medium", "high"}, Nullable: true},
			"color":       nullable(domain.SchemaString, ""),
			"status":      nullable(domain.SchemaString, ""),
			"frequency":   {Type: domain.SchemaString, Enum: []string{"daily", "weekly"}, Nullable: true},
			"targetCount": nullable(domain.SchemaInteger, "Times per period for a habit"),
		},
	}

	return &domain.Schema{
		Type:  domain.SchemaObject,
		Order: []string{"transcript", "reply", "actions"},
		Properties: map[string]*domain.Schema{
			"transcript": {Type: domain.SchemaString},
			"reply":      {Type: domain.SchemaString, Description: "Conversational reply in the user's language"},
			"actions": {
				Type:     domain.SchemaArray,
				MaxItems: maxActions,
				Items: &domain.Schema{
					Type:     domain.SchemaObject,
					Required: []string{"type", "params"},
					Properties: map[string]*domain.Schema{
						"type":   {Type: domain.SchemaString, Enum: kindNames()},
						"params": params,
					},
				},
			},
		},
		Required: []string{"reply", "actions"},
	}
}

// transcriptSchema is the single-field shape requested for transcription.
func transcriptSchema() *domain.Schema {
	return &domain.Schema{
		Type:       domain.SchemaObject,
		Properties: map[string]*domain.Schema{"transcript": {Type: domain.SchemaString}},
		Required:   []string{"transcript"},
	}
}

// validationDocument is the JSON Schema every inference output must satisfy
// before anything is executed. It is looser than outputSchema on purpose:
// it checks shape, not content.
func validationDocument(maxActions int) map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"actions"},
		"properties": map[string]any{
			"transcript": map[string]any{"type": "string"},
			"reply":      map[string]any{"type": "string"},
			"actions": map[string]any{
				"type":     "array",
				"maxItems": maxActions,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"type", "params"},
					"properties": map[string]any{
						"type":   map[string]any{"enum": toAny(kindNames())},
						"params": map[string]any{"type": "object"},
					},
					"if": map[string]any{
						"required":   []any{"type"},
						"properties": map[string]any{"type": map[string]any{"pattern": "^UPDATE_"}},
					},
					"then": map[string]any{
						"properties": map[string]any{
							"params": map[string]any{
								"required":   []any{"targetId"},
								"properties": map[string]any{"targetId": map[string]any{"type": "string", "minLength": 1}},
							},
						},
					},
				},
			},
		},
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
