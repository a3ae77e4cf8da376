package llm

import (
	"google.golang.org/genai"

	"github.com/PabloGalante/planora/internal/domain"
)

// buildContents turns conversation history plus the current parts into genai
// contents: user turns as RoleUser, assistant turns as RoleModel.
func buildContents(history []domain.Turn, parts []domain.Part) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		if t.Text == "" {
			continue
		}
		var role genai.Role
		switch t.Sender {
		case domain.SenderAI:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	current := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.Media != nil:
			current = append(current, genai.NewPartFromBytes(p.Media.Data, p.Media.MIMEType))
		case p.Text != "":
			current = append(current, genai.NewPartFromText(p.Text))
		}
	}
	if len(current) == 0 {
		current = append(current, genai.NewPartFromText(""))
	}
	return append(contents, genai.NewContentFromParts(current, genai.RoleUser))
}

func toGenaiSchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiType(s.Type),
		Description:      s.Description,
		Enum:             s.Enum,
		Required:         s.Required,
		PropertyOrdering: s.Order,
		Items:            toGenaiSchema(s.Items),
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if s.MaxItems > 0 {
		out.MaxItems = genai.Ptr(int64(s.MaxItems))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func genaiType(t domain.SchemaType) genai.Type {
	switch t {
	case domain.SchemaString:
		return genai.TypeString
	case domain.SchemaInteger:
		return genai.TypeInteger
	case domain.SchemaNumber:
		return genai.TypeNumber
	case domain.SchemaBoolean:
		return genai.TypeBoolean
	case domain.SchemaArray:
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}
