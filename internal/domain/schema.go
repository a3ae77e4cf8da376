package domain

// SchemaType mirrors the small type set structured generation supports.
type SchemaType string

const (
	SchemaString  SchemaType = "string"
	SchemaInteger SchemaType = "integer"
	SchemaNumber  SchemaType = "number"
	SchemaBoolean SchemaType = "boolean"
	SchemaArray   SchemaType = "array"
	SchemaObject  SchemaType = "object"
)

// Schema is a provider-neutral response shape handed to a Generator.
type Schema struct {
	Type        SchemaType
	Description string
	Enum        []string
	Properties  map[string]*Schema
	Order       []string
	Items       *Schema
	Required    []string
	Nullable    bool
	MaxItems    int
}
