package llm

import "context"

type SchemaField struct {
	Name        string
	Description string
	Nullable    bool
}

// OutputSchema describes a flat JSON object of string fields. Every field is
// required, nullable ones may be sent as null.
type OutputSchema struct {
	Name   string
	Fields []SchemaField
}

type InvokeOptions struct {
	Temperature     float32
	MaxOutputTokens int
	//when set the provider asks the model for JSON matching the schema
	Schema *OutputSchema
}

type Response struct {
	Content string
}

type Provider interface {
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) (Response, error)
}

// JSONSchema renders the schema in the JSON Schema dialect used by OpenAI style APIs.
func (s *OutputSchema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		var fieldType any = "string"
		if f.Nullable {
			fieldType = []string{"string", "null"}
		}
		prop := map[string]any{"type": fieldType}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		properties[f.Name] = prop
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}
