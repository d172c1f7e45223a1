package llm

import (
	"encoding/json"
	"fmt"
	"sort"

	"google.golang.org/genai"
)

// jsonSchemaNode is the subset of JSON Schema that Gemini response schemas can express
type jsonSchemaNode struct {
	Type        schemaTypes                `json:"type"`
	Description string                     `json:"description"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Items       *jsonSchemaNode            `json:"items"`
	Required    []string                   `json:"required"`
	Enum        []string                   `json:"enum"`
}

// schemaTypes accepts both "type": "number" and "type": ["number", "null"]
type schemaTypes []string

func (t *schemaTypes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = schemaTypes{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("type must be a string or an array of strings: %w", err)
	}
	*t = many
	return nil
}

// split returns the single non-null type and whether null is allowed
func (t schemaTypes) split() (string, bool, error) {
	var nullable bool
	var types []string
	for _, name := range t {
		if name == "null" {
			nullable = true
			continue
		}
		types = append(types, name)
	}
	if len(types) != 1 {
		return "", false, fmt.Errorf("expected exactly one non-null type, got %v", []string(t))
	}
	return types[0], nullable, nil
}

// SchemaFromJSON converts a JSON Schema document into a Gemini response schema.
// Keywords Gemini does not understand (minimum, $schema, additionalProperties...) are dropped.
func SchemaFromJSON(raw []byte) (*genai.Schema, error) {
	var root jsonSchemaNode
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	return convertNode(&root, "(root)")
}

func convertNode(node *jsonSchemaNode, path string) (*genai.Schema, error) {
	name, nullable, err := node.Type.split()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	schemaType, err := geminiType(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := &genai.Schema{
		Type:        schemaType,
		Description: node.Description,
		Required:    node.Required,
	}
	if nullable {
		out.Nullable = &nullable
	}
	if len(node.Enum) > 0 {
		out.Format = "enum"
		out.Enum = node.Enum
	}

	if len(node.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(node.Properties))
		names := make([]string, 0, len(node.Properties))
		for name := range node.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			prop, err := convertNode(node.Properties[name], path+"."+name)
			if err != nil {
				return nil, err
			}
			out.Properties[name] = prop
		}
	}

	if node.Items != nil {
		items, err := convertNode(node.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
	}

	return out, nil
}

func geminiType(t string) (genai.Type, error) {
	switch t {
	case "object":
		return genai.TypeObject, nil
	case "array":
		return genai.TypeArray, nil
	case "string":
		return genai.TypeString, nil
	case "number":
		return genai.TypeNumber, nil
	case "integer":
		return genai.TypeInteger, nil
	case "boolean":
		return genai.TypeBoolean, nil
	default:
		return genai.TypeUnspecified, fmt.Errorf("unsupported schema type %q", t)
	}
}
