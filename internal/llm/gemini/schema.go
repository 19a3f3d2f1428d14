package gemini

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// convertSchema translates a JSON Schema into the OpenAPI subset genai accepts.
// Keywords genai has no field for (uniqueItems, $id) are dropped; responses are
// validated against the original schema after generation anyway.
func convertSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}
	typ, err := convertType(s.Type)
	if err != nil {
		return nil, err
	}
	out := &genai.Schema{
		Type:        typ,
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Required:    append([]string(nil), s.Required...),
		Pattern:     s.Pattern,
	}
	if s.MinLength != nil {
		out.MinLength = genai.Ptr(int64(*s.MinLength))
	}
	if s.MinItems != nil {
		out.MinItems = genai.Ptr(int64(*s.MinItems))
	}
	if s.MaxItems != nil {
		out.MaxItems = genai.Ptr(int64(*s.MaxItems))
	}
	for _, v := range s.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(v))
	}
	if s.Items != nil {
		items, err := convertSchema(s.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}
	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		out.Properties = make(map[string]*genai.Schema, len(names))
		for _, name := range names {
			prop, err := convertSchema(s.Properties[name])
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = prop
		}
		out.PropertyOrdering = orderProperties(names, s.Required)
	}
	return out, nil
}

func convertType(t string) (genai.Type, error) {
	switch strings.ToLower(t) {
	case "object":
		return genai.TypeObject, nil
	case "array":
		return genai.TypeArray, nil
	case "string":
		return genai.TypeString, nil
	case "integer":
		return genai.TypeInteger, nil
	case "number":
		return genai.TypeNumber, nil
	case "boolean":
		return genai.TypeBoolean, nil
	default:
		return "", fmt.Errorf("unsupported schema type %q", t)
	}
}

// orderProperties puts required properties first, in declaration order.
func orderProperties(sorted, required []string) []string {
	out := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, name := range required {
		if !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	for _, name := range sorted {
		if !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}
