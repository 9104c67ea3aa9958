package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Type names follow JSON Schema so a Schema can be embedded in prompts as is.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is a provider-neutral description of the expected reply.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Object builds an object schema where every listed property is required.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}

// ArrayOf builds an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String builds a string schema, optionally restricted to enum values.
func String(enum ...string) *Schema {
	return &Schema{Type: TypeString, Enum: enum}
}

func Number() *Schema  { return &Schema{Type: TypeNumber} }
func Integer() *Schema { return &Schema{Type: TypeInteger} }

// JSON renders the schema for inclusion in a prompt.
func (s *Schema) JSON() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Validate checks a value decoded with json.Decoder.UseNumber against the
// schema: required keys, value types and enums. Unknown keys are ignored.
func (s *Schema) Validate(value any) error {
	return s.validate("$", value)
}

func (s *Schema) validate(path string, value any) error {
	if value == nil {
		return fmt.Errorf("%s: expected %s, got null", path, s.Type)
	}

	switch s.Type {
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return typeError(path, s.Type, value)
		}
		for _, key := range s.Required {
			if _, ok := obj[key]; !ok {
				return fmt.Errorf("%s: missing required field %q", path, key)
			}
		}
		for key, prop := range s.Properties {
			v, ok := obj[key]
			if !ok {
				continue
			}
			if err := prop.validate(path+"."+key, v); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := value.([]any)
		if !ok {
			return typeError(path, s.Type, value)
		}
		if s.Items != nil {
			for i, v := range arr {
				if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), v); err != nil {
					return err
				}
			}
		}
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return typeError(path, s.Type, value)
		}
		if len(s.Enum) > 0 && !contains(s.Enum, str) {
			return fmt.Errorf("%s: %q is not one of [%s]", path, str, strings.Join(s.Enum, ", "))
		}
	case TypeNumber:
		if _, ok := number(value); !ok {
			return typeError(path, s.Type, value)
		}
	case TypeInteger:
		f, ok := number(value)
		if !ok || f != math.Trunc(f) {
			return typeError(path, s.Type, value)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeError(path, s.Type, value)
		}
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}
	return nil
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	}
	return 0, false
}

func typeError(path string, want Type, value any) error {
	return fmt.Errorf("%s: expected %s, got %T", path, want, value)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
