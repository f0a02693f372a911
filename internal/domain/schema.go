// Package domain contains the validation-schema and route models consumed by
// the translation engine.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies the variant of a validation schema. The set is closed: any
// schema the manifest declares outside of it is ingested as KindCustom, the
// opaque variant, and degraded later with a diagnostic.
type Kind string

const (
	// KindString represents a string value.
	KindString Kind = "string"
	// KindNumber represents a floating point value.
	KindNumber Kind = "number"
	// KindInteger represents an integer value.
	KindInteger Kind = "integer"
	// KindBoolean represents a boolean value.
	KindBoolean Kind = "boolean"
	// KindObject represents an object with named child schemas.
	KindObject Kind = "object"
	// KindArray represents an array with an item schema.
	KindArray Kind = "array"
	// KindAlternatives represents a choice between several schemas.
	KindAlternatives Kind = "alternatives"
	// KindFile represents a file upload field.
	KindFile Kind = "file"
	// KindAny represents an unconstrained value.
	KindAny Kind = "any"
	// KindCustom represents an opaque imperative validator that cannot be
	// described structurally.
	KindCustom Kind = "custom"
)

// Schema is the canonical description of acceptable values for one request
// location or response body. Object children keep their declaration order.
type Schema struct {
	Kind         Kind
	Label        string
	Description  string
	Required     *bool
	Enum         []interface{}
	Default      interface{}
	Format       string
	Fields       []Field
	Items        *Schema
	Alternatives []*Schema

	// Validator names the opaque callable carried by the custom variant.
	Validator string
}

// Field is one named child of an object schema.
type Field struct {
	Name   string
	Schema *Schema
}

// HasProperties reports whether the schema is an object with at least one
// named child.
func (s *Schema) HasProperties() bool {
	return s != nil && s.Kind == KindObject && len(s.Fields) > 0
}

// IsCustom reports whether the schema is an opaque imperative validator
// rather than a structured description.
func (s *Schema) IsCustom() bool {
	return s != nil && (s.Kind == KindCustom || (s.Kind == "" && s.Validator != ""))
}

// IsRequired reports whether the schema explicitly requires a value.
func (s *Schema) IsRequired() bool {
	return s != nil && s.Required != nil && *s.Required
}

// Field returns the child schema with the given name, or nil.
func (s *Schema) Field(name string) *Schema {
	if s == nil {
		return nil
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Schema
		}
	}
	return nil
}

// schemaAlias mirrors Schema for (un)marshalling, with properties handled
// separately so declaration order survives the round trip.
type schemaAlias struct {
	Kind         Kind            `json:"type,omitempty"`
	Label        string          `json:"label,omitempty"`
	Description  string          `json:"description,omitempty"`
	Required     *bool           `json:"required,omitempty"`
	Enum         []interface{}   `json:"enum,omitempty"`
	Default      interface{}     `json:"default,omitempty"`
	Format       string          `json:"format,omitempty"`
	Properties   json.RawMessage `json:"properties,omitempty"`
	Items        *Schema         `json:"items,omitempty"`
	Alternatives []*Schema       `json:"alternatives,omitempty"`
	Validator    string          `json:"validator,omitempty"`
}

// UnmarshalJSON decodes a schema, classifying it into a closed variant set.
// Object properties are decoded with a token stream so their declaration
// order is preserved.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var alias schemaAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	s.Kind = alias.Kind
	s.Label = alias.Label
	s.Description = alias.Description
	s.Required = alias.Required
	s.Enum = alias.Enum
	s.Default = alias.Default
	s.Format = alias.Format
	s.Items = alias.Items
	s.Alternatives = alias.Alternatives
	s.Validator = alias.Validator

	if s.Kind == "" {
		switch {
		case s.Validator != "":
			s.Kind = KindCustom
		case len(alias.Properties) > 0:
			s.Kind = KindObject
		case s.Items != nil:
			s.Kind = KindArray
		case len(s.Alternatives) > 0:
			s.Kind = KindAlternatives
		default:
			s.Kind = KindAny
		}
	}

	if len(alias.Properties) > 0 {
		fields, err := decodeOrderedFields(alias.Properties)
		if err != nil {
			return fmt.Errorf("failed to decode schema properties: %w", err)
		}
		s.Fields = fields
	}

	return nil
}

// decodeOrderedFields walks a JSON object token by token so that child order
// matches the manifest.
func decodeOrderedFields(raw json.RawMessage) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("properties must be a JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid property key: %v", keyTok)
		}

		child := &Schema{}
		if err := dec.Decode(child); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Schema: child})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return fields, nil
}

// MarshalJSON encodes the schema back into manifest form, emitting object
// properties in declaration order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	alias := schemaAlias{
		Kind:         s.Kind,
		Label:        s.Label,
		Description:  s.Description,
		Required:     s.Required,
		Enum:         s.Enum,
		Default:      s.Default,
		Format:       s.Format,
		Items:        s.Items,
		Alternatives: s.Alternatives,
		Validator:    s.Validator,
	}

	if len(s.Fields) > 0 {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range s.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(f.Schema)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", f.Name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		alias.Properties = buf.Bytes()
	}

	return json.Marshal(alias)
}
