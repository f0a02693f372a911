package domain

import (
	"encoding/json"
	"strings"
)

// RouteDescriptor describes one HTTP endpoint as declared by the host
// service: path template, method, and the validation/response schemas to
// translate. Descriptors are treated as immutable input.
type RouteDescriptor struct {
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description MultiLine `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`

	// Validation schemas per request location. Absent means no constraint.
	Query   *Schema `json:"query,omitempty"`
	Params  *Schema `json:"params,omitempty"`
	Headers *Schema `json:"headers,omitempty"`
	Payload *Schema `json:"payload,omitempty"`

	// ResponseSchema documents the default success body when no explicit
	// per-status responses are declared.
	ResponseSchema  *Schema              `json:"responseSchema,omitempty"`
	Responses       map[int]ResponseSpec `json:"responses,omitempty"`
	StatusOverrides map[int]ResponseSpec `json:"statusOverrides,omitempty"`

	Consumes    []string                `json:"consumes,omitempty"`
	Produces    []string                `json:"produces,omitempty"`
	PayloadType string                  `json:"payloadType,omitempty"`
	Security    []map[string][]string   `json:"security,omitempty"`
	Order       *int                    `json:"order,omitempty"`
	Deprecated  *bool                   `json:"deprecated,omitempty"`
}

// NormalizedRoute is a RouteDescriptor after path replacement and validator
// substitution. Field meanings match RouteDescriptor; schemas are guaranteed
// to be structured (never opaque callables).
type NormalizedRoute struct {
	Method      string
	Path        string
	ID          string
	Summary     string
	Description MultiLine
	Tags        []string
	Groups      []string

	Query   *Schema
	Params  *Schema
	Headers *Schema
	Payload *Schema

	ResponseSchema  *Schema
	Responses       map[int]ResponseSpec
	StatusOverrides map[int]ResponseSpec

	Consumes    []string
	Produces    []string
	PayloadType string
	Security    []map[string][]string
	Order       *int
	Deprecated  *bool
}

// ResponseSpec declares one response: a description, an optional body schema
// and optional header schemas.
type ResponseSpec struct {
	Description string             `json:"description,omitempty"`
	Schema      *Schema            `json:"schema,omitempty"`
	Headers     map[string]*Schema `json:"headers,omitempty"`
}

// MultiLine is a description that may be declared either as a single string
// or as a sequence of lines.
type MultiLine []string

// UnmarshalJSON accepts both a plain string and an array of strings.
func (m *MultiLine) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*m = nil
		} else {
			*m = MultiLine{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = MultiLine(many)
	return nil
}

// MarshalJSON emits a single line as a plain string.
func (m MultiLine) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// Join renders the description for the document. Multi-line sequences are
// joined with a visible line-break marker.
func (m MultiLine) Join() string {
	return strings.Join(m, "<br>")
}
