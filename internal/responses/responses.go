// Package responses assembles the responses map for one operation from the
// route's declared schemas, its default response schema and per-status
// overrides.
package responses

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-openapi/spec"

	"github.com/griffnb/route-swag/internal/domain"
	"github.com/griffnb/route-swag/internal/properties"
)

// ErrMissingResponses is returned when a route declares no response at all.
// A response is the one field the document format requires, so this aborts
// the whole translation instead of degrading.
var ErrMissingResponses = errors.New("route declares no response schema or status responses")

// Build produces the responses map for one operation. Declared responses are
// the base; per-status overrides win field by field; the default schema fills
// in a 200 response when nothing else is declared.
func Build(declared map[int]domain.ResponseSpec, defaultSchema *domain.Schema, overrides map[int]domain.ResponseSpec, props *properties.Builder, useDefinitions, isAlternate bool) (*spec.Responses, error) {
	merged := make(map[int]domain.ResponseSpec, len(declared)+len(overrides))
	for code, rs := range declared {
		merged[code] = rs
	}
	for code, rs := range overrides {
		base := merged[code]
		if rs.Description != "" {
			base.Description = rs.Description
		}
		if rs.Schema != nil {
			base.Schema = rs.Schema
		}
		if len(rs.Headers) > 0 {
			base.Headers = rs.Headers
		}
		merged[code] = base
	}

	if len(merged) == 0 {
		if defaultSchema == nil {
			return nil, ErrMissingResponses
		}
		merged[http.StatusOK] = domain.ResponseSpec{Schema: defaultSchema}
	}

	out := &spec.Responses{
		ResponsesProps: spec.ResponsesProps{
			StatusCodeResponses: make(map[int]spec.Response, len(merged)),
		},
	}

	// Deterministic parse order so definition naming does not depend on map
	// iteration.
	codes := make([]int, 0, len(merged))
	for code := range merged {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	for _, code := range codes {
		out.StatusCodeResponses[code] = buildOne(code, merged[code], props, useDefinitions, isAlternate)
	}

	return out, nil
}

func buildOne(code int, rs domain.ResponseSpec, props *properties.Builder, useDefinitions, isAlternate bool) spec.Response {
	resp := spec.Response{
		ResponseProps: spec.ResponseProps{
			Description: rs.Description,
		},
	}
	if resp.Description == "" {
		resp.Description = defaultDescription(code)
	}

	if rs.Schema != nil {
		resp.Schema = props.Parse("response", rs.Schema, domain.LocationBody, useDefinitions, isAlternate)
	}

	if len(rs.Headers) > 0 {
		resp.Headers = make(map[string]spec.Header, len(rs.Headers))
		for name, hs := range rs.Headers {
			resp.Headers[name] = headerFromSchema(hs)
		}
	}

	return resp
}

func headerFromSchema(hs *domain.Schema) spec.Header {
	header := spec.Header{
		HeaderProps: spec.HeaderProps{Description: hs.Description},
	}
	switch hs.Kind {
	case domain.KindNumber:
		header.Type = "number"
	case domain.KindInteger:
		header.Type = "integer"
	case domain.KindBoolean:
		header.Type = "boolean"
	default:
		header.Type = "string"
	}
	header.Format = hs.Format
	return header
}

// defaultDescription falls back to the standard status text, then to a
// generic marker for unknown codes.
func defaultDescription(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Successful"
}
