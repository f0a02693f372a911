package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/griffnb/route-swag/internal/domain"
	"github.com/griffnb/route-swag/internal/parameters"
	"github.com/griffnb/route-swag/internal/properties"
	"github.com/griffnb/route-swag/internal/responses"
)

// fileMarker is searched for in the serialized payload schema to detect file
// upload fields anywhere in the tree.
var fileMarker = []byte(`"type":"file"`)

// buildOperation derives the operation object for one normalized route and
// returns the resolved path key, the lowercase method and the operation.
// Per-field anomalies degrade with a diagnostic; the only error is a route
// with no response declaration at all.
func (t *translation) buildOperation(route *domain.NormalizedRoute) (string, string, *spec.Operation, error) {
	// Step 1: resolve the emitted path.
	path := domain.StripBasePath(route.Path, t.settings.BasePath)
	path = domain.ApplyPathReplacements(path, t.settings.PathReplacements, domain.ReplaceInEndpoints)

	routeTags := []string{"builder", route.Method, path}

	// Step 2: identity and descriptive metadata.
	op := &spec.Operation{}
	op.ID = t.uniqueID(route.ID, route.Method, path)
	op.Summary = route.Summary
	op.Description = route.Description.Join()
	if len(route.Tags) > 0 {
		op.Tags = route.Tags
	} else if len(route.Groups) > 0 {
		op.Tags = route.Groups
	}

	// Step 3: payload parameters and content-type detection.
	payloadParams, consumes := t.buildPayload(route, routeTags)

	// Step 4: path parameters with required inference from the template.
	pathParams := t.buildPathParams(route, routeTags)

	// Step 5: header parameters, optionally feeding produces.
	headerParams, acceptProduces := t.buildHeaderParams(route, routeTags)

	// Step 6: query parameters.
	queryParams := t.buildLocationParams(route.Query, domain.LocationQuery, routeTags)

	// Step 7: fixed assembly order — header, path, query, payload. Consuming
	// renderers rely on this grouping.
	params := make([]spec.Parameter, 0, len(headerParams)+len(pathParams)+len(queryParams)+len(payloadParams))
	params = append(params, headerParams...)
	params = append(params, pathParams...)
	params = append(params, queryParams...)
	params = append(params, payloadParams...)
	if len(params) > 0 {
		op.Parameters = params
	}

	// Explicit declarations always beat auto-detection; the global setting
	// is the fallback for routes without their own.
	if len(route.Consumes) > 0 {
		consumes = route.Consumes
	} else if len(t.settings.Consumes) > 0 {
		consumes = t.settings.Consumes
	}

	produces := acceptProduces
	if len(route.Produces) > 0 {
		produces = route.Produces
	} else if len(t.settings.Produces) > 0 {
		produces = t.settings.Produces
	}

	// Step 8: an explicit content-type header owns the content type; any
	// auto-detected consumes would conflict with it.
	for _, p := range params {
		if p.In == domain.LocationHeader && strings.EqualFold(p.Name, "content-type") {
			consumes = nil
			break
		}
	}

	if len(consumes) > 0 {
		op.Consumes = consumes
	}
	if len(produces) > 0 {
		op.Produces = produces
	}

	// Step 9: responses. A route without any response declaration is a
	// configuration error, not a degradable anomaly.
	resp, err := responses.Build(route.Responses, route.ResponseSchema, route.StatusOverrides, t.props, true, false)
	if err != nil {
		return "", "", nil, fmt.Errorf("route %s %s: %w", route.Method, route.Path, err)
	}
	op.Responses = resp

	// Step 10: optional fields.
	if len(route.Security) > 0 {
		op.Security = route.Security
	}
	if route.Order != nil {
		op.AddExtension("x-order", *route.Order)
	}
	if route.Deprecated != nil {
		// Absence and false are the same thing on the wire; the document
		// model cannot emit an explicit false.
		op.Deprecated = *route.Deprecated
	}

	// Steps 11 and 12 are handled by construction (optional fields are only
	// set when non-empty) and by the caller's path merge.
	return domain.StripOptionalMarkers(path), strings.ToLower(route.Method), op, nil
}

// buildPayload derives the body or formData parameters and any auto-detected
// consumes list.
func (t *translation) buildPayload(route *domain.NormalizedRoute, routeTags []string) ([]spec.Parameter, []string) {
	payloadType := t.settings.PayloadType
	if route.PayloadType != "" {
		payloadType = route.PayloadType
	}

	var params []spec.Parameter
	var consumes []string

	if payloadType == PayloadTypeJSON {
		if route.Payload != nil {
			tree := t.props.Parse("", route.Payload, domain.LocationBody, true, false)
			params = parameters.FromProperties(tree, domain.LocationBody)
			if route.Payload.IsRequired() && len(params) > 0 {
				params[0].Required = true
			}
		}
	} else {
		switch {
		case route.Payload.HasProperties():
			// Form fields are always inlined; shared definitions cannot be
			// referenced from formData parameters.
			tree := t.props.Parse("", route.Payload, domain.LocationFormData, false, false)
			params = parameters.FromProperties(tree, domain.LocationFormData)
			consumes = []string{MediaTypeFormURLEncoded}
		case route.Payload != nil:
			t.diags.Error(routeTags, "a form payload requires an object schema with fields")
		}
	}

	if hasFileType(route.Payload) {
		consumes = []string{MediaTypeMultipartForm}
	}

	return params, consumes
}

// buildPathParams builds path parameters and infers required-ness from the
// path template for fields that did not set it explicitly.
func (t *translation) buildPathParams(route *domain.NormalizedRoute, routeTags []string) []spec.Parameter {
	if !route.Params.HasProperties() {
		if route.Params != nil {
			t.diags.Error(routeTags, "a path schema must be an object with fields")
		}
		return nil
	}

	tree := t.props.Parse("", route.Params, domain.LocationPath, false, false)
	params := parameters.FromProperties(tree, domain.LocationPath)

	explicitOptional := optionalSet(tree)
	for i := range params {
		p := &params[i]
		if !p.Required && !explicitOptional[p.Name] {
			p.Required = domain.TemplateRequiresParam(route.Path, p.Name)
		}
		if !p.Required {
			// Tolerated by documentation renderers, invalid per the format's
			// own grammar; emitted anyway, with required absent.
			t.diags.Warn(routeTags, "path parameter %q is optional, but the document format requires path parameters to be required", p.Name)
		}
	}
	return params
}

// buildHeaderParams builds header parameters and, when configured, converts
// an Accept header enum into the produces list.
func (t *translation) buildHeaderParams(route *domain.NormalizedRoute, routeTags []string) ([]spec.Parameter, []string) {
	params := t.buildLocationParams(route.Headers, domain.LocationHeader, routeTags)
	if !t.settings.AcceptToProduce {
		return params, nil
	}

	var produces []string
	kept := params[:0]
	for _, p := range params {
		if strings.EqualFold(p.Name, "accept") && len(p.Enum) > 0 {
			produces = acceptProduces(p)
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, produces
	}
	return kept, produces
}

// acceptProduces orders the Accept enum with the header's default value (if
// any) first.
func acceptProduces(p spec.Parameter) []string {
	values := make([]string, 0, len(p.Enum))
	for _, v := range p.Enum {
		values = append(values, fmt.Sprint(v))
	}
	preferred := ""
	if p.Default != nil {
		preferred = fmt.Sprint(p.Default)
	}
	return domain.PreferredFirst(values, preferred)
}

// buildLocationParams is the shared query/header path: an object schema with
// fields becomes parameters, anything else present is unusable.
func (t *translation) buildLocationParams(sch *domain.Schema, location string, routeTags []string) []spec.Parameter {
	if sch.HasProperties() {
		tree := t.props.Parse("", sch, location, false, false)
		return parameters.FromProperties(tree, location)
	}
	if sch != nil {
		t.diags.Error(routeTags, "a %s schema must be an object with fields", location)
	}
	return nil
}

// optionalSet reads back the explicitly-optional children recorded on a path
// property tree.
func optionalSet(tree *spec.Schema) map[string]bool {
	out := make(map[string]bool)
	if tree == nil {
		return out
	}
	if raw, ok := tree.Extensions[properties.OptionalExtension]; ok {
		if names, ok := raw.([]string); ok {
			for _, name := range names {
				out[name] = true
			}
		}
	}
	return out
}

// hasFileType reports whether a file-upload field appears anywhere in the
// payload schema, by serializing it and scanning for the file type marker.
func hasFileType(sch *domain.Schema) bool {
	if sch == nil {
		return false
	}
	data, err := json.Marshal(sch)
	if err != nil {
		return false
	}
	return bytes.Contains(data, fileMarker)
}

// uniqueID returns the explicit id, or the deterministic derivation from
// method and path, suffixed if an earlier route in the same set already
// claimed it.
func (t *translation) uniqueID(explicit, method, path string) string {
	id := explicit
	if id == "" {
		id = domain.GenerateOperationID(method, path)
	}
	if !t.usedIDs[id] {
		t.usedIDs[id] = true
		return id
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", id, i)
		if !t.usedIDs[candidate] {
			t.usedIDs[candidate] = true
			return candidate
		}
	}
}
