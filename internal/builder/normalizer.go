package builder

import (
	"strings"

	"github.com/griffnb/route-swag/internal/domain"
)

// hiddenModelName labels the placeholder substituted for validators that
// cannot be described structurally.
const hiddenModelName = "Hidden Model"

// normalize converts the raw route descriptors into canonical form, in input
// order. Unsupported validator constructs never fail the pass; they degrade
// to placeholders (or are dropped, for path parameters) with a diagnostic.
func (t *translation) normalize(routes []domain.RouteDescriptor) []domain.NormalizedRoute {
	out := make([]domain.NormalizedRoute, 0, len(routes))
	for i := range routes {
		out = append(out, t.normalizeRoute(&routes[i]))
	}
	return out
}

func (t *translation) normalizeRoute(rd *domain.RouteDescriptor) domain.NormalizedRoute {
	path := domain.ApplyPathReplacements(rd.Path, t.settings.PathReplacements, domain.ReplaceInEndpoints)
	method := strings.ToUpper(strings.TrimSpace(rd.Method))

	nr := domain.NormalizedRoute{
		Method:      method,
		Path:        path,
		ID:          rd.ID,
		Summary:     rd.Summary,
		Description: rd.Description,
		Tags:        rd.Tags,
		Groups: domain.DeriveGroups(
			domain.StripBasePath(path, t.settings.BasePath),
			t.settings.PathPrefixSize,
			t.settings.PathReplacements,
		),
		ResponseSchema:  rd.ResponseSchema,
		Responses:       rd.Responses,
		StatusOverrides: rd.StatusOverrides,
		Consumes:        rd.Consumes,
		Produces:        rd.Produces,
		PayloadType:     rd.PayloadType,
		Security:        rd.Security,
		Order:           rd.Order,
		Deprecated:      rd.Deprecated,
	}

	nr.Query = t.normalizeLocationSchema(rd.Query, domain.LocationQuery, method, path)
	nr.Headers = t.normalizeLocationSchema(rd.Headers, domain.LocationHeader, method, path)

	// Opaque payload validators degrade to a single labeled placeholder
	// field so the operation still documents that a body exists.
	if rd.Payload.IsCustom() {
		t.diags.Warn([]string{"builder", method, path},
			"payload validator %q cannot be represented, substituting a placeholder model", rd.Payload.Validator)
		nr.Payload = hiddenModelSchema(hiddenModelName)
	} else {
		nr.Payload = rd.Payload
	}

	// Custom path validators cannot be rendered as path parameters safely;
	// they are dropped, not placeholder-ed.
	if rd.Params.IsCustom() {
		t.diags.Error([]string{"builder", method, path},
			"path validator %q is unsupported and was dropped", rd.Params.Validator)
		nr.Params = nil
	} else {
		nr.Params = rd.Params
	}

	return nr
}

// normalizeLocationSchema substitutes a placeholder for opaque query/header
// validators, which the document format cannot represent.
func (t *translation) normalizeLocationSchema(sch *domain.Schema, location, method, path string) *domain.Schema {
	if !sch.IsCustom() {
		return sch
	}
	t.diags.Warn([]string{"builder", method, path},
		"%s validator %q cannot be represented, substituting a placeholder model", location, sch.Validator)
	return hiddenModelSchema("")
}

// hiddenModelSchema builds the single-field placeholder object.
func hiddenModelSchema(label string) *domain.Schema {
	return &domain.Schema{
		Kind:  domain.KindObject,
		Label: label,
		Fields: []domain.Field{
			{Name: hiddenModelName, Schema: &domain.Schema{Kind: domain.KindString}},
		},
	}
}
