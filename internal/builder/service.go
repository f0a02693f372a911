package builder

import (
	"net/http"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/griffnb/route-swag/internal/diag"
	"github.com/griffnb/route-swag/internal/domain"
	"github.com/griffnb/route-swag/internal/properties"
)

// AltDefinitionsExtension is the top-level key holding schemas that are not
// reachable as direct request or response bodies but are needed for
// reference resolution.
const AltDefinitionsExtension = "x-alt-definitions"

// Service translates route sets into Swagger documents. A Service is
// reentrant: every Translate call works on freshly allocated state, so one
// Service may serve concurrent callers.
type Service struct {
	settings *Settings
}

// New creates a translation service. settings may be nil; defaults apply.
func New(settings *Settings) *Service {
	return &Service{settings: settings.withDefaults()}
}

// Result is the outcome of one translation: the document plus every
// diagnostic recorded while building it.
type Result struct {
	Swagger     *spec.Swagger
	Diagnostics []diag.Diagnostic
}

// translation carries the per-call mutable state: the diagnostics collector,
// the definitions builder with its dedup cache, claimed operation ids and
// the accumulated path map. None of it survives the call.
type translation struct {
	settings *Settings
	diags    *diag.Collector
	props    *properties.Builder
	usedIDs  map[string]bool
	paths    map[string]spec.PathItem
}

// Translate runs the full route set through normalization and operation
// building and assembles the output document. Routes are processed strictly
// in input order. Per-route anomalies degrade with diagnostics; the only
// fatal condition is a route with no response declaration.
func (s *Service) Translate(routes []domain.RouteDescriptor) (*Result, error) {
	diags := diag.NewCollector(s.settings.Debug)
	t := &translation{
		settings: s.settings,
		diags:    diags,
		props:    properties.NewBuilder(diags),
		usedIDs:  make(map[string]bool),
		paths:    make(map[string]spec.PathItem),
	}

	for _, route := range t.normalize(routes) {
		path, method, op, err := t.buildOperation(&route)
		if err != nil {
			return nil, err
		}
		t.merge(path, method, op)
	}

	swagger := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Paths:       &spec.Paths{Paths: t.paths},
			Definitions: t.props.Definitions(),
		},
	}
	if alt := t.props.AltDefinitions(); len(alt) > 0 {
		swagger.AddExtension(AltDefinitionsExtension, alt)
	}

	return &Result{Swagger: swagger, Diagnostics: diags.Entries()}, nil
}

// merge inserts the operation under its path key; multiple methods
// accumulate under the same path.
func (t *translation) merge(path, method string, op *spec.Operation) {
	item := t.paths[path]
	slot := methodSlot(&item, method)
	if slot == nil {
		t.diags.Error([]string{"builder", method, path}, "unsupported HTTP method %q", method)
		return
	}
	if *slot != nil {
		t.diags.Warn([]string{"builder", method, path}, "duplicate route, replacing the earlier operation for this path and method")
	}
	*slot = op
	t.paths[path] = item
}

// methodSlot returns a pointer to the path item's operation field for the
// given lowercase method.
func methodSlot(item *spec.PathItem, method string) **spec.Operation {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return &item.Get
	case http.MethodPost:
		return &item.Post
	case http.MethodPut:
		return &item.Put
	case http.MethodDelete:
		return &item.Delete
	case http.MethodPatch:
		return &item.Patch
	case http.MethodHead:
		return &item.Head
	case http.MethodOptions:
		return &item.Options
	default:
		return nil
	}
}
