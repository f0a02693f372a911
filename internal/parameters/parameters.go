// Package parameters flattens property trees into ordered OpenAPI parameter
// lists for a given request location.
package parameters

import (
	"sort"

	"github.com/go-openapi/spec"

	"github.com/griffnb/route-swag/internal/domain"
	"github.com/griffnb/route-swag/internal/properties"
)

// FromProperties projects a property tree into parameter objects for the
// given location. A body tree becomes a single schema-carrying parameter;
// any other tree contributes one parameter per child property, in
// declaration order (name-sorted for trees that carry no order).
func FromProperties(tree *spec.Schema, location string) []spec.Parameter {
	if tree == nil {
		return nil
	}

	if location == domain.LocationBody {
		return []spec.Parameter{bodyParameter(tree)}
	}

	names := orderedNames(tree)

	required := make(map[string]bool, len(tree.Required))
	for _, name := range tree.Required {
		required[name] = true
	}

	params := make([]spec.Parameter, 0, len(names))
	for _, name := range names {
		prop := tree.Properties[name]
		params = append(params, fromProperty(name, &prop, location, required[name]))
	}
	return params
}

// orderedNames lists the child property names in declaration order when the
// tree carries it, falling back to name order for hand-built trees.
func orderedNames(tree *spec.Schema) []string {
	if raw, ok := tree.Extensions[properties.OrderExtension]; ok {
		if order, ok := raw.([]string); ok && len(order) == len(tree.Properties) {
			return order
		}
	}

	names := make([]string, 0, len(tree.Properties))
	for name := range tree.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func bodyParameter(tree *spec.Schema) spec.Parameter {
	return spec.Parameter{
		ParamProps: spec.ParamProps{
			Name:   "body",
			In:     domain.LocationBody,
			Schema: tree,
		},
	}
}

// fromProperty converts one child property into a non-body parameter.
// Non-body parameters carry their type inline; the parameter grammar has no
// schema references.
func fromProperty(name string, prop *spec.Schema, location string, required bool) spec.Parameter {
	param := spec.Parameter{
		ParamProps: spec.ParamProps{
			Name:        name,
			In:          location,
			Required:    required,
			Description: prop.Description,
		},
	}

	param.Type = propertyType(prop)
	param.Format = prop.Format
	param.Default = prop.Default
	if len(prop.Enum) > 0 {
		param.Enum = prop.Enum
	}

	if param.Type == "array" && prop.Items != nil && prop.Items.Schema != nil {
		item := prop.Items.Schema
		param.Items = &spec.Items{
			SimpleSchema: spec.SimpleSchema{
				Type:   propertyType(item),
				Format: item.Format,
			},
		}
		if len(item.Enum) > 0 {
			param.Items.Enum = item.Enum
		}
		param.CollectionFormat = "multi"
	}

	return param
}

// propertyType extracts the single document type of a property. Untyped
// properties fall back to string, the loosest type the parameter grammar
// accepts.
func propertyType(prop *spec.Schema) string {
	if len(prop.Type) > 0 {
		return prop.Type[0]
	}
	if prop.Ref.String() != "" {
		// Lifted object shapes cannot appear outside a body; flatten to the
		// generic object type.
		return "object"
	}
	return "string"
}
