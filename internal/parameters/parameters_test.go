package parameters

import (
	"testing"

	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/route-swag/internal/domain"
	"github.com/griffnb/route-swag/internal/properties"
)

func objectTree() *spec.Schema {
	return &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{"object"},
			Properties: map[string]spec.Schema{
				"name": {SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"string"}}},
				"age":  {SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"integer"}, Format: "int32"}},
			},
			Required: []string{"name"},
		},
	}
}

func TestFromProperties(t *testing.T) {
	t.Run("should return nil for a nil tree", func(t *testing.T) {
		assert.Nil(t, FromProperties(nil, domain.LocationQuery))
	})

	t.Run("should keep the declared child order when the tree carries it", func(t *testing.T) {
		tree := objectTree()
		tree.AddExtension(properties.OrderExtension, []string{"name", "age"})

		params := FromProperties(tree, domain.LocationQuery)

		require.Len(t, params, 2)
		assert.Equal(t, "name", params[0].Name)
		assert.Equal(t, "age", params[1].Name)
	})

	t.Run("should fall back to name order without a declared order", func(t *testing.T) {
		params := FromProperties(objectTree(), domain.LocationQuery)

		require.Len(t, params, 2)
		assert.Equal(t, "age", params[0].Name)
		assert.Equal(t, "integer", params[0].Type)
		assert.Equal(t, "int32", params[0].Format)
		assert.False(t, params[0].Required)

		assert.Equal(t, "name", params[1].Name)
		assert.Equal(t, "string", params[1].Type)
		assert.True(t, params[1].Required)

		for _, p := range params {
			assert.Equal(t, domain.LocationQuery, p.In)
		}
	})

	t.Run("should build a single schema parameter for a body", func(t *testing.T) {
		tree := spec.RefSchema("#/definitions/User")
		params := FromProperties(tree, domain.LocationBody)

		require.Len(t, params, 1)
		assert.Equal(t, "body", params[0].Name)
		assert.Equal(t, domain.LocationBody, params[0].In)
		require.NotNil(t, params[0].Schema)
		assert.Equal(t, "#/definitions/User", params[0].Schema.Ref.String())
		assert.Empty(t, params[0].Type)
	})

	t.Run("should carry enum and default values", func(t *testing.T) {
		tree := &spec.Schema{
			SchemaProps: spec.SchemaProps{
				Type: spec.StringOrArray{"object"},
				Properties: map[string]spec.Schema{
					"sort": {SchemaProps: spec.SchemaProps{
						Type:    spec.StringOrArray{"string"},
						Enum:    []interface{}{"asc", "desc"},
						Default: "asc",
					}},
				},
			},
		}
		params := FromProperties(tree, domain.LocationQuery)

		require.Len(t, params, 1)
		assert.Equal(t, []interface{}{"asc", "desc"}, params[0].Enum)
		assert.Equal(t, "asc", params[0].Default)
	})

	t.Run("should describe array items with a multi collection format", func(t *testing.T) {
		tree := &spec.Schema{
			SchemaProps: spec.SchemaProps{
				Type: spec.StringOrArray{"object"},
				Properties: map[string]spec.Schema{
					"ids": {SchemaProps: spec.SchemaProps{
						Type: spec.StringOrArray{"array"},
						Items: &spec.SchemaOrArray{Schema: &spec.Schema{
							SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"integer"}},
						}},
					}},
				},
			},
		}
		params := FromProperties(tree, domain.LocationQuery)

		require.Len(t, params, 1)
		assert.Equal(t, "array", params[0].Type)
		require.NotNil(t, params[0].Items)
		assert.Equal(t, "integer", params[0].Items.Type)
		assert.Equal(t, "multi", params[0].CollectionFormat)
	})

	t.Run("should keep the file type for formData parameters", func(t *testing.T) {
		tree := &spec.Schema{
			SchemaProps: spec.SchemaProps{
				Type: spec.StringOrArray{"object"},
				Properties: map[string]spec.Schema{
					"avatar": {SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"file"}}},
				},
			},
		}
		params := FromProperties(tree, domain.LocationFormData)

		require.Len(t, params, 1)
		assert.Equal(t, "file", params[0].Type)
		assert.Equal(t, domain.LocationFormData, params[0].In)
	})

	t.Run("should flatten untyped and referenced children", func(t *testing.T) {
		tree := &spec.Schema{
			SchemaProps: spec.SchemaProps{
				Type: spec.StringOrArray{"object"},
				Properties: map[string]spec.Schema{
					"loose": {},
					"shape": {SchemaProps: spec.SchemaProps{Ref: spec.MustCreateRef("#/definitions/X")}},
				},
			},
		}
		params := FromProperties(tree, domain.LocationQuery)

		require.Len(t, params, 2)
		assert.Equal(t, "string", params[0].Type) // loose
		assert.Equal(t, "object", params[1].Type) // shape
	})
}
