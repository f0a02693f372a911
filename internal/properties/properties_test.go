package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/route-swag/internal/diag"
	"github.com/griffnb/route-swag/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func newTestBuilder() (*Builder, *diag.Collector) {
	diags := diag.NewCollector(nil)
	return NewBuilder(diags), diags
}

func userSchema() *domain.Schema {
	return &domain.Schema{
		Kind:  domain.KindObject,
		Label: "User",
		Fields: []domain.Field{
			{Name: "name", Schema: &domain.Schema{Kind: domain.KindString, Required: boolPtr(true)}},
			{Name: "age", Schema: &domain.Schema{Kind: domain.KindInteger}},
		},
	}
}

func TestParsePrimitives(t *testing.T) {
	b, _ := newTestBuilder()

	tests := []struct {
		name string
		in   *domain.Schema
		want string
	}{
		{"string", &domain.Schema{Kind: domain.KindString}, "string"},
		{"number", &domain.Schema{Kind: domain.KindNumber}, "number"},
		{"integer", &domain.Schema{Kind: domain.KindInteger}, "integer"},
		{"boolean", &domain.Schema{Kind: domain.KindBoolean}, "boolean"},
		{"file", &domain.Schema{Kind: domain.KindFile}, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Parse("field", tt.in, domain.LocationQuery, false, false)
			require.NotNil(t, got)
			require.Len(t, got.Type, 1)
			assert.Equal(t, tt.want, got.Type[0])
		})
	}

	t.Run("any carries no type constraint", func(t *testing.T) {
		got := b.Parse("field", &domain.Schema{Kind: domain.KindAny}, domain.LocationQuery, false, false)
		require.NotNil(t, got)
		assert.Empty(t, got.Type)
	})

	t.Run("enum and default survive", func(t *testing.T) {
		in := &domain.Schema{
			Kind:    domain.KindString,
			Enum:    []interface{}{"a", "b"},
			Default: "b",
		}
		got := b.Parse("field", in, domain.LocationQuery, false, false)
		assert.Equal(t, []interface{}{"a", "b"}, got.Enum)
		assert.Equal(t, "b", got.Default)
	})

	t.Run("nil schema parses to nil", func(t *testing.T) {
		assert.Nil(t, b.Parse("field", nil, domain.LocationQuery, false, false))
	})
}

func TestParseObject(t *testing.T) {
	t.Run("should inline objects without definitions", func(t *testing.T) {
		b, _ := newTestBuilder()
		got := b.Parse("", userSchema(), domain.LocationQuery, false, false)

		require.NotNil(t, got)
		assert.Empty(t, got.Ref.String())
		assert.Len(t, got.Properties, 2)
		assert.Equal(t, []string{"name"}, got.Required)
		assert.Empty(t, b.Definitions())
	})

	t.Run("should lift labeled objects into definitions", func(t *testing.T) {
		b, _ := newTestBuilder()
		got := b.Parse("", userSchema(), domain.LocationBody, true, false)

		require.NotNil(t, got)
		assert.Equal(t, "#/definitions/User", got.Ref.String())
		require.Contains(t, b.Definitions(), "User")
		def := b.Definitions()["User"]
		assert.Len(t, def.Properties, 2)
	})

	t.Run("should deduplicate structurally identical shapes", func(t *testing.T) {
		b, _ := newTestBuilder()
		first := b.Parse("", userSchema(), domain.LocationBody, true, false)
		second := b.Parse("", userSchema(), domain.LocationBody, true, false)

		assert.Equal(t, first.Ref.String(), second.Ref.String())
		assert.Len(t, b.Definitions(), 1)
	})

	t.Run("should suffix a colliding name with a different shape", func(t *testing.T) {
		b, _ := newTestBuilder()
		other := &domain.Schema{
			Kind:  domain.KindObject,
			Label: "User",
			Fields: []domain.Field{
				{Name: "email", Schema: &domain.Schema{Kind: domain.KindString}},
			},
		}

		first := b.Parse("", userSchema(), domain.LocationBody, true, false)
		second := b.Parse("", other, domain.LocationBody, true, false)

		assert.Equal(t, "#/definitions/User", first.Ref.String())
		assert.Equal(t, "#/definitions/User 1", second.Ref.String())
		assert.Len(t, b.Definitions(), 2)
	})

	t.Run("should generate model names for anonymous shapes", func(t *testing.T) {
		b, _ := newTestBuilder()
		anon := &domain.Schema{
			Kind: domain.KindObject,
			Fields: []domain.Field{
				{Name: "v", Schema: &domain.Schema{Kind: domain.KindString}},
			},
		}
		got := b.Parse("", anon, domain.LocationBody, true, false)
		assert.Equal(t, "#/definitions/Model 1", got.Ref.String())
	})

	t.Run("should record declaration order on non-body trees", func(t *testing.T) {
		b, _ := newTestBuilder()
		got := b.Parse("", userSchema(), domain.LocationQuery, false, false)

		raw, ok := got.Extensions[OrderExtension]
		require.True(t, ok)
		assert.Equal(t, []string{"name", "age"}, raw)
	})

	t.Run("should not leak the order onto body trees", func(t *testing.T) {
		b, _ := newTestBuilder()
		b.Parse("", userSchema(), domain.LocationBody, true, false)

		def := b.Definitions()["User"]
		_, ok := def.Extensions[OrderExtension]
		assert.False(t, ok)
	})

	t.Run("should record explicitly optional children for path trees", func(t *testing.T) {
		b, _ := newTestBuilder()
		sch := &domain.Schema{
			Kind: domain.KindObject,
			Fields: []domain.Field{
				{Name: "id", Schema: &domain.Schema{Kind: domain.KindString, Required: boolPtr(false)}},
			},
		}
		got := b.Parse("", sch, domain.LocationPath, false, false)

		raw, ok := got.Extensions[OptionalExtension]
		require.True(t, ok)
		assert.Equal(t, []string{"id"}, raw)
	})
}

func TestParseArray(t *testing.T) {
	t.Run("should parse item schemas", func(t *testing.T) {
		b, _ := newTestBuilder()
		sch := &domain.Schema{
			Kind:  domain.KindArray,
			Items: &domain.Schema{Kind: domain.KindString},
		}
		got := b.Parse("list", sch, domain.LocationQuery, false, false)

		require.Len(t, got.Type, 1)
		assert.Equal(t, "array", got.Type[0])
		require.NotNil(t, got.Items)
		require.NotNil(t, got.Items.Schema)
		assert.Equal(t, "string", got.Items.Schema.Type[0])
	})

	t.Run("should lift object items into definitions", func(t *testing.T) {
		b, _ := newTestBuilder()
		sch := &domain.Schema{
			Kind:  domain.KindArray,
			Items: userSchema(),
		}
		got := b.Parse("users", sch, domain.LocationBody, true, false)

		require.NotNil(t, got.Items)
		assert.Equal(t, "#/definitions/User", got.Items.Schema.Ref.String())
	})
}

func TestParseAlternatives(t *testing.T) {
	t.Run("should register alternatives in the alternate map", func(t *testing.T) {
		b, _ := newTestBuilder()
		sch := &domain.Schema{
			Kind: domain.KindAlternatives,
			Alternatives: []*domain.Schema{
				userSchema(),
				{
					Kind:  domain.KindObject,
					Label: "Guest",
					Fields: []domain.Field{
						{Name: "token", Schema: &domain.Schema{Kind: domain.KindString}},
					},
				},
			},
		}

		got := b.Parse("who", sch, domain.LocationBody, true, false)

		require.NotNil(t, got)
		assert.Equal(t, "#/x-alt-definitions/User", got.Ref.String())
		assert.Contains(t, b.AltDefinitions(), "User")
		assert.Contains(t, b.AltDefinitions(), "Guest")
		assert.Empty(t, b.Definitions())

		raw, ok := got.Extensions[AlternativesExtension]
		require.True(t, ok)
		assert.Equal(t, []string{"#/x-alt-definitions/Guest"}, raw)
	})

	t.Run("should degrade an empty alternatives set to an object", func(t *testing.T) {
		b, _ := newTestBuilder()
		got := b.Parse("who", &domain.Schema{Kind: domain.KindAlternatives}, domain.LocationBody, true, false)
		require.Len(t, got.Type, 1)
		assert.Equal(t, "object", got.Type[0])
	})
}

func TestParseCustom(t *testing.T) {
	b, diags := newTestBuilder()
	got := b.Parse("field", &domain.Schema{Kind: domain.KindCustom, Validator: "fn"}, domain.LocationQuery, false, false)

	require.Len(t, got.Type, 1)
	assert.Equal(t, "object", got.Type[0])
	require.Len(t, diags.Entries(), 1)
	assert.Equal(t, diag.SeverityWarning, diags.Entries()[0].Severity)
}

func TestParseCycles(t *testing.T) {
	t.Run("should break definition cycles with a reference", func(t *testing.T) {
		b, _ := newTestBuilder()

		node := &domain.Schema{Kind: domain.KindObject, Label: "Node"}
		node.Fields = []domain.Field{
			{Name: "value", Schema: &domain.Schema{Kind: domain.KindString}},
			{Name: "next", Schema: node},
		}

		got := b.Parse("", node, domain.LocationBody, true, false)

		assert.Equal(t, "#/definitions/Node", got.Ref.String())
		def, ok := b.Definitions()["Node"]
		require.True(t, ok)
		next := def.Properties["next"]
		assert.Equal(t, "#/definitions/Node", next.Ref.String())
	})

	t.Run("should break inline cycles with an opaque object", func(t *testing.T) {
		b, _ := newTestBuilder()

		node := &domain.Schema{Kind: domain.KindObject}
		node.Fields = []domain.Field{
			{Name: "next", Schema: node},
		}

		got := b.Parse("", node, domain.LocationQuery, false, false)
		next := got.Properties["next"]
		assert.Empty(t, next.Ref.String())
		require.Len(t, next.Type, 1)
		assert.Equal(t, "object", next.Type[0])
	})
}
