// Package properties converts validation schemas into the property trees the
// document is assembled from, lifting reusable object shapes into shared
// definition maps.
package properties

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-openapi/spec"

	"github.com/griffnb/route-swag/internal/diag"
	"github.com/griffnb/route-swag/internal/domain"
)

// OptionalExtension marks object children whose schema explicitly declared
// required=false. It is read back by the operation builder for path-parameter
// inference and never reaches the emitted document.
const OptionalExtension = "x-optional"

// AlternativesExtension lists the definition references of the remaining
// alternatives when a schema declares more than one.
const AlternativesExtension = "x-alternatives"

// OrderExtension carries the declaration order of an object's children. Like
// OptionalExtension it is consumed during parameter projection and never
// reaches the emitted document.
const OrderExtension = "x-order-properties"

// defTable is one named-definition namespace with its deduplication cache.
type defTable struct {
	refBase     string
	definitions spec.Definitions
	byShape     map[string]string // structural JSON -> definition name
	shapeOf     map[string]string // definition name -> structural JSON
}

func newDefTable(refBase string) *defTable {
	return &defTable{
		refBase:     refBase,
		definitions: make(spec.Definitions),
		byShape:     make(map[string]string),
		shapeOf:     make(map[string]string),
	}
}

// pending tracks an object schema that is still being built, so circular
// references can be broken instead of recursing forever. Definition-bound
// schemas break the cycle with a reference to the reserved name; inline
// schemas degrade to an unconstrained object.
type pending struct {
	name       string
	referenced bool
	table      *defTable // nil for inline parses
}

// Builder turns domain schemas into spec schemas. All state is scoped to a
// single translation call: allocate one Builder per call and discard it.
type Builder struct {
	main       *defTable
	alt        *defTable
	inProgress map[*domain.Schema]*pending
	modelSeq   int
	diags      *diag.Collector
}

// NewBuilder creates a Builder with fresh definition maps and caches.
func NewBuilder(diags *diag.Collector) *Builder {
	return &Builder{
		main:       newDefTable("#/definitions/"),
		alt:        newDefTable("#/x-alt-definitions/"),
		inProgress: make(map[*domain.Schema]*pending),
		diags:      diags,
	}
}

// Definitions returns the shared definitions map.
func (b *Builder) Definitions() spec.Definitions {
	return b.main.definitions
}

// AltDefinitions returns the alternate definitions map.
func (b *Builder) AltDefinitions() spec.Definitions {
	return b.alt.definitions
}

// Parse converts one validation schema into a property tree. When
// useDefinitions is true, reusable object shapes are lifted into the shared
// definitions map (or the alternate map when isAlternate is true) and the
// returned tree is a reference. Parse never fails: unsupported constructs
// degrade to opaque schemas with a logged diagnostic.
func (b *Builder) Parse(name string, sch *domain.Schema, location string, useDefinitions, isAlternate bool) *spec.Schema {
	if sch == nil {
		return nil
	}

	switch sch.Kind {
	case domain.KindObject:
		return b.parseObject(name, sch, location, useDefinitions, isAlternate)
	case domain.KindArray:
		return b.parseArray(name, sch, location, useDefinitions, isAlternate)
	case domain.KindAlternatives:
		return b.parseAlternatives(name, sch, location, useDefinitions)
	case domain.KindCustom:
		b.diags.Warn([]string{"properties", location}, "custom validator %q cannot be represented, emitting an opaque object", sch.Validator)
		return &spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
	default:
		return primitiveSchema(sch)
	}
}

// parseObject builds an object property tree and, when requested, replaces it
// with a named-definition reference.
func (b *Builder) parseObject(name string, sch *domain.Schema, location string, useDefinitions, isAlternate bool) *spec.Schema {
	table := b.table(isAlternate)

	// A schema already being parsed higher up the tree means a cycle.
	if p, ok := b.inProgress[sch]; ok {
		if p.table != nil {
			p.referenced = true
			return spec.RefSchema(p.table.refBase + p.name)
		}
		return &spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
	}

	reserved := b.resolveName(name, sch)
	p := &pending{name: reserved}
	if useDefinitions {
		p.table = table
	}
	b.inProgress[sch] = p
	defer delete(b.inProgress, sch)

	obj := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type:        spec.StringOrArray{"object"},
			Description: sch.Description,
		},
	}

	var order []string
	var optional []string
	for _, field := range sch.Fields {
		child := b.Parse(field.Name, field.Schema, location, useDefinitions, isAlternate)
		if child == nil {
			continue
		}
		if obj.Properties == nil {
			obj.Properties = make(map[string]spec.Schema)
		}
		obj.Properties[field.Name] = *child
		order = append(order, field.Name)

		if field.Schema.Required != nil {
			if *field.Schema.Required {
				obj.Required = append(obj.Required, field.Name)
			} else {
				optional = append(optional, field.Name)
			}
		}
	}

	// Path trees carry the explicitly-optional children so required-ness can
	// be inferred from the template for the rest.
	if location == domain.LocationPath && len(optional) > 0 {
		obj.AddExtension(OptionalExtension, optional)
	}

	// Non-body trees exist only to be projected into parameter lists; they
	// carry the declaration order so the projection can keep it.
	if location != domain.LocationBody && len(order) > 0 {
		obj.AddExtension(OrderExtension, order)
	}

	if !useDefinitions {
		return obj
	}

	return table.register(reserved, p, obj)
}

func (b *Builder) parseArray(name string, sch *domain.Schema, location string, useDefinitions, isAlternate bool) *spec.Schema {
	out := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type:        spec.StringOrArray{"array"},
			Description: sch.Description,
		},
	}
	if items := b.Parse(name, sch.Items, location, useDefinitions, isAlternate); items != nil {
		out.Items = &spec.SchemaOrArray{Schema: items}
	}
	return out
}

// parseAlternatives registers every alternative in the alternate definitions
// map and returns the first one as the representative tree, with the rest
// listed in an extension so consumers can still reach them.
func (b *Builder) parseAlternatives(name string, sch *domain.Schema, location string, useDefinitions bool) *spec.Schema {
	if len(sch.Alternatives) == 0 {
		return &spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
	}

	parsed := make([]*spec.Schema, 0, len(sch.Alternatives))
	for i, alt := range sch.Alternatives {
		altName := name
		if i > 0 {
			altName = name + strconv.Itoa(i)
		}
		parsed = append(parsed, b.Parse(altName, alt, location, useDefinitions, true))
	}

	result := parsed[0]
	if len(parsed) > 1 {
		refs := make([]string, 0, len(parsed)-1)
		for _, alt := range parsed[1:] {
			if alt == nil {
				continue
			}
			if r := alt.Ref.String(); r != "" {
				refs = append(refs, r)
			}
		}
		if len(refs) > 0 {
			result.AddExtension(AlternativesExtension, refs)
		}
	}
	return result
}

func (b *Builder) table(isAlternate bool) *defTable {
	if isAlternate {
		return b.alt
	}
	return b.main
}

// resolveName picks the definition name for an object schema: its label, else
// the name it is reached by, else a generated model name.
func (b *Builder) resolveName(name string, sch *domain.Schema) string {
	if sch.Label != "" {
		return sch.Label
	}
	if name != "" {
		return name
	}
	b.modelSeq++
	return "Model " + strconv.Itoa(b.modelSeq)
}

// register stores an object schema in the table and returns a reference to
// it, reusing an existing name when the shape is structurally identical and
// suffixing the name when it collides with a different shape.
func (t *defTable) register(reserved string, p *pending, obj *spec.Schema) *spec.Schema {
	shape := structuralKey(obj)

	// A broken cycle already points at the reserved name; renaming now would
	// orphan those references.
	if p.referenced {
		t.put(reserved, shape, obj)
		return spec.RefSchema(t.refBase + reserved)
	}

	if existing, ok := t.byShape[shape]; ok {
		return spec.RefSchema(t.refBase + existing)
	}

	name := reserved
	for i := 1; ; i++ {
		taken, ok := t.shapeOf[name]
		if !ok || taken == shape {
			break
		}
		name = reserved + " " + strconv.Itoa(i)
	}

	t.put(name, shape, obj)
	return spec.RefSchema(t.refBase + name)
}

func (t *defTable) put(name, shape string, obj *spec.Schema) {
	t.definitions[name] = *obj
	t.byShape[shape] = name
	t.shapeOf[name] = shape
}

// structuralKey serializes a schema into the deduplication key. Marshalling
// a spec.Schema is deterministic, so identical shapes share a key.
func structuralKey(obj *spec.Schema) string {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("unmarshalable:%p", obj)
	}
	return string(data)
}

// primitiveSchema maps a non-object schema variant onto its document type.
func primitiveSchema(sch *domain.Schema) *spec.Schema {
	out := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Description: sch.Description,
			Format:      sch.Format,
		},
	}

	switch sch.Kind {
	case domain.KindString:
		out.Type = spec.StringOrArray{"string"}
	case domain.KindNumber:
		out.Type = spec.StringOrArray{"number"}
	case domain.KindInteger:
		out.Type = spec.StringOrArray{"integer"}
	case domain.KindBoolean:
		out.Type = spec.StringOrArray{"boolean"}
	case domain.KindFile:
		out.Type = spec.StringOrArray{"file"}
	case domain.KindAny:
		// No type constraint: any JSON value.
	default:
		out.Type = spec.StringOrArray{"string"}
	}

	if len(sch.Enum) > 0 {
		out.Enum = sch.Enum
	}
	if sch.Default != nil {
		out.Default = sch.Default
	}
	return out
}
