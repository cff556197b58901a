package raml

import "sort"

// Unbounded marks an array without a maxItems limit.
const Unbounded = -1

// Facet is a named constraint attached to a type reference.
type Facet struct {
	Name  string
	Value string
}

// TypeRef is a reference to a type as used by a body, parameter or property.
// It is a value: the With* methods return modified copies.
type TypeRef struct {
	Name string

	array    bool
	minItems int
	maxItems int
	unique   bool
	facets   []Facet
}

// NewTypeRef references the named type.
func NewTypeRef(name string) TypeRef {
	return TypeRef{Name: name, maxItems: Unbounded}
}

// AsArray returns an array of t with the given bounds. upper may be Unbounded.
func (t TypeRef) AsArray(lower, upper int, unique bool) TypeRef {
	t.array = true
	t.minItems = lower
	t.maxItems = upper
	t.unique = unique
	return t
}

// WithFacet returns t with the facet set, replacing any facet of the same name.
func (t TypeRef) WithFacet(name, value string) TypeRef {
	facets := make([]Facet, 0, len(t.facets)+1)
	replaced := false
	for _, f := range t.facets {
		if f.Name == name {
			f.Value = value
			replaced = true
		}
		facets = append(facets, f)
	}
	if !replaced {
		facets = append(facets, Facet{Name: name, Value: value})
	}
	t.facets = facets
	return t
}

// Element returns the item reference of an array: same name and facets, no
// array bounds.
func (t TypeRef) Element() TypeRef {
	t.array = false
	t.minItems = 0
	t.maxItems = Unbounded
	t.unique = false
	return t
}

func (t TypeRef) IsArray() bool { return t.array }
func (t TypeRef) MinItems() int { return t.minItems }
func (t TypeRef) MaxItems() int { return t.maxItems }
func (t TypeRef) Unique() bool  { return t.unique }

// Equal reports whether t and o reference the same type with the same
// bounds and facets.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Name != o.Name || t.array != o.array || t.minItems != o.minItems ||
		t.maxItems != o.maxItems || t.unique != o.unique || len(t.facets) != len(o.facets) {
		return false
	}
	for i := range t.facets {
		if t.facets[i] != o.facets[i] {
			return false
		}
	}
	return true
}

// Facets returns the facets in the order they were set.
func (t TypeRef) Facets() []Facet {
	return append([]Facet(nil), t.facets...)
}

// Facet returns the value of a facet.
func (t TypeRef) Facet(name string) (string, bool) {
	for _, f := range t.facets {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// TypeHeader carries what every type definition has.
type TypeHeader struct {
	Name          string
	QualifiedName string
	Description   string
}

// Header gives access to the common fields of a TypeDef.
func (h *TypeHeader) Header() *TypeHeader { return h }

// TypeDef is a named type definition: either a *ScalarType or an *ObjectType.
type TypeDef interface {
	Header() *TypeHeader
	isTypeDef()
}

// ScalarType aliases a single type reference, usually a facet-constrained
// scalar or a synthesized array.
type ScalarType struct {
	TypeHeader
	Ref TypeRef
}

func (*ScalarType) isTypeDef() {}

// SchemaKind tells whether an object type is described by an external schema.
type SchemaKind int

const (
	SchemaNone SchemaKind = iota
	SchemaJSON
	SchemaXML
)

// Property is one member of an object type.
type Property struct {
	Name     string
	Type     TypeRef
	Optional bool
}

// ObjectType is a structured type: either a property list or, when Schema is
// set, an external schema document.
type ObjectType struct {
	TypeHeader
	Properties []Property
	SchemaKind SchemaKind
	Schema     string
	Default    string
	Example    string
	Examples   string
}

func (*ObjectType) isTypeDef() {}

// SortTypeDefs orders type definitions scalars first, then objects, each
// group by name.
func SortTypeDefs(defs []TypeDef) {
	rank := func(d TypeDef) int {
		if _, ok := d.(*ScalarType); ok {
			return 0
		}
		return 1
	}
	sort.SliceStable(defs, func(i, j int) bool {
		ri, rj := rank(defs[i]), rank(defs[j])
		if ri != rj {
			return ri < rj
		}
		return defs[i].Header().Name < defs[j].Header().Name
	})
}
