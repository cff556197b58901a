package model

import (
	"strings"

	"github.com/mark3labs/uml2raml/internal/profile"
)

// Kind classifies model elements.
type Kind int

const (
	KindModel Kind = iota
	KindPackage
	KindClass
	KindDataType
	KindPrimitive
	KindOperation
	KindParameter
	KindProperty
	KindDependency
	KindAssociation
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindPackage:
		return "package"
	case KindClass:
		return "class"
	case KindDataType:
		return "datatype"
	case KindPrimitive:
		return "primitive"
	case KindOperation:
		return "operation"
	case KindParameter:
		return "parameter"
	case KindProperty:
		return "property"
	case KindDependency:
		return "dependency"
	case KindAssociation:
		return "association"
	default:
		return "unknown"
	}
}

// Direction of an operation parameter.
type Direction int

const (
	DirIn Direction = iota
	DirInOut
	DirOut
	DirReturn
)

func (d Direction) String() string {
	switch d {
	case DirInOut:
		return "inout"
	case DirOut:
		return "out"
	case DirReturn:
		return "return"
	default:
		return "in"
	}
}

// Unbounded is the upper multiplicity of an unlimited element.
const Unbounded = -1

// Separator joins the segments of a qualified name.
const Separator = "::"

// AppliedTag is a tag applied to an element with its property values,
// normalized against the tag's declared schema at load time.
type AppliedTag struct {
	Name   string
	Values map[string]any
}

// Value returns the stored value of a property.
func (t *AppliedTag) Value(prop string) (any, bool) {
	v, ok := t.Values[prop]
	return v, ok
}

// Element is a node of the read-only model graph.
type Element struct {
	Kind          Kind
	Name          string
	QualifiedName string
	Owner         *Element
	Owned         []*Element
	Tags          []*AppliedTag

	// Typed elements: properties, parameters and association ends.
	Type      *Element
	Lower     int
	Upper     int
	Unique    bool
	Direction Direction

	// Classifiers.
	Generals []*Element

	// Dependencies; the client is the owner.
	Targets []*Element
}

// Tag returns the directly applied tag with the given name.
func (e *Element) Tag(name string) *AppliedTag {
	for _, t := range e.Tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (e *Element) ownedOf(kind Kind) []*Element {
	var out []*Element
	for _, o := range e.Owned {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// Attributes returns the properties owned by a classifier.
func (e *Element) Attributes() []*Element { return e.ownedOf(KindProperty) }

// Operations returns the operations owned by a class.
func (e *Element) Operations() []*Element { return e.ownedOf(KindOperation) }

// Parameters returns the parameters of an operation.
func (e *Element) Parameters() []*Element { return e.ownedOf(KindParameter) }

// Dependencies returns the dependencies whose client is e.
func (e *Element) Dependencies() []*Element { return e.ownedOf(KindDependency) }

// Ends returns the member ends of an association.
func (e *Element) Ends() []*Element { return e.ownedOf(KindProperty) }

// AllAttributes returns own attributes followed by inherited ones. An
// inherited attribute is hidden by an earlier attribute of the same name.
func (e *Element) AllAttributes() []*Element {
	var out []*Element
	names := map[string]bool{}
	visited := map[*Element]bool{}
	var walk func(c *Element)
	walk = func(c *Element) {
		if visited[c] {
			return
		}
		visited[c] = true
		for _, a := range c.Attributes() {
			if names[a.Name] {
				continue
			}
			names[a.Name] = true
			out = append(out, a)
		}
		for _, g := range c.Generals {
			walk(g)
		}
	}
	walk(e)
	return out
}

// AllOwned returns every element below e in pre-order.
func (e *Element) AllOwned() []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, o := range n.Owned {
			out = append(out, o)
			walk(o)
		}
	}
	walk(e)
	return out
}

// Namespace returns the nearest enclosing package (or the model root).
func (e *Element) Namespace() *Element {
	for n := e.Owner; n != nil; n = n.Owner {
		if n.Kind == KindPackage || n.Kind == KindModel {
			return n
		}
	}
	return nil
}

// IsMultivalued reports whether the element may hold more than one value.
func (e *Element) IsMultivalued() bool {
	return e.Upper == Unbounded || e.Upper > 1
}

// ShortName is the last qualified name segment with spaces removed.
func ShortName(qualified string) string {
	if i := strings.LastIndex(qualified, Separator); i >= 0 {
		qualified = qualified[i+len(Separator):]
	}
	return strings.ReplaceAll(qualified, " ", "")
}

// Model is a loaded element graph together with the tag profile it uses.
type Model struct {
	Root    *Element
	Profile *profile.Registry

	index        map[string]*Element
	associations []*Element
}

// Lookup finds an element, including the built-in type libraries, by
// qualified name.
func (m *Model) Lookup(qualified string) (*Element, bool) {
	e, ok := m.index[qualified]
	return e, ok
}

// Associations returns the associations with at least one end typed by e.
func (m *Model) Associations(e *Element) []*Element {
	var out []*Element
	for _, a := range m.associations {
		for _, end := range a.Ends() {
			if end.Type == e {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
