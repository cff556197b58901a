// Package annotation answers "does this element carry tag T, directly or via
// a specialization of T?" and reads typed tag properties.
package annotation

import (
	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
)

// Resolver looks tags up against a profile registry.
type Resolver struct {
	reg *profile.Registry
}

// NewResolver returns a resolver over reg.
func NewResolver(reg *profile.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve returns the tag application on el that is tag itself or a
// specialization of it. A direct application wins; otherwise the applied
// tags are searched in application order against the registry's
// generalization closure. It returns nil when nothing matches.
func (r *Resolver) Resolve(el *model.Element, tag string) *model.AppliedTag {
	if el == nil {
		return nil
	}
	if direct := el.Tag(tag); direct != nil {
		return direct
	}
	for _, applied := range el.Tags {
		if r.reg.IsA(applied.Name, tag) {
			return applied
		}
	}
	return nil
}

// Has reports whether Resolve finds a match.
func (r *Resolver) Has(el *model.Element, tag string) bool {
	return r.Resolve(el, tag) != nil
}

// Value returns the raw stored value of prop on the resolved tag.
func (r *Resolver) Value(el *model.Element, tag, prop string) (any, bool) {
	applied := r.Resolve(el, tag)
	if applied == nil {
		return nil, false
	}
	return applied.Value(prop)
}

// String returns a string property. ok is false when the tag is not applied,
// the property is unset or holds another type.
func (r *Resolver) String(el *model.Element, tag, prop string) (string, bool) {
	v, _ := r.Value(el, tag, prop)
	s, ok := v.(string)
	return s, ok
}

// Int returns an integer property.
func (r *Resolver) Int(el *model.Element, tag, prop string) (int, bool) {
	v, _ := r.Value(el, tag, prop)
	n, ok := v.(int)
	return n, ok
}

// Real returns a real-valued property.
func (r *Resolver) Real(el *model.Element, tag, prop string) (float64, bool) {
	v, _ := r.Value(el, tag, prop)
	f, ok := v.(float64)
	return f, ok
}

// Bool returns a boolean property.
func (r *Resolver) Bool(el *model.Element, tag, prop string) (bool, bool) {
	v, _ := r.Value(el, tag, prop)
	b, ok := v.(bool)
	return b, ok
}

// StringList returns a list-of-strings property.
func (r *Resolver) StringList(el *model.Element, tag, prop string) ([]string, bool) {
	v, _ := r.Value(el, tag, prop)
	l, ok := v.([]string)
	return l, ok
}

// Enum returns the literal of an enumeration property.
func (r *Resolver) Enum(el *model.Element, tag, prop string) (string, bool) {
	v, _ := r.Value(el, tag, prop)
	lit, ok := v.(profile.EnumLiteral)
	return string(lit), ok
}
