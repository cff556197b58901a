// Package profile describes the tags ("stereotypes") a model may apply to its
// elements: their generalization hierarchy and the typed properties each tag
// declares.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrCycle marks a tag generalization hierarchy that loops back on itself.
var ErrCycle = errors.New("cyclic tag generalization")

// ErrUnknownTag marks a generalization edge to a tag nobody defined.
var ErrUnknownTag = errors.New("unknown tag")

// Kind is the declared value type of a tag property.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindReal
	KindBoolean
	KindStringList
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	case KindStringList:
		return "list"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the textual kinds used by model files. Enumerations are
// written as "enum:a|b|c".
func ParseKind(s string) (Kind, []string, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case lower == "string":
		return KindString, nil, nil
	case lower == "integer" || lower == "int":
		return KindInteger, nil, nil
	case lower == "real" || lower == "number":
		return KindReal, nil, nil
	case lower == "boolean" || lower == "bool":
		return KindBoolean, nil, nil
	case lower == "list" || lower == "strings":
		return KindStringList, nil, nil
	case strings.HasPrefix(lower, "enum:"):
		var literals []string
		for _, lit := range strings.Split(s[len("enum:"):], "|") {
			if lit = strings.TrimSpace(lit); lit != "" {
				literals = append(literals, lit)
			}
		}
		if len(literals) == 0 {
			return 0, nil, errors.Newf("enum kind %q declares no literals", s)
		}
		return KindEnum, literals, nil
	default:
		return 0, nil, errors.Newf("unknown property kind %q", s)
	}
}

// EnumLiteral is the stored form of an enumeration-typed property value.
type EnumLiteral string

// Property declares one typed property of a tag.
type Property struct {
	Name     string
	Kind     Kind
	Literals []string // KindEnum only
}

// Normalize converts a decoded value to the Go type matching the declared
// kind. Values that do not fit the kind are returned unchanged, so typed
// getters later report them as absent instead of coercing.
func (p Property) Normalize(v any) any {
	switch p.Kind {
	case KindString:
		return canonical(v)
	case KindInteger:
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case uint64:
			return int(n)
		}
	case KindReal:
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case uint64:
			return float64(n)
		}
	case KindBoolean:
		return canonical(v)
	case KindStringList:
		switch list := v.(type) {
		case []string:
			return list
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return canonical(v)
				}
				out = append(out, s)
			}
			return out
		}
	case KindEnum:
		if s, ok := v.(string); ok {
			for _, lit := range p.Literals {
				if lit == s {
					return EnumLiteral(s)
				}
			}
		}
	}
	return canonical(v)
}

// canonical folds the integer widths produced by different decoders into int.
func canonical(v any) any {
	switch n := v.(type) {
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return v
	}
}

// TagDef declares a tag, the tags it specializes and its own properties.
type TagDef struct {
	Name       string
	Generals   []string
	Properties []Property
}

// Registry holds tag definitions together with a precomputed generalization
// closure for every tag.
type Registry struct {
	defs    map[string]*TagDef
	closure map[string][]string
}

// NewRegistry indexes defs and computes the closure table. A later definition
// with the same name replaces an earlier one.
func NewRegistry(defs ...TagDef) (*Registry, error) {
	r := &Registry{
		defs:    make(map[string]*TagDef, len(defs)),
		closure: make(map[string][]string, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		r.defs[def.Name] = &def
	}
	for _, name := range r.Names() {
		for _, g := range r.defs[name].Generals {
			if _, ok := r.defs[g]; !ok {
				return nil, errors.Mark(errors.Newf("tag %s generalizes undefined tag %s", name, g), ErrUnknownTag)
			}
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(r.defs))
	var visit func(name string, trail []string) error
	visit = func(name string, trail []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errors.Mark(
				errors.Newf("tag generalization cycle: %s", strings.Join(append(trail, name), " -> ")),
				ErrCycle,
			)
		}
		state[name] = visiting
		trail = append(trail, name)
		for _, g := range r.defs[name].Generals {
			if err := visit(g, trail); err != nil {
				return err
			}
		}
		state[name] = done

		seen := map[string]bool{name: true}
		chain := []string{name}
		for _, g := range r.defs[name].Generals {
			for _, anc := range r.closure[g] {
				if !seen[anc] {
					seen[anc] = true
					chain = append(chain, anc)
				}
			}
		}
		r.closure[name] = chain
		return nil
	}
	for _, name := range r.Names() {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Names returns every defined tag name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition of a tag.
func (r *Registry) Lookup(name string) (*TagDef, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Generals returns the direct generalizations of a tag. Undefined tags have none.
func (r *Registry) Generals(name string) []string {
	if def, ok := r.defs[name]; ok {
		return def.Generals
	}
	return nil
}

// Ancestors returns the tag itself followed by every tag it specializes,
// nearest first. Undefined tags are their own sole ancestor.
func (r *Registry) Ancestors(name string) []string {
	if chain, ok := r.closure[name]; ok {
		return chain
	}
	return []string{name}
}

// IsA reports whether tag equals or specializes ancestor.
func (r *Registry) IsA(tag, ancestor string) bool {
	for _, anc := range r.Ancestors(tag) {
		if anc == ancestor {
			return true
		}
	}
	return false
}

// Property finds the declaration of prop on tag or on any tag it specializes.
func (r *Registry) Property(tag, prop string) (Property, bool) {
	for _, anc := range r.Ancestors(tag) {
		def, ok := r.defs[anc]
		if !ok {
			continue
		}
		for _, p := range def.Properties {
			if p.Name == prop {
				return p, true
			}
		}
	}
	return Property{}, false
}
