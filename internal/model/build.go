package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/uml2raml/internal/profile"
)

type rawModel struct {
	Name     string       `yaml:"name" toml:"name"`
	Profiles []rawTagDef  `yaml:"profiles" toml:"profiles"`
	Elements []rawElement `yaml:"elements" toml:"elements"`
}

type rawTagDef struct {
	Name       string            `yaml:"name" toml:"name"`
	Generals   []string          `yaml:"generals" toml:"generals"`
	Properties map[string]string `yaml:"properties" toml:"properties"`
}

type rawTag struct {
	Name       string         `yaml:"name" toml:"name"`
	Properties map[string]any `yaml:"properties" toml:"properties"`
}

type rawElement struct {
	Kind         string          `yaml:"kind" toml:"kind"`
	Name         string          `yaml:"name" toml:"name"`
	Tags         []rawTag        `yaml:"tags" toml:"tags"`
	Generals     []string        `yaml:"generals" toml:"generals"`
	Elements     []rawElement    `yaml:"elements" toml:"elements"`
	Attributes   []rawTyped      `yaml:"attributes" toml:"attributes"`
	Operations   []rawOperation  `yaml:"operations" toml:"operations"`
	Dependencies []rawDependency `yaml:"dependencies" toml:"dependencies"`
	Ends         []rawTyped      `yaml:"ends" toml:"ends"`
}

type rawTyped struct {
	Name      string   `yaml:"name" toml:"name"`
	Type      string   `yaml:"type" toml:"type"`
	Lower     *int     `yaml:"lower" toml:"lower"`
	Upper     any      `yaml:"upper" toml:"upper"`
	Unique    bool     `yaml:"unique" toml:"unique"`
	Direction string   `yaml:"direction" toml:"direction"`
	Tags      []rawTag `yaml:"tags" toml:"tags"`
}

type rawOperation struct {
	Name       string     `yaml:"name" toml:"name"`
	Tags       []rawTag   `yaml:"tags" toml:"tags"`
	Parameters []rawTyped `yaml:"parameters" toml:"parameters"`
}

type rawDependency struct {
	Name    string   `yaml:"name" toml:"name"`
	Targets []string `yaml:"targets" toml:"targets"`
	Tags    []rawTag `yaml:"tags" toml:"tags"`
}

var umlPrimitives = []string{"Boolean", "Integer", "Real", "String", "UnlimitedNatural"}

var ramlTypes = []string{
	"any", "array", "boolean", "date-only", "datetime", "datetime-only", "file",
	"integer", "nil", "number", "object", "string", "time-only",
}

// pendingRef is a by-name reference recorded during the first pass and
// linked once every element exists.
type pendingRef struct {
	from *Element
	name string
	bind func(*Element)
}

type builder struct {
	m       *Model
	builtin map[string]*Element
	refs    []pendingRef
}

func build(doc *rawModel) (*Model, error) {
	defs := profile.Builtin()
	for _, p := range doc.Profiles {
		def, err := convertTagDef(p)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	reg, err := profile.NewRegistry(defs...)
	if err != nil {
		return nil, &LoadError{Code: ProfileError, Message: fmt.Sprintf("profile: %v", err), Cause: err}
	}

	root := &Element{Kind: KindModel, Name: doc.Name, QualifiedName: doc.Name}
	b := &builder{
		m: &Model{
			Root:    root,
			Profile: reg,
			index:   map[string]*Element{root.QualifiedName: root},
		},
		builtin: map[string]*Element{},
	}
	b.addLibraries()

	for i := range doc.Elements {
		if err := b.addElement(root, &doc.Elements[i]); err != nil {
			return nil, err
		}
	}
	for _, ref := range b.refs {
		target, ok := b.resolve(ref.from, ref.name)
		if !ok {
			return nil, &LoadError{
				Code:    ReferenceError,
				Message: fmt.Sprintf("%s %s: unresolved reference %q", ref.from.Kind, ref.from.QualifiedName, ref.name),
				Element: ref.from.QualifiedName,
			}
		}
		ref.bind(target)
	}
	return b.m, nil
}

func convertTagDef(p rawTagDef) (profile.TagDef, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return profile.TagDef{}, &LoadError{Code: ProfileError, Message: "profile: tag definition without a name"}
	}
	def := profile.TagDef{Name: name, Generals: p.Generals}
	props := make([]string, 0, len(p.Properties))
	for prop := range p.Properties {
		props = append(props, prop)
	}
	sort.Strings(props)
	for _, prop := range props {
		kind, literals, err := profile.ParseKind(p.Properties[prop])
		if err != nil {
			return profile.TagDef{}, &LoadError{Code: ProfileError, Message: fmt.Sprintf("profile: tag %s property %s: %v", name, prop, err), Cause: err}
		}
		def.Properties = append(def.Properties, profile.Property{Name: prop, Kind: kind, Literals: literals})
	}
	return def, nil
}

// addLibraries registers the UML primitive and RAML type libraries. They are
// indexed but not owned by the model root.
func (b *builder) addLibraries() {
	prims := &Element{Kind: KindPackage, Name: "PrimitiveTypes", QualifiedName: "PrimitiveTypes"}
	b.m.index[prims.QualifiedName] = prims
	for _, name := range umlPrimitives {
		b.addBuiltin(prims, name)
	}

	ramlProfile := &Element{Kind: KindPackage, Name: "RamlProfile", QualifiedName: "RamlProfile"}
	ramlLib := &Element{Kind: KindPackage, Name: "RamlTypes", QualifiedName: "RamlProfile::RamlTypes", Owner: ramlProfile}
	ramlProfile.Owned = append(ramlProfile.Owned, ramlLib)
	b.m.index[ramlProfile.QualifiedName] = ramlProfile
	b.m.index[ramlLib.QualifiedName] = ramlLib
	for _, name := range ramlTypes {
		b.addBuiltin(ramlLib, name)
	}
}

func (b *builder) addBuiltin(lib *Element, name string) {
	e := &Element{Kind: KindPrimitive, Name: name, QualifiedName: lib.QualifiedName + Separator + name, Owner: lib}
	lib.Owned = append(lib.Owned, e)
	b.m.index[e.QualifiedName] = e
	b.builtin[name] = e
}

func (b *builder) attach(owner *Element, kind Kind, name string) (*Element, error) {
	e := &Element{Kind: kind, Name: name, Owner: owner, Lower: 1, Upper: 1}
	owner.Owned = append(owner.Owned, e)
	if name == "" {
		e.QualifiedName = owner.QualifiedName + Separator + "<" + kind.String() + ">"
		return e, nil
	}
	e.QualifiedName = owner.QualifiedName + Separator + name
	switch kind {
	case KindPackage, KindClass, KindDataType, KindAssociation:
	default:
		return e, nil
	}
	if _, exists := b.m.index[e.QualifiedName]; exists {
		return nil, &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("duplicate element %s", e.QualifiedName),
			Element: e.QualifiedName,
		}
	}
	b.m.index[e.QualifiedName] = e
	return e, nil
}

func parseElementKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "package", "":
		return KindPackage, true
	case "class":
		return KindClass, true
	case "datatype", "data-type":
		return KindDataType, true
	case "association":
		return KindAssociation, true
	default:
		return 0, false
	}
}

func (b *builder) addElement(owner *Element, raw *rawElement) error {
	kind, ok := parseElementKind(raw.Kind)
	if !ok {
		return &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("element %q in %s: unknown kind %q", raw.Name, owner.QualifiedName, raw.Kind),
			Element: owner.QualifiedName,
		}
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" && kind != KindAssociation {
		return &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("%s in %s has no name", kind, owner.QualifiedName),
			Element: owner.QualifiedName,
		}
	}
	e, err := b.attach(owner, kind, name)
	if err != nil {
		return err
	}
	e.Tags = b.applyTags(raw.Tags)

	for _, g := range raw.Generals {
		b.refs = append(b.refs, pendingRef{from: e, name: g, bind: func(t *Element) { e.Generals = append(e.Generals, t) }})
	}
	for i := range raw.Attributes {
		if _, err := b.addTyped(e, KindProperty, &raw.Attributes[i]); err != nil {
			return err
		}
	}
	for i := range raw.Ends {
		if _, err := b.addTyped(e, KindProperty, &raw.Ends[i]); err != nil {
			return err
		}
	}
	for i := range raw.Operations {
		op := &raw.Operations[i]
		oe, err := b.attach(e, KindOperation, strings.TrimSpace(op.Name))
		if err != nil {
			return err
		}
		oe.Tags = b.applyTags(op.Tags)
		for j := range op.Parameters {
			if _, err := b.addTyped(oe, KindParameter, &op.Parameters[j]); err != nil {
				return err
			}
		}
	}
	for i := range raw.Dependencies {
		dep := &raw.Dependencies[i]
		de, err := b.attach(e, KindDependency, strings.TrimSpace(dep.Name))
		if err != nil {
			return err
		}
		de.Tags = b.applyTags(dep.Tags)
		for _, target := range dep.Targets {
			b.refs = append(b.refs, pendingRef{from: de, name: target, bind: func(t *Element) { de.Targets = append(de.Targets, t) }})
		}
	}
	for i := range raw.Elements {
		if err := b.addElement(e, &raw.Elements[i]); err != nil {
			return err
		}
	}
	if kind == KindAssociation {
		b.m.associations = append(b.m.associations, e)
	}
	return nil
}

func (b *builder) addTyped(owner *Element, kind Kind, raw *rawTyped) (*Element, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" && kind == KindParameter {
		return nil, &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("parameter of %s has no name", owner.QualifiedName),
			Element: owner.QualifiedName,
		}
	}
	e, err := b.attach(owner, kind, name)
	if err != nil {
		return nil, err
	}
	e.Tags = b.applyTags(raw.Tags)
	e.Unique = raw.Unique

	if raw.Lower != nil {
		e.Lower = *raw.Lower
	}
	upper, err := parseUpper(raw.Upper)
	if err != nil {
		return nil, &LoadError{Code: StructureError, Message: fmt.Sprintf("%s: %v", e.QualifiedName, err), Element: e.QualifiedName}
	}
	if upper != nil {
		e.Upper = *upper
	} else if e.Lower > 1 {
		e.Upper = e.Lower
	}
	if e.Lower < 0 || (e.Upper != Unbounded && e.Upper < e.Lower) {
		return nil, &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("%s: invalid multiplicity %d..%d", e.QualifiedName, e.Lower, e.Upper),
			Element: e.QualifiedName,
		}
	}

	switch strings.ToLower(strings.TrimSpace(raw.Direction)) {
	case "", "in":
		e.Direction = DirIn
	case "inout":
		e.Direction = DirInOut
	case "out":
		e.Direction = DirOut
	case "return":
		e.Direction = DirReturn
	default:
		return nil, &LoadError{
			Code:    StructureError,
			Message: fmt.Sprintf("%s: unknown direction %q", e.QualifiedName, raw.Direction),
			Element: e.QualifiedName,
		}
	}

	if t := strings.TrimSpace(raw.Type); t != "" {
		b.refs = append(b.refs, pendingRef{from: e, name: t, bind: func(target *Element) { e.Type = target }})
	}
	return e, nil
}

func parseUpper(v any) (*int, error) {
	var n int
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int:
		n = val
	case int64:
		n = int(val)
	case uint64:
		n = int(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "*" {
			n = Unbounded
			break
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid upper bound %q", val)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("invalid upper bound %v", v)
	}
	if n < 0 {
		n = Unbounded
	}
	return &n, nil
}

func (b *builder) applyTags(raw []rawTag) []*AppliedTag {
	tags := make([]*AppliedTag, 0, len(raw))
	for _, rt := range raw {
		name := strings.TrimSpace(rt.Name)
		if name == "" {
			continue
		}
		tag := &AppliedTag{Name: name, Values: make(map[string]any, len(rt.Properties))}
		for prop, v := range rt.Properties {
			if decl, ok := b.m.Profile.Property(name, prop); ok {
				tag.Values[prop] = decl.Normalize(v)
			} else {
				tag.Values[prop] = profile.Property{}.Normalize(v)
			}
		}
		tags = append(tags, tag)
	}
	return tags
}

// resolve links a by-name reference: exact qualified name first, then
// relative to each enclosing namespace, then by simple name among the
// built-in type libraries.
func (b *builder) resolve(from *Element, name string) (*Element, bool) {
	name = strings.TrimSpace(name)
	if e, ok := b.m.index[name]; ok {
		return e, true
	}
	for scope := from.Owner; scope != nil; scope = scope.Owner {
		if e, ok := b.m.index[scope.QualifiedName+Separator+name]; ok {
			return e, true
		}
	}
	if e, ok := b.builtin[name]; ok {
		return e, true
	}
	return nil, false
}
