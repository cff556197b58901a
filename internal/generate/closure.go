package generate

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
	"github.com/mark3labs/uml2raml/internal/raml"
)

// slot is the state of one type in the arena: queued, expanded or resolved.
type slot interface{ isSlot() }

type queued struct{}

type expanded struct{ el *model.Element }

type resolved struct{ def raml.TypeDef }

func (queued) isSlot()   {}
func (expanded) isSlot() {}
func (resolved) isSlot() {}

// arena holds every type a document needs, keyed by qualified name (or by
// the synthesized name of an array alias). Each slot only moves forward.
type arena struct {
	slots   map[string]slot
	aliases map[string]bool
}

func newArena() *arena {
	return &arena{slots: map[string]slot{}, aliases: map[string]bool{}}
}

// queue registers a model type; registering twice is a no-op.
func (a *arena) queue(qualified string) {
	if _, ok := a.slots[qualified]; !ok {
		a.slots[qualified] = queued{}
	}
}

// defineAlias registers a synthesized array alias.
func (a *arena) defineAlias(name string, def *raml.ScalarType) {
	if _, ok := a.slots[name]; !ok {
		a.slots[name] = resolved{def: def}
		a.aliases[name] = true
	}
}

// alias returns the synthesized alias registered under name.
func (a *arena) alias(name string) (*raml.ScalarType, bool) {
	if !a.aliases[name] {
		return nil, false
	}
	res, ok := a.slots[name].(resolved)
	if !ok {
		return nil, false
	}
	def, ok := res.def.(*raml.ScalarType)
	return def, ok
}

// modelNames returns the sorted names of model types, leaving out
// synthesized aliases.
func (a *arena) modelNames() []string {
	var out []string
	for _, name := range a.names() {
		if !a.aliases[name] {
			out = append(out, name)
		}
	}
	return out
}

func (a *arena) names() []string {
	out := make([]string, 0, len(a.slots))
	for name := range a.slots {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// next returns the smallest queued name.
func (a *arena) next() (string, bool) {
	for _, name := range a.names() {
		if _, ok := a.slots[name].(queued); ok {
			return name, true
		}
	}
	return "", false
}

// closeTypes expands queued types until every type reachable through
// associations and attributes is registered. Each name is expanded once, so
// the loop ends after at most one round per model type.
func (r *run) closeTypes() error {
	for {
		name, ok := r.types.next()
		if !ok {
			return nil
		}
		el, found := r.m.Lookup(name)
		if !found {
			return invalidf("type %s not found", name)
		}
		r.types.slots[name] = expanded{el: el}
		if el.Kind != model.KindClass && el.Kind != model.KindDataType {
			continue
		}
		for _, assoc := range r.m.Associations(el) {
			for _, end := range assoc.Ends() {
				if r.isCustomType(end.Type) {
					r.types.queue(end.Type.QualifiedName)
				}
			}
		}
		for _, attr := range el.AllAttributes() {
			if r.isCustomType(attr.Type) {
				r.types.queue(attr.Type.QualifiedName)
			}
		}
	}
}

// resolveTypes builds one definition per expanded type and returns every
// definition, scalars first.
func (r *run) resolveTypes() ([]raml.TypeDef, error) {
	for _, name := range r.types.names() {
		exp, ok := r.types.slots[name].(expanded)
		if !ok {
			continue
		}
		def, err := r.resolveType(exp.el)
		if err != nil {
			return nil, err
		}
		r.types.slots[name] = resolved{def: def}
	}

	defs := make([]raml.TypeDef, 0, len(r.types.slots))
	byName := map[string]string{}
	for _, name := range r.types.names() {
		res, ok := r.types.slots[name].(resolved)
		if !ok {
			return nil, errors.AssertionFailedf("type %s left unresolved", name)
		}
		h := res.def.Header()
		if other, dup := byName[h.Name]; dup {
			return nil, invalidf("types %s and %s share the name %s", other, h.QualifiedName, h.Name)
		}
		byName[h.Name] = h.QualifiedName
		defs = append(defs, res.def)
	}
	raml.SortTypeDefs(defs)
	return defs, nil
}

func (r *run) resolveType(el *model.Element) (raml.TypeDef, error) {
	header := raml.TypeHeader{
		Name:          model.ShortName(el.QualifiedName),
		QualifiedName: el.QualifiedName,
	}

	if r.res.Has(el, profile.TagFacetedScalar) {
		if el.Kind != model.KindDataType {
			return nil, invalidf("%s is tagged FacetedScalar but is not a data type", el.QualifiedName)
		}
		return r.resolveScalar(el, header)
	}

	obj := &raml.ObjectType{
		TypeHeader: header,
		Default:    r.str(el, profile.TagAPIModel, profile.PropDefault),
		Example:    r.str(el, profile.TagAPIModel, profile.PropExample),
		Examples:   r.str(el, profile.TagAPIModel, profile.PropExamples),
	}
	obj.Description = r.str(el, profile.TagAPIModel, profile.PropDescription)

	schemaTag := ""
	switch {
	case r.res.Has(el, profile.TagJSONSchema):
		obj.SchemaKind, schemaTag = raml.SchemaJSON, profile.TagJSONSchema
	case r.res.Has(el, profile.TagXMLSchema):
		obj.SchemaKind, schemaTag = raml.SchemaXML, profile.TagXMLSchema
	}
	if schemaTag != "" {
		obj.Schema = r.str(el, schemaTag, profile.PropSchema)
		if obj.Schema == "" {
			return nil, invalidf("%s declares an external schema without a schema path", el.QualifiedName)
		}
		return obj, nil
	}

	for _, attr := range el.AllAttributes() {
		ref, err := r.typeMapper(attr)
		if errors.Is(err, ErrUnsupportedType) {
			r.log.Warn("dropping property with unsupported type",
				zap.String("type", el.QualifiedName), zap.String("property", attr.Name), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, raml.Property{
			Name:     attr.Name,
			Type:     ref,
			Optional: attr.Lower == 0 && attr.Upper == 1,
		})
	}
	return obj, nil
}

func (r *run) resolveScalar(el *model.Element, header raml.TypeHeader) (raml.TypeDef, error) {
	attrs := el.AllAttributes()
	if len(attrs) != 1 {
		return nil, invalidf("scalar type %s must have exactly one attribute, found %d", el.QualifiedName, len(attrs))
	}
	attr := attrs[0]
	if attr.Type == nil || attr.Type.Kind != model.KindPrimitive || !strings.HasPrefix(attr.Type.QualifiedName, profile.RAMLTypesPrefix) {
		return nil, invalidf("scalar type %s must wrap a RAML type", el.QualifiedName)
	}
	ref, err := r.typeMapper(attr)
	if err != nil {
		return nil, err
	}
	if ref, err = r.scalarFacets(el, attr.Type.Name, ref); err != nil {
		return nil, err
	}
	header.Description = r.str(el, profile.TagFacetedScalar, profile.PropDescription)
	return &raml.ScalarType{TypeHeader: header, Ref: ref}, nil
}
