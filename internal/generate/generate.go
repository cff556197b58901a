// Package generate turns a loaded model into RAML document trees: it
// assembles resources and methods from tagged elements, then resolves every
// model type they reach into a type definition.
package generate

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/uml2raml/internal/annotation"
	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
	"github.com/mark3labs/uml2raml/internal/raml"
)

var (
	// ErrInvalidModel marks models whose structure cannot be transformed.
	ErrInvalidModel = errors.New("invalid model")
	// ErrUnsupportedType marks a type reference no mapping rule accepts.
	ErrUnsupportedType = errors.New("unsupported type reference")
	// ErrNoAPI is returned when a single document was requested and no API matched.
	ErrNoAPI = errors.New("no API found")
	// ErrAmbiguous is returned when a single document was requested and several APIs matched.
	ErrAmbiguous = errors.New("ambiguous API selection")
)

func invalidf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidModel)
}

func unsupportedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsupportedType)
}

// Generator converts models into RAML documents.
type Generator struct {
	arraysAsTypes bool
	log           *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithArraysAsTypes makes array bodies and responses reference a synthesized
// "<Item>Array" type instead of an inline array.
func WithArraysAsTypes(on bool) Option {
	return func(g *Generator) { g.arraysAsTypes = on }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// New returns a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// APIs lists the API packages of m in declaration order.
func APIs(m *model.Model) []*model.Element {
	res := annotation.NewResolver(m.Profile)
	var out []*model.Element
	for _, el := range m.Root.AllOwned() {
		if el.Kind == model.KindPackage && res.Has(el, profile.TagAPI) {
			out = append(out, el)
		}
	}
	return out
}

// Generate builds one document per API package, keyed by title. When names
// are given only packages whose name or title matches one of them are built.
func (g *Generator) Generate(m *model.Model, names ...string) (map[string]*raml.API, error) {
	if m == nil || m.Root == nil {
		return nil, errors.New("generate: nil model")
	}
	wanted := map[string]bool{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			wanted[n] = true
		}
	}

	res := annotation.NewResolver(m.Profile)
	docs := map[string]*raml.API{}
	for _, pkg := range APIs(m) {
		if len(wanted) > 0 && !wanted[pkg.Name] {
			title, _ := res.String(pkg, profile.TagAPI, profile.PropTitle)
			if !wanted[title] {
				continue
			}
		}
		r := &run{
			gen:   g,
			m:     m,
			res:   res,
			types: newArena(),
			log:   g.log.With(zap.String("api", pkg.QualifiedName)),
		}
		api, err := r.processAPI(pkg)
		if err != nil {
			return nil, err
		}
		if _, dup := docs[api.Title]; dup {
			return nil, invalidf("more than one API is titled %q", api.Title)
		}
		docs[api.Title] = api
	}
	return docs, nil
}

// GenerateOne builds exactly one document. It fails when the selection
// matches no API or more than one.
func (g *Generator) GenerateOne(m *model.Model, names ...string) (*raml.API, error) {
	docs, err := g.Generate(m, names...)
	if err != nil {
		return nil, err
	}
	switch len(docs) {
	case 0:
		if len(names) > 0 {
			return nil, errors.Wrapf(ErrNoAPI, "no API matches %s", strings.Join(names, ", "))
		}
		return nil, ErrNoAPI
	case 1:
		for _, api := range docs {
			return api, nil
		}
	}
	titles := make([]string, 0, len(docs))
	for t := range docs {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return nil, errors.WithHint(
		errors.Wrapf(ErrAmbiguous, "model declares %d APIs (%s)", len(docs), strings.Join(titles, ", ")),
		"select one by name",
	)
}

// run holds the state of building one document.
type run struct {
	gen   *Generator
	m     *model.Model
	res   *annotation.Resolver
	types *arena
	log   *zap.Logger
}

// str returns a string property, treating blank values as unset.
func (r *run) str(el *model.Element, tag, prop string) string {
	s, ok := r.res.String(el, tag, prop)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *run) list(el *model.Element, tag, prop string) []string {
	l, _ := r.res.StringList(el, tag, prop)
	return l
}

// isCustomType reports whether el is a model type that becomes a type
// definition of its own.
func (r *run) isCustomType(el *model.Element) bool {
	if el == nil || (el.Kind != model.KindClass && el.Kind != model.KindDataType) {
		return false
	}
	return r.res.Has(el, profile.TagAPIModel) || r.res.Has(el, profile.TagFacetedScalar)
}

func (r *run) isResource(el *model.Element) bool {
	return el != nil && el.Kind == model.KindClass && r.res.Has(el, profile.TagResource)
}

func (r *run) isPathLink(dep *model.Element) bool {
	return r.res.Has(dep, profile.TagResourcePath)
}

func resourceTypeName(el *model.Element) string {
	name := strings.ReplaceAll(el.Name, " ", "")
	if name == "" {
		return ""
	}
	return name + "Resource"
}
