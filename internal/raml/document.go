// Package raml holds the RAML 1.0 document tree produced from a model and its
// deterministic serializer.
package raml

import (
	"regexp"
	"sort"
	"strings"
)

// API is the root of one generated document.
type API struct {
	Title             string
	Version           string
	BaseURI           string
	BaseURIParameters string
	Description       string
	MediaType         string
	Protocols         string
	Documentation     string
	SecuritySchemes   string
	SecuredBy         string

	// Include lists copied verbatim from the model.
	Types         []string
	Traits        []string
	ResourceTypes []string
	Uses          []string

	Resources []*Resource

	// TypeNames holds the qualified names of every model type reachable from
	// the resources. TypeDefs holds the resolved definitions of those types
	// plus any synthesized array aliases.
	TypeNames []string
	TypeDefs  []TypeDef
}

// Walk visits every resource in pre-order until fn returns false.
func (a *API) Walk(fn func(*Resource) bool) {
	var visit func([]*Resource) bool
	visit = func(rs []*Resource) bool {
		for _, r := range rs {
			if !fn(r) || !visit(r.Children) {
				return false
			}
		}
		return true
	}
	visit(a.Resources)
}

// Resource returns the resource with the given full path.
func (a *API) Resource(fullPath string) *Resource {
	var found *Resource
	a.Walk(func(r *Resource) bool {
		if r.FullPath() == fullPath {
			found = r
			return false
		}
		return true
	})
	return found
}

// TypeDef returns the definition with the given name.
func (a *API) TypeDef(name string) (TypeDef, bool) {
	for _, d := range a.TypeDefs {
		if d.Header().Name == name {
			return d, true
		}
	}
	return nil, false
}

// Clone deep-copies the resource tree and type definitions.
func (a *API) Clone() *API {
	c := *a
	c.Types = append([]string(nil), a.Types...)
	c.Traits = append([]string(nil), a.Traits...)
	c.ResourceTypes = append([]string(nil), a.ResourceTypes...)
	c.Uses = append([]string(nil), a.Uses...)
	c.TypeNames = append([]string(nil), a.TypeNames...)
	c.Resources = cloneResources(a.Resources, nil)
	c.TypeDefs = make([]TypeDef, 0, len(a.TypeDefs))
	for _, d := range a.TypeDefs {
		switch d := d.(type) {
		case *ScalarType:
			cp := *d
			c.TypeDefs = append(c.TypeDefs, &cp)
		case *ObjectType:
			cp := *d
			cp.Properties = append([]Property(nil), d.Properties...)
			c.TypeDefs = append(c.TypeDefs, &cp)
		}
	}
	return &c
}

func cloneResources(rs []*Resource, parent *Resource) []*Resource {
	if rs == nil {
		return nil
	}
	out := make([]*Resource, 0, len(rs))
	for _, r := range rs {
		cp := *r
		cp.Parent = parent
		cp.URIParameters = append([]string(nil), r.URIParameters...)
		cp.Methods = make([]*Method, 0, len(r.Methods))
		for _, m := range r.Methods {
			mc := *m
			mc.Body = append([]Body(nil), m.Body...)
			mc.QueryParameters = append([]Parameter(nil), m.QueryParameters...)
			mc.Responses = make([]Response, 0, len(m.Responses))
			for _, resp := range m.Responses {
				resp.Bodies = append([]Body(nil), resp.Bodies...)
				mc.Responses = append(mc.Responses, resp)
			}
			cp.Methods = append(cp.Methods, &mc)
		}
		cp.Children = cloneResources(r.Children, &cp)
		out = append(out, &cp)
	}
	return out
}

// Resource is one path node. Its Name doubles as the resource type name.
type Resource struct {
	Name          string
	Path          string
	Parent        *Resource
	URIParameters []string
	Description   string
	Is            string
	Type          string
	SecuredBy     string
	Children      []*Resource
	Methods       []*Method
}

// FullPath concatenates the path segments from the top-level ancestor down.
func (r *Resource) FullPath() string {
	if r.Parent == nil {
		return r.Path
	}
	return r.Parent.FullPath() + r.Path
}

// Depth is zero for top-level resources.
func (r *Resource) Depth() int {
	d := 0
	for p := r.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Method returns the operation bound to verb.
func (r *Resource) Method(verb Verb) *Method {
	for _, m := range r.Methods {
		if m.Verb == verb {
			return m
		}
	}
	return nil
}

var uriParamRe = regexp.MustCompile(`\{([^{}]+)\}`)

// URIParameterNames extracts the {name} placeholders of a path in order.
func URIParameterNames(path string) []string {
	var names []string
	for _, m := range uriParamRe.FindAllStringSubmatch(path, -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Verb is a lower-case HTTP method name.
type Verb string

const (
	Get     Verb = "get"
	Post    Verb = "post"
	Put     Verb = "put"
	Patch   Verb = "patch"
	Delete  Verb = "delete"
	Head    Verb = "head"
	Options Verb = "options"
)

// HasBody reports whether requests of this verb carry a body.
func (v Verb) HasBody() bool {
	return v == Post || v == Put || v == Patch
}

// Body binds a media type to a type reference. An empty MediaType means the
// API default.
type Body struct {
	MediaType string
	Type      TypeRef
}

// Parameter is a named query parameter.
type Parameter struct {
	Name string
	Type TypeRef
}

// Response is the set of bodies returned with one status code.
type Response struct {
	Code   int
	Bodies []Body
}

// Method is one operation of a resource.
type Method struct {
	Verb            Verb
	DisplayName     string
	Description     string
	Is              string
	Protocols       string
	QueryParamsText string

	Body            []Body
	QueryParameters []Parameter
	Responses       []Response
}

func setBody(bodies []Body, mediaType string, ref TypeRef) []Body {
	for i := range bodies {
		if bodies[i].MediaType == mediaType {
			bodies[i].Type = ref
			return bodies
		}
	}
	return append(bodies, Body{MediaType: mediaType, Type: ref})
}

func findBody(bodies []Body, mediaType string) (TypeRef, bool) {
	for _, b := range bodies {
		if b.MediaType == mediaType {
			return b.Type, true
		}
	}
	return TypeRef{}, false
}

// SetBody binds the request body for a media type.
func (m *Method) SetBody(mediaType string, ref TypeRef) {
	m.Body = setBody(m.Body, mediaType, ref)
}

// BodyType returns the request body bound to a media type.
func (m *Method) BodyType(mediaType string) (TypeRef, bool) {
	return findBody(m.Body, mediaType)
}

// SetQueryParameter binds a query parameter, replacing one with the same name.
func (m *Method) SetQueryParameter(name string, ref TypeRef) {
	for i := range m.QueryParameters {
		if m.QueryParameters[i].Name == name {
			m.QueryParameters[i].Type = ref
			return
		}
	}
	m.QueryParameters = append(m.QueryParameters, Parameter{Name: name, Type: ref})
}

// QueryParameter returns the type of a query parameter.
func (m *Method) QueryParameter(name string) (TypeRef, bool) {
	for _, p := range m.QueryParameters {
		if p.Name == name {
			return p.Type, true
		}
	}
	return TypeRef{}, false
}

// SetResponse binds a response body; responses stay ordered by status code.
func (m *Method) SetResponse(code int, mediaType string, ref TypeRef) {
	for i := range m.Responses {
		if m.Responses[i].Code == code {
			m.Responses[i].Bodies = setBody(m.Responses[i].Bodies, mediaType, ref)
			return
		}
	}
	m.Responses = append(m.Responses, Response{Code: code, Bodies: []Body{{MediaType: mediaType, Type: ref}}})
	sort.SliceStable(m.Responses, func(i, j int) bool { return m.Responses[i].Code < m.Responses[j].Code })
}

// ResponseType returns the body bound to a status code and media type.
func (m *Method) ResponseType(code int, mediaType string) (TypeRef, bool) {
	for _, r := range m.Responses {
		if r.Code == code {
			return findBody(r.Bodies, mediaType)
		}
	}
	return TypeRef{}, false
}
