package raml

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header opens every generated document.
const Header = "#%RAML 1.0\n---\n"

const includePrefix = "!include "

// Write serializes api to w.
func Write(w io.Writer, api *API) error {
	_, err := w.Write(Marshal(api))
	return err
}

// Marshal renders api as a RAML 1.0 document. The output depends only on
// api, so equal documents always produce identical bytes.
func Marshal(api *API) []byte {
	p := &printer{}
	p.buf.WriteString(Header)
	p.field(0, "title", scalar(api.Title))
	p.optional(0, "baseUri", scalar(api.BaseURI), api.BaseURI)
	p.optional(0, "baseUriParameters", api.BaseURIParameters, api.BaseURIParameters)
	p.optional(0, "version", scalar(api.Version), api.Version)
	p.optional(0, "description", scalar(api.Description), api.Description)
	p.optional(0, "mediaType", scalar(api.MediaType), api.MediaType)
	p.optional(0, "protocols", api.Protocols, api.Protocols)
	p.optional(0, "documentation", api.Documentation, api.Documentation)
	if len(api.Resources) == 0 {
		p.list(0, "resourceTypes", api.ResourceTypes)
	}
	p.optional(0, "securitySchemes", api.SecuritySchemes, api.SecuritySchemes)
	p.optional(0, "securedBy", api.SecuredBy, api.SecuredBy)
	p.list(0, "uses", api.Uses)
	p.list(0, "traits", api.Traits)
	if len(api.TypeDefs) == 0 {
		p.list(0, "types", api.Types)
	}

	if len(api.TypeDefs) > 0 {
		defs := append([]TypeDef(nil), api.TypeDefs...)
		SortTypeDefs(defs)
		p.line(0, "types:")
		for _, d := range defs {
			p.typeDef(1, d)
		}
	}

	if len(api.Resources) > 0 {
		p.line(0, "resourceTypes:")
		seen := map[string]bool{}
		api.Walk(func(r *Resource) bool {
			if !seen[r.Name] {
				seen[r.Name] = true
				p.resourceType(1, r)
			}
			return true
		})
		for _, r := range api.Resources {
			p.pathNode(r)
		}
	}
	return p.buf.Bytes()
}

type printer struct {
	buf bytes.Buffer
}

func (p *printer) line(depth int, format string, args ...any) {
	p.buf.WriteString(strings.Repeat("  ", depth))
	if len(args) > 0 {
		fmt.Fprintf(&p.buf, format, args...)
	} else {
		p.buf.WriteString(format)
	}
	p.buf.WriteByte('\n')
}

func (p *printer) field(depth int, key, value string) {
	p.line(depth, "%s: %s", key, value)
}

// optional writes key: rendered unless raw is blank.
func (p *printer) optional(depth int, key, rendered, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	p.field(depth, key, rendered)
}

func (p *printer) list(depth int, key string, items []string) {
	if len(items) == 0 {
		return
	}
	p.line(depth, "%s:", key)
	for _, item := range items {
		p.line(depth+1, "- %s", item)
	}
}

func (p *printer) typeDef(depth int, d TypeDef) {
	h := d.Header()
	p.line(depth, "%s:", h.Name)
	p.optional(depth+1, "description", scalar(h.Description), h.Description)
	switch d := d.(type) {
	case *ScalarType:
		p.typeRef(depth+1, d.Ref)
	case *ObjectType:
		if d.SchemaKind != SchemaNone {
			p.line(depth+1, "type: %s%s", includePrefix, d.Schema)
		} else {
			p.line(depth+1, "type: object")
			if len(d.Properties) > 0 {
				p.line(depth+1, "properties:")
				for _, prop := range d.Properties {
					key := prop.Name
					if prop.Optional {
						key += "?"
					}
					p.line(depth+2, "%s:", key)
					p.typeRef(depth+3, prop.Type)
				}
			}
		}
		p.optional(depth+1, "default", d.Default, d.Default)
		p.optional(depth+1, "example", d.Example, d.Example)
		p.optional(depth+1, "examples", d.Examples, d.Examples)
	}
}

func (p *printer) typeRef(depth int, ref TypeRef) {
	if !ref.IsArray() {
		p.line(depth, "type: %s", ref.Name)
		p.facets(depth, ref.Facets())
		return
	}
	p.line(depth, "type: array")
	if ref.MinItems() > 0 {
		p.line(depth, "minItems: %d", ref.MinItems())
	}
	if ref.MaxItems() >= 0 {
		p.line(depth, "maxItems: %d", ref.MaxItems())
	}
	if ref.Unique() {
		p.line(depth, "uniqueItems: true")
	}
	facets := ref.Facets()
	if len(facets) == 0 {
		p.line(depth, "items: %s", ref.Name)
		return
	}
	p.line(depth, "items:")
	p.line(depth+1, "type: %s", ref.Name)
	p.facets(depth+1, facets)
}

func (p *printer) facets(depth int, facets []Facet) {
	for _, f := range facets {
		value := f.Value
		switch f.Name {
		case "pattern":
			value = scalar(value)
		case "default", "example":
			if !Fragment(value) {
				value = scalar(value)
			}
		}
		p.field(depth, f.Name, value)
	}
}

func (p *printer) resourceType(depth int, r *Resource) {
	p.line(depth, "%s:", r.Name)
	p.field(depth+1, "displayName", scalar(r.Name))
	if len(r.URIParameters) > 0 {
		p.line(depth+1, "uriParameters:")
		for _, name := range r.URIParameters {
			p.line(depth+2, "%s: string", name)
		}
	}
	p.optional(depth+1, "description", scalar(r.Description), r.Description)
	p.optional(depth+1, "is", r.Is, r.Is)
	p.optional(depth+1, "type", r.Type, r.Type)
	p.optional(depth+1, "securedBy", r.SecuredBy, r.SecuredBy)
	for _, m := range r.Methods {
		p.method(depth+1, m)
	}
}

func (p *printer) method(depth int, m *Method) {
	p.line(depth, "%s:", m.Verb)
	p.optional(depth+1, "displayName", scalar(m.DisplayName), m.DisplayName)
	p.optional(depth+1, "description", scalar(m.Description), m.Description)
	p.optional(depth+1, "is", m.Is, m.Is)
	p.optional(depth+1, "protocols", m.Protocols, m.Protocols)
	if len(m.Body) > 0 {
		p.line(depth+1, "body:")
		p.bodies(depth+2, m.Body)
	}
	if len(m.QueryParameters) > 0 {
		p.line(depth+1, "queryParameters:")
		for _, qp := range m.QueryParameters {
			p.line(depth+2, "%s:", qp.Name)
			p.typeRef(depth+3, qp.Type)
		}
	} else {
		p.optional(depth+1, "queryParameters", m.QueryParamsText, m.QueryParamsText)
	}
	p.line(depth+1, "responses:")
	if len(m.Responses) == 0 {
		p.line(depth+2, "200:")
		p.line(depth+3, "body:")
		p.line(depth+4, "text/plain: !!null")
		return
	}
	for _, resp := range m.Responses {
		p.line(depth+2, "%d:", resp.Code)
		p.line(depth+3, "body:")
		p.bodies(depth+4, resp.Bodies)
	}
}

// bodies writes media-type keyed bodies; a body without media type is
// written inline.
func (p *printer) bodies(depth int, bodies []Body) {
	for _, b := range bodies {
		if b.MediaType == "" {
			p.typeRef(depth, b.Type)
			continue
		}
		p.line(depth, "%s:", b.MediaType)
		p.typeRef(depth+1, b.Type)
	}
}

func (p *printer) pathNode(r *Resource) {
	depth := r.Depth()
	p.buf.WriteByte('\n')
	p.line(depth, "%s:", r.Path)
	p.field(depth+1, "type", r.Name)
	for _, c := range r.Children {
		p.pathNode(c)
	}
}

// scalar renders s so that a YAML parser reads back the same string.
// Include directives are kept verbatim.
func scalar(s string) string {
	if strings.HasPrefix(s, includePrefix) {
		return s
	}
	if strings.ContainsAny(s, "\n\r") {
		return strconv.Quote(s)
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	q := strings.TrimSuffix(string(out), "\n")
	if strings.Contains(q, "\n") {
		return strconv.Quote(s)
	}
	return q
}

// Fragment reports whether a free-text facet value can be written as is: a
// well-formed flow collection, or a single-line plain scalar that reads back
// unchanged.
// Anything else is written as a quoted string.
func Fragment(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" || t != s || strings.ContainsAny(s, "\n\r") {
		return false
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte("v: "+s), &doc); err != nil {
		return false
	}
	if t[0] == '[' || t[0] == '{' {
		return true
	}
	switch v := doc["v"].(type) {
	case string:
		return v == s
	case map[string]any, []any:
		return false
	default:
		return true
	}
}
