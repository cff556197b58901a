// Package oasemitter exports generated RAML documents as OpenAPI 3.0
// descriptions built with kin-openapi.
package oasemitter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/uml2raml/internal/raml"
)

// DefaultMediaType is used for bodies when neither the body nor the API names
// a media type.
const DefaultMediaType = "application/json"

const schemaRefPrefix = "#/components/schemas/"

// Convert maps api onto an OpenAPI 3.0 document. Type definitions become
// component schemas and every resource becomes a path keyed by its full path.
func Convert(api *raml.API) (*openapi3.T, error) {
	if api == nil {
		return nil, errors.New("oasemitter: nil API")
	}
	c := &converter{api: api, defined: map[string]bool{}}
	for _, d := range api.TypeDefs {
		c.defined[d.Header().Name] = true
	}

	version := api.Version
	if version == "" {
		version = "unversioned"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       api.Title,
			Version:     version,
			Description: api.Description,
		},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
	}
	if server := c.server(); server != nil {
		doc.Servers = openapi3.Servers{server}
	}

	for _, d := range api.TypeDefs {
		s, err := c.typeDef(d)
		if err != nil {
			return nil, err
		}
		doc.Components.Schemas[d.Header().Name] = openapi3.NewSchemaRef("", s)
	}

	var err error
	api.Walk(func(r *raml.Resource) bool {
		var item *openapi3.PathItem
		if item, err = c.pathItem(r); err != nil {
			return false
		}
		doc.Paths[r.FullPath()] = item
		return true
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type converter struct {
	api     *raml.API
	defined map[string]bool
}

// server turns baseUri into a server entry; {version} and any other
// placeholders become server variables.
func (c *converter) server() *openapi3.Server {
	uri := strings.TrimSpace(c.api.BaseURI)
	if uri == "" {
		return nil
	}
	s := &openapi3.Server{URL: uri}
	for _, name := range raml.URIParameterNames(uri) {
		if s.Variables == nil {
			s.Variables = map[string]*openapi3.ServerVariable{}
		}
		v := &openapi3.ServerVariable{}
		if name == "version" {
			v.Default = c.api.Version
		}
		s.Variables[name] = v
	}
	return s
}

func (c *converter) typeDef(d raml.TypeDef) (*openapi3.Schema, error) {
	switch d := d.(type) {
	case *raml.ScalarType:
		ref, err := c.typeRef(d.Ref)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", d.Name)
		}
		if ref.Ref != "" {
			s := &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
			s.Description = d.Description
			return s, nil
		}
		ref.Value.Description = d.Description
		return ref.Value, nil
	case *raml.ObjectType:
		s := openapi3.NewObjectSchema()
		s.Description = d.Description
		if d.SchemaKind != raml.SchemaNone {
			s.Extensions = map[string]interface{}{"x-raml-schema": d.Schema}
		}
		for _, p := range d.Properties {
			ref, err := c.typeRef(p.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "property %s of %s", p.Name, d.Name)
			}
			s.Properties[p.Name] = ref
			if !p.Optional {
				s.Required = append(s.Required, p.Name)
			}
		}
		s.Default = literal(d.Default)
		s.Example = literal(d.Example)
		return s, nil
	default:
		return nil, errors.AssertionFailedf("unknown type definition %T", d)
	}
}

// typeRef maps a reference onto a schema. Defined types become $refs;
// facets apply to the element type of arrays.
func (c *converter) typeRef(ref raml.TypeRef) (*openapi3.SchemaRef, error) {
	if c.defined[ref.Name] && len(ref.Facets()) == 0 {
		item := openapi3.NewSchemaRef(schemaRefPrefix+ref.Name, nil)
		if !ref.IsArray() {
			return item, nil
		}
		return openapi3.NewSchemaRef("", arraySchema(ref, item)), nil
	}

	s := c.builtin(ref.Name)
	if err := applyFacets(s, ref.Facets()); err != nil {
		return nil, errors.Wrapf(err, "type %s", ref.Name)
	}
	item := openapi3.NewSchemaRef("", s)
	if !ref.IsArray() {
		return item, nil
	}
	return openapi3.NewSchemaRef("", arraySchema(ref, item)), nil
}

func arraySchema(ref raml.TypeRef, items *openapi3.SchemaRef) *openapi3.Schema {
	s := openapi3.NewArraySchema()
	s.Items = items
	s.MinItems = uint64(ref.MinItems())
	if ref.MaxItems() >= 0 {
		s.WithMaxItems(int64(ref.MaxItems()))
	}
	s.UniqueItems = ref.Unique()
	return s
}

// builtin maps RAML built-in type names. Names that are neither built in nor
// defined, such as resource type names, become free-form objects.
func (c *converter) builtin(name string) *openapi3.Schema {
	switch name {
	case "string":
		return openapi3.NewStringSchema()
	case "integer":
		return openapi3.NewIntegerSchema()
	case "number":
		return openapi3.NewFloat64Schema()
	case "boolean":
		return openapi3.NewBoolSchema()
	case "date-only":
		return openapi3.NewStringSchema().WithFormat("date")
	case "datetime", "datetime-only":
		return openapi3.NewStringSchema().WithFormat("date-time")
	case "time-only":
		return openapi3.NewStringSchema().WithFormat("time")
	case "file":
		return openapi3.NewStringSchema().WithFormat("binary")
	case "array":
		return openapi3.NewArraySchema().WithItems(openapi3.NewSchema())
	case "nil":
		s := openapi3.NewSchema()
		s.Nullable = true
		return s
	case "any":
		return openapi3.NewSchema()
	default:
		if c.defined[name] {
			return &openapi3.Schema{AllOf: openapi3.SchemaRefs{openapi3.NewSchemaRef(schemaRefPrefix+name, nil)}}
		}
		return openapi3.NewObjectSchema()
	}
}

func applyFacets(s *openapi3.Schema, facets []raml.Facet) error {
	for _, f := range facets {
		switch f.Name {
		case "minimum", "maximum", "multipleOf":
			v, err := strconv.ParseFloat(f.Value, 64)
			if err != nil {
				return errors.Wrapf(err, "facet %s", f.Name)
			}
			switch f.Name {
			case "minimum":
				s.Min = &v
			case "maximum":
				s.Max = &v
			default:
				s.MultipleOf = &v
			}
		case "minLength", "maxLength":
			n, err := strconv.ParseUint(f.Value, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "facet %s", f.Name)
			}
			if f.Name == "minLength" {
				s.MinLength = n
			} else {
				s.MaxLength = &n
			}
		case "pattern":
			s.Pattern = f.Value
		case "format":
			s.Format = f.Value
		case "enum":
			s.Enum = enumValues(f.Value)
		case "default":
			s.Default = facetLiteral(f.Value)
		case "example":
			s.Example = facetLiteral(f.Value)
		}
	}
	return nil
}

// literal decodes a YAML scalar or collection; text that does not parse is
// kept as a string.
func literal(text string) interface{} {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var v interface{}
	if err := yaml.Unmarshal([]byte(text), &v); err != nil || v == nil {
		return text
	}
	return v
}

// facetLiteral decodes free-text facet values the way the RAML document
// presents them: plain scalars and flow collections are YAML, anything else
// is a string.
func facetLiteral(text string) interface{} {
	if !raml.Fragment(text) {
		return text
	}
	return literal(text)
}

func enumValues(text string) []interface{} {
	switch v := literal(text).(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	default:
		return []interface{}{v}
	}
}

func (c *converter) pathItem(r *raml.Resource) (*openapi3.PathItem, error) {
	item := &openapi3.PathItem{Description: r.Description}
	for _, name := range raml.URIParameterNames(r.FullPath()) {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
		item.Parameters = append(item.Parameters, &openapi3.ParameterRef{Value: p})
	}
	for _, m := range r.Methods {
		op, err := c.operation(m)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", strings.ToUpper(string(m.Verb)), r.FullPath())
		}
		item.SetOperation(strings.ToUpper(string(m.Verb)), op)
	}
	return item, nil
}

func (c *converter) operation(m *raml.Method) (*openapi3.Operation, error) {
	op := &openapi3.Operation{
		OperationID: m.DisplayName,
		Description: m.Description,
		Responses:   openapi3.Responses{},
	}
	for _, qp := range m.QueryParameters {
		ref, err := c.typeRef(qp.Type)
		if err != nil {
			return nil, err
		}
		p := openapi3.NewQueryParameter(qp.Name)
		p.Schema = ref
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: p})
	}

	if len(m.Body) > 0 {
		content, err := c.content(m.Body)
		if err != nil {
			return nil, err
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithContent(content)}
	}

	if len(m.Responses) == 0 {
		op.Responses["200"] = &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(statusText(200))}
	}
	for _, resp := range m.Responses {
		content, err := c.content(resp.Bodies)
		if err != nil {
			return nil, err
		}
		op.Responses[strconv.Itoa(resp.Code)] = &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(statusText(resp.Code)).WithContent(content),
		}
	}
	return op, nil
}

func (c *converter) content(bodies []raml.Body) (openapi3.Content, error) {
	content := openapi3.Content{}
	for _, b := range bodies {
		ref, err := c.typeRef(b.Type)
		if err != nil {
			return nil, err
		}
		content[c.mediaType(b.MediaType)] = openapi3.NewMediaType().WithSchemaRef(ref)
	}
	return content, nil
}

func (c *converter) mediaType(mt string) string {
	if mt != "" {
		return mt
	}
	if c.api.MediaType != "" {
		return c.api.MediaType
	}
	return DefaultMediaType
}

func statusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "Response " + strconv.Itoa(code)
}
