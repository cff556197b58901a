package generate

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
	"github.com/mark3labs/uml2raml/internal/raml"
)

var verbTags = []struct {
	tag  string
	verb raml.Verb
}{
	{profile.TagGet, raml.Get},
	{profile.TagPost, raml.Post},
	{profile.TagPut, raml.Put},
	{profile.TagPatch, raml.Patch},
	{profile.TagDelete, raml.Delete},
	{profile.TagHead, raml.Head},
	{profile.TagOptions, raml.Options},
}

// verbOf returns the single HTTP verb tag applied to op.
func (r *run) verbOf(op *model.Element) (raml.Verb, error) {
	var found []raml.Verb
	for _, vt := range verbTags {
		if r.res.Has(op, vt.tag) {
			found = append(found, vt.verb)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", invalidf("operation %s is an HTTP method but names no verb", op.QualifiedName)
	default:
		verbs := make([]string, len(found))
		for i, v := range found {
			verbs[i] = strings.ToUpper(string(v))
		}
		return "", invalidf("operation %s has several verbs: %s", op.QualifiedName, strings.Join(verbs, ", "))
	}
}

func (r *run) processMethod(op *model.Element) (*raml.Method, error) {
	name := strings.TrimSpace(op.Name)
	if name == "" {
		return nil, invalidf("an HTTP method of %s has no name", op.Owner.QualifiedName)
	}
	verb, err := r.verbOf(op)
	if err != nil {
		return nil, err
	}
	r.log.Debug("processing method", zap.String("method", name), zap.String("verb", string(verb)))

	m := &raml.Method{
		Verb:            verb,
		DisplayName:     name,
		Description:     r.str(op, profile.TagHTTPMethod, profile.PropDescription),
		Is:              r.str(op, profile.TagHTTPMethod, profile.PropIs),
		Protocols:       r.str(op, profile.TagHTTPMethod, profile.PropProtocols),
		QueryParamsText: r.str(op, profile.TagHTTPMethod, profile.PropQueryParameters),
	}

	for _, param := range op.Parameters() {
		if r.isCustomType(param.Type) {
			r.types.queue(param.Type.QualifiedName)
		}
		ref, err := r.typeMapper(param)
		if err != nil {
			return nil, err
		}

		if param.Direction == model.DirIn || param.Direction == model.DirInOut {
			if verb.HasBody() && !r.res.Has(param, profile.TagQueryParameter) {
				mediaType := r.str(param, profile.TagHTTPRequest, profile.PropMediaType)
				body, err := r.arrayAlias(ref)
				if err != nil {
					return nil, err
				}
				m.SetBody(mediaType, body)
			} else {
				qref := ref
				if v := r.str(param, profile.TagQueryParameter, profile.PropDefault); v != "" {
					qref = qref.WithFacet("default", v)
				}
				if v := r.str(param, profile.TagQueryParameter, profile.PropExample); v != "" {
					qref = qref.WithFacet("example", v)
				}
				m.SetQueryParameter(param.Name, qref)
			}
		}
		if param.Direction != model.DirIn {
			code, ok := r.res.Int(param, profile.TagHTTPResponse, profile.PropStatusCode)
			if !ok || code == 0 {
				code = 200
			}
			mediaType := r.str(param, profile.TagHTTPResponse, profile.PropMediaType)
			resp, err := r.arrayAlias(ref)
			if err != nil {
				return nil, err
			}
			m.SetResponse(code, mediaType, resp)
		}
	}
	return m, nil
}

// arrayAlias replaces an array reference by a reference to a synthesized
// "<Item>Array" scalar type when arrays-as-types is on. Every use of one
// alias must agree on bounds and facets.
func (r *run) arrayAlias(ref raml.TypeRef) (raml.TypeRef, error) {
	if !r.gen.arraysAsTypes || !ref.IsArray() {
		return ref, nil
	}
	name := ref.Name + "Array"
	if prev, ok := r.types.alias(name); ok {
		if !prev.Ref.Equal(ref) {
			return raml.TypeRef{}, invalidf("array type %s is used as both %s and %s; give the arrays the same multiplicity or turn off arrays as types",
				name, multiplicity(prev.Ref), multiplicity(ref))
		}
		return raml.NewTypeRef(name), nil
	}
	r.types.defineAlias(name, &raml.ScalarType{
		TypeHeader: raml.TypeHeader{Name: name, QualifiedName: name},
		Ref:        ref,
	})
	return raml.NewTypeRef(name), nil
}

func multiplicity(ref raml.TypeRef) string {
	upper := "*"
	if ref.MaxItems() != raml.Unbounded {
		upper = strconv.Itoa(ref.MaxItems())
	}
	s := fmt.Sprintf("%s[%d..%s]", ref.Name, ref.MinItems(), upper)
	if ref.Unique() {
		s += " unique"
	}
	return s
}
