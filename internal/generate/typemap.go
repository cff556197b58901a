package generate

import (
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
	"github.com/mark3labs/uml2raml/internal/raml"
)

// typeMapper derives the type reference of a typed element: UML primitives
// first, then RAML types with their facets, then model types and resources.
// Multivalued elements become arrays.
func (r *run) typeMapper(el *model.Element) (raml.TypeRef, error) {
	t := el.Type
	if t == nil {
		return raml.TypeRef{}, unsupportedf("%s %s has no type", el.Kind, el.QualifiedName)
	}

	var ref raml.TypeRef
	switch {
	case strings.HasPrefix(t.QualifiedName, profile.PrimitiveTypesPrefix):
		ref = raml.NewTypeRef(primitiveName(t.Name))
	case strings.HasPrefix(t.QualifiedName, profile.RAMLTypesPrefix):
		var err error
		if ref, err = r.scalarFacets(el, t.Name, raml.NewTypeRef(t.Name)); err != nil {
			return raml.TypeRef{}, err
		}
	case r.isCustomType(t):
		ref = raml.NewTypeRef(model.ShortName(t.QualifiedName))
	case r.isResource(t):
		ref = raml.NewTypeRef(resourceTypeName(t))
	default:
		return raml.TypeRef{}, unsupportedf("%s %s: type %s is not supported", el.Kind, el.QualifiedName, t.QualifiedName)
	}

	if el.IsMultivalued() {
		upper := el.Upper
		if upper == model.Unbounded {
			upper = raml.Unbounded
		}
		ref = ref.AsArray(el.Lower, upper, el.Unique)
	}
	return ref, nil
}

func primitiveName(name string) string {
	switch name {
	case "Real", "UnlimitedNatural":
		return "number"
	default:
		return strings.ToLower(name)
	}
}

// scalarFacets copies the facets of the scalar-facet tag on el that matches
// the category of ramlType.
func (r *run) scalarFacets(el *model.Element, ramlType string, ref raml.TypeRef) (raml.TypeRef, error) {
	switch ramlType {
	case "number", "integer":
		whole := ramlType == "integer"
		for _, prop := range []string{profile.PropMinimum, profile.PropMaximum} {
			v, ok := r.res.Real(el, profile.TagFacetedNumber, prop)
			if !ok {
				continue
			}
			s, ok := formatNumber(v, whole)
			if !ok {
				return raml.TypeRef{}, invalidf("%s: %s facet must be whole when applied to integer types", el.QualifiedName, prop)
			}
			ref = ref.WithFacet(prop, s)
		}
		if f, ok := r.res.Enum(el, profile.TagFacetedNumber, profile.PropFormat); ok {
			ref = ref.WithFacet(profile.PropFormat, f)
		}
		if v, ok := r.res.Real(el, profile.TagFacetedNumber, profile.PropMultipleOf); ok {
			s, ok := formatNumber(v, whole)
			if !ok {
				return raml.TypeRef{}, invalidf("%s: multipleOf facet must be whole when applied to integer types", el.QualifiedName)
			}
			ref = ref.WithFacet(profile.PropMultipleOf, s)
		}
	case "string":
		if p := r.str(el, profile.TagFacetedString, profile.PropPattern); p != "" {
			ref = ref.WithFacet(profile.PropPattern, p)
		}
		ref = r.lengthFacets(el, profile.TagFacetedString, ref)
		if e := r.str(el, profile.TagFacetedString, profile.PropEnum); e != "" {
			ref = ref.WithFacet(profile.PropEnum, e)
		}
	case "file":
		if ft := r.str(el, profile.TagFacetedFile, profile.PropFileTypes); ft != "" {
			ref = ref.WithFacet(profile.PropFileTypes, ft)
		}
		ref = r.lengthFacets(el, profile.TagFacetedFile, ref)
	}
	return ref, nil
}

func (r *run) lengthFacets(el *model.Element, tag string, ref raml.TypeRef) raml.TypeRef {
	for _, prop := range []string{profile.PropMinLength, profile.PropMaxLength} {
		if n, ok := r.res.Int(el, tag, prop); ok {
			ref = ref.WithFacet(prop, strconv.Itoa(n))
		}
	}
	return ref
}

// formatNumber renders a facet value; ok is false when whole is required
// and v has a fractional part.
func formatNumber(v float64, whole bool) (s string, ok bool) {
	if whole {
		if v != math.Trunc(v) {
			return "", false
		}
		if v == 0 {
			return "0", true
		}
		return strconv.FormatFloat(v, 'f', 0, 64), true
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}
