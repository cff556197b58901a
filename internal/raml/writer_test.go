package raml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func petAPI() *API {
	pets := &Resource{Name: "PetsResource", Path: "/pets", Description: "All pets"}
	list := &Method{Verb: Get, DisplayName: "listPets"}
	list.SetQueryParameter("limit", NewTypeRef("integer").WithFacet("minimum", "1"))
	list.SetResponse(200, "", NewTypeRef("Pet").AsArray(0, Unbounded, false))
	create := &Method{Verb: Post, DisplayName: "createPet"}
	create.SetBody("", NewTypeRef("Pet"))
	pets.Methods = []*Method{list, create}

	pet := &Resource{Name: "PetResource", Path: "/{petId}", Parent: pets, URIParameters: []string{"petId"}}
	pet.Methods = []*Method{{Verb: Delete, DisplayName: "removePet"}}
	pets.Children = []*Resource{pet}

	return &API{
		Title:     "Pet Store",
		Version:   "1.0",
		BaseURI:   "http://pets.example.com",
		MediaType: "application/json",
		Resources: []*Resource{pets},
		TypeNames: []string{"M::Name", "M::Pet"},
		TypeDefs: []TypeDef{
			&ObjectType{
				TypeHeader: TypeHeader{Name: "Pet", QualifiedName: "M::Pet"},
				Properties: []Property{
					{Name: "name", Type: NewTypeRef("Name")},
					{Name: "age", Type: NewTypeRef("integer"), Optional: true},
				},
			},
			&ScalarType{
				TypeHeader: TypeHeader{Name: "Name", QualifiedName: "M::Name", Description: "A pet name"},
				Ref:        NewTypeRef("string").WithFacet("pattern", "[a-z]+").WithFacet("maxLength", "20"),
			},
		},
	}
}

const petGolden = `#%RAML 1.0
---
title: Pet Store
baseUri: http://pets.example.com
version: "1.0"
mediaType: application/json
types:
  Name:
    description: A pet name
    type: string
    pattern: '[a-z]+'
    maxLength: 20
  Pet:
    type: object
    properties:
      name:
        type: Name
      age?:
        type: integer
resourceTypes:
  PetsResource:
    displayName: PetsResource
    description: All pets
    get:
      displayName: listPets
      queryParameters:
        limit:
          type: integer
          minimum: 1
      responses:
        200:
          body:
            type: array
            items: Pet
    post:
      displayName: createPet
      body:
        type: Pet
      responses:
        200:
          body:
            text/plain: !!null
  PetResource:
    displayName: PetResource
    uriParameters:
      petId: string
    delete:
      displayName: removePet
      responses:
        200:
          body:
            text/plain: !!null

/pets:
  type: PetsResource

  /{petId}:
    type: PetResource
`

func TestMarshalGolden(t *testing.T) {
	t.Parallel()
	assert.Equal(t, petGolden, string(Marshal(petAPI())))
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, petAPI()))
	assert.Equal(t, Marshal(petAPI()), buf.Bytes())
}

func TestMarshalWithoutResources(t *testing.T) {
	t.Parallel()

	api := &API{
		Title:         "Lib: shared",
		Description:   "line one\nline two",
		ResourceTypes: []string{"!include rt.raml"},
		Types:         []string{"!include types.raml"},
		Traits:        []string{"!include traits.raml"},
	}
	out := string(Marshal(api))
	assert.Contains(t, out, "resourceTypes:\n  - !include rt.raml\n")
	assert.Contains(t, out, "types:\n  - !include types.raml\n")
	assert.Contains(t, out, "traits:\n  - !include traits.raml\n")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(strings.ReplaceAll(out, "!include ", "")), &doc))
	assert.Equal(t, "Lib: shared", doc["title"])
	assert.Equal(t, "line one\nline two", doc["description"])
}

func TestGeneratedBlocksReplaceIncludeLists(t *testing.T) {
	t.Parallel()

	api := petAPI()
	api.ResourceTypes = []string{"!include rt.raml"}
	api.Types = []string{"!include types.raml"}
	out := string(Marshal(api))
	assert.NotContains(t, out, "rt.raml")
	assert.NotContains(t, out, "types.raml")
	assert.Equal(t, 1, strings.Count(out, "\ntypes:\n"))
}

func TestMarshalArrayFacetsAndSchemas(t *testing.T) {
	t.Parallel()

	api := &API{
		Title: "T",
		TypeDefs: []TypeDef{
			&ScalarType{
				TypeHeader: TypeHeader{Name: "Codes"},
				Ref:        NewTypeRef("string").WithFacet("maxLength", "3").AsArray(1, 5, true),
			},
			&ObjectType{
				TypeHeader: TypeHeader{Name: "Doc"},
				SchemaKind: SchemaXML,
				Schema:     "schemas/doc.xsd",
				Example:    "<doc/>",
			},
		},
	}
	out := string(Marshal(api))
	assert.Contains(t, out, `  Codes:
    type: array
    minItems: 1
    maxItems: 5
    uniqueItems: true
    items:
      type: string
      maxLength: 3
`)
	assert.Contains(t, out, "  Doc:\n    type: !include schemas/doc.xsd\n    example: <doc/>\n")
}

func TestScalar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "!include a.md", scalar("!include a.md"))
	assert.Equal(t, `"1.0"`, scalar("1.0"))
	assert.Equal(t, "plain", scalar("plain"))
	assert.Equal(t, `"multi\nline"`, scalar("multi\nline"))
}

func TestScalarRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"plain", "1.0", "true", "a: b", "- x", "#tag", "multi\nline", "'quoted'", "{brace}", "null"} {
		var doc map[string]string
		require.NoError(t, yaml.Unmarshal([]byte("k: "+scalar(s)), &doc), s)
		assert.Equal(t, s, doc["k"])
	}
}

func TestURIParameterNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"orgId", "repo"}, URIParameterNames("/orgs/{orgId}/repos/{repo}"))
	assert.Empty(t, URIParameterNames("/plain"))
}

func TestResponsesStayOrdered(t *testing.T) {
	t.Parallel()

	m := &Method{Verb: Post}
	m.SetResponse(404, "", NewTypeRef("string"))
	m.SetResponse(201, "", NewTypeRef("Pet"))
	m.SetResponse(201, "application/xml", NewTypeRef("PetXml"))
	require.Len(t, m.Responses, 2)
	assert.Equal(t, 201, m.Responses[0].Code)
	assert.Equal(t, 404, m.Responses[1].Code)
	ref, ok := m.ResponseType(201, "application/xml")
	require.True(t, ok)
	assert.Equal(t, "PetXml", ref.Name)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := petAPI()
	c := orig.Clone()
	c.Resources[0].Description = "changed"
	c.Resources[0].Methods[0].DisplayName = "changed"
	c.Resources[0].Children[0].Path = "/changed"
	c.TypeDefs[1].(*ScalarType).Description = "changed"

	assert.Equal(t, "All pets", orig.Resources[0].Description)
	assert.Equal(t, "listPets", orig.Resources[0].Methods[0].DisplayName)
	assert.Equal(t, "/pets/{petId}", orig.Resources[0].Children[0].FullPath())
	assert.Equal(t, "A pet name", orig.TypeDefs[1].Header().Description)
	assert.Same(t, c.Resources[0], c.Resources[0].Children[0].Parent)
	assert.Equal(t, "/pets/changed", c.Resources[0].Children[0].FullPath())
}

func TestWalkAndLookup(t *testing.T) {
	t.Parallel()

	api := petAPI()
	var paths []string
	api.Walk(func(r *Resource) bool {
		paths = append(paths, r.FullPath())
		return true
	})
	assert.Equal(t, []string{"/pets", "/pets/{petId}"}, paths)
	assert.NotNil(t, api.Resource("/pets/{petId}"))
	assert.Nil(t, api.Resource("/nope"))
	assert.Equal(t, 1, api.Resource("/pets/{petId}").Depth())
}

func TestFragment(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"10", "-1.5", "true", "null", "plain text", "[a, b]", "{k: v}", "2024-01-01"} {
		assert.True(t, Fragment(s), s)
	}
	for _, s := range []string{"", " padded", "k: v", "a #b", "- x", "[unclosed", "*ref", "two\nlines", "'quoted'"} {
		assert.False(t, Fragment(s), s)
	}
}

func TestFreeTextFacetsRoundTrip(t *testing.T) {
	t.Parallel()

	m := &Method{Verb: Get}
	m.SetQueryParameter("q", NewTypeRef("string").WithFacet("default", "a #b").WithFacet("example", "k: v"))
	m.SetQueryParameter("n", NewTypeRef("integer").WithFacet("default", "10").WithFacet("example", "[1, 2]"))
	api := &API{Title: "T", Resources: []*Resource{{Name: "R", Path: "/r", Methods: []*Method{m}}}}

	out := Marshal(api)
	assert.Contains(t, string(out), "          default: 10\n")
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc), string(out))
	params := doc["resourceTypes"].(map[string]any)["R"].(map[string]any)["get"].(map[string]any)["queryParameters"].(map[string]any)
	q := params["q"].(map[string]any)
	assert.Equal(t, "a #b", q["default"])
	assert.Equal(t, "k: v", q["example"])
	n := params["n"].(map[string]any)
	assert.Equal(t, 10, n["default"])
	assert.Equal(t, []any{1, 2}, n["example"])
}
