package oasemitter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/uml2raml/internal/raml"
)

func petAPI() *raml.API {
	pets := &raml.Resource{Name: "PetsResource", Path: "/pets", Description: "All pets"}
	list := &raml.Method{Verb: raml.Get, DisplayName: "listPets"}
	list.SetQueryParameter("limit", raml.NewTypeRef("integer").WithFacet("minimum", "1").WithFacet("default", "10"))
	list.SetQueryParameter("kind", raml.NewTypeRef("string").WithFacet("enum", "[cat, dog]").WithFacet("example", "cat: tabby"))
	list.SetResponse(200, "", raml.NewTypeRef("Pet").AsArray(0, raml.Unbounded, false))
	create := &raml.Method{Verb: raml.Post, DisplayName: "createPet"}
	create.SetBody("", raml.NewTypeRef("Pet"))
	create.SetResponse(201, "", raml.NewTypeRef("Pet"))
	create.SetResponse(400, "text/plain", raml.NewTypeRef("string"))
	pets.Methods = []*raml.Method{list, create}

	pet := &raml.Resource{Name: "PetResource", Path: "/{petId}", Parent: pets, URIParameters: []string{"petId"}}
	pet.Methods = []*raml.Method{{Verb: raml.Delete, DisplayName: "removePet"}}
	pets.Children = []*raml.Resource{pet}

	return &raml.API{
		Title:     "Pet Store",
		Version:   "1.0",
		BaseURI:   "http://pets.example.com/{version}",
		MediaType: "application/json",
		Resources: []*raml.Resource{pets},
		TypeDefs: []raml.TypeDef{
			&raml.ScalarType{
				TypeHeader: raml.TypeHeader{Name: "Name", Description: "A pet name"},
				Ref:        raml.NewTypeRef("string").WithFacet("pattern", "^[a-z]+$").WithFacet("maxLength", "20"),
			},
			&raml.ObjectType{
				TypeHeader: raml.TypeHeader{Name: "Pet"},
				Properties: []raml.Property{
					{Name: "name", Type: raml.NewTypeRef("Name")},
					{Name: "age", Type: raml.NewTypeRef("integer"), Optional: true},
					{Name: "photo", Type: raml.NewTypeRef("file"), Optional: true},
				},
				Example: "{name: rex}",
			},
		},
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	doc, err := Convert(petAPI())
	require.NoError(t, err)

	assert.Equal(t, "Pet Store", doc.Info.Title)
	assert.Equal(t, "1.0", doc.Info.Version)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "http://pets.example.com/{version}", doc.Servers[0].URL)
	assert.Equal(t, "1.0", doc.Servers[0].Variables["version"].Default)

	name := doc.Components.Schemas["Name"].Value
	assert.Equal(t, "string", name.Type)
	assert.Equal(t, "^[a-z]+$", name.Pattern)
	require.NotNil(t, name.MaxLength)
	assert.Equal(t, uint64(20), *name.MaxLength)
	assert.Equal(t, "A pet name", name.Description)

	pet := doc.Components.Schemas["Pet"].Value
	assert.Equal(t, "object", pet.Type)
	assert.Equal(t, []string{"name"}, pet.Required)
	assert.Equal(t, "#/components/schemas/Name", pet.Properties["name"].Ref)
	assert.Equal(t, "integer", pet.Properties["age"].Value.Type)
	assert.Equal(t, "binary", pet.Properties["photo"].Value.Format)
	assert.Equal(t, map[string]interface{}{"name": "rex"}, pet.Example)

	list := doc.Paths["/pets"].Get
	require.NotNil(t, list)
	assert.Equal(t, "listPets", list.OperationID)
	require.Len(t, list.Parameters, 2)
	limit := list.Parameters[0].Value
	assert.Equal(t, "limit", limit.Name)
	assert.Equal(t, "query", limit.In)
	require.NotNil(t, limit.Schema.Value.Min)
	assert.Equal(t, 1.0, *limit.Schema.Value.Min)
	assert.Equal(t, 10, limit.Schema.Value.Default)
	assert.Equal(t, []interface{}{"cat", "dog"}, list.Parameters[1].Value.Schema.Value.Enum)
	assert.Equal(t, "cat: tabby", list.Parameters[1].Value.Schema.Value.Example, "free text stays a string")

	items := list.Responses["200"].Value.Content["application/json"].Schema.Value
	assert.Equal(t, "array", items.Type)
	assert.Equal(t, "#/components/schemas/Pet", items.Items.Ref)

	create := doc.Paths["/pets"].Post
	require.NotNil(t, create)
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "#/components/schemas/Pet", create.RequestBody.Value.Content["application/json"].Schema.Ref)
	assert.Contains(t, create.Responses, "201")
	assert.Equal(t, "string", create.Responses["400"].Value.Content["text/plain"].Schema.Value.Type)

	item := doc.Paths["/pets/{petId}"]
	require.NotNil(t, item)
	require.Len(t, item.Parameters, 1)
	assert.Equal(t, "petId", item.Parameters[0].Value.Name)
	assert.Equal(t, "path", item.Parameters[0].Value.In)
	require.NotNil(t, item.Delete)
	assert.Equal(t, "OK", *item.Delete.Responses["200"].Value.Description)
}

func TestConvert_UnknownNamesAreObjects(t *testing.T) {
	t.Parallel()

	api := &raml.API{Title: "T"}
	r := &raml.Resource{Name: "LinkResource", Path: "/links"}
	m := &raml.Method{Verb: raml.Get, DisplayName: "get"}
	m.SetResponse(200, "", raml.NewTypeRef("OtherResource"))
	r.Methods = []*raml.Method{m}
	api.Resources = []*raml.Resource{r}

	doc, err := Convert(api)
	require.NoError(t, err)
	assert.Equal(t, "unversioned", doc.Info.Version)
	assert.Empty(t, doc.Servers)
	s := doc.Paths["/links"].Get.Responses["200"].Value.Content[DefaultMediaType].Schema.Value
	assert.Equal(t, "object", s.Type)
}

func TestConvert_BadFacet(t *testing.T) {
	t.Parallel()

	api := &raml.API{Title: "T", TypeDefs: []raml.TypeDef{
		&raml.ScalarType{TypeHeader: raml.TypeHeader{Name: "N"}, Ref: raml.NewTypeRef("number").WithFacet("minimum", "low")},
	}}
	_, err := Convert(api)
	assert.Error(t, err)

	_, err = Convert(nil)
	assert.Error(t, err)
}

func TestEmit_JSONToStdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res, err := Emit(context.Background(), petAPI(), Options{Out: "-", Stdout: &buf})
	require.NoError(t, err)
	assert.Equal(t, "-", res.Planned[0].RelPath)

	var v map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "3.0.3", v["openapi"])
}

func TestEmit_YAMLFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "pets.yaml")

	res, err := Emit(context.Background(), petAPI(), Options{Out: out, Format: YAML})
	require.NoError(t, err)
	assert.Equal(t, "pets.yaml", res.Planned[0].RelPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, yaml.Unmarshal(data, &v))
	info := v["info"].(map[string]any)
	assert.Equal(t, "1.0", info["version"])
	assert.Equal(t, "Pet Store", info["title"])
	assert.NotContains(t, string(data), "{\"")
}

func TestEmit_DryRunAndFormat(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Emit(context.Background(), petAPI(), Options{Out: filepath.Join(dir, "x.json"), DryRun: true})
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = Emit(context.Background(), petAPI(), Options{Out: "-", Format: "xml", Stdout: &bytes.Buffer{}})
	assert.Error(t, err)
}
