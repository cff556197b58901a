package ramlemitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/uml2raml/internal/raml"
)

func describedAPI() *raml.API {
	pets := &raml.Resource{Name: "PetsResource", Path: "/pets", Description: "!"}
	pets.Methods = []*raml.Method{{Verb: raml.Get, DisplayName: "listPets", Description: " ! "}}
	return &raml.API{
		Title:       "Pets",
		Description: "!",
		Resources:   []*raml.Resource{pets},
		TypeDefs: []raml.TypeDef{
			&raml.ObjectType{TypeHeader: raml.TypeHeader{Name: "Pet", Description: "!"}},
			&raml.ScalarType{TypeHeader: raml.TypeHeader{Name: "Tag", Description: "A tag"}, Ref: raml.NewTypeRef("string")},
		},
	}
}

func TestEmit_Stdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res, err := Emit(context.Background(), describedAPI(), Options{Out: "-", DescriptionFiles: true, Stdout: &buf})
	require.NoError(t, err)
	require.Len(t, res.Planned, 1)
	assert.Equal(t, "-", res.Planned[0].RelPath)
	assert.True(t, strings.HasPrefix(buf.String(), raml.Header))
	assert.NotContains(t, buf.String(), "!include")
}

func TestEmit_DescriptionStubs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	api := describedAPI()

	res, err := Emit(context.Background(), api, Options{
		Out:              filepath.Join(dir, "pets.raml"),
		DescriptionFiles: true,
		DescriptionDir:   filepath.Join(dir, "docs"),
	})
	require.NoError(t, err)

	var planned []string
	for _, pf := range res.Planned {
		planned = append(planned, pf.RelPath)
	}
	assert.Equal(t, []string{
		"pets.raml",
		"docs/Pets.md",
		"docs/Pets_Pet.md",
		"docs/Pets_PetsResource.md",
		"docs/Pets_PetsResource_listPets.md",
	}, planned)

	doc, err := os.ReadFile(filepath.Join(dir, "pets.raml"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "description: !include docs/Pets.md\n")
	assert.Contains(t, string(doc), "description: !include docs/Pets_PetsResource.md\n")
	assert.Contains(t, string(doc), "description: !include docs/Pets_PetsResource_listPets.md\n")
	assert.Contains(t, string(doc), "description: !include docs/Pets_Pet.md\n")
	assert.Contains(t, string(doc), "description: A tag\n")

	stub, err := os.ReadFile(filepath.Join(dir, "docs", "Pets_PetsResource_listPets.md"))
	require.NoError(t, err)
	assert.Equal(t, "This is the description for **listPets**\n", string(stub))

	assert.Equal(t, "!", api.Description, "the input document is left alone")
	assert.Equal(t, "!", api.Resources[0].Description)
}

func TestEmit_StubsBesideDocument(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Emit(context.Background(), describedAPI(), Options{Out: filepath.Join(dir, "pets.raml"), DescriptionFiles: true})
	require.NoError(t, err)
	doc, err := os.ReadFile(filepath.Join(dir, "pets.raml"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "description: !include Pets.md\n")
	assert.FileExists(t, filepath.Join(dir, "Pets.md"))
}

func TestEmit_ExistingStubKept(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "Pets.md")
	require.NoError(t, os.WriteFile(existing, []byte("hand written\n"), 0o600))

	res, err := Emit(context.Background(), describedAPI(), Options{Out: filepath.Join(dir, "pets.raml"), DescriptionFiles: true})
	require.NoError(t, err)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "hand written\n", string(data))
	assert.True(t, res.Planned[1].Exists)
}

func TestEmit_DryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), describedAPI(), Options{Out: filepath.Join(dir, "out", "pets.raml"), DescriptionFiles: true, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Planned, 5)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmit_WithoutDescriptionFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), describedAPI(), Options{Out: filepath.Join(dir, "pets.raml")})
	require.NoError(t, err)
	assert.Len(t, res.Planned, 1)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")
	assert.Equal(t, "pets.raml", entries[0].Name())
}

func TestEmit_Errors(t *testing.T) {
	t.Parallel()

	_, err := Emit(context.Background(), nil, Options{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Emit(ctx, describedAPI(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmit_StubNamesStayInDescriptionDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	api := describedAPI()
	api.Title = "../../Pets/v2"

	res, err := Emit(context.Background(), api, Options{
		Out:              filepath.Join(dir, "out", "pets.raml"),
		DescriptionFiles: true,
	})
	require.NoError(t, err)

	for _, pf := range res.Planned {
		assert.NotContains(t, pf.RelPath, "/", "planned %s", pf.RelPath)
	}
	_, err = os.Stat(filepath.Join(dir, "out", ".._.._Pets_v2.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "out", ".._.._Pets_v2_Pet.md"))
	require.NoError(t, err)

	doc, err := os.ReadFile(filepath.Join(dir, "out", "pets.raml"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "description: !include .._.._Pets_v2.md\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing is written beside the output directory")
}
