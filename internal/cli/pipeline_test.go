package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/uml2raml/internal/raml"
)

const petModelYAML = `
name: Pets
elements:
  - kind: package
    name: PetAPI
    tags:
      - name: RestProfile::Api
        properties: {title: Pet API, version: v1, description: "!"}
    elements:
      - kind: class
        name: Pet
        tags: [{name: RamlProfile::ApiModel}]
        attributes:
          - {name: name, type: String}
      - kind: class
        name: Pets
        tags: [{name: RestProfile::Resource, properties: {path: /pets}}]
        operations:
          - name: listPets
            tags: [{name: RestProfile::Get}]
            parameters:
              - {name: result, direction: return, type: Pet, lower: 0, upper: "*"}
`

const twoAPIModelYAML = `
elements:
  - {kind: package, name: One, tags: [{name: RestProfile::Api}]}
  - {kind: package, name: Two, tags: [{name: RestProfile::Api}]}
`

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeModel(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func execute(args ...string) error {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func TestGeneratePipeline_Stdout(t *testing.T) {
	dir := t.TempDir()
	in := writeModel(t, dir, "pets.uml.yaml", petModelYAML)

	out := captureStdout(func() {
		require.NoError(t, execute("generate", in))
	})
	assert.True(t, strings.HasPrefix(out, raml.Header), out)
	assert.Contains(t, out, "title: Pet API\n")
	assert.Contains(t, out, "  Pet:\n    type: object\n")
	assert.Contains(t, out, "/pets:\n  type: PetsResource\n")
}

func TestGeneratePipeline_FileWithDescriptions(t *testing.T) {
	dir := t.TempDir()
	in := writeModel(t, dir, "pets.uml.yaml", petModelYAML)
	out := filepath.Join(dir, "api", "pets.raml")

	require.NoError(t, execute("generate", "--input", in, "--out", out, "--descriptions", "--description-path", filepath.Join(dir, "api", "docs"), "--arrays-as-types"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "description: !include docs/Pet API.md\n")
	assert.Contains(t, string(data), "  PetArray:\n    type: array\n")
	stub, err := os.ReadFile(filepath.Join(dir, "api", "docs", "Pet API.md"))
	require.NoError(t, err)
	assert.Equal(t, "This is the description for **Pet API**\n", string(stub))
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := writeModel(t, dir, "pets.uml.yaml", petModelYAML)
	outDir := filepath.Join(dir, "out")

	out := captureStdout(func() {
		require.NoError(t, execute("generate", "--input", in, "--out", filepath.Join(outDir, "pets.raml"), "--descriptions", "--dry-run"))
	})
	assert.Contains(t, out, "Planned writes to")
	assert.Contains(t, out, "- pets.raml\n")
	assert.Contains(t, out, "- Pet API.md\n")
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "expected no writes on dry-run")
}

func TestGeneratePipeline_OpenAPI(t *testing.T) {
	dir := t.TempDir()
	in := writeModel(t, dir, "pets.uml.yaml", petModelYAML)

	out := captureStdout(func() {
		require.NoError(t, execute("generate", in, "--format", "oas-json"))
	})
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Contains(t, doc["paths"], "/pets")
}

func TestGeneratePipeline_TOMLModel(t *testing.T) {
	dir := t.TempDir()
	in := writeModel(t, dir, "pets.toml", `
name = "Pets"

[[elements]]
kind = "package"
name = "PetAPI"

  [[elements.tags]]
  name = "RestProfile::Api"
  properties = { title = "Pet API" }

  [[elements.elements]]
  kind = "class"
  name = "Pets"

    [[elements.elements.tags]]
    name = "RestProfile::Resource"
    properties = { path = "/pets" }
`)

	out := captureStdout(func() {
		require.NoError(t, execute("generate", "--input", in))
	})
	assert.Contains(t, out, "title: Pet API\n")
	assert.Contains(t, out, "/pets:\n")
}

func TestGeneratePipeline_Errors(t *testing.T) {
	dir := t.TempDir()
	two := writeModel(t, dir, "two.yaml", twoAPIModelYAML)
	broken := writeModel(t, dir, "broken.yaml", "elements: [\n")

	err := execute("generate", two)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Contains(t, err.Error(), "Available APIs: One, Two")

	err = execute("generate", two, "--api", "Three")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))

	out := captureStdout(func() {
		require.NoError(t, execute("generate", two, "--api", "Two"))
	})
	assert.Contains(t, out, "title: Two\n")

	err = execute("generate", broken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Contains(t, err.Error(), "Location: ")

	err = execute("generate", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	two := writeModel(t, dir, "two.yaml", twoAPIModelYAML)
	pets := writeModel(t, dir, "pets.yaml", petModelYAML)

	out := captureStdout(func() {
		require.NoError(t, execute("list", two))
	})
	assert.Equal(t, "One\tOne\nTwo\tTwo\n", out)

	out = captureStdout(func() {
		require.NoError(t, execute("list", "--input", pets))
	})
	assert.Equal(t, "PetAPI\tPet API\tv1\n", out)

	err := execute("list")
	assert.True(t, errors.Is(err, ErrUsage))
}
