package openapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/schema"
)

func mustParse(t *testing.T, s string) *schema.Node {
	t.Helper()
	n, err := schema.Parse([]byte(s))
	require.NoError(t, err)
	return n
}

func testRegistry(t *testing.T) *aggregate.Registry {
	t.Helper()
	reg := aggregate.NewRegistry()
	reg.Put(aggregate.Entry{
		Name:   "Address",
		Schema: mustParse(t, `{"type": "object", "properties": {"street": {"type": "string"}}}`),
		Model:  "User",
		Origin: aggregate.OriginDefinition,
	})
	reg.Put(aggregate.Entry{
		Name:   "User",
		Schema: mustParse(t, `{"type": "object", "properties": {"address": {"$ref": "#/components/schemas/Address"}}}`),
		Model:  "User",
		Origin: aggregate.OriginModel,
	})
	return reg
}

func compact(t *testing.T, n *schema.Node) string {
	t.Helper()
	out, err := json.Marshal(n)
	require.NoError(t, err)
	return string(out)
}

func TestEmbed(t *testing.T) {
	doc := mustParse(t, `
openapi: 3.0.3
info: {title: Pets, version: "1"}
components:
  schemas:
    User: {type: string}
    Error: {type: object}
`)

	out, err := Embed(doc, testRegistry(t))
	require.NoError(t, err)

	schemas := out.Get("components").Get("schemas")
	assert.Equal(t, []string{"User", "Error", "Address"}, schemas.Keys)
	assert.JSONEq(t, compact(t, testRegistry(t).Schema("User")), compact(t, schemas.Get("User")))
	assert.JSONEq(t, `{"type":"object"}`, compact(t, schemas.Get("Error")))
	assert.Equal(t, []string{"openapi", "info", "components"}, out.Keys)

	// input untouched
	assert.JSONEq(t, `{"type":"string"}`, compact(t, doc.Get("components").Get("schemas").Get("User")))
}

func TestEmbedCreatesComponents(t *testing.T) {
	for _, src := range []string{`{"openapi": "3.1.0"}`, `{"components": null}`, `{"components": {"schemas": null}}`} {
		out, err := Embed(mustParse(t, src), testRegistry(t))
		require.NoError(t, err, src)
		assert.Equal(t, []string{"Address", "User"}, out.Get("components").Get("schemas").Keys, src)
	}
}

func TestEmbedErrors(t *testing.T) {
	for _, src := range []string{`[]`, `"text"`, `{"components": []}`, `{"components": {"schemas": 1}}`} {
		_, err := Embed(mustParse(t, src), testRegistry(t))
		assert.ErrorIs(t, err, ErrInvalidDocument, src)
	}
	_, err := Embed(nil, testRegistry(t))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestWrap(t *testing.T) {
	doc := Wrap(testRegistry(t))
	assert.Equal(t, []string{"components"}, doc.Keys)
	assert.Equal(t, 2, doc.Get("components").Get("schemas").Len())

	empty := Wrap(aggregate.NewRegistry())
	assert.JSONEq(t, `{"components":{"schemas":{}}}`, compact(t, empty))
}

func TestEncode(t *testing.T) {
	doc := mustParse(t, `{"b": 1, "a": [true, null]}`)

	out, err := Encode(doc, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}\n", string(out))

	out, err = Encode(doc, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "b: 1\na:\n")
	back := mustParse(t, string(out))
	assert.True(t, schema.Equal(doc, back))

	_, err = Encode(doc, "toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("api.json"))
	assert.Equal(t, FormatJSON, FormatFor("API.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("api.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("api"))
}

func TestSaveAndLoadDocument(t *testing.T) {
	dir := t.TempDir()
	doc := Wrap(testRegistry(t))

	for _, name := range []string{"api.json", "api.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveDocument(path, doc))

		loaded, err := LoadDocument(path)
		require.NoError(t, err)
		assert.True(t, schema.Equal(doc, loaded), name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "api.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestLoadDocumentErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDocument(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("a: [\n"), 0600))
	_, err = LoadDocument(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
