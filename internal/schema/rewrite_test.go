package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	n, err := Parse([]byte(src))
	require.NoError(t, err)
	return n
}

func TestRewritePointer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "definitions pointer",
			in:   "#/definitions/Foo",
			want: "#/components/schemas/Foo",
		},
		{
			name: "nested definitions pointer",
			in:   "#/definitions/Foo/properties/bar",
			want: "#/components/schemas/Foo/properties/bar",
		},
		{
			name: "model token",
			in:   "{{model: Bar}}",
			want: "#/components/schemas/Bar",
		},
		{
			name: "model token embedded",
			in:   "prefix {{model: Bar_2}} suffix",
			want: "prefix #/components/schemas/Bar_2 suffix",
		},
		{
			name: "only first model token",
			in:   "{{model: A}}{{model: B}}",
			want: "#/components/schemas/A{{model: B}}",
		},
		{
			name: "only first definitions occurrence",
			in:   "#/definitions/A#/definitions/B",
			want: "#/components/schemas/A#/definitions/B",
		},
		{
			name: "model token needs a bare word",
			in:   "{{model: Not-A-Word}}",
			want: "{{model: Not-A-Word}}",
		},
		{
			name: "unrelated url",
			in:   "http://example.com/x",
			want: "http://example.com/x",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewritePointer(tt.in))
		})
	}
}

func TestRewriteNil(t *testing.T) {
	assert.Nil(t, Rewrite(nil))
}

func TestRewriteReferenceNode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "definitions form",
			in:   `{"$ref": "#/definitions/Foo"}`,
			want: `{"$ref":"#/components/schemas/Foo"}`,
		},
		{
			name: "template form",
			in:   `{"$ref": "{{model: Bar}}"}`,
			want: `{"$ref":"#/components/schemas/Bar"}`,
		},
		{
			name: "unrelated reference passes through",
			in:   `{"$ref": "http://example.com/x"}`,
			want: `{"$ref":"http://example.com/x"}`,
		},
		{
			name: "siblings preserved",
			in:   `{"description": "d", "$ref": "#/definitions/Foo"}`,
			want: `{"description":"d","$ref":"#/components/schemas/Foo"}`,
		},
		{
			name: "siblings of a reference are not walked",
			in:   `{"$ref": "#/definitions/Foo", "items": {"$ref": "#/definitions/Bar"}}`,
			want: `{"$ref":"#/components/schemas/Foo","items":{"$ref":"#/definitions/Bar"}}`,
		},
		{
			name: "empty ref is walked as an object",
			in:   `{"$ref": "", "properties": {"a": {"$ref": "#/definitions/X"}}}`,
			want: `{"$ref":"","properties":{"a":{"$ref":"#/components/schemas/X"}}}`,
		},
		{
			name: "non-string ref is walked as an object",
			in:   `{"$ref": {"inner": {"$ref": "#/definitions/X"}}}`,
			want: `{"$ref":{"inner":{"$ref":"#/components/schemas/X"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Rewrite(mustParse(t, tt.in)).MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
			assert.Equal(t, tt.want, string(out), "key order must be kept")
		})
	}
}

func TestRewriteComposite(t *testing.T) {
	in := mustParse(t, `{
		"a": {"$ref": "#/definitions/X"},
		"b": [{"$ref": "#/definitions/Y"}, "plain", 3],
		"c": "scalar",
		"d": null,
		"e": {"deep": {"deeper": [[{"$ref": "{{model: Z}}"}]]}}
	}`)

	out := Rewrite(in)

	ref, ok := out.Get("a").Ref()
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/X", ref)

	ref, ok = out.Get("b").Values[0].Ref()
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Y", ref)

	s, _ := out.Get("b").Values[1].Str()
	assert.Equal(t, "plain", s)
	assert.Equal(t, int64(3), out.Get("b").Values[2].Scalar)
	s, _ = out.Get("c").Str()
	assert.Equal(t, "scalar", s)
	assert.Equal(t, NullKind, out.Get("d").Kind)

	ref, ok = out.Get("e").Get("deep").Get("deeper").Values[0].Values[0].Ref()
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Z", ref)
}

func TestRewriteTopLevelArray(t *testing.T) {
	out := Rewrite(mustParse(t, `[{"$ref": "#/definitions/A"}, 1]`))
	require.True(t, out.IsArray())
	ref, ok := out.Values[0].Ref()
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/A", ref)
}

func TestRewriteScalar(t *testing.T) {
	in := String("#/definitions/NotAReference")
	out := Rewrite(in)
	assert.True(t, Equal(in, out))
	assert.NotSame(t, in, out)
}

func TestRewriteDoesNotMutateInput(t *testing.T) {
	in := mustParse(t, `{
		"definitions": {"X": {"type": "string"}},
		"properties": {
			"x": {"$ref": "#/definitions/X", "description": "x"},
			"list": {"type": "array", "items": [{"$ref": "{{model: Y}}"}]}
		}
	}`)
	before := in.Clone()

	out := Rewrite(in)

	assert.True(t, Equal(before, in), "input changed")
	assert.False(t, Equal(in, out))

	// the copy is independent of the input
	out.Get("properties").Get("x").Set("description", String("changed"))
	s, _ := in.Get("properties").Get("x").Get("description").Str()
	assert.Equal(t, "x", s)
}

func TestCleanTopLevel(t *testing.T) {
	in := mustParse(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "User",
		"definitions": {"Name": {"type": "string"}},
		"properties": {"definitions": {"type": "string"}}
	}`)

	out := CleanTopLevel(in)

	assert.Equal(t, []string{"title", "properties"}, out.Keys)
	assert.True(t, out.Get("properties").Has("definitions"), "nested fields are kept")
	assert.True(t, in.Has("definitions"), "input changed")
	assert.Nil(t, CleanTopLevel(nil))

	arr := Array(String("x"))
	assert.True(t, Equal(arr, DefaultCleaner.Clean(arr)))
}
