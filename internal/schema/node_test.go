package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-openapi/jsonpointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsOrderAndTypes(t *testing.T) {
	n := mustParse(t, `
zeta: 1
alpha: 2.5
mid: true
none: ~
text: "007"
date: 2024-01-01
list: [a, 1]
`)
	assert.Equal(t, []string{"zeta", "alpha", "mid", "none", "text", "date", "list"}, n.Keys)
	assert.Equal(t, int64(1), n.Get("zeta").Scalar)
	assert.Equal(t, 2.5, n.Get("alpha").Scalar)
	assert.Equal(t, true, n.Get("mid").Scalar)
	assert.Equal(t, NullKind, n.Get("none").Kind)
	assert.Equal(t, "007", n.Get("text").Scalar)
	assert.Equal(t, "2024-01-01", n.Get("date").Scalar)
	assert.True(t, n.Get("list").IsArray())
}

func TestParseEmpty(t *testing.T) {
	n, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, NullKind, n.Kind)
}

func TestParseAliases(t *testing.T) {
	n := mustParse(t, `
base: &base {type: string}
copy: *base
`)
	assert.True(t, Equal(n.Get("base"), n.Get("copy")))
	assert.NotSame(t, n.Get("base"), n.Get("copy"))
}

func TestParseJSONEscapes(t *testing.T) {
	n := mustParse(t, `{"pattern": "^https?:\/\/", "b": 1, "a": "\u00e9"}`)
	assert.Equal(t, []string{"pattern", "b", "a"}, n.Keys)
	assert.Equal(t, "^https?://", n.Get("pattern").Scalar)
	assert.Equal(t, "é", n.Get("a").Scalar)
}

func TestParseJSONNumbers(t *testing.T) {
	n := mustParse(t, `[1, -2, 1.5, 1e3, 18446744073709551615]`)
	assert.Equal(t, int64(1), n.Values[0].Scalar)
	assert.Equal(t, int64(-2), n.Values[1].Scalar)
	assert.Equal(t, 1.5, n.Values[2].Scalar)
	assert.Equal(t, 1000.0, n.Values[3].Scalar)
	assert.Equal(t, float64(18446744073709551615), n.Values[4].Scalar)
}

func TestParseYAMLFlowMapping(t *testing.T) {
	n := mustParse(t, `{type: object, required: [id]}`)
	assert.Equal(t, []string{"type", "required"}, n.Keys)
	assert.Equal(t, "object", n.Get("type").Scalar)
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a": 1} {"b": 2}`))
	assert.Error(t, err)
}

func TestParseJSONDuplicateKeys(t *testing.T) {
	n, err := ParseJSON([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Keys)
	assert.Equal(t, int64(3), n.Get("a").Scalar)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("{unterminated"))
	assert.Error(t, err)
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	src := `{"b":1,"a":{"y":[true,null,"tag"],"x":1.5}}`
	out, err := json.Marshal(mustParse(t, src))
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestMarshalJSONDoesNotEscapeHTML(t *testing.T) {
	out, err := String("<a&b>").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestEncodeYAMLQuotesAmbiguousStrings(t *testing.T) {
	n := Object()
	n.Set("version", String("1.0"))
	n.Set("count", Int(2))

	out, err := EncodeYAML(n)
	require.NoError(t, err)

	back := mustParse(t, string(out))
	assert.True(t, Equal(n, back), string(out))
}

func TestSetDeleteKeepPositions(t *testing.T) {
	n := Object()
	n.Set("a", Int(1))
	n.Set("b", Int(2))
	n.Set("c", Int(3))
	n.Set("a", Int(10))
	assert.Equal(t, []string{"a", "b", "c"}, n.Keys)
	assert.Equal(t, int64(10), n.Get("a").Scalar)

	assert.True(t, n.Delete("b"))
	assert.False(t, n.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, n.Keys)
	assert.Equal(t, int64(3), n.Get("c").Scalar)
}

func TestFromValue(t *testing.T) {
	n, err := FromValue(map[string]any{
		"b": []any{"x", 1, 2.5, false, nil},
		"a": map[string]any{"$ref": "#/definitions/A"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Keys)
	ref, ok := n.Get("a").Ref()
	assert.True(t, ok)
	assert.Equal(t, "#/definitions/A", ref)
	assert.Equal(t, int64(1), n.Get("b").Values[1].Scalar)

	_, err = FromValue(struct{}{})
	assert.Error(t, err)
}

func TestFromValueUnsigned(t *testing.T) {
	n, err := FromValue(uint64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n.Scalar)

	n, err = FromValue(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, float64(math.MaxUint64), n.Scalar)

	n, err = FromValue(map[string]any{"max": uint64(math.MaxInt64) + 1})
	require.NoError(t, err)
	assert.Equal(t, float64(1<<63), n.Get("max").Scalar)
}

func TestJSONPointerLookup(t *testing.T) {
	doc := mustParse(t, `{
		"definitions": {"a/b": {"type": "string"}, "list": [{"x": 1}]}
	}`)

	tests := []struct {
		pointer string
		want    string
		wantErr bool
	}{
		{pointer: "/definitions/a~1b/type", want: `"string"`},
		{pointer: "/definitions/list/0/x", want: `1`},
		{pointer: "", want: `{"definitions":{"a/b":{"type":"string"},"list":[{"x":1}]}}`},
		{pointer: "/definitions/missing", wantErr: true},
		{pointer: "/definitions/list/7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pointer, func(t *testing.T) {
			p, err := jsonpointer.New(tt.pointer)
			require.NoError(t, err)
			got, _, err := p.Get(doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}
