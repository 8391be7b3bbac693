package schema

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML or JSON document. An empty input yields a null node.
//
// Input starting with '{' or '[' is read as JSON first, since YAML rejects
// some valid JSON escapes such as "\/". A YAML flow document that is not
// valid JSON falls back to the YAML parser.
func Parse(data []byte) (*Node, error) {
	if looksLikeJSON(data) {
		n, jsonErr := ParseJSON(data)
		if jsonErr == nil {
			return n, nil
		}
		n, err := parseYAML(data)
		if err != nil {
			return nil, errors.Wrap(jsonErr, "failed to parse document")
		}
		return n, nil
	}
	n, err := parseYAML(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}
	return n, nil
}

func parseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return FromYAML(&doc)
}

func looksLikeJSON(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && (data[0] == '{' || data[0] == '[')
}

// ParseJSON decodes a single JSON value, keeping object keys in document
// order. A repeated key keeps its first position and its last value.
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	dec.UseNumber()

	n, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Errorf("unexpected data after offset %d", dec.InputOffset())
	}
	return n, nil
}

func decodeJSON(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Errorf("offset %d: expected an object key", dec.InputOffset())
				}
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, errors.Wrapf(err, "field %q", key)
				}
				obj.Set(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array()
			for i := 0; dec.More(); i++ {
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, errors.Wrapf(err, "item %d", i)
				}
				arr.Append(child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, errors.Errorf("offset %d: unexpected %q", dec.InputOffset(), t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "number %s", t)
		}
		return Float(f), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, errors.Errorf("unexpected token %v", tok)
	}
}

// FromYAML converts a decoded yaml.v3 tree. Aliases are expanded.
func FromYAML(y *yaml.Node) (*Node, error) {
	return fromYAML(y, 0)
}

// maxAliasDepth bounds alias expansion so a self-referencing anchor fails
// instead of recursing forever.
const maxAliasDepth = 64

func fromYAML(y *yaml.Node, aliasDepth int) (*Node, error) {
	if y == nil {
		return Null(), nil
	}
	switch y.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(y.Content[0], aliasDepth)
	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth {
			return nil, errors.Errorf("line %d: alias %q nested too deeply", y.Line, y.Value)
		}
		return fromYAML(y.Alias, aliasDepth+1)
	case yaml.MappingNode:
		obj := Object()
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, errors.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			child, err := fromYAML(v, aliasDepth)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := Array()
		arr.Values = make([]*Node, 0, len(y.Content))
		for _, item := range y.Content {
			child, err := fromYAML(item, aliasDepth)
			if err != nil {
				return nil, err
			}
			arr.Append(child)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(y)
	default:
		return nil, errors.Errorf("line %d: unsupported YAML node kind %d", y.Line, y.Kind)
	}
}

func scalarFromYAML(y *yaml.Node) (*Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, errors.Wrapf(err, "line %d", y.Line)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, errors.Wrapf(err, "line %d", y.Line)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, errors.Wrapf(err, "line %d", y.Line)
		}
		return Float(f), nil
	default:
		// strings, timestamps and binary stay textual
		return String(y.Value), nil
	}
}

// ToYAML converts n into a yaml.v3 tree preserving key order.
func (n *Node) ToYAML() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.Kind {
	case ObjectKind:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, k := range n.Keys {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				n.Values[i].ToYAML(),
			)
		}
		return y
	case ArrayKind:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range n.Values {
			y.Content = append(y.Content, v.ToYAML())
		}
		return y
	case ScalarKind:
		return scalarToYAML(n.Scalar)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func scalarToYAML(v any) *yaml.Node {
	switch t := v.(type) {
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.ToYAML(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(y *yaml.Node) error {
	decoded, err := FromYAML(y)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// MarshalJSON implements json.Marshaler, writing object keys in document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case ObjectKind:
		buf.WriteByte('{')
		for i, k := range n.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalPlain(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := n.Values[i].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case ArrayKind:
		buf.WriteByte('[')
		for i, v := range n.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ScalarKind:
		b, err := marshalPlain(n.Scalar)
		if err != nil {
			return errors.Wrap(err, "failed to encode scalar")
		}
		buf.Write(b)
	default:
		buf.WriteString("null")
	}
	return nil
}

// marshalPlain encodes v without HTML escaping, so patterns such as "<" stay
// readable.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	decoded, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// EncodeJSON renders n as indented JSON followed by a newline.
func EncodeJSON(n *Node) ([]byte, error) {
	raw, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, errors.Wrap(err, "failed to indent JSON")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeYAML renders n as a YAML document.
func EncodeYAML(n *Node) ([]byte, error) {
	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(n.ToYAML()); err != nil {
		return nil, errors.Wrap(err, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode YAML")
	}
	return out.Bytes(), nil
}
