// Package schema models JSON-Schema-shaped documents as a tree of tagged nodes
// and provides the reference rewriting applied before schemas are published
// under an API specification's components section.
package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Kind identifies which variant of a Node is populated.
type Kind uint8

const (
	NullKind Kind = iota
	ScalarKind
	ObjectKind
	ArrayKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case ScalarKind:
		return "scalar"
	case ObjectKind:
		return "object"
	case ArrayKind:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// RefKey is the field that turns an object node into a reference node.
const RefKey = "$ref"

// ErrNotFound is returned by JSONLookup when a token does not address a child.
var ErrNotFound = errors.New("no such member")

// Node is one value of a schema document.
//
// Objects keep their keys in document order: Keys[i] names Values[i].
// Arrays use Values only. Scalars hold a string, bool, int64 or float64.
type Node struct {
	Kind   Kind
	Keys   []string
	Values []*Node
	Scalar any
}

// Null returns a null node.
func Null() *Node {
	return &Node{Kind: NullKind}
}

// String returns a string scalar node.
func String(s string) *Node {
	return &Node{Kind: ScalarKind, Scalar: s}
}

// Bool returns a boolean scalar node.
func Bool(b bool) *Node {
	return &Node{Kind: ScalarKind, Scalar: b}
}

// Int returns an integer scalar node.
func Int(i int64) *Node {
	return &Node{Kind: ScalarKind, Scalar: i}
}

// Float returns a floating point scalar node.
func Float(f float64) *Node {
	return &Node{Kind: ScalarKind, Scalar: f}
}

// Object returns an empty object node.
func Object() *Node {
	return &Node{Kind: ObjectKind}
}

// Array returns an array node holding items.
func Array(items ...*Node) *Node {
	return &Node{Kind: ArrayKind, Values: items}
}

// IsObject reports whether n is a non-nil object node.
func (n *Node) IsObject() bool {
	return n != nil && n.Kind == ObjectKind
}

// IsArray reports whether n is a non-nil array node.
func (n *Node) IsArray() bool {
	return n != nil && n.Kind == ArrayKind
}

// IsComposite reports whether n has children that may be walked.
func (n *Node) IsComposite() bool {
	return n.IsObject() || n.IsArray()
}

// Str returns the string held by a string scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != ScalarKind {
		return "", false
	}
	s, ok := n.Scalar.(string)
	return s, ok
}

// Ref returns the pointer of a reference node. A node is a reference when it
// is an object with a string valued $ref field.
func (n *Node) Ref() (string, bool) {
	if !n.IsObject() {
		return "", false
	}
	return n.Get(RefKey).Str()
}

// Len returns the number of fields or items.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Values)
}

// Index returns the position of key in an object, or -1.
func (n *Node) Index(key string) int {
	if !n.IsObject() {
		return -1
	}
	for i, k := range n.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if i := n.Index(key); i >= 0 {
		return n.Values[i]
	}
	return nil
}

// Has reports whether an object carries key.
func (n *Node) Has(key string) bool {
	return n.Index(key) >= 0
}

// Set stores v under key. An existing key keeps its position.
func (n *Node) Set(key string, v *Node) {
	if v == nil {
		v = Null()
	}
	if i := n.Index(key); i >= 0 {
		n.Values[i] = v
		return
	}
	n.Keys = append(n.Keys, key)
	n.Values = append(n.Values, v)
}

// Delete removes key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	i := n.Index(key)
	if i < 0 {
		return false
	}
	n.Keys = append(n.Keys[:i:i], n.Keys[i+1:]...)
	n.Values = append(n.Values[:i:i], n.Values[i+1:]...)
	return true
}

// Append adds an item to an array node.
func (n *Node) Append(v *Node) {
	if v == nil {
		v = Null()
	}
	n.Values = append(n.Values, v)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Scalar: n.Scalar}
	if n.Keys != nil {
		c.Keys = append([]string(nil), n.Keys...)
	}
	if n.Values != nil {
		c.Values = make([]*Node, len(n.Values))
		for i, v := range n.Values {
			c.Values[i] = v.Clone()
		}
	}
	return c
}

// Equal reports whether a and b hold the same document, including key order.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || len(a.Values) != len(b.Values) || len(a.Keys) != len(b.Keys) {
		return false
	}
	if a.Kind == ScalarKind {
		return a.Scalar == b.Scalar
	}
	for i := range a.Keys {
		if a.Keys[i] != b.Keys[i] {
			return false
		}
	}
	for i := range a.Values {
		if !Equal(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

// JSONLookup resolves one decoded JSON pointer token against n, which lets
// github.com/go-openapi/jsonpointer walk schema documents.
func (n Node) JSONLookup(token string) (any, error) {
	switch n.Kind {
	case ObjectKind:
		if v := n.Get(token); v != nil {
			return v, nil
		}
	case ArrayKind:
		i, err := strconv.Atoi(token)
		if err == nil && i >= 0 && i < len(n.Values) {
			return n.Values[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "token %q in %s", token, n.Kind)
}

// FromValue converts decoded Go data (maps, slices, scalars) into a Node.
// Map keys are sorted since Go maps carry no order.
func FromValue(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return t.Clone(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t)), nil
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := Object()
		for _, k := range keys {
			child, err := FromValue(t[k])
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", k)
			}
			obj.Set(k, child)
		}
		return obj, nil
	case []any:
		arr := Array()
		arr.Values = make([]*Node, 0, len(t))
		for i, item := range t {
			child, err := FromValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			arr.Append(child)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// MustFromValue is FromValue for literals known to be convertible.
func MustFromValue(v any) *Node {
	n, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return n
}

// Value converts n back into plain Go data.
func (n *Node) Value() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ScalarKind:
		return n.Scalar
	case ObjectKind:
		m := make(map[string]any, len(n.Keys))
		for i, k := range n.Keys {
			m[k] = n.Values[i].Value()
		}
		return m
	case ArrayKind:
		s := make([]any, len(n.Values))
		for i, v := range n.Values {
			s[i] = v.Value()
		}
		return s
	default:
		return nil
	}
}
