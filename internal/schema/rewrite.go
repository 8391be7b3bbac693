package schema

import (
	"regexp"
	"strings"
)

const (
	// DefinitionsPrefix is the draft-07 location of reusable sub-schemas.
	DefinitionsPrefix = "#/definitions"
	// ComponentsPrefix is where published schemas live in an API specification.
	ComponentsPrefix = "#/components/schemas"
)

var modelToken = regexp.MustCompile(`{{model: (\w+)}}`)

// RewritePointer maps a reference pointer onto the components namespace.
// The first "#/definitions" is replaced, then the first "{{model: Name}}"
// token. Pointers matching neither are returned unchanged.
func RewritePointer(ref string) string {
	ref = strings.Replace(ref, DefinitionsPrefix, ComponentsPrefix, 1)
	if loc := modelToken.FindStringSubmatchIndex(ref); loc != nil {
		name := ref[loc[2]:loc[3]]
		ref = ref[:loc[0]] + ComponentsPrefix + "/" + name + ref[loc[1]:]
	}
	return ref
}

// Rewrite returns a deep copy of n with every reference pointer moved to the
// components namespace. The input is never modified and nil maps to nil.
//
// A reference node keeps its sibling fields verbatim; only the pointer
// changes. An empty $ref does not make a reference node. Other objects and
// arrays are walked recursively.
func Rewrite(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ObjectKind:
		if ref, ok := n.Ref(); ok && ref != "" {
			out := n.Clone()
			out.Set(RefKey, String(RewritePointer(ref)))
			return out
		}
		return rewriteChildren(n)
	case ArrayKind:
		return rewriteChildren(n)
	default:
		return n.Clone()
	}
}

func rewriteChildren(n *Node) *Node {
	out := &Node{Kind: n.Kind}
	if n.Keys != nil {
		out.Keys = append([]string(nil), n.Keys...)
	}
	out.Values = make([]*Node, len(n.Values))
	for i, v := range n.Values {
		if v.IsComposite() {
			out.Values[i] = Rewrite(v)
		} else {
			out.Values[i] = v.Clone()
		}
	}
	return out
}
