// Package bundle resolves schema files split across several documents into a
// single self-contained document.
package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/pkg/errors"

	"github.com/fastertools/modelschemas/internal/schema"
)

var (
	// ErrCircularReference is returned when inlining a reference leads back
	// to itself.
	ErrCircularReference = errors.New("circular reference")
	// ErrUnresolvable is returned when a reference target does not exist.
	ErrUnresolvable = errors.New("unresolvable reference")
)

// ReadFileFunc reads a file's contents.
type ReadFileFunc func(path string) ([]byte, error)

// FileBundler inlines external file references of schema documents.
//
// References into the root document ("#/...") and template tokens
// ("{{model: Name}}") are left in place. Any other reference without a URL
// scheme is a file path, optionally followed by a "#/pointer" fragment, and is
// replaced by the document it addresses.
type FileBundler struct {
	readFile ReadFileFunc
}

// NewFileBundler returns a FileBundler reading from the local filesystem.
func NewFileBundler() *FileBundler {
	return &FileBundler{readFile: os.ReadFile}
}

// WithReadFile returns a copy of b reading files through fn.
func (b *FileBundler) WithReadFile(fn ReadFileFunc) *FileBundler {
	return &FileBundler{readFile: fn}
}

// Bundle reads path and returns it with every external reference inlined.
func (b *FileBundler) Bundle(ctx context.Context, path string) (*schema.Node, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	r := &run{
		ctx:      ctx,
		readFile: b.readFile,
		files:    make(map[string]*schema.Node),
		active:   make(map[string]bool),
	}
	root, err := r.load(path)
	if err != nil {
		return nil, err
	}
	return r.walk(root, path, true)
}

// run holds the state of one Bundle call.
type run struct {
	ctx      context.Context
	readFile ReadFileFunc
	files    map[string]*schema.Node
	active   map[string]bool
}

func (r *run) load(path string) (*schema.Node, error) {
	if doc, ok := r.files[path]; ok {
		return doc, nil
	}
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.readFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema %s", path)
	}
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse schema %s", path)
	}
	r.files[path] = doc
	return doc, nil
}

// walk returns a copy of n with references resolved. file is the document n
// belongs to; internal references are kept only in the root document.
func (r *run) walk(n *schema.Node, file string, root bool) (*schema.Node, error) {
	if !n.IsComposite() {
		return n.Clone(), nil
	}
	if ref, ok := n.Ref(); ok {
		switch {
		case isExternal(ref):
			target, fragment := splitRef(ref)
			return r.inline(n, file, root, resolvePath(file, target), fragment)
		case !root && strings.HasPrefix(ref, "#"):
			return r.inline(n, file, root, file, strings.TrimPrefix(ref, "#"))
		}
	}

	out := &schema.Node{Kind: n.Kind}
	if n.Keys != nil {
		out.Keys = append([]string(nil), n.Keys...)
	}
	out.Values = make([]*schema.Node, len(n.Values))
	for i, v := range n.Values {
		child, err := r.walk(v, file, root)
		if err != nil {
			return nil, err
		}
		out.Values[i] = child
	}
	return out, nil
}

// inline replaces refNode, found in from, by the bundled target. Sibling
// fields of the reference are laid over an object target.
func (r *run) inline(refNode *schema.Node, from string, fromRoot bool, file, fragment string) (*schema.Node, error) {
	key := file + "#" + fragment
	if r.active[key] {
		return nil, errors.Wrap(ErrCircularReference, key)
	}
	r.active[key] = true
	defer delete(r.active, key)

	doc, err := r.load(file)
	if err != nil {
		return nil, err
	}
	target, err := lookup(doc, fragment)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", key)
	}

	resolved, err := r.walk(target, file, false)
	if err != nil {
		return nil, err
	}

	if refNode.Len() > 1 && resolved.IsObject() {
		for i, k := range refNode.Keys {
			if k == schema.RefKey {
				continue
			}
			sibling, err := r.walk(refNode.Values[i], from, fromRoot)
			if err != nil {
				return nil, err
			}
			resolved.Set(k, sibling)
		}
	}
	return resolved, nil
}

func lookup(doc *schema.Node, fragment string) (*schema.Node, error) {
	if fragment == "" {
		return doc, nil
	}
	p, err := jsonpointer.New(fragment)
	if err != nil {
		return nil, errors.Wrap(ErrUnresolvable, err.Error())
	}
	v, _, err := p.Get(doc)
	if err != nil {
		return nil, errors.Wrap(ErrUnresolvable, err.Error())
	}
	n, ok := v.(*schema.Node)
	if !ok {
		return nil, errors.Wrapf(ErrUnresolvable, "unexpected %T", v)
	}
	return n, nil
}

// isExternal reports whether ref names another file.
func isExternal(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.Contains(ref, "{{model:") {
		return false
	}
	return !hasScheme(ref)
}

// hasScheme reports whether ref starts with a URL scheme such as "http:".
// Single letters are drive names on Windows, not schemes.
func hasScheme(ref string) bool {
	i := strings.Index(ref, ":")
	if i < 2 {
		return false
	}
	for j, c := range ref[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func splitRef(ref string) (file, fragment string) {
	if i := strings.Index(ref, "#"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

func resolvePath(from, target string) string {
	target = filepath.FromSlash(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(filepath.Dir(from), target)
}
