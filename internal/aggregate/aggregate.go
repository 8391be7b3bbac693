// Package aggregate merges the schemas of a list of models into one flat
// registry suitable for an API specification's components.schemas section.
package aggregate

import (
	"context"
	"path/filepath"

	"github.com/fastertools/modelschemas/internal/schema"
)

// Bundler resolves a schema file into a single self-contained document.
type Bundler interface {
	Bundle(ctx context.Context, path string) (*schema.Node, error)
}

// BundlerFunc adapts a function to the Bundler interface.
type BundlerFunc func(ctx context.Context, path string) (*schema.Node, error)

// Bundle calls f(ctx, path).
func (f BundlerFunc) Bundle(ctx context.Context, path string) (*schema.Node, error) {
	return f(ctx, path)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRoot sets the directory relative schema paths are resolved against.
func WithRoot(dir string) Option {
	return func(a *Aggregator) {
		a.root = dir
	}
}

// WithLogger sets a printf-style function receiving progress messages.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(a *Aggregator) {
		if logf != nil {
			a.logf = logf
		}
	}
}

// Aggregator builds registries from models.
type Aggregator struct {
	bundler Bundler
	cleaner schema.Cleaner
	root    string
	logf    func(format string, args ...any)
}

// New returns an Aggregator using bundler for schema paths and cleaner for
// top-level normalization. A nil cleaner selects schema.DefaultCleaner.
func New(bundler Bundler, cleaner schema.Cleaner, opts ...Option) *Aggregator {
	if cleaner == nil {
		cleaner = schema.DefaultCleaner
	}
	a := &Aggregator{
		bundler: bundler,
		cleaner: cleaner,
		logf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AggregateNode decodes a models list with DecodeModels and aggregates it.
// Nothing is read from disk when the list is invalid.
func (a *Aggregator) AggregateNode(ctx context.Context, list *schema.Node) (*Registry, error) {
	models, err := DecodeModels(list)
	if err != nil {
		return nil, err
	}
	return a.Aggregate(ctx, models)
}

// Aggregate processes models in order and returns the merged registry.
//
// For every model carrying a schema, the entries of its definitions block are
// stored first, then the cleaned document under the model name. Later writes
// replace earlier ones with the same name. A bundling error aborts the whole
// call and is returned as is.
func (a *Aggregator) Aggregate(ctx context.Context, models []Model) (*Registry, error) {
	reg := NewRegistry()

	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !hasSchema(m.Schema) {
			a.logf("skipping model %q: no schema", m.Name)
			continue
		}

		doc, err := a.load(ctx, m.Schema)
		if err != nil {
			return nil, err
		}

		if defs := schema.Rewrite(doc.Get("definitions")); defs.IsObject() {
			for i, name := range defs.Keys {
				reg.Put(Entry{Name: name, Schema: defs.Values[i], Model: m.Name, Origin: OriginDefinition})
			}
			a.logf("model %q: merged %d definitions", m.Name, defs.Len())
		}

		reg.Put(Entry{
			Name:   m.Name,
			Schema: schema.Rewrite(a.cleaner.Clean(doc)),
			Model:  m.Name,
			Origin: OriginModel,
		})
	}

	return reg, nil
}

func (a *Aggregator) load(ctx context.Context, src Source) (*schema.Node, error) {
	switch s := src.(type) {
	case PathSource:
		path := a.resolve(string(s))
		a.logf("bundling %s", path)
		return a.bundler.Bundle(ctx, path)
	case InlineSource:
		return s.Doc, nil
	default:
		return nil, nil
	}
}

// hasSchema reports whether src names a document. An empty path and an
// inline nil document count as absent.
func hasSchema(src Source) bool {
	switch s := src.(type) {
	case PathSource:
		return s != ""
	case InlineSource:
		return s.Doc != nil
	default:
		return false
	}
}

func (a *Aggregator) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	root := a.root
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(filepath.Join(root, p)); err == nil {
		return abs
	}
	return filepath.Join(root, p)
}
