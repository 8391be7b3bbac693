// Package openapi places aggregated registries into API specification
// documents.
package openapi

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/schema"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	// ErrInvalidDocument is returned when a document cannot hold a
	// components.schemas section.
	ErrInvalidDocument = errors.New("invalid API document")

	// ErrUnknownFormat is returned for output formats other than json and yaml.
	ErrUnknownFormat = errors.New("unknown format")
)

// Embed returns a copy of doc whose components.schemas holds every registry
// entry. Entries replace schemas of the same name; other schemas are kept.
func Embed(doc *schema.Node, reg *aggregate.Registry) (*schema.Node, error) {
	if !doc.IsObject() {
		return nil, errors.Wrap(ErrInvalidDocument, "document must be a mapping")
	}
	out := doc.Clone()

	components, err := child(out, "components")
	if err != nil {
		return nil, err
	}
	schemas, err := child(components, "schemas")
	if err != nil {
		return nil, errors.Wrap(err, "components")
	}

	for _, e := range reg.Entries() {
		schemas.Set(e.Name, e.Schema.Clone())
	}
	return out, nil
}

// Wrap nests the registry under components.schemas of a new document.
func Wrap(reg *aggregate.Registry) *schema.Node {
	doc, _ := Embed(schema.Object(), reg)
	return doc
}

// child returns the object under key, creating it when absent or null.
func child(n *schema.Node, key string) (*schema.Node, error) {
	c := n.Get(key)
	switch {
	case c == nil || c.Kind == schema.NullKind:
		c = schema.Object()
		n.Set(key, c)
	case !c.IsObject():
		return nil, errors.Wrapf(ErrInvalidDocument, "%s must be a mapping, got %s", key, c.Kind)
	}
	return c, nil
}

// FormatFor picks the format matching a file extension, YAML unless .json.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode serializes doc in the given format.
func Encode(doc *schema.Node, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return schema.EncodeJSON(doc)
	case FormatYAML:
		return schema.EncodeYAML(doc)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// LoadDocument reads a YAML or JSON document.
func LoadDocument(path string) (*schema.Node, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read document")
	}
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return doc, nil
}

// SaveDocument writes doc to path, as JSON for a .json file and YAML otherwise.
func SaveDocument(path string, doc *schema.Node) error {
	data, err := Encode(doc, FormatFor(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
