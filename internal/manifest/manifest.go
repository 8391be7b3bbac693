// Package manifest provides models manifest operations
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/schema"
)

// DefaultFile is the manifest looked up when none is given.
const DefaultFile = "modelschemas.yaml"

// ErrInvalidManifest is returned when a manifest is not a mapping.
var ErrInvalidManifest = errors.New("manifest must be a mapping with a models list")

// File is the on-disk layout of a models manifest
type File struct {
	// Root is the directory schema paths are relative to, itself relative to
	// the manifest's directory
	Root   string  `yaml:"root,omitempty" json:"root,omitempty" jsonschema:"description=Directory schema paths are resolved against; relative to the manifest"`
	Models []Entry `yaml:"models" json:"models" jsonschema:"description=Models published in the registry in merge order"`
}

// Entry is a model as written in a manifest
type Entry struct {
	Name   string       `yaml:"name" json:"name" jsonschema:"minLength=1,description=Registry key of the model schema"`
	Schema *schema.Node `yaml:"schema,omitempty" json:"schema,omitempty" jsonschema:"-"`
}

// Manifest is a loaded and validated manifest
type Manifest struct {
	// Path is the file the manifest was read from
	Path string
	// Root is the absolute directory schema paths are resolved against
	Root   string
	Models []aggregate.Model
}

// Load reads and validates a manifest file (supports both YAML and JSON)
func Load(path string) (*Manifest, error) {
	// Clean the path to prevent directory traversal
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	m, err := Parse(data, abs)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Parse decodes manifest data. path names the manifest: its extension picks
// the validation decoder and its directory anchors the schema root.
func Parse(data []byte, path string) (*Manifest, error) {
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	if !doc.IsObject() {
		return nil, ErrInvalidManifest
	}

	// The models list is checked before anything else so that a malformed
	// list surfaces as aggregate.ErrInvalidModels.
	models, err := aggregate.DecodeModels(doc.Get("models"))
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(data, path); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	root := dir
	if r, ok := doc.Get("root").Str(); ok && r != "" {
		root = filepath.FromSlash(r)
		if !filepath.IsAbs(root) {
			root = filepath.Join(dir, root)
		}
	}

	return &Manifest{
		Path:   path,
		Root:   root,
		Models: models,
	}, nil
}

// Find returns the manifest in dir, trying modelschemas.yaml, .yml and .json
func Find(dir string) (string, error) {
	base := strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile))
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(dir, base+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no %s found in %s", DefaultFile, dir)
}

// Save writes the manifest file (format determined by extension)
func (f *File) Save(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(f, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal manifest as JSON")
		}
		data = append(data, '\n')
	} else {
		// Default to YAML for .yaml, .yml, or no extension
		data, err = yaml.Marshal(f)
		if err != nil {
			return errors.Wrap(err, "failed to marshal manifest as YAML")
		}
	}

	return os.WriteFile(path, data, 0600)
}

// Names returns the model names in manifest order
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Models))
	for _, e := range f.Models {
		names = append(names, e.Name)
	}
	return names
}

// AddModel appends a model entry
func (f *File) AddModel(e Entry) error {
	for _, existing := range f.Models {
		if existing.Name == e.Name {
			return fmt.Errorf("model '%s' already exists", e.Name)
		}
	}
	f.Models = append(f.Models, e)
	return nil
}
