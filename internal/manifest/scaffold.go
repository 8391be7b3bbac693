package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/fastertools/modelschemas/internal/schema"
)

var schemaExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Discover lists schema files under dir as slash-separated paths relative to
// dir, sorted. Hidden files and directories, manifests and the files named in
// skip are left out.
func Discover(dir string, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		skipped[abs] = true
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != dir && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !schemaExtensions[strings.ToLower(filepath.Ext(path))] || isManifestName(d.Name()) {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && skipped[abs] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}
	sort.Strings(found)
	return found, nil
}

func isManifestName(name string) bool {
	base := strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile))
	return strings.TrimSuffix(name, filepath.Ext(name)) == base
}

// Scaffold builds a manifest with one model per schema file. root is written
// as given; files are relative to it.
func Scaffold(root string, files []string) (*File, error) {
	f := &File{Root: filepath.ToSlash(root)}
	for _, file := range files {
		e := Entry{Name: ModelName(file), Schema: schema.String(file)}
		if e.Name == "" {
			return nil, errors.Errorf("cannot derive a model name from %q", file)
		}
		if err := f.AddModel(e); err != nil {
			return nil, errors.Wrapf(err, "schema %s", file)
		}
	}
	return f, nil
}

// ModelName derives a PascalCase model name from a schema file path:
// "models/order-line.schema.json" becomes "OrderLineSchema".
func ModelName(file string) string {
	base := filepath.Base(filepath.FromSlash(file))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
