package aggregate

import (
	"github.com/pkg/errors"

	"github.com/fastertools/modelschemas/internal/schema"
)

// ErrInvalidModels is returned when the models value is not a list.
var ErrInvalidModels = errors.New("empty models")

// Source is where a model's schema comes from: a PathSource or an
// InlineSource. A nil Source means the model carries no schema.
type Source interface {
	isSource()
}

// PathSource is a schema file location, relative to the aggregation root
// unless absolute.
type PathSource string

func (PathSource) isSource() {}

// InlineSource is a schema document supplied in place.
type InlineSource struct {
	Doc *schema.Node
}

func (InlineSource) isSource() {}

// Inline wraps doc as a Source.
func Inline(doc *schema.Node) Source {
	return InlineSource{Doc: doc}
}

// Model pairs a registry name with a schema source.
type Model struct {
	Name   string
	Schema Source
}

// DecodeModels reads a list of {name, schema} entries from a decoded
// document. Any value that is not a list fails with ErrInvalidModels.
//
// A missing or null schema field leaves Schema nil. A string schema becomes
// a PathSource and anything else an InlineSource.
func DecodeModels(list *schema.Node) ([]Model, error) {
	if !list.IsArray() {
		return nil, ErrInvalidModels
	}

	models := make([]Model, 0, list.Len())
	for i, item := range list.Values {
		if !item.IsObject() {
			return nil, errors.Errorf("model %d: expected an object, got %s", i, item.Kind)
		}
		name, ok := item.Get("name").Str()
		if !ok {
			return nil, errors.Errorf("model %d: name must be a string", i)
		}

		m := Model{Name: name}
		switch src := item.Get("schema"); {
		case src == nil || src.Kind == schema.NullKind:
		case src.Kind == schema.ScalarKind:
			path, ok := src.Str()
			if !ok {
				return nil, errors.Errorf("model %q: schema must be a path or a document", name)
			}
			m.Schema = PathSource(path)
		default:
			m.Schema = Inline(src)
		}
		models = append(models, m)
	}
	return models, nil
}
