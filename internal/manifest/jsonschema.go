package manifest

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the generated manifest schema.
const SchemaID = "https://github.com/fastertools/modelschemas/manifest.schema.json"

// JSONSchemaExtend describes the schema field, which reflection skips
// because it holds either a path or a whole document.
func (Entry) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Properties.Set("schema", &jsonschema.Schema{
		Description: "Path to a schema file, relative to root, or an inline schema document",
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "object"},
			{Type: "array"},
			{Type: "null"},
		},
	})
}

// JSONSchema generates a JSON Schema of the manifest file format for editor
// completion and validation.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Use yaml struct tags for property names instead of Go field names.
		FieldNameTag: "yaml",
	}

	s := r.Reflect(&File{})
	s.ID = SchemaID
	s.Title = "modelschemas manifest"
	s.Description = "Models aggregated into a components.schemas registry"

	return json.MarshalIndent(s, "", "  ")
}
