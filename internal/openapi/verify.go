package openapi

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/schema"
)

const verifyURL = "file:///components.json"

// Verify compiles every registry entry inside a components.schemas document
// so that dangling references and malformed schemas are reported by name.
func Verify(reg *aggregate.Registry) error {
	data, err := schema.EncodeJSON(Wrap(reg))
	if err != nil {
		return err
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(verifyURL, bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "failed to load registry")
	}

	for _, name := range reg.Names() {
		if _, err := c.Compile(verifyURL + fragment(name)); err != nil {
			return errors.Wrapf(err, "schema %s", name)
		}
	}
	return nil
}

// Pointer returns the JSON pointer of a registry entry in an API document.
func Pointer(name string) string {
	return schema.ComponentsPrefix + "/" + escapeToken(name)
}

// fragment is Pointer percent-encoded for use as a URL fragment.
func fragment(name string) string {
	return schema.ComponentsPrefix + "/" + url.PathEscape(escapeToken(name))
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeToken(s string) string {
	return tokenEscaper.Replace(s)
}
