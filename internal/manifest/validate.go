package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"
)

//go:embed manifest.cue
var manifestPatterns string

// Validator checks manifest documents against the embedded CUE definition
type Validator struct {
	ctx *cue.Context
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx: cuecontext.New(),
	}
}

// Validate checks data, decoded as JSON for a .json path and YAML otherwise
func (v *Validator) Validate(data []byte, path string) error {
	name := filepath.Base(path)

	var value cue.Value
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoder := cuejson.NewDecoder(nil, name, bytes.NewReader(data))
		expr, err := decoder.Extract()
		if err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		value = v.ctx.BuildExpr(expr)
	} else {
		file, err := yaml.Extract(name, data)
		if err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
		value = v.ctx.BuildFile(file)
	}
	if value.Err() != nil {
		return fmt.Errorf("failed to build manifest value: %w", value.Err())
	}

	return v.validate(value)
}

func (v *Validator) validate(value cue.Value) error {
	patterns := v.ctx.CompileString(manifestPatterns, cue.Filename("manifest.cue"))
	if patterns.Err() != nil {
		return fmt.Errorf("failed to compile patterns: %w", patterns.Err())
	}

	def := patterns.LookupPath(cue.ParsePath("#Manifest"))
	if !def.Exists() {
		return fmt.Errorf("manifest definition not found")
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("manifest validation failed: %w", err)
	}
	return nil
}
