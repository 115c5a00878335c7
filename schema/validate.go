// Package schema checks model replies against the mesh configuration shape.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed mesh_config.schema.json
var meshConfigSchema []byte

const meshConfigID = "inmemory://mesh_config.schema.json"

var (
	compiled    *jsonschema.Schema
	compileErr  error
	compileOnce sync.Once
)

func meshSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(meshConfigID, bytes.NewReader(meshConfigSchema)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(meshConfigID)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateMeshConfig reports whether text is a JSON document shaped like a
// mesh configuration. Mesh types and colors are not checked against the
// prompt's lists since clients carry richer palettes than the model is told.
func ValidateMeshConfig(text string) error {
	s, err := meshSchema()
	if err != nil {
		return err
	}

	var payload any
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("decode reply: trailing data after JSON document")
	}

	if err := s.Validate(payload); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
