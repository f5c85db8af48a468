package source

import (
	"bytes"
	"embed"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/inventory.schema.json schemas/intent.schema.json
var schemaFS embed.FS

func compileEmbeddedSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = func(u string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("external schema references are disabled: %s", u)
	}
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

var (
	inventorySchema *jsonschema.Schema
	intentSchema    *jsonschema.Schema
)

func init() {
	var err error
	inventorySchema, err = compileEmbeddedSchema("inventory.schema.json")
	if err != nil {
		panic(err)
	}
	intentSchema, err = compileEmbeddedSchema("intent.schema.json")
	if err != nil {
		panic(err)
	}
}
