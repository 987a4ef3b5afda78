package server

import (
	"bytes"
	"embed"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBase anchors the embedded schemas so relative $refs resolve.
const schemaBase = "https://property-cli.local/schemas/"

// Payload schemas, keyed by file name.
const (
	schemaProperty = "property.json"
	schemaBatch    = "batch.json"
	schemaSettings = "settings.json"
)

type schemas map[string]*jsonschema.Schema

func loadSchemas() (schemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	names := []string{schemaProperty, schemaBatch, schemaSettings}
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, eris.Wrapf(err, "server: read schema %s", name)
		}
		if err := compiler.AddResource(schemaBase+name, bytes.NewReader(data)); err != nil {
			return nil, eris.Wrapf(err, "server: add schema %s", name)
		}
	}

	out := make(schemas, len(names))
	for _, name := range names {
		s, err := compiler.Compile(schemaBase + name)
		if err != nil {
			return nil, eris.Wrapf(err, "server: compile schema %s", name)
		}
		out[name] = s
	}
	return out, nil
}

// validate checks body against the named schema.
func (s schemas) validate(name string, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return eris.Wrap(err, "body is not valid JSON")
	}
	if err := s[name].Validate(v); err != nil {
		return eris.Wrap(err, "body does not match schema")
	}
	return nil
}
