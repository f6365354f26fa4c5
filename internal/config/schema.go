// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package config

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the generated config schema.
const SchemaID = "https://authforms.dev/schemas/config.schema.json"

var (
	compileOnce sync.Once
	compiled    *jschema.Schema
	compileErr  error
)

// GenerateSchema generates a JSON Schema from the Config struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "AuthForms Configuration"
	schema.Description = "Schema for authforms config.yaml files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeInvalid).With("operation", "marshal schema").Wrap(err)
	}
	return data, nil
}

// ValidateYAML validates YAML config data against the config schema.
// Empty data is a valid, empty config.
func ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code(CodeInvalid).With("operation", "parse yaml").Wrap(err)
	}
	if doc == nil {
		return nil
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code(CodeInvalid).With("operation", "validate schema").Wrap(err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	compileOnce.Do(func() {
		var raw []byte
		raw, compileErr = GenerateSchema()
		if compileErr != nil {
			return
		}
		var doc any
		if compileErr = json.Unmarshal(raw, &doc); compileErr != nil {
			compileErr = oops.Code(CodeInvalid).With("operation", "parse schema").Wrap(compileErr)
			return
		}
		c := jschema.NewCompiler()
		if compileErr = c.AddResource("config.schema.json", doc); compileErr != nil {
			compileErr = oops.Code(CodeInvalid).With("operation", "add schema").Wrap(compileErr)
			return
		}
		compiled, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = oops.Code(CodeInvalid).With("operation", "compile schema").Wrap(compileErr)
		}
	})
	return compiled, compileErr
}

// toJSONTypes normalizes decoded YAML into the types encoding/json
// produces, which is what the validator expects.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case uint64:
		return json.Number(strconv.FormatUint(val, 10))
	default:
		return val
	}
}
