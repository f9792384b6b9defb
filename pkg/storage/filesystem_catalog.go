package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// catalogSchemaJSON validates user-supplied catalog documents before they are
// trusted to drive plan generation. Structural rules the schema cannot
// express (forward dependencies, cycles) are checked by Catalog.Validate.
const catalogSchemaJSON = `{
  "type": "object",
  "required": ["workflows"],
  "properties": {
    "workflows": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["phases"],
        "properties": {
          "phases": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["id", "name", "steps"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "name": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"},
                "steps": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["id", "name"],
                    "properties": {
                      "id": {"type": "string", "minLength": 1},
                      "name": {"type": "string", "minLength": 1},
                      "required": {"type": "boolean"},
                      "depends_on": {"type": "array", "items": {"type": "string"}},
                      "artifacts": {"type": "array", "items": {"type": "string"}}
                    }
                  }
                }
              }
            }
          },
          "validation_rules": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "description"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"},
                "target": {"type": "string"},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var catalogSchemaLoader = gojsonschema.NewStringLoader(catalogSchemaJSON)

type catalogDocument struct {
	Workflows map[string]execution.WorkflowTemplate `yaml:"workflows"`
}

// LoadCatalog reads .workbench/catalog.yaml. A missing file returns
// (nil, nil): callers fall back to the built-in catalog. A file that exists
// is schema-validated and structure-checked before use, so a broken custom
// catalog fails loudly instead of generating half-formed plans.
func (r *FilesystemRepository) LoadCatalog() (execution.Catalog, error) {
	path, err := r.ResolvePath(CatalogFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var generic map[string]interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize catalog for validation: %w", err)
	}
	result, err := gojsonschema.Validate(catalogSchemaLoader, gojsonschema.NewBytesLoader(asJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to validate catalog: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid catalog document: %s", formatSchemaErrors(result))
	}

	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := make(execution.Catalog, len(doc.Workflows))
	for name, tmpl := range doc.Workflows {
		catalog[execution.WorkflowType(name)] = tmpl
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return catalog, nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	msg := ""
	for i, desc := range result.Errors() {
		if i > 0 {
			msg += "; "
		}
		msg += desc.String()
	}
	return msg
}
