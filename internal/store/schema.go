package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// tasksSchema describes the persisted document: one JSON array of task
// records. Field names and enum values mirror the task json tags.
const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "category", "priority", "status", "kind", "created_at"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "category": {"type": "string", "minLength": 1},
      "priority": {"enum": ["low", "medium", "high"]},
      "status": {"enum": ["pending", "completed"]},
      "kind": {"enum": ["normal", "urgent", "recurring"]},
      "created_at": {"type": "string"},
      "due_at": {"type": ["string", "null"]},
      "completed_at": {"type": ["string", "null"]},
      "recur_interval": {"type": "integer", "minimum": 1}
    },
    "additionalProperties": false
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tasks.schema.json", strings.NewReader(tasksSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("tasks.schema.json")
	})
	return schema, schemaErr
}

// validateDocument checks that data is a well-formed task list before
// decoding it into typed tasks.
func validateDocument(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile tasks schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("schema validation: %s", flattenSchemaError(ve))
		}
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// flattenSchemaError picks the deepest cause for a readable message.
func flattenSchemaError(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
