package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// corpusSchema is the JSON schema a corpus document must satisfy before
// per-record validation runs. The shape check catches malformed documents
// (wrong types, missing arrays) with positional errors; the field-level
// invariants in Validate handle the rest.
var corpusSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"schema_version": map[string]any{
			"type":        "string",
			"description": "Semver of the corpus file format, e.g. \"v1.0.0\"",
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":            map[string]any{"type": "string"},
					"category":      map[string]any{"type": "string"},
					"question":      map[string]any{"type": "string"},
					"answer":        map[string]any{"type": "string"},
					"difficulty":    map[string]any{"type": "string"},
					"type":          map[string]any{"type": "string"},
					"tags":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"time_estimate": map[string]any{"type": "integer"},
					"answer_format": map[string]any{"type": "string"},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":         map[string]any{"type": "string"},
								"text":       map[string]any{"type": "string"},
								"is_correct": map[string]any{"type": "boolean"},
							},
							"required":             []any{"id", "text"},
							"additionalProperties": false,
						},
					},
					"code_example": map[string]any{"type": "string"},
				},
				"required":             []any{"id", "category", "question", "answer", "difficulty", "type", "time_estimate"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"schema_version", "questions"},
	"additionalProperties": false,
}

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
)

// compiledCorpusSchema compiles corpusSchema once and caches the result.
func compiledCorpusSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value (any), not the
		// literal map. Round-trip through encoding/json to normalize.
		defBytes, err := json.Marshal(corpusSchema)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("marshal corpus schema: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compiledSchemaErr = fmt.Errorf("parse corpus schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://qbank-corpus.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// validateShape checks a parsed corpus document against the corpus schema.
func validateShape(doc any) error {
	schema, err := compiledCorpusSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("corpus shape validation failed: %w", err)
	}
	return nil
}
