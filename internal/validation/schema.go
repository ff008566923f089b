package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"doc-summary/internal/llm"
)

const resultSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status", "summary", "bullet_points", "word_count", "hash_preview"],
  "properties": {
    "status": {"const": "ok"},
    "summary": {"type": "string", "minLength": 1},
    "bullet_points": {
      "type": "array",
      "minItems": 3,
      "maxItems": 3,
      "items": {"type": "string", "minLength": 1}
    },
    "word_count": {"type": "integer", "minimum": 1},
    "hash_preview": {"type": "string", "pattern": "^[0-9a-f]{8}$"}
  }
}`

type resultSchema struct {
	schema *jsonschema.Schema
}

func compileResultSchema() (*resultSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", strings.NewReader(resultSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &resultSchema{schema: schema}, nil
}

func (s *resultSchema) check(r llm.Result) Outcome {
	b, err := json.Marshal(r)
	if err != nil {
		return fail(CategorySchemaViolation, "marshal result: %v", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fail(CategorySchemaViolation, "unmarshal result: %v", err)
	}
	if err := s.schema.Validate(v); err != nil {
		return fail(CategorySchemaViolation, "result does not match schema: %v", err)
	}
	return Outcome{Valid: true}
}
