package grading

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const answerValueSchema = `{
  "anyOf": [
    {"type": "string"},
    {"type": "number"},
    {"type": "boolean"},
    {"type": "array", "items": {"type": ["string", "number", "boolean"]}}
  ]
}`

var schemaSources = map[string]string{
	"quiz_content": `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "answer"],
        "properties": {
          "id": {"type": ["string", "integer"]},
          "prompt": {"type": "string"},
          "answer": ` + answerValueSchema + `,
          "accept": {"type": "array", "items": {"type": ["string", "number", "boolean"]}}
        }
      }
    }
  }
}`,
	"quiz_submission": `{
  "type": "object",
  "required": ["answers"],
  "properties": {
    "answers": {
      "type": "object",
      "additionalProperties": ` + answerValueSchema + `
    }
  }
}`,
	"code_content": `{
  "type": "object",
  "required": ["tests"],
  "properties": {
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "name": {"type": "string"},
          "kind": {"enum": ["contains", "regex", "output", "expr"]},
          "expected": {"type": "string"},
          "pattern": {"type": "string"},
          "expr": {"type": "string"}
        },
        "allOf": [
          {"if": {"properties": {"kind": {"const": "contains"}}}, "then": {"required": ["expected"]}},
          {"if": {"properties": {"kind": {"const": "output"}}}, "then": {"required": ["expected"]}},
          {"if": {"properties": {"kind": {"const": "regex"}}}, "then": {"required": ["pattern"]}},
          {"if": {"properties": {"kind": {"const": "expr"}}}, "then": {"required": ["expr"]}}
        ]
      }
    }
  }
}`,
	"code_submission": `{
  "type": "object",
  "required": ["code"],
  "properties": {
    "code": {"type": "string"},
    "output": {"type": "string"}
  }
}`,
	"reading_submission": `{
  "type": "object",
  "properties": {
    "completed": {"type": "boolean"}
  }
}`,
}

var schemaCache sync.Map // name -> *jsonschema.Schema

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	src, ok := schemaSources[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(src)))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://grading/%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}

// validate checks raw against the named schema and tags failures with kind.
func validate(name string, raw []byte, kind error) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty payload", kind)
	}
	compiled, err := compiledSchema(name)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	return nil
}
