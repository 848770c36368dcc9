package ai

import "github.com/santhosh-tekuri/jsonschema/v5"

// RubricSchemaURL identifies the embedded rubric schema resource.
const RubricSchemaURL = "rubric.schema.json"

// RubricSchemaJSON describes the only generator output the service accepts.
const RubricSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["score", "feedback", "suggestions"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 10},
    "feedback": {
      "type": "object",
      "required": ["contentAccuracy", "completeness", "clarity", "technicalAccuracy"],
      "properties": {
        "contentAccuracy": {"$ref": "#/$defs/comment"},
        "completeness": {"$ref": "#/$defs/comment"},
        "clarity": {"$ref": "#/$defs/comment"},
        "technicalAccuracy": {"$ref": "#/$defs/comment"}
      }
    },
    "suggestions": {"type": "array", "items": {"type": "string"}}
  },
  "$defs": {
    "comment": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

var rubricSchema = jsonschema.MustCompileString(RubricSchemaURL, RubricSchemaJSON)
