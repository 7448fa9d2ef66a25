package config

// reportSchema is the JSON schema every report.json is validated against
// before decoding. Unknown keys are deliberately allowed (forward
// compatibility); missing required keys or wrong value shapes are fatal.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["template", "data_source"],
  "properties": {
    "template": {"type": "string", "minLength": 1},
    "author": {"type": "string"},
    "data_source": {"type": "string", "minLength": 1},
    "sections": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "images": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "data_source": {"type": "string"},
          "options": {"type": "object"}
        }
      }
    },
    "analyses": {
      "type": "object",
      "properties": {
        "computations": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["key", "type"],
            "properties": {
              "key": {"type": "string", "minLength": 1},
              "type": {"type": "string", "minLength": 1},
              "columns": {"type": "array", "items": {"type": "string"}}
            }
          }
        },
        "stats": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["key", "type"],
            "properties": {
              "key": {"type": "string", "minLength": 1},
              "type": {"type": "string", "minLength": 1}
            }
          }
        }
      }
    }
  }
}`
