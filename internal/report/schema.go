package report

// Schema is the JSON Schema (Draft 2020-12) for the harness lint JSON
// output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/harness/lint-report.schema.json",
  "title": "Harness Lint Report",
  "description": "Output schema for harness lint --format=json",
  "type": "object",
  "required": ["version", "files", "metadata"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "files": {
      "type": "array",
      "items": { "$ref": "#/$defs/FileReport" }
    },
    "metadata": { "$ref": "#/$defs/Metadata" }
  },
  "$defs": {
    "FileReport": {
      "type": "object",
      "required": ["path", "cases", "findings"],
      "properties": {
        "path": { "type": "string" },
        "subject": {
          "description": "Subject declared by the case table"
        },
        "cases": {
          "type": "array",
          "items": { "$ref": "#/$defs/CasePlan" }
        },
        "findings": {
          "type": "array",
          "items": { "$ref": "#/$defs/Finding" }
        }
      }
    },
    "CasePlan": {
      "type": "object",
      "required": ["id", "row", "property", "plan"],
      "properties": {
        "id": {
          "type": "string",
          "description": "Stable identifier (cf-XXXXXXXX)"
        },
        "row": { "type": "integer", "minimum": 1 },
        "name": { "type": "string" },
        "property": { "type": "string" },
        "plan": {
          "type": "object",
          "required": [
            "property", "getter", "setter", "value", "expect",
            "setter_value", "assert", "setter_assert",
            "property_assert", "exception"
          ],
          "properties": {
            "getter": { "type": "array", "minItems": 2, "maxItems": 2 },
            "setter": { "type": "array", "minItems": 2, "maxItems": 2 },
            "assert": { "type": "string" },
            "setter_assert": { "type": "string" },
            "property_assert": { "type": "string" },
            "property": {
              "oneOf": [
                { "type": "null" },
                { "type": "array", "minItems": 2, "maxItems": 2 }
              ]
            },
            "exception": {
              "oneOf": [
                { "type": "null" },
                { "type": "array", "minItems": 2, "maxItems": 2 }
              ]
            }
          }
        }
      }
    },
    "Finding": {
      "type": "object",
      "required": ["id", "kind", "level", "row", "message"],
      "properties": {
        "id": { "type": "string" },
        "kind": {
          "type": "string",
          "enum": [
            "DecodeError", "SchemaViolation", "RowError", "SpecError",
            "UnknownKey", "EmptyTable", "DuplicateCase", "CustomComparator",
            "SuiteMethod", "RegisteredType", "SuiteSubject"
          ]
        },
        "level": {
          "type": "string",
          "enum": ["error", "warning", "note"]
        },
        "row": {
          "type": "integer",
          "minimum": 0,
          "description": "1-based row, 0 for the whole file"
        },
        "message": { "type": "string" }
      }
    },
    "Metadata": {
      "type": "object",
      "required": ["harness_version", "go_version", "duration_ms"],
      "properties": {
        "harness_version": { "type": "string" },
        "go_version": { "type": "string" },
        "duration_ms": {
          "type": "integer",
          "description": "Lint duration in milliseconds"
        },
        "timestamp": { "type": "string" },
        "warnings": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Run warnings, if any"
        }
      }
    }
  }
}`
