// Package schema holds the restricted JSON Schema (draft-07) form used to
// store and transport a column's structure, and the strict validator that
// gates externally supplied documents.
//
// Only five keywords are modelled:
//
//	{
//	  "type": "object",
//	  "properties": {"name": {"type": "string"}},
//	  "required": ["name"],
//	  "additionalProperties": false
//	}
//
//	{"type": "array", "items": {"type": "integer"}}
//
// Other keywords (format, pattern, enum, numeric bounds) are not interpreted
// here. Member order of "properties" is preserved in both directions because
// editors show properties in document order.
//
// # Strict validation
//
// Validate accepts the subset a field tree can represent without loss:
//
//   - "type" is a single string naming one of string, integer, number,
//     boolean, object, array
//   - arrays have exactly one "items" schema, and that schema is not itself
//     an array
//   - every "properties" member passes the same checks
//   - object nesting stays within MaxDepth levels
//
// Validate answers with a boolean only. Diagnose runs the same rules and
// reports every violation, for tooling that wants to say more than
// "invalid structure".
package schema
