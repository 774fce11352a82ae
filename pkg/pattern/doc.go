// Package pattern turns architecture patterns into concrete-shaped
// documents.
//
// A pattern describes an architecture with schema combinators instead of
// literal values:
//
//	{"properties": {"nodes": {"prefixItems": [
//	    {"properties": {"unique-id": {"const": "api"}, "node-type": {"const": "service"}}},
//	    {"oneOf": [ ...node schemas... ]}
//	]}}}
//
// [Normalize] unwraps const values, properties objects, prefixItems/items
// arrays and local $ref pointers, keeping oneOf/anyOf slots as
// {"oneOf": [...]} wrappers around concrete entries. The result reads like
// an architecture document and goes through the same builders, so decision
// groups behave identically for patterns and architectures.
//
// Relationship slots are flattened: every alternative of a oneOf/anyOf
// relationship slot becomes a relationship of its own. Which of them is
// shown is decided by options relationships, not by the slot.
package pattern
