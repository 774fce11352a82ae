// Package calm reads architecture documents in the CALM shape.
//
// # Overview
//
// Architecture documents are loosely structured: every collection and field
// is optional and malformed entries are common while a model is being
// written. This package never validates a document against a schema.
// Instead it offers tolerant accessors that pull typed values out of the
// decoded document and fall back to zero values when a field is missing or
// has an unexpected type.
//
// # Documents
//
// A [Document] optionally contains "nodes", "relationships" and "flows":
//
//	{
//	  "nodes": [{"unique-id": "svc", "node-type": "service", "name": "API"}],
//	  "relationships": [{
//	    "unique-id": "svc-db",
//	    "relationship-type": {"connects": {
//	      "source": {"node": "svc"}, "destination": {"node": "db"}}}
//	  }],
//	  "flows": [{"name": "checkout", "transitions": [
//	    {"relationship-unique-id": "svc-db", "sequence-number": 1}]}]
//	}
//
// Use [Parse], [ReadDocument] or [ReadFile] to decode JSON or YAML input.
//
// # Relationship Kinds
//
// The "relationship-type" field holds exactly one of several shapes. It is
// decoded once by [ParseRelationship] into a [Relationship] whose [Kind]
// names the shape ([KindConnects], [KindInteracts], [KindDeployedIn],
// [KindComposedOf], [KindOptions] or [KindUnknown]), so callers switch on
// the kind instead of probing keys.
//
// # Alternatives
//
// A node slot may wrap a set of alternatives in "oneOf" or "anyOf". Use
// [Alternatives] to detect and unpack such slots.
package calm
