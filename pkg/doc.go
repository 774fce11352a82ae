// Package pkg provides the core libraries for archview.
//
// # Overview
//
// Archview turns CALM architecture documents into positioned, routed graphs
// ready for an editor canvas or a rendered diagram. Containers (deployed-in,
// composed-of) nest their members, oneOf/anyOf alternatives become decision
// groups, and a selection of choices filters what is visible.
//
// # Architecture
//
// The data flow through archview:
//
//	CALM document or pattern (JSON/YAML)
//	         ↓
//	    [calm] package (typed view of the raw document)
//	         ↓
//	    [pattern] package (schema → concrete document, patterns only)
//	         ↓
//	    [architecture] package (nodes, containers, decision groups, edges)
//	         ↓
//	    [layout] package (two-phase ranked layout on [dag])
//	         ↓
//	    [graph] package (positioned nodes, routed edges)
//	         ↓
//	    [decision] package (visibility filtering) → [render/nodelink] (DOT/SVG)
//
// [pipeline] wires the steps together and is the entry point used by the CLI
// and the HTTP API:
//
//	g := pipeline.ParseBytes(data, pipeline.Options{})
//	view := decision.Apply(g, decision.Selections{"decision-group-3": {0}})
//
// # Main Packages
//
// [calm] - Accessors over decoded CALM documents: nodes, relationships,
// alternatives and flows.
//
// [architecture] - Extracts nodes, resolves container membership (with a
// cycle guard), builds decision groups and converts relationships to edges.
//
// [dag] - Directed acyclic graph organized into ranks. [dag/transform]
// assigns ranks and subdivides long edges; [dag/ordering] reduces crossings
// with barycentric sweeps.
//
// [layout] - Lays out every container bottom-up with inner spacing, then the
// top level with wide spacing, and routes edges through their subdividers.
//
// [decision] - Decision points, selections and the visibility rules.
//
// [pattern] - Normalizes JSON-Schema patterns into concrete documents.
//
// [graph] - The output model and its JSON encoding.
//
// [render/nodelink] - Graphviz DOT export with nested clusters; SVG via
// go-graphviz. [render] converts SVG to PDF and PNG.
//
// ## Infrastructure
//
// [cache] - File, null, Redis and MongoDB caches for built graphs.
//
// [observability] - Pipeline, cache and HTTP hooks; [observability/prom]
// implements them with Prometheus collectors.
//
// [errors] - Structured errors with codes used by the CLI and the HTTP API.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test -run Example ./...  # Examples only
//
// [calm]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/calm
// [pattern]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/pattern
// [architecture]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/architecture
// [layout]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/dag/transform
// [dag/ordering]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/dag/ordering
// [graph]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/graph
// [decision]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/decision
// [render]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/errors
package pkg
