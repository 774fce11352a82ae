// Package graph provides the renderable graph produced from architecture
// documents and its serialization.
//
// This package defines the canonical wire format for archview output, used
// for JSON files, API responses, caching, and the rendering layer.
//
// # Architecture
//
// The package sits at the boundary between the layout pipeline and its
// consumers:
//
//   - pkg/calm: decoded architecture documents (input)
//   - pkg/architecture: node and edge construction
//   - pkg/layout: positions, sizes and edge routes
//   - [Graph]: the assembled result (this package)
//
// # Core Types
//
//   - [Graph]: node-link container handed to renderers
//   - [Node]: a positioned node of kind [KindRegular], [KindContainer] or
//     [KindDecisionGroup]
//   - [Edge]: a routed edge of kind [EdgeConnects] or [EdgeInteracts]
//   - [Payload]: attributes copied from the source node
//
// # Coordinates
//
// A node with a ParentID is positioned relative to its parent's top-left
// corner. A node without a parent uses absolute coordinates. Edge Points are
// always absolute.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "svc", "kind": "regular", "position": {"x": 0, "y": 0}, ...}],
//	  "edges": [{"id": "svc-db", "source": "svc", "target": "db", "kind": "connects", ...}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("arch.graph.json") // File → Graph
//	graph.WriteGraphFile(g, "output.json")          // Graph → File
//	data, _ := graph.MarshalGraph(g)                // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)         // []byte → Graph
//
// The same types carry bson tags so cached graphs can be stored in MongoDB
// without a separate schema.
//
// # Concurrency
//
// A Graph is a plain value. All functions are safe for concurrent reads but
// not concurrent writes.
package graph
