// Package dag provides a directed graph organized into rows (ranks) for
// layered diagram layouts.
//
// # Overview
//
// archview places architecture nodes in ranks from left to right: a node
// sits in a later rank than everything that points at it. This package
// provides the data structure the layout works on. Nodes carry a row
// assignment and a rectangular footprint; after normalization every edge
// connects nodes in consecutive rows.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "web", Width: 150, Height: 60})
//	g.AddNode(dag.Node{ID: "db", Width: 150, Height: 60})
//	g.AddEdge(dag.Edge{ID: "web-db", From: "web", To: "db"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents],
// [DAG.NodesInRow], and related methods. Use [DAG.Validate] to verify that
// the graph is acyclic and every edge spans exactly one row.
//
// # Determinism
//
// Nodes, edges, rows, sources and sinks are always reported in insertion
// order. Two graphs built from the same input produce the same layout.
//
// # Node Types
//
//   - [NodeKindRegular]: nodes from the input graph
//   - [NodeKindSubdivider]: zero-size nodes that break long edges into
//     single-row segments; edge routes pass through them
//
// # Edge Crossings
//
// The [CountCrossings] and [CountLayerCrossings] functions use a Fenwick tree
// (binary indexed tree) to count inversions in O(E log V) time. Ordering
// heuristics in pkg/dag/ordering use them to compare candidate orderings.
//
// # Concurrency
//
// A DAG is not safe for concurrent use. Every layout builds its own graphs.
package dag
