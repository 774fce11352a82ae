// Package transform provides graph transformations that prepare a directed
// graph for a layered layout.
//
// # Overview
//
// Architecture graphs arrive with arbitrary structure: request/response
// pairs form cycles and edges often skip several ranks. This package turns
// such a graph into a canonical form where:
//
//   - The graph is acyclic
//   - Every node has a rank (row) at least one past each of its parents
//   - Edges connect only consecutive rows
//
// The [Normalize] function applies the complete pipeline in the correct order.
//
// # Cycle Breaking
//
// [BreakCycles] reverses back edges found by depth-first search. Reversed
// edges are marked so routes can be drawn in the original direction.
//
// # Layer Assignment
//
// [AssignLayers] ranks nodes by longest path from a source using Kahn's
// algorithm.
//
// # Edge Subdivision
//
// [Subdivide] breaks long edges (spanning multiple rows) into chains of
// single-row hops by inserting subdivider nodes:
//
//	Before: web (row 0) → db (row 3)
//	After:  web → web-db_sub_1 → web-db_sub_2 → db
//
// Subdividers carry the ID of the edge they replace, so the final route of
// an edge is the sequence of its subdividers' positions.
package transform
