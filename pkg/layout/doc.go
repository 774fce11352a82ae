// Package layout positions architecture graphs with a two-phase ranked
// layout.
//
// # Algorithm
//
// [Ranked] is a layered (Sugiyama-style) layout built on pkg/dag: cycles are
// broken by reversing edges, nodes are ranked by longest path, long edges
// are subdivided, rows are ordered with barycentric sweeps, and coordinates
// are assigned with ranks running left to right. Edge routes pass through
// the subdivider positions.
//
// [Apply] runs [Ranked] in two phases:
//
//  1. Inner: every container and decision group, deepest first, lays out
//     its direct children and is sized to their bounding box plus padding.
//     Groups without children get the configured empty size.
//  2. Top: all parentless units, with groups at their computed sizes.
//
// # Configuration
//
// All spacing lives in [Config]; there is no package-level state, so
// concurrent layouts with different settings are safe. Use [DefaultConfig]
// for the standard look and small synthetic values in tests.
//
// # Output
//
// [Result] holds immutable position, size and route records. The caller
// assembles them into a graph.Graph.
package layout
