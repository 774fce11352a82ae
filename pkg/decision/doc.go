// Package decision computes which nodes and edges of an architecture graph
// are visible under a set of user selections over decision groups.
//
// # Decision Points
//
// Every decisionGroup node that carries choices becomes a [Point]. A point
// is either oneOf (pick one alternative) or anyOf (pick any subset). Choices
// are addressed positionally by their index in [Point.Choices].
//
// # Visibility
//
// [Selections] maps a group id to selected choice indices. With no selection
// anywhere the filter is inactive and [VisibleNodeIDs] returns nil: callers
// show everything unstyled. Otherwise a node is visible when:
//
//   - no decision point governs it, or
//   - it is a container or decision group, or
//   - a currently active choice names it.
//
// A group with an empty selection keeps all of its choices active.
// Unknown groups and out-of-range indices contribute nothing.
//
// [VisibleEdgeIDs] applies the same rule to edges via relationship ids and
// falls back to endpoint visibility for edges no choice names.
//
// All functions are pure and never modify their inputs.
package decision
