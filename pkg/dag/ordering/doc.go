// Package ordering determines the arrangement of nodes within each row of a
// layered graph.
//
// # The Ordering Problem
//
// Edge crossings make architecture diagrams hard to read. Finding an
// ordering with the minimum number of crossings is NP-hard, so archview uses
// the [Barycentric] heuristic: it positions each node near the average
// position of its neighbors and iteratively improves through alternating
// downward and upward sweeps, keeping the best ordering it has seen.
//
// # Usage
//
// The [Orderer] interface allows algorithms to be used interchangeably:
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 24}
//	orders := orderer.OrderRows(g) // map[row][]nodeID
//
// Results are deterministic: ties are broken by insertion order.
package ordering
