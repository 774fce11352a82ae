package transform

import "github.com/matzehuels/archview/pkg/dag"

// Normalize prepares an arbitrary directed graph for ordering and coordinate
// assignment: cycles are broken by edge reversal, nodes are ranked by longest
// path, and long edges are subdivided. It returns g for chaining.
func Normalize(g *dag.DAG) *dag.DAG {
	BreakCycles(g)
	AssignLayers(g)
	Subdivide(g)
	return g
}
