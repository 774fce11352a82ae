package transform

import "github.com/matzehuels/archview/pkg/dag"

// BreakCycles makes g acyclic by reversing back edges found during a
// depth-first search and returns the number of edges it changed.
//
// Reversed edges keep their ID and get [dag.Edge.Reversed] set, so a layout
// can draw them in their original direction afterwards. Self-loops cannot be
// reversed and are removed.
//
// The search starts from sources in insertion order, then from any node not
// yet visited, so the choice of back edges is deterministic.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	seen := make(map[[2]string]bool)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				key := [2]string{node, child}
				if !seen[key] {
					seen[key] = true
					backEdges = append(backEdges, key)
				}
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	changed := 0
	for _, e := range backEdges {
		if e[0] == e[1] {
			before := g.EdgeCount()
			g.RemoveEdge(e[0], e[1])
			changed += before - g.EdgeCount()
			continue
		}
		changed += g.ReverseEdge(e[0], e[1])
	}
	return changed
}
