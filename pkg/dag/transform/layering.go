package transform

import "github.com/matzehuels/archview/pkg/dag"

// AssignLayers assigns nodes to rows (ranks) based on their longest distance
// from a source.
//
// AssignLayers uses a longest-path algorithm via topological sort (Kahn's
// algorithm). Each node is placed at one plus the maximum row of any of its
// parents, ensuring that:
//   - Source nodes (no incoming edges) are at row 0
//   - All parents are in strictly earlier rows than their children
//
// Existing row assignments in the DAG are overwritten.
//
// # Cycles
//
// AssignLayers assumes the graph is acyclic. Nodes on a cycle never reach
// zero in-degree and stay at row 0. Run [BreakCycles] first.
//
// # Performance
//
// Time complexity is O(V + E), where V is nodes and E is edges.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		rows[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
