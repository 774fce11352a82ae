package ordering

import (
	"maps"
	"slices"

	"github.com/matzehuels/archview/pkg/dag"
)

// DefaultPasses is the number of sweeps [Barycentric] runs when Passes is 0.
const DefaultPasses = 24

// Orderer is an interface for row ordering algorithms. An orderer determines
// the sequence of nodes in each row so that edges between consecutive rows
// cross as little as possible.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// Barycentric orders rows with the Sugiyama barycenter heuristic.
//
// Each sweep sorts a row by the average position of each node's neighbors in
// the previous row: parents on downward sweeps, children on upward sweeps.
// Nodes without neighbors keep their current position. Sorting is stable,
// so insertion order breaks ties. The ordering with the fewest crossings
// seen across all sweeps is returned; the initial insertion order counts as
// a candidate.
type Barycentric struct {
	// Passes is the number of sweeps. Zero means DefaultPasses.
	Passes int
}

// OrderRows returns the node order of every row in g.
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	if len(rows) < 2 {
		return orders
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i-1]]), g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i+1]]), g.Children)
			}
		}

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

func sortByBarycenter(row []string, adjPos map[string]int, neighbors func(string) []string) {
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0, 0
		for _, nb := range neighbors(id) {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = float64(sum) / float64(n)
	}
	slices.SortStableFunc(row, func(a, b string) int {
		ka, kb := keys[a], keys[b]
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		out[r] = slices.Clone(orders[r])
	}
	return out
}
