package layout

import (
	"github.com/matzehuels/archview/pkg/dag"
	"github.com/matzehuels/archview/pkg/dag/ordering"
	"github.com/matzehuels/archview/pkg/dag/transform"
	"github.com/matzehuels/archview/pkg/graph"
)

// Box is a node footprint handed to [Ranked].
type Box struct {
	ID     string
	Width  float64
	Height float64
}

// Link is a directed edge handed to [Ranked].
type Link struct {
	ID   string
	From string
	To   string
}

// Placement is the result of a single ranked layout. Coordinates start at
// (0,0); Width and Height bound every box.
type Placement struct {
	Positions map[string]graph.Position // top-left corner per box
	Routes    map[string][]graph.Position
	Width     float64
	Height    float64
}

// Ranked runs a layered layout with ranks along x and order along y.
//
// Links with an unknown endpoint, self-loops and repeated link IDs are
// ignored for ranking and get no route. Ties are broken by input order, so
// the result is deterministic.
func Ranked(boxes []Box, links []Link, sp Spacing, passes int) Placement {
	p := Placement{
		Positions: make(map[string]graph.Position, len(boxes)),
		Routes:    make(map[string][]graph.Position),
	}
	if len(boxes) == 0 {
		return p
	}

	g := dag.New(nil)
	for _, b := range boxes {
		_ = g.AddNode(dag.Node{ID: b.ID, Width: b.Width, Height: b.Height})
	}
	seen := make(map[string]bool, len(links))
	var routed []string
	for _, l := range links {
		if l.From == l.To || seen[l.ID] {
			continue
		}
		if err := g.AddEdge(dag.Edge{ID: l.ID, From: l.From, To: l.To}); err != nil {
			continue
		}
		seen[l.ID] = true
		routed = append(routed, l.ID)
	}

	transform.Normalize(g)
	orders := ordering.Barycentric{Passes: passes}.OrderRows(g)

	rows := g.RowIDs()
	colX := make(map[int]float64, len(rows))
	colW := make(map[int]float64, len(rows))
	colH := make(map[int]float64, len(rows))
	x := 0.0
	for i, r := range rows {
		if i > 0 {
			x += sp.RankSep
		}
		colX[r] = x
		total := 0.0
		for j, id := range orders[r] {
			n, _ := g.Node(id)
			colW[r] = max(colW[r], n.Width)
			if j > 0 {
				total += sp.NodeSep
			}
			total += n.Height
		}
		colH[r] = total
		x += colW[r]
		p.Height = max(p.Height, total)
	}
	p.Width = x

	for _, r := range rows {
		y := (p.Height - colH[r]) / 2
		for j, id := range orders[r] {
			n, _ := g.Node(id)
			if j > 0 {
				y += sp.NodeSep
			}
			p.Positions[id] = graph.Position{X: colX[r] + (colW[r]-n.Width)/2, Y: y}
			y += n.Height
		}
	}

	segments := make(map[string]map[string]dag.Edge)
	for _, e := range g.Edges() {
		if segments[e.ID] == nil {
			segments[e.ID] = make(map[string]dag.Edge)
		}
		segments[e.ID][e.From] = e
	}
	for _, id := range routed {
		if route := traceRoute(g, p.Positions, segments[id]); route != nil {
			p.Routes[id] = route
		}
	}

	for id := range p.Positions {
		if n, _ := g.Node(id); n.IsSynthetic() {
			delete(p.Positions, id)
		}
	}
	return p
}

// traceRoute follows the segments of one edge from its regular start node
// through its subdividers and returns the polyline in the edge's original
// direction.
func traceRoute(g *dag.DAG, pos map[string]graph.Position, byFrom map[string]dag.Edge) []graph.Position {
	var start dag.Edge
	found := false
	for from, e := range byFrom {
		if n, ok := g.Node(from); ok && !n.IsSynthetic() {
			start, found = e, true
			break
		}
	}
	if !found {
		return nil
	}

	first, _ := g.Node(start.From)
	fp := pos[first.ID]
	points := []graph.Position{{X: fp.X + first.Width, Y: fp.Y + first.Height/2}}

	e := start
	for steps := 0; steps <= len(byFrom); steps++ {
		n, _ := g.Node(e.To)
		np := pos[n.ID]
		if !n.IsSynthetic() {
			points = append(points, graph.Position{X: np.X, Y: np.Y + n.Height/2})
			break
		}
		points = append(points, np)
		next, ok := byFrom[n.ID]
		if !ok {
			break
		}
		e = next
	}

	if start.Reversed {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}
