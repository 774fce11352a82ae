package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/archview/pkg/graph"
)

// Result holds the layout records for one graph. Positions of nested nodes
// are relative to their parent; top-level positions and all routes are
// absolute.
type Result struct {
	Positions map[string]graph.Position
	Sizes     map[string]graph.Size
	Routes    map[string][]graph.Position

	// Parents is the containment actually used, after cycle breaking and
	// dropping references to missing or non-group parents.
	Parents map[string]string

	// Order lists node IDs in paint order: top-level groups, top-level
	// regular nodes, then nested nodes by depth with groups first.
	Order []string

	Width  float64
	Height float64
}

// Apply lays out nodes and edges in two passes. Groups (containers and
// decision groups) are laid out deepest-first, each sized to its content
// plus padding; then all parentless units are laid out at the top level.
//
// Every edge takes part in exactly one pass: the innermost scope that holds
// both endpoints, with each endpoint mapped to its ancestor directly inside
// that scope. Edges whose endpoints map to the same unit are not ranked. A
// route between ancestors is extended to the nested endpoints.
func Apply(nodes []graph.Node, edges []graph.Edge, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := newTree(nodes)
	res := &Result{
		Positions: make(map[string]graph.Position, len(t.order)),
		Sizes:     make(map[string]graph.Size, len(t.order)),
		Routes:    make(map[string][]graph.Position),
		Parents:   t.parent,
	}
	// Routes of inner passes relative to their scope, translated later.
	local := make(map[string]scopedRoute)
	// scopes records the pass that routed each edge.
	scopes := make(map[string]string)

	for _, c := range t.groupsDeepestFirst() {
		kids := t.children[c]
		if len(kids) == 0 {
			res.Sizes[c] = graph.Size{Width: cfg.EmptyContainerWidth, Height: cfg.EmptyContainerHeight}
			continue
		}
		pl := Ranked(t.boxes(kids, res.Sizes, cfg), t.links(c, edges), cfg.Inner, cfg.Passes)
		pad := cfg.Inner.Padding
		for _, k := range kids {
			res.Positions[k] = offset(pl.Positions[k], pad)
		}
		for id, route := range pl.Routes {
			local[id] = scopedRoute{scope: c, points: offsetAll(route, pad)}
			scopes[id] = c
		}
		res.Sizes[c] = graph.Size{Width: pl.Width + 2*pad, Height: pl.Height + 2*pad}
	}

	top := t.children[""]
	pl := Ranked(t.boxes(top, res.Sizes, cfg), t.links("", edges), cfg.Top, cfg.Passes)
	pad := cfg.Top.Padding
	for _, id := range top {
		res.Positions[id] = offset(pl.Positions[id], pad)
	}
	for id, route := range pl.Routes {
		res.Routes[id] = offsetAll(route, pad)
		scopes[id] = ""
	}
	res.Width = pl.Width + 2*pad
	res.Height = pl.Height + 2*pad

	for id, r := range local {
		origin := t.absolute(r.scope, res.Positions)
		out := make([]graph.Position, len(r.points))
		for i, p := range r.points {
			out[i] = p.Add(origin)
		}
		res.Routes[id] = out
	}

	for _, id := range t.order {
		if _, ok := res.Sizes[id]; !ok {
			res.Sizes[id] = graph.Size{Width: cfg.NodeWidth, Height: cfg.NodeHeight}
		}
	}
	for _, e := range edges {
		scope, ok := scopes[e.ID]
		if !ok {
			continue
		}
		res.Routes[e.ID] = t.reachEndpoints(res.Routes[e.ID], e, scope, res)
	}
	res.Order = t.paintOrder()
	return res, nil
}

// reachEndpoints extends a route that was computed between the ancestors of
// its endpoints in scope so that it starts and ends on the endpoints
// themselves. The extra point sits on the left or right side of the nested
// node, whichever is nearer to the ancestor's border point.
func (t *tree) reachEndpoints(route []graph.Position, e graph.Edge, scope string, res *Result) []graph.Position {
	if len(route) == 0 {
		return route
	}
	if lifted, _ := t.liftTo(e.Source, scope); lifted != e.Source {
		p := t.anchor(e.Source, route[0], res)
		route = append([]graph.Position{p}, route...)
	}
	if lifted, _ := t.liftTo(e.Target, scope); lifted != e.Target {
		route = append(route, t.anchor(e.Target, route[len(route)-1], res))
	}
	return route
}

func (t *tree) anchor(id string, near graph.Position, res *Result) graph.Position {
	abs := t.absolute(id, res.Positions)
	size := res.Sizes[id]
	p := graph.Position{X: abs.X, Y: abs.Y + size.Height/2}
	if right := abs.X + size.Width; math.Abs(near.X-right) < math.Abs(near.X-abs.X) {
		p.X = right
	}
	return p
}

type scopedRoute struct {
	scope  string
	points []graph.Position
}

func offset(p graph.Position, d float64) graph.Position {
	return graph.Position{X: p.X + d, Y: p.Y + d}
}

func offsetAll(points []graph.Position, d float64) []graph.Position {
	out := make([]graph.Position, len(points))
	for i, p := range points {
		out[i] = offset(p, d)
	}
	return out
}

// tree is the containment hierarchy seen by the layout. The root scope is "".
type tree struct {
	order    []string
	kind     map[string]graph.NodeKind
	parent   map[string]string
	children map[string][]string
	depth    map[string]int
}

func newTree(nodes []graph.Node) *tree {
	t := &tree{
		kind:     make(map[string]graph.NodeKind, len(nodes)),
		parent:   make(map[string]string, len(nodes)),
		children: make(map[string][]string),
		depth:    make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := t.kind[n.ID]; dup || n.ID == "" {
			continue
		}
		t.order = append(t.order, n.ID)
		t.kind[n.ID] = n.Kind
		t.parent[n.ID] = n.ParentID
	}
	for _, id := range t.order {
		if p := t.parent[id]; p != "" && !t.kind[p].IsGroup() {
			t.parent[id] = ""
		}
	}
	t.breakCycles()
	for _, id := range t.order {
		p := t.parent[id]
		t.children[p] = append(t.children[p], id)
	}
	for _, id := range t.order {
		d := 0
		for p := t.parent[id]; p != ""; p = t.parent[p] {
			d++
		}
		t.depth[id] = d
	}
	return t
}

// breakCycles walks every parent chain with a visited set. The link that
// closes a loop is cut, making that node top-level.
func (t *tree) breakCycles() {
	for _, id := range t.order {
		visited := map[string]bool{id: true}
		for cur := id; t.parent[cur] != ""; cur = t.parent[cur] {
			next := t.parent[cur]
			if visited[next] {
				t.parent[cur] = ""
				break
			}
			visited[next] = true
		}
	}
}

func (t *tree) groupsDeepestFirst() []string {
	var groups []string
	for _, id := range t.order {
		if t.kind[id].IsGroup() {
			groups = append(groups, id)
		}
	}
	slices.SortStableFunc(groups, func(a, b string) int { return t.depth[b] - t.depth[a] })
	return groups
}

func (t *tree) boxes(ids []string, sizes map[string]graph.Size, cfg Config) []Box {
	out := make([]Box, 0, len(ids))
	for _, id := range ids {
		s, ok := sizes[id]
		if !ok {
			s = graph.Size{Width: cfg.NodeWidth, Height: cfg.NodeHeight}
		}
		out = append(out, Box{ID: id, Width: s.Width, Height: s.Height})
	}
	return out
}

// liftTo returns the ancestor of id (or id itself) whose parent is scope.
func (t *tree) liftTo(id, scope string) (string, bool) {
	if _, ok := t.kind[id]; !ok {
		return "", false
	}
	for cur := id; ; cur = t.parent[cur] {
		if t.parent[cur] == scope {
			return cur, true
		}
		if t.parent[cur] == "" {
			return "", false
		}
	}
}

// links maps edges onto the direct children of scope. An edge is kept when
// both endpoints lie inside scope under different children.
func (t *tree) links(scope string, edges []graph.Edge) []Link {
	var out []Link
	for _, e := range edges {
		from, ok := t.liftTo(e.Source, scope)
		if !ok {
			continue
		}
		to, ok := t.liftTo(e.Target, scope)
		if !ok || from == to {
			continue
		}
		out = append(out, Link{ID: e.ID, From: from, To: to})
	}
	return out
}

func (t *tree) absolute(id string, pos map[string]graph.Position) graph.Position {
	var abs graph.Position
	for cur := id; cur != ""; cur = t.parent[cur] {
		abs = abs.Add(pos[cur])
	}
	return abs
}

func (t *tree) paintOrder() []string {
	out := make([]string, 0, len(t.order))
	for _, id := range t.children[""] {
		if t.kind[id].IsGroup() {
			out = append(out, id)
		}
	}
	for _, id := range t.children[""] {
		if !t.kind[id].IsGroup() {
			out = append(out, id)
		}
	}

	var nested []string
	for _, id := range t.order {
		if t.parent[id] != "" {
			nested = append(nested, id)
		}
	}
	slices.SortStableFunc(nested, func(a, b string) int {
		if d := t.depth[a] - t.depth[b]; d != 0 {
			return d
		}
		ga, gb := t.kind[a].IsGroup(), t.kind[b].IsGroup()
		switch {
		case ga && !gb:
			return -1
		case gb && !ga:
			return 1
		}
		return 0
	})
	return append(out, nested...)
}
