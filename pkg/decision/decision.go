package decision

import (
	"slices"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// Choice is one alternative of a decision point.
type Choice = graph.Choice

// Point is a decision the user can make: pick one (oneOf) or several
// (anyOf) of the choices of a decision group.
//
// Choices are addressed by index. Indices are stable within one parse of a
// document; reordering choices in the document changes which alternative an
// index names.
type Point struct {
	GroupID string    `json:"groupId"`
	Mode    calm.Mode `json:"mode"`
	Prompt  string    `json:"prompt,omitempty"`
	Choices []Choice  `json:"choices"`
}

// Selections maps a group id to the indices of its selected choices. An
// absent or empty list means no selection: every alternative of the group
// is shown.
type Selections map[string][]int

// ExtractPoints returns one point per decision group node that carries
// choices, in node order.
func ExtractPoints(nodes []graph.Node) []Point {
	var points []Point
	for _, n := range nodes {
		if n.Kind != graph.KindDecisionGroup || len(n.Data.Choices) == 0 {
			continue
		}
		mode := n.Data.Mode
		if mode == "" {
			mode = calm.ModeOneOf
		}
		points = append(points, Point{
			GroupID: n.ID,
			Mode:    mode,
			Prompt:  n.Data.Prompt,
			Choices: n.Data.Choices,
		})
	}
	return points
}

// IsFilterActive reports whether any group has a non-empty selection.
func IsFilterActive(sel Selections) bool {
	for _, idx := range sel {
		if len(idx) > 0 {
			return true
		}
	}
	return false
}

// activeChoices returns the choices of p that are currently in effect: the
// selected ones, or all of them when p has no selection. Out-of-range
// indices are ignored.
func activeChoices(p Point, sel Selections) []Choice {
	idx := sel[p.GroupID]
	if len(idx) == 0 {
		return p.Choices
	}
	var out []Choice
	for _, i := range idx {
		if i >= 0 && i < len(p.Choices) {
			out = append(out, p.Choices[i])
		}
	}
	return out
}

// VisibleNodeIDs returns the nodes to show for sel, or nil when no filter is
// active.
//
// A node is visible when no point governs it, when it is a container or
// decision group, or when an active choice names it. Selections for unknown
// groups contribute nothing.
func VisibleNodeIDs(nodes []graph.Node, points []Point, sel Selections) Set {
	if !IsFilterActive(sel) {
		return nil
	}

	governed := make(Set)
	selected := make(Set)
	for _, p := range points {
		for _, c := range p.Choices {
			governed.Add(c.NodeIDs...)
		}
		for _, c := range activeChoices(p, sel) {
			selected.Add(c.NodeIDs...)
		}
	}

	visible := make(Set, len(nodes))
	for _, n := range nodes {
		if n.IsGroup() || !governed.Has(n.ID) || selected.Has(n.ID) {
			visible.Add(n.ID)
		}
	}
	return visible
}

// VisibleEdgeIDs returns the edges to show given the visible node set, or nil
// when no filter is active.
//
// An edge whose relationship is named by some choice is visible iff an
// active choice names it. Any other edge is visible iff both endpoints are
// visible.
func VisibleEdgeIDs(edges []graph.Edge, visible Set, points []Point, sel Selections) Set {
	if !IsFilterActive(sel) {
		return nil
	}

	governed := make(Set)
	selected := make(Set)
	for _, p := range points {
		for _, c := range p.Choices {
			governed.Add(c.RelationshipIDs...)
		}
		for _, c := range activeChoices(p, sel) {
			selected.Add(c.RelationshipIDs...)
		}
	}

	out := make(Set, len(edges))
	for _, e := range edges {
		if e.RelationshipID != "" && governed.Has(e.RelationshipID) {
			if selected.Has(e.RelationshipID) {
				out.Add(e.ID)
			}
			continue
		}
		if visible.Has(e.Source) && visible.Has(e.Target) {
			out.Add(e.ID)
		}
	}
	return out
}

// View bundles the visibility of one graph under one selection. Nodes and
// Edges are nil when no filter is active.
type View struct {
	Active bool `json:"active"`
	Nodes  Set  `json:"-"`
	Edges  Set  `json:"-"`
}

// Apply computes the view of g under sel.
func Apply(g graph.Graph, sel Selections) View {
	points := ExtractPoints(g.Nodes)
	nodes := VisibleNodeIDs(g.Nodes, points, sel)
	return View{
		Active: nodes != nil,
		Nodes:  nodes,
		Edges:  VisibleEdgeIDs(g.Edges, nodes, points, sel),
	}
}

// NodeVisible reports whether id is shown. Everything is shown when the
// filter is inactive.
func (v View) NodeVisible(id string) bool { return !v.Active || v.Nodes.Has(id) }

// EdgeVisible reports whether id is shown.
func (v View) EdgeVisible(id string) bool { return !v.Active || v.Edges.Has(id) }

// Clone returns a deep copy of sel.
func (sel Selections) Clone() Selections {
	out := make(Selections, len(sel))
	for k, v := range sel {
		out[k] = slices.Clone(v)
	}
	return out
}

// Toggle returns a copy of sel with choice index of p toggled, the way a
// selector panel applies a click: for oneOf, selecting an index replaces the
// previous one and selecting it again clears it; for anyOf, the index is
// added or removed. sel is not modified.
func (sel Selections) Toggle(p Point, index int) Selections {
	out := sel.Clone()
	cur := out[p.GroupID]
	has := slices.Contains(cur, index)

	switch {
	case p.Mode == calm.ModeAnyOf && has:
		cur = slices.DeleteFunc(cur, func(i int) bool { return i == index })
	case p.Mode == calm.ModeAnyOf:
		cur = append(cur, index)
		slices.Sort(cur)
	case has:
		cur = nil
	default:
		cur = []int{index}
	}

	if len(cur) == 0 {
		delete(out, p.GroupID)
	} else {
		out[p.GroupID] = cur
	}
	return out
}
