package architecture

import (
	"fmt"
	"slices"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// idAllocator hands out edge ids that are unique within one parse.
type idAllocator struct {
	used map[string]bool
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: make(map[string]bool)}
}

// next returns base, or base__n when base is already taken.
func (a *idAllocator) next(base string) string {
	id := base
	for n := 2; a.used[id]; n++ {
		id = fmt.Sprintf("%s__%d", base, n)
	}
	a.used[id] = true
	return id
}

// BuildEdges converts relationships into edges.
//
// A connects relationship needs both endpoints in nodes. When its flow
// transitions run in both directions it is split into a forward edge and a
// dashed backward edge with the arrowhead at the start; each carries only
// its own transitions. An interacts relationship yields one dashed,
// non-animated edge per known target. Containment, options and unknown
// relationships produce no edges.
func BuildEdges(rels []calm.Relationship, nodes map[string]bool, flows FlowIndex) []graph.Edge {
	alloc := newIDAllocator()
	edges := []graph.Edge{}

	for i, r := range rels {
		base := r.ID
		if base == "" {
			base = fmt.Sprintf("relationship-%d", i)
		}

		switch r.Kind {
		case calm.KindConnects:
			src, dst := r.Source.Node, r.Destination.Node
			if !nodes[src] || !nodes[dst] {
				continue
			}
			forward, backward := flows.Split(r.ID)
			if len(forward) > 0 && len(backward) > 0 {
				fe := connectsEdge(r, alloc.next(base+"-forward"), src, dst, forward)
				fe.Direction = graph.DirectionForward
				be := connectsEdge(r, alloc.next(base+"-backward"), src, dst, backward)
				be.Direction = graph.DirectionBackward
				be.MarkerStart, be.MarkerEnd = graph.MarkerArrow, ""
				be.Dashed = true
				edges = append(edges, fe, be)
				continue
			}
			edges = append(edges, connectsEdge(r, alloc.next(base), src, dst, flows[r.ID]))

		case calm.KindInteracts:
			if !nodes[r.Actor] {
				continue
			}
			for j, target := range r.Nodes {
				if !nodes[target] {
					continue
				}
				edges = append(edges, graph.Edge{
					ID:              alloc.next(fmt.Sprintf("%s-%d", base, j)),
					Source:          r.Actor,
					Target:          target,
					Kind:            graph.EdgeInteracts,
					RelationshipID:  r.ID,
					Label:           r.Description,
					FlowTransitions: sortedTransitions(flows[r.ID]),
					Protocol:        r.Protocol,
					Controls:        r.Controls,
					Metadata:        r.Metadata,
					Animated:        false,
					Dashed:          true,
					MarkerEnd:       graph.MarkerArrow,
				})
			}
		}
	}
	return edges
}

func connectsEdge(r calm.Relationship, id, src, dst string, transitions []graph.Transition) graph.Edge {
	return graph.Edge{
		ID:              id,
		Source:          src,
		Target:          dst,
		Kind:            graph.EdgeConnects,
		RelationshipID:  r.ID,
		Label:           r.Description,
		FlowTransitions: sortedTransitions(transitions),
		Protocol:        r.Protocol,
		Controls:        r.Controls,
		Metadata:        r.Metadata,
		Animated:        true,
		MarkerEnd:       graph.MarkerArrow,
	}
}

func sortedTransitions(ts []graph.Transition) []graph.Transition {
	out := slices.Clone(ts)
	if out == nil {
		out = []graph.Transition{}
	}
	slices.SortStableFunc(out, func(a, b graph.Transition) int { return a.Sequence - b.Sequence })
	return out
}
