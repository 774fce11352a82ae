package transform

import (
	"fmt"

	"github.com/matzehuels/archview/pkg/dag"
)

// Subdivide breaks edges that span multiple rows into sequences of single-row
// edges connected by synthetic subdivider nodes.
//
// After Subdivide every edge connects nodes in consecutive rows
// (From.Row + 1 == To.Row). For example:
//
//	Before: web (row 0) → db (row 3)          [edge "web-db"]
//	After:  web → web-db_sub_1 → web-db_sub_2 → db
//
// Every segment of a chain keeps the ID, Reversed flag and metadata of the
// edge it replaces, and every subdivider has MasterID set to that edge ID.
// Subdividers have zero width and height; a layout routes the edge through
// their positions.
//
// # Node IDs
//
// Subdivider IDs have the form "edge_sub_row". If a collision occurs, a
// numeric suffix is appended ("web-db_sub_1__2").
//
// # Performance
//
// Time complexity is O(E·D) where D is the row count.
func Subdivide(g *dag.DAG) {
	gen := newIDGen(g.Nodes())
	var toRemove [][2]string
	seen := make(map[[2]string]bool)

	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		master := e.ID
		if master == "" {
			master = e.From + "-" + e.To
		}
		if key := [2]string{e.From, e.To}; !seen[key] {
			seen[key] = true
			toRemove = append(toRemove, key)
		}

		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(master, row)
			if err := g.AddNode(dag.Node{
				ID:       id,
				Row:      row,
				Kind:     dag.NodeKindSubdivider,
				MasterID: master,
			}); err != nil {
				panic(err)
			}
			mustAddSegment(g, e, prevID, id)
			prevID = id
		}
		mustAddSegment(g, e, prevID, dst.ID)
	}

	for _, e := range toRemove {
		g.RemoveEdge(e[0], e[1])
	}
}

func mustAddSegment(g *dag.DAG, e dag.Edge, from, to string) {
	if err := g.AddEdge(dag.Edge{ID: e.ID, From: from, To: to, Reversed: e.Reversed, Meta: e.Meta}); err != nil {
		panic(err)
	}
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
