package architecture

import (
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// Architecture is the unpositioned node and edge model of a document.
type Architecture struct {
	Nodes      []graph.Node
	Edges      []graph.Edge
	Groups     []DecisionGroup
	Containers ContainerInfo
}

// Options configures [Build].
type Options struct {
	// OnShowDetails is attached to every regular node. It is never called.
	OnShowDetails func(nodeID string)
}

// Build extracts nodes, containment, decision groups and edges from doc.
//
// A ParentID that names a missing node or a regular node is cleared, and a
// containment loop is cut where a walk up from a node first revisits an id,
// so every node in the result has a valid, acyclic parent chain.
func Build(doc calm.Document, opts Options) Architecture {
	rels := make([]calm.Relationship, 0, len(doc.Relationships()))
	for _, o := range doc.Relationships() {
		rels = append(rels, calm.ParseRelationship(o))
	}
	flows := make([]calm.Flow, 0, len(doc.Flows()))
	for _, o := range doc.Flows() {
		flows = append(flows, calm.ParseFlow(o))
	}

	info := ResolveContainers(rels)
	set := ExtractNodes(doc.Nodes(), info, opts.OnShowDetails)
	MergeOptions(&set, rels)
	sanitizeParents(set.Nodes)

	known := make(map[string]bool, len(set.Nodes))
	for _, n := range set.Nodes {
		known[n.ID] = true
	}

	return Architecture{
		Nodes:      set.Nodes,
		Edges:      BuildEdges(rels, known, IndexFlows(flows)),
		Groups:     set.Groups,
		Containers: info,
	}
}

func sanitizeParents(nodes []graph.Node) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	for i := range nodes {
		p := nodes[i].ParentID
		if p == "" {
			continue
		}
		if j, ok := index[p]; !ok || !nodes[j].IsGroup() || p == nodes[i].ID {
			nodes[i].ParentID = ""
		}
	}
	for i := range nodes {
		visited := map[string]bool{nodes[i].ID: true}
		for cur := i; nodes[cur].ParentID != ""; {
			next := index[nodes[cur].ParentID]
			if visited[nodes[next].ID] {
				nodes[cur].ParentID = ""
				break
			}
			visited[nodes[next].ID] = true
			cur = next
		}
	}
}
