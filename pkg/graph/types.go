package graph

import (
	"errors"
	"fmt"

	"github.com/matzehuels/archview/pkg/calm"
)

// =============================================================================
// Constants
// =============================================================================

// NodeKind classifies a node.
type NodeKind string

// Node kinds.
const (
	KindRegular       NodeKind = "regular"
	KindContainer     NodeKind = "container"
	KindDecisionGroup NodeKind = "decisionGroup"
)

// IsGroup reports whether nodes of this kind can own children.
func (k NodeKind) IsGroup() bool {
	return k == KindContainer || k == KindDecisionGroup
}

// EdgeKind classifies an edge.
type EdgeKind string

// Edge kinds.
const (
	EdgeConnects  EdgeKind = "connects"
	EdgeInteracts EdgeKind = "interacts"
)

// Direction tags the two halves of a split bidirectional edge.
type Direction string

// Edge directions.
const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// MarkerArrow is the arrowhead marker used on edge ends.
const MarkerArrow = "arrowclosed"

// Validation errors returned by [Graph.Validate].
var (
	ErrDuplicateNode   = errors.New("duplicate node id")
	ErrUnknownParent   = errors.New("parent does not exist")
	ErrInvalidParent   = errors.New("parent is not a container or decision group")
	ErrUnknownEndpoint = errors.New("edge endpoint does not exist")
	ErrDuplicateEdge   = errors.New("duplicate edge id")
)

// =============================================================================
// Graph
// =============================================================================

// Graph is the canonical output format. Renderers receive it as-is.
//
// Nodes are ordered so every parent precedes its children: top-level groups,
// then top-level regular nodes, then nested nodes by depth.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Empty returns the graph with no nodes and no edges. Its slices are
// non-nil so it serializes as {"nodes": [], "edges": []}.
func Empty() Graph {
	return Graph{Nodes: []Node{}, Edges: []Edge{}}
}

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Children returns the ids of the nodes whose parent is parentID, in graph
// order.
func (g Graph) Children(parentID string) []string {
	var out []string
	for _, n := range g.Nodes {
		if n.ParentID == parentID {
			out = append(out, n.ID)
		}
	}
	return out
}

// AbsolutePosition resolves a node's position against its parent chain.
func (g Graph) AbsolutePosition(id string) (Position, bool) {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	i, ok := index[id]
	if !ok {
		return Position{}, false
	}
	pos := g.Nodes[i].Position
	seen := map[string]bool{id: true}
	for p := g.Nodes[i].ParentID; p != "" && !seen[p]; {
		seen[p] = true
		j, ok := index[p]
		if !ok {
			break
		}
		pos = pos.Add(g.Nodes[j].Position)
		p = g.Nodes[j].ParentID
	}
	return pos, true
}

// Validate checks the structural invariants: node ids are unique, every
// ParentID names an existing container or decision group, edge ids are
// unique and every edge endpoint exists.
func (g Graph) Validate() error {
	kinds := make(map[string]NodeKind, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := kinds[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		kinds[n.ID] = n.Kind
	}
	for _, n := range g.Nodes {
		if n.ParentID == "" {
			continue
		}
		kind, ok := kinds[n.ParentID]
		if !ok {
			return fmt.Errorf("%w: %s (child %s)", ErrUnknownParent, n.ParentID, n.ID)
		}
		if !kind.IsGroup() {
			return fmt.Errorf("%w: %s is %s (child %s)", ErrInvalidParent, n.ParentID, kind, n.ID)
		}
	}
	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edges[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.ID)
		}
		edges[e.ID] = true
		if _, ok := kinds[e.Source]; !ok {
			return fmt.Errorf("%w: %s (edge %s)", ErrUnknownEndpoint, e.Source, e.ID)
		}
		if _, ok := kinds[e.Target]; !ok {
			return fmt.Errorf("%w: %s (edge %s)", ErrUnknownEndpoint, e.Target, e.ID)
		}
	}
	return nil
}

// =============================================================================
// Node
// =============================================================================

// Position is a point in layout coordinates.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is the footprint of a node.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Node is a positioned node.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     NodeKind `json:"kind" bson:"kind"`
	ParentID string   `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Position Position `json:"position" bson:"position"`
	Size     Size     `json:"size" bson:"size"`
	Data     Payload  `json:"data" bson:"data"`
}

// IsGroup reports whether the node is a container or decision group.
func (n Node) IsGroup() bool { return n.Kind.IsGroup() }

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	return n.ID
}

// Payload carries the attributes copied from the source document.
// Decision groups additionally carry Mode, Prompt and Choices.
type Payload struct {
	Label       string        `json:"label" bson:"label"`
	NodeType    string        `json:"nodeType,omitempty" bson:"node_type,omitempty"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Interfaces  []calm.Object `json:"interfaces,omitempty" bson:"interfaces,omitempty"`
	Controls    calm.Object   `json:"controls,omitempty" bson:"controls,omitempty"`
	Details     calm.Object   `json:"details,omitempty" bson:"details,omitempty"`
	Metadata    any           `json:"metadata,omitempty" bson:"metadata,omitempty"`

	Mode    calm.Mode `json:"mode,omitempty" bson:"mode,omitempty"`
	Prompt  string    `json:"prompt,omitempty" bson:"prompt,omitempty"`
	Choices []Choice  `json:"choices,omitempty" bson:"choices,omitempty"`

	// OnShowDetails is attached to regular nodes for the rendering layer.
	// It is never called by archview.
	OnShowDetails func(nodeID string) `json:"-" bson:"-"`
}

// Choice is one alternative of a decision group. Choices are addressed by
// their index in [Payload.Choices].
type Choice struct {
	Description     string   `json:"description" bson:"description"`
	NodeIDs         []string `json:"nodeIds" bson:"node_ids"`
	RelationshipIDs []string `json:"relationshipIds" bson:"relationship_ids"`
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a routed, directed edge.
type Edge struct {
	ID              string       `json:"id" bson:"id"`
	Source          string       `json:"source" bson:"source"`
	Target          string       `json:"target" bson:"target"`
	Kind            EdgeKind     `json:"kind" bson:"kind"`
	RelationshipID  string       `json:"relationshipId" bson:"relationship_id"`
	Label           string       `json:"label,omitempty" bson:"label,omitempty"`
	Direction       Direction    `json:"direction,omitempty" bson:"direction,omitempty"`
	FlowTransitions []Transition `json:"flowTransitions" bson:"flow_transitions"`
	Protocol        string       `json:"protocol,omitempty" bson:"protocol,omitempty"`
	Controls        calm.Object  `json:"controls,omitempty" bson:"controls,omitempty"`
	Metadata        any          `json:"metadata,omitempty" bson:"metadata,omitempty"`

	Animated    bool       `json:"animated" bson:"animated"`
	Dashed      bool       `json:"dashed,omitempty" bson:"dashed,omitempty"`
	MarkerStart string     `json:"markerStart,omitempty" bson:"marker_start,omitempty"`
	MarkerEnd   string     `json:"markerEnd,omitempty" bson:"marker_end,omitempty"`
	Points      []Position `json:"points,omitempty" bson:"points,omitempty"`
}

// Transition is a flow step attached to an edge.
type Transition struct {
	Sequence    int    `json:"sequence" bson:"sequence"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Direction   string `json:"direction" bson:"direction"`
	FlowID      string `json:"flowId,omitempty" bson:"flow_id,omitempty"`
}
