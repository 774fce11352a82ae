package architecture

import (
	"fmt"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// DecisionGroup records a synthesized decision group node and the nodes it
// offers as alternatives.
type DecisionGroup struct {
	GroupID       string
	Mode          calm.Mode
	MemberNodeIDs []string
}

// NodeSet is the output of [ExtractNodes]. Nodes are kept in extraction
// order; use the kind filters to split them.
type NodeSet struct {
	Nodes  []graph.Node
	Groups []DecisionGroup
}

// Regular returns the nodes of kind regular.
func (s NodeSet) Regular() []graph.Node { return s.ofKind(graph.KindRegular) }

// Containers returns the nodes of kind container.
func (s NodeSet) Containers() []graph.Node { return s.ofKind(graph.KindContainer) }

// DecisionGroups returns the nodes of kind decisionGroup.
func (s NodeSet) DecisionGroups() []graph.Node { return s.ofKind(graph.KindDecisionGroup) }

func (s NodeSet) ofKind(k graph.NodeKind) []graph.Node {
	var out []graph.Node
	for _, n := range s.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Has reports whether a node with id was extracted.
func (s NodeSet) Has(id string) bool {
	_, ok := s.index(id)
	return ok
}

func (s NodeSet) index(id string) (int, bool) {
	for i, n := range s.Nodes {
		if n.ID == id {
			return i, true
		}
	}
	return 0, false
}

// DecisionGroupID returns the id of the group synthesized for the
// alternatives slot at position index of the node list. When a node already
// uses that id, ExtractNodes appends "_" until it is free.
func DecisionGroupID(index int) string {
	return fmt.Sprintf("decision-group-%d", index)
}

// ExtractNodes converts node entries into graph nodes.
//
// Entries without a unique-id are skipped, as are repeated ids. A plain
// entry becomes a container when its node-type is "system" or info names it
// as a container, otherwise a regular node. An entry of the form
// {"oneOf": [...]} or {"anyOf": [...]} becomes a decision group node whose
// alternatives are extracted as its children. Each group starts with one
// choice per member; options relationships may replace them later.
//
// onShowDetails, if non-nil, is attached to every regular node.
func ExtractNodes(entries []calm.Object, info ContainerInfo, onShowDetails func(string)) NodeSet {
	var set NodeSet
	seen := make(map[string]bool)

	add := func(n calm.Node, parent string) (graph.Node, bool) {
		if seen[n.ID] {
			return graph.Node{}, false
		}
		seen[n.ID] = true
		gn := toGraphNode(n, info)
		if parent != "" {
			gn.ParentID = parent
		}
		if gn.Kind == graph.KindRegular {
			gn.Data.OnShowDetails = onShowDetails
		}
		set.Nodes = append(set.Nodes, gn)
		return gn, true
	}

	for i, entry := range entries {
		mode, alts, ok := calm.Alternatives(entry)
		if !ok {
			if n, ok := calm.ParseNode(entry); ok {
				add(n, "")
			}
			continue
		}

		groupID := DecisionGroupID(i)
		for seen[groupID] {
			groupID += "_"
		}
		seen[groupID] = true
		groupIdx := len(set.Nodes)
		set.Nodes = append(set.Nodes, graph.Node{
			ID:   groupID,
			Kind: graph.KindDecisionGroup,
			Data: graph.Payload{Label: groupLabel(entry, mode), Mode: mode, Prompt: entry.String(calm.FieldDescription)},
		})

		group := DecisionGroup{GroupID: groupID, Mode: mode}
		var choices []graph.Choice
		for _, alt := range alts {
			n, ok := calm.ParseNode(alt)
			if !ok {
				continue
			}
			if _, ok := add(n, groupID); !ok {
				continue
			}
			group.MemberNodeIDs = append(group.MemberNodeIDs, n.ID)
			choices = append(choices, graph.Choice{
				Description:     n.Label(),
				NodeIDs:         []string{n.ID},
				RelationshipIDs: []string{},
			})
		}

		parent := info.Parent(groupID)
		for _, m := range group.MemberNodeIDs {
			if parent != "" {
				break
			}
			parent = info.Parent(m)
		}
		set.Nodes[groupIdx].ParentID = parent
		set.Nodes[groupIdx].Data.Choices = choices
		set.Groups = append(set.Groups, group)
	}
	return set
}

func toGraphNode(n calm.Node, info ContainerInfo) graph.Node {
	kind := graph.KindRegular
	if n.Type == calm.NodeTypeSystem || info.IsContainer(n.ID) {
		kind = graph.KindContainer
	}
	return graph.Node{
		ID:       n.ID,
		Kind:     kind,
		ParentID: info.Parent(n.ID),
		Data: graph.Payload{
			Label:       n.Label(),
			NodeType:    n.Type,
			Description: n.Description,
			Interfaces:  n.Interfaces,
			Controls:    n.Controls,
			Details:     n.Details,
			Metadata:    n.Metadata,
		},
	}
}

func groupLabel(entry calm.Object, mode calm.Mode) string {
	if name := entry.String(calm.FieldName); name != "" {
		return name
	}
	if mode == calm.ModeAnyOf {
		return "Any of"
	}
	return "One of"
}
