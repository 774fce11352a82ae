package architecture

import (
	"fmt"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// MergeOptions attaches options relationships to decision groups.
//
// Each options relationship goes to the group whose members overlap its
// choices' node ids the most; ties go to the earlier group. Its mode, prompt
// and choices replace the group's defaults. An options relationship that
// matches no group gets its own group "decision-<relationship-id>", which
// adopts every referenced node that has no parent yet.
func MergeOptions(set *NodeSet, rels []calm.Relationship) {
	for i, r := range rels {
		if r.Kind != calm.KindOptions || r.Options == nil || len(r.Options.Choices) == 0 {
			continue
		}
		choices := toChoices(r.Options.Choices)
		referenced := choiceNodes(choices)

		if gi := bestGroup(set.Groups, referenced); gi >= 0 {
			g := &set.Groups[gi]
			g.Mode = r.Options.Mode
			if ni, ok := set.index(g.GroupID); ok {
				data := &set.Nodes[ni].Data
				data.Mode = r.Options.Mode
				data.Choices = choices
				if r.Options.Prompt != "" {
					data.Prompt = r.Options.Prompt
				}
			}
			continue
		}

		id := "decision-" + r.ID
		if r.ID == "" {
			id = fmt.Sprintf("decision-options-%d", i)
		}
		for set.Has(id) {
			id += "_"
		}
		label := r.Options.Prompt
		if label == "" {
			label = id
		}
		group := DecisionGroup{GroupID: id, Mode: r.Options.Mode}
		set.Nodes = append(set.Nodes, graph.Node{
			ID:   id,
			Kind: graph.KindDecisionGroup,
			Data: graph.Payload{Label: label, Mode: r.Options.Mode, Prompt: r.Options.Prompt, Choices: choices},
		})
		for _, nid := range referenced {
			ni, ok := set.index(nid)
			if !ok || set.Nodes[ni].ParentID != "" || nid == id {
				continue
			}
			set.Nodes[ni].ParentID = id
			group.MemberNodeIDs = append(group.MemberNodeIDs, nid)
		}
		set.Groups = append(set.Groups, group)
	}
}

func toChoices(cs []calm.Choice) []graph.Choice {
	out := make([]graph.Choice, 0, len(cs))
	for _, c := range cs {
		gc := graph.Choice{
			Description:     c.Description,
			NodeIDs:         c.Nodes,
			RelationshipIDs: c.Relationships,
		}
		if gc.NodeIDs == nil {
			gc.NodeIDs = []string{}
		}
		if gc.RelationshipIDs == nil {
			gc.RelationshipIDs = []string{}
		}
		out = append(out, gc)
	}
	return out
}

// choiceNodes returns the distinct node ids named by choices, in order.
func choiceNodes(choices []graph.Choice) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range choices {
		for _, id := range c.NodeIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func bestGroup(groups []DecisionGroup, nodes []string) int {
	want := make(map[string]bool, len(nodes))
	for _, id := range nodes {
		want[id] = true
	}
	best, bestOverlap := -1, 0
	for i, g := range groups {
		overlap := 0
		for _, m := range g.MemberNodeIDs {
			if want[m] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	return best
}
