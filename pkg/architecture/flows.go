package architecture

import (
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

// FlowIndex maps a relationship id to the flow transitions that reference
// it, in document order.
type FlowIndex map[string][]graph.Transition

// IndexFlows scans every flow and groups its transitions by relationship id.
// Each transition records the id (or, failing that, the name) of its flow.
func IndexFlows(flows []calm.Flow) FlowIndex {
	idx := make(FlowIndex)
	for _, f := range flows {
		flowID := f.ID
		if flowID == "" {
			flowID = f.Name
		}
		for _, t := range f.Transitions {
			idx[t.RelationshipID] = append(idx[t.RelationshipID], graph.Transition{
				Sequence:    t.Sequence,
				Description: t.Description,
				Direction:   t.Direction,
				FlowID:      flowID,
			})
		}
	}
	return idx
}

// Split separates the transitions of rel into those that follow the
// relationship's direction and those that run against it.
func (idx FlowIndex) Split(rel string) (forward, backward []graph.Transition) {
	for _, t := range idx[rel] {
		if t.Direction == calm.DirectionDestinationToSource {
			backward = append(backward, t)
		} else {
			forward = append(forward, t)
		}
	}
	return forward, backward
}
