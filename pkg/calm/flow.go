package calm

// Transition directions.
const (
	DirectionSourceToDestination = "source-to-destination"
	DirectionDestinationToSource = "destination-to-source"
)

// Transition is one ordered step of a flow.
type Transition struct {
	RelationshipID string
	Sequence       int
	Direction      string
	Description    string
}

// Reverse reports whether the transition runs against the relationship's
// declared direction.
func (t Transition) Reverse() bool {
	return t.Direction == DirectionDestinationToSource
}

// Flow is a named sequence of transitions over relationships.
type Flow struct {
	ID          string
	Name        string
	Description string
	Transitions []Transition
}

// ParseFlow decodes a flow entry. Transitions without a relationship id are
// dropped; a missing sequence number defaults to 0 and a missing direction
// to source-to-destination.
func ParseFlow(o Object) Flow {
	f := Flow{
		ID:          o.String(FieldUniqueID),
		Name:        o.String(FieldName),
		Description: o.String(FieldDescription),
	}
	for _, t := range o.Objects("transitions") {
		rel := t.String("relationship-unique-id")
		if rel == "" {
			continue
		}
		dir := t.String("direction")
		if dir == "" {
			dir = DirectionSourceToDestination
		}
		f.Transitions = append(f.Transitions, Transition{
			RelationshipID: rel,
			Sequence:       t.Int("sequence-number", 0),
			Direction:      dir,
			Description:    t.String(FieldDescription),
		})
	}
	return f
}
