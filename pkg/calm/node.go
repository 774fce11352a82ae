package calm

// Field names used by node entries.
const (
	FieldUniqueID    = "unique-id"
	FieldName        = "name"
	FieldNodeType    = "node-type"
	FieldDescription = "description"
	FieldInterfaces  = "interfaces"
	FieldControls    = "controls"
	FieldDetails     = "details"
	FieldMetadata    = "metadata"
)

// NodeTypeSystem is the node type that always renders as a container.
const NodeTypeSystem = "system"

// Mode distinguishes mutually exclusive alternatives from independently
// selectable ones.
type Mode string

const (
	ModeOneOf Mode = "oneOf"
	ModeAnyOf Mode = "anyOf"
)

// Node is a typed view of a node entry.
type Node struct {
	ID          string
	Name        string
	Type        string
	Description string
	Interfaces  []Object
	Controls    Object
	Details     Object
	Metadata    any
	Raw         Object
}

// Label returns the display name, falling back to the id.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// ParseNode reads a node entry. It returns false if the entry has no
// unique-id, in which case the entry should be skipped.
func ParseNode(o Object) (Node, bool) {
	id := o.String(FieldUniqueID)
	if id == "" {
		return Node{}, false
	}
	return Node{
		ID:          id,
		Name:        o.String(FieldName),
		Type:        o.String(FieldNodeType),
		Description: o.String(FieldDescription),
		Interfaces:  o.Objects(FieldInterfaces),
		Controls:    o.Object(FieldControls),
		Details:     o.Object(FieldDetails),
		Metadata:    o.Get(FieldMetadata),
		Raw:         o,
	}, true
}

// Alternatives unpacks a slot of the form {"oneOf": [...]} or
// {"anyOf": [...]}. It returns false for plain entries. A slot carrying both
// keys is treated as oneOf.
func Alternatives(o Object) (Mode, []Object, bool) {
	for _, mode := range []Mode{ModeOneOf, ModeAnyOf} {
		if list, ok := o[string(mode)].([]any); ok {
			return mode, objects(list), true
		}
	}
	return "", nil, false
}
