package calm

// Field names used by relationship entries.
const (
	FieldRelationshipType = "relationship-type"
	FieldProtocol         = "protocol"
)

// Kind identifies which shape a relationship-type holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnects
	KindInteracts
	KindDeployedIn
	KindComposedOf
	KindOptions
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindConnects:   "connects",
	KindInteracts:  "interacts",
	KindDeployedIn: "deployed-in",
	KindComposedOf: "composed-of",
	KindOptions:    "options",
}

// String returns the document key for the kind.
func (k Kind) String() string { return kindNames[k] }

// Endpoint is one side of a connects relationship.
type Endpoint struct {
	Node       string
	Interfaces []string
}

// Choice is one selectable alternative of an options relationship.
type Choice struct {
	Description   string
	Nodes         []string
	Relationships []string
}

// Options is the payload of an options relationship.
type Options struct {
	Mode    Mode
	Prompt  string
	Choices []Choice
}

// Relationship is the decoded form of a relationship entry. Only the fields
// relevant to Kind are populated.
type Relationship struct {
	ID          string
	Description string
	Protocol    string
	Kind        Kind

	// KindConnects
	Source      Endpoint
	Destination Endpoint

	// KindInteracts
	Actor string

	// KindDeployedIn, KindComposedOf
	Container string

	// Interacts targets, or containment children.
	Nodes []string

	// KindOptions
	Options *Options

	Controls Object
	Metadata any
	Raw      Object
}

// IsContainment reports whether the relationship places nodes inside a
// container.
func (r Relationship) IsContainment() bool {
	return r.Kind == KindDeployedIn || r.Kind == KindComposedOf
}

// ParseRelationship decodes a relationship entry. Entries whose
// relationship-type is missing or unrecognized get KindUnknown.
func ParseRelationship(o Object) Relationship {
	r := Relationship{
		ID:          o.String(FieldUniqueID),
		Description: o.String(FieldDescription),
		Protocol:    o.String(FieldProtocol),
		Controls:    o.Object(FieldControls),
		Metadata:    o.Get(FieldMetadata),
		Raw:         o,
	}

	rt := o.Object(FieldRelationshipType)
	switch {
	case rt.Has("connects"):
		c := rt.Object("connects")
		r.Kind = KindConnects
		r.Source = parseEndpoint(c.Object("source"))
		r.Destination = parseEndpoint(c.Object("destination"))
	case rt.Has("interacts"):
		i := rt.Object("interacts")
		r.Kind = KindInteracts
		r.Actor = i.String("actor")
		r.Nodes = i.Strings("nodes")
	case rt.Has("deployed-in"):
		d := rt.Object("deployed-in")
		r.Kind = KindDeployedIn
		r.Container = d.String("container")
		r.Nodes = d.Strings("nodes")
	case rt.Has("composed-of"):
		c := rt.Object("composed-of")
		r.Kind = KindComposedOf
		r.Container = c.String("container")
		r.Nodes = c.Strings("nodes")
	case rt.Has("options"):
		r.Kind = KindOptions
		r.Options = ParseOptions(rt.Get("options"))
		r.Options.Prompt = r.Description
	}
	return r
}

func parseEndpoint(o Object) Endpoint {
	return Endpoint{
		Node:       o.String("node"),
		Interfaces: o.Strings("interfaces"),
	}
}

// ParseOptions decodes the value of an options relationship-type. It
// accepts a plain list of choices (treated as oneOf) or a {"oneOf": [...]}
// / {"anyOf": [...]} wrapper around that list. A list element that is itself
// such a wrapper, as patterns produce from prefixItems, sets the mode and
// contributes its members as choices.
func ParseOptions(v any) *Options {
	opts := &Options{Mode: ModeOneOf}
	var list []any
	switch val := v.(type) {
	case []any:
		list = val
	default:
		o, _ := AsObject(v)
		if l, ok := o[string(ModeAnyOf)].([]any); ok {
			opts.Mode = ModeAnyOf
			list = l
		} else {
			list = o.List(string(ModeOneOf))
		}
	}
	for _, c := range objects(list) {
		if mode, members, ok := Alternatives(c); ok {
			opts.Mode = mode
			for _, m := range members {
				opts.Choices = append(opts.Choices, parseChoice(m))
			}
			continue
		}
		opts.Choices = append(opts.Choices, parseChoice(c))
	}
	return opts
}

func parseChoice(c Object) Choice {
	return Choice{
		Description:   c.String(FieldDescription),
		Nodes:         c.Strings("nodes"),
		Relationships: c.Strings("relationships"),
	}
}
