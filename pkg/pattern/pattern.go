package pattern

import (
	"strings"

	"github.com/matzehuels/archview/pkg/calm"
)

// Schema keywords recognized by Normalize.
const (
	keyConst       = "const"
	keyEnum        = "enum"
	keyProperties  = "properties"
	keyPrefixItems = "prefixItems"
	keyItems       = "items"
	keyRef         = "$ref"
	keySchema      = "$schema"
)

// maxRefDepth bounds $ref chains, including self-referencing ones.
const maxRefDepth = 32

// IsPattern reports whether doc looks like a pattern rather than a concrete
// architecture: it has a top-level properties object or declares $schema
// without a concrete nodes list.
func IsPattern(doc calm.Document) bool {
	if doc.Object == nil {
		return false
	}
	if doc.Object.Object(keyProperties) != nil {
		return true
	}
	return doc.Has(keySchema) && doc.List(calm.FieldNodes) == nil
}

// Normalize converts a pattern document into a concrete-shaped document. A
// document that is already concrete comes back structurally unchanged apart
// from flattened relationship slots.
func Normalize(doc calm.Document) calm.Document {
	n := &normalizer{root: doc.Object}

	out := calm.Object{}
	if m, ok := calm.AsObject(n.value(map[string]any(doc.Object), 0)); ok {
		out = m
	}
	if rels := out.List(calm.FieldRelationships); rels != nil {
		out[calm.FieldRelationships] = flattenSlots(rels)
	}
	return calm.NewDocument(out)
}

type normalizer struct {
	root calm.Object
}

// value returns the concrete shape of v, or nil when v constrains a value
// without fixing it.
func (n *normalizer) value(v any, depth int) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if c := n.value(item, depth); c != nil {
				out = append(out, c)
			}
		}
		return out
	case map[string]any, calm.Object, map[any]any:
		o, _ := calm.AsObject(val)
		return n.object(o, depth)
	default:
		return v
	}
}

func (n *normalizer) object(o calm.Object, depth int) any {
	if o.Has(keyConst) {
		return o.Get(keyConst)
	}
	if enum := o.List(keyEnum); len(enum) == 1 {
		return enum[0]
	}
	if ref := o.String(keyRef); ref != "" {
		var target any
		if t, ok := n.resolve(ref); ok && depth < maxRefDepth {
			target = n.value(map[string]any(t), depth+1)
		}
		rest := make(calm.Object, len(o))
		for k, v := range o {
			if k != keyRef {
				rest[k] = v
			}
		}
		if len(rest) == 0 {
			return target
		}
		return merge(target, n.object(rest, depth))
	}
	if mode, alts, ok := calm.Alternatives(o); ok {
		list := make([]any, 0, len(alts))
		for _, alt := range alts {
			if c := n.object(alt, depth); c != nil {
				list = append(list, c)
			}
		}
		return map[string]any{string(mode): list}
	}
	if props := o.Object(keyProperties); props != nil {
		out := make(map[string]any, len(props))
		for k, pv := range props {
			if c := n.value(pv, depth); c != nil {
				out[k] = c
			}
		}
		return out
	}
	if items := o.List(keyPrefixItems); items != nil {
		return n.value(items, depth)
	}
	if o.Has(keyItems) {
		// A single items schema constrains every element without naming any.
		return n.value(o.List(keyItems), depth)
	}
	if isSchema(o) {
		return nil
	}

	out := make(map[string]any, len(o))
	for k, pv := range o {
		if c := n.value(pv, depth); c != nil {
			out[k] = c
		}
	}
	return out
}

// merge overlays the concrete sibling keys of a $ref onto its target. Either
// side may be nil.
func merge(target, siblings any) any {
	if siblings == nil {
		return target
	}
	t, ok := calm.AsObject(target)
	s, ok2 := calm.AsObject(siblings)
	if !ok || !ok2 {
		return siblings
	}
	out := make(map[string]any, len(t)+len(s))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range s {
		out[k] = merge(out[k], v)
	}
	return out
}

// resolve follows a local JSON pointer such as "#/defs/service". Remote
// references are not fetched.
func (n *normalizer) resolve(ref string) (calm.Object, bool) {
	path, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil, false
	}
	cur := n.root
	for _, tok := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if tok == "" {
			continue
		}
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		cur = cur.Object(tok)
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// isSchema reports whether o is a bare schema constraint ({"type": "string"},
// {"minItems": 1}, ...) with nothing concrete in it.
func isSchema(o calm.Object) bool {
	for k := range o {
		switch k {
		case "type", "required", "minItems", "maxItems", "minLength", "maxLength",
			"pattern", "format", "additionalProperties", "title", keySchema, "$id", "$comment":
		default:
			return false
		}
	}
	return len(o) > 0
}

// flattenSlots expands relationship alternative slots into their members.
func flattenSlots(rels []any) []any {
	out := make([]any, 0, len(rels))
	for _, r := range rels {
		o, ok := calm.AsObject(r)
		if !ok {
			continue
		}
		if _, alts, ok := calm.Alternatives(o); ok && !o.Has(calm.FieldUniqueID) {
			for _, alt := range alts {
				out = append(out, map[string]any(alt))
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
