package calm

import (
	"encoding/json"
	"math"
	"strconv"
)

// Object is a decoded JSON/YAML mapping. All accessors tolerate a nil
// receiver, missing keys and values of the wrong type.
type Object map[string]any

// AsObject converts v to an Object if it is a mapping.
func AsObject(v any) (Object, bool) {
	switch m := v.(type) {
	case Object:
		return m, m != nil
	case map[string]any:
		return Object(m), m != nil
	case map[any]any:
		out := make(Object, len(m))
		for k, val := range m {
			if s, ok := k.(string); ok {
				out[s] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Get returns the raw value stored under key.
func (o Object) Get(key string) any { return o[key] }

// String returns the string under key, or "" if absent or not a string.
// Numbers and booleans are formatted.
func (o Object) String(key string) string {
	return asString(o[key])
}

// Int returns the integer under key, or def if absent or not numeric.
func (o Object) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the boolean under key, or false.
func (o Object) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Object returns the nested mapping under key, or nil.
func (o Object) Object(key string) Object {
	m, _ := AsObject(o[key])
	return m
}

// List returns the list under key, or nil.
func (o Object) List(key string) []any {
	l, _ := o[key].([]any)
	return l
}

// Objects returns the mappings in the list under key. Non-mapping elements
// are dropped.
func (o Object) Objects(key string) []Object {
	return objects(o.List(key))
}

// Strings returns the string elements of the list under key. Non-string
// elements are dropped.
func (o Object) Strings(key string) []string {
	return stringList(o.List(key))
}

func objects(list []any) []Object {
	if len(list) == 0 {
		return nil
	}
	out := make([]Object, 0, len(list))
	for _, v := range list {
		if m, ok := AsObject(v); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringList(list []any) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s := asString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
