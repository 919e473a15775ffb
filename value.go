package paramtree

import (
	"encoding/json"
	"sort"
	"strconv"

	gyaml "github.com/goccy/go-yaml"
)

// Kind classifies a value of the tree value model.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindScalar
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks a key that is present but carries no value at all. It is
// distinct from nil, which is an explicit null.
var Undefined = undefined{}

// KindOf reports the kind of v. Objects are gyaml.MapSlice (ordered) or
// map[string]any, arrays are []any.
func KindOf(v any) Kind {
	switch v.(type) {
	case undefined:
		return KindAbsent
	case nil:
		return KindNull
	case string:
		return KindString
	case gyaml.MapSlice, map[string]any:
		return KindObject
	case []any:
		return KindArray
	}
	return KindScalar
}

// Normalize replaces values a display layer cannot edit directly with marker
// strings: Undefined becomes "undefined" and nil becomes "null".
func Normalize(v any) any {
	switch v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	}
	return v
}

type entry struct {
	key   string
	value any
}

// entries enumerates the members of an object or array. Arrays are read as
// objects keyed by their stringified indices; map[string]any keys come out
// sorted. ok is false for anything that is not a container.
func entries(v any) (out []entry, ok bool) {
	switch vv := v.(type) {
	case gyaml.MapSlice:
		out = make([]entry, 0, len(vv))
		for _, it := range vv {
			out = append(out, entry{key: keyString(it.Key), value: it.Value})
		}
		return out, true
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out = make([]entry, 0, len(vv))
		for _, k := range keys {
			out = append(out, entry{key: k, value: vv[k]})
		}
		return out, true
	case []any:
		out = make([]entry, 0, len(vv))
		for i, e := range vv {
			out = append(out, entry{key: strconv.Itoa(i), value: e})
		}
		return out, true
	}
	return nil, false
}

// hasChildren is true for non-empty objects and non-empty arrays.
func hasChildren(v any) bool {
	switch vv := v.(type) {
	case gyaml.MapSlice:
		return len(vv) > 0
	case map[string]any:
		return len(vv) > 0
	case []any:
		return len(vv) > 0
	}
	return false
}

func keyString(k any) string {
	switch kk := k.(type) {
	case string:
		return kk
	case interface{ String() string }:
		return kk.String()
	case nil:
		return "null"
	}
	b, err := json.Marshal(k)
	if err != nil {
		return ""
	}
	return string(b)
}

func keyEquals(k any, want string) bool {
	switch vv := k.(type) {
	case string:
		return vv == want
	case interface{ String() string }:
		return vv.String() == want
	default:
		return keyString(k) == want
	}
}

// cloneValue deep copies containers; scalars are immutable and returned as is.
func cloneValue(v any) any {
	switch vv := v.(type) {
	case gyaml.MapSlice:
		out := make(gyaml.MapSlice, len(vv))
		for i, it := range vv {
			out[i] = gyaml.MapItem{Key: it.Key, Value: cloneValue(it.Value)}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
