package paramtree

import (
	"strconv"

	gyaml "github.com/goccy/go-yaml"
)

// UpdateNode sets the property named id somewhere inside target to value,
// mutating target in place. A direct member of target wins; otherwise the
// container members are searched depth first in enumeration order and the
// first property found is set. It reports whether anything was set.
//
// Matching is by name only. When two branches both hold a property named id,
// the first branch in enumeration order is the one changed; use UpdateAtPath
// when the full path is known.
func UpdateNode(target any, id string, value any) bool {
	if setMember(target, id, value) {
		return true
	}
	members, ok := entries(target)
	if !ok {
		return false
	}
	for _, m := range members {
		if isContainer(m.value) && UpdateNode(m.value, id, value) {
			return true
		}
	}
	return false
}

// UpdateAtPath sets the member reached by following path from target. Every
// key on the way must already exist.
func UpdateAtPath(target any, path []string, value any) bool {
	if len(path) == 0 {
		return false
	}
	cur := target
	for _, key := range path[:len(path)-1] {
		next, ok := member(cur, key)
		if !ok {
			return false
		}
		cur = next
	}
	return setMember(cur, path[len(path)-1], value)
}

func member(container any, key string) (any, bool) {
	switch c := container.(type) {
	case gyaml.MapSlice:
		for _, it := range c {
			if keyEquals(it.Key, key) {
				return it.Value, true
			}
		}
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case []any:
		if i, ok := index(c, key); ok {
			return c[i], true
		}
	}
	return nil, false
}

// setMember replaces an existing member of container. It never adds one.
func setMember(container any, key string, value any) bool {
	switch c := container.(type) {
	case gyaml.MapSlice:
		for i := range c {
			if keyEquals(c[i].Key, key) {
				c[i].Value = value
				return true
			}
		}
	case map[string]any:
		if _, ok := c[key]; ok {
			c[key] = value
			return true
		}
	case []any:
		if i, ok := index(c, key); ok {
			c[i] = value
			return true
		}
	}
	return false
}

func index(arr []any, key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(arr) || strconv.Itoa(i) != key {
		return 0, false
	}
	return i, true
}
