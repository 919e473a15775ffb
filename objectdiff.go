package paramtree

import "github.com/google/go-cmp/cmp"

const (
	// DiffAdded marks a path that only exists in the new object.
	DiffAdded = "+"
	// DiffRemoved marks a path that only exists in the base object.
	DiffRemoved = "-"
)

// ObjectDiff flattens the differences between base and object into a map from
// path to change: DiffRemoved, DiffAdded or the new value. Object keys are
// joined with "." and elements of the new array are written as "[i]", e.g.
// "log_throttling.count" or "servers[1]". Removals are always dotted, so an
// element dropped from the end of an array shows up as "servers.2". A member
// holding Undefined counts as missing.
func ObjectDiff(base, object any) map[string]any {
	changes := map[string]any{}
	walkObjectDiff(changes, base, object, "")
	return changes
}

func walkObjectDiff(changes map[string]any, base, object any, path string) {
	baseMembers, _ := entries(base)
	objMembers, _ := entries(object)
	objIsArray := KindOf(object) == KindArray

	for _, m := range baseMembers {
		if _, ok := definedMember(object, m.key); !ok {
			changes[joinPath(path, m.key, false)] = DiffRemoved
		}
	}

	for _, m := range objMembers {
		if KindOf(m.value) == KindAbsent {
			continue
		}
		p := joinPath(path, m.key, objIsArray)
		old, ok := definedMember(base, m.key)
		if !ok {
			changes[p] = DiffAdded
			continue
		}
		if cmp.Equal(old, m.value) {
			continue
		}
		if isContainer(old) && isContainer(m.value) {
			walkObjectDiff(changes, old, m.value, p)
			continue
		}
		changes[p] = m.value
	}
}

func definedMember(v any, key string) (any, bool) {
	m, ok := member(v, key)
	if !ok || KindOf(m) == KindAbsent {
		return nil, false
	}
	return m, true
}

func isContainer(v any) bool {
	k := KindOf(v)
	return k == KindObject || k == KindArray
}

func joinPath(path, key string, array bool) string {
	switch {
	case array:
		return path + "[" + key + "]"
	case path == "":
		return key
	}
	return path + "." + key
}
