package paramtree

import (
	"encoding/json"
	"strings"
	"testing"

	gyaml "github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func ms(kv ...any) gyaml.MapSlice {
	out := gyaml.MapSlice{}
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, gyaml.MapItem{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func collectIDs(forest []*Node) []int {
	var ids []int
	for _, n := range Flatten(forest) {
		ids = append(ids, n.NodeID)
	}
	return ids
}

func TestBuildAssignsPreorderIDs(t *testing.T) {
	obj := ms(
		"a", ms("b", 1, "c", ms("d", 2)),
		"e", 3,
	)
	forest := Build(obj, BuildOptions{Allocator: NewIDAllocator()})

	if len(forest) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(forest))
	}
	if got, want := collectIDs(forest), []int{1, 2, 3, 4, 5}; !cmp.Equal(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	a := forest[0]
	if a.ID != "a" || a.Leaf || a.Expanded || a.Value != "" || a.Level != 0 || a.ParentNodeID != RootNodeID {
		t.Fatalf("unexpected container node: %+v", a)
	}
	c := a.Children[1]
	if c.ID != "c" || c.ParentNodeID != a.NodeID || c.Level != 1 {
		t.Fatalf("unexpected nested node: %+v", c)
	}
	d := c.Children[0]
	if !d.Leaf || d.Value != 2 || d.Level != 2 || d.ParentNodeID != c.NodeID {
		t.Fatalf("unexpected leaf: %+v", d)
	}
	if got := strings.Join(d.Path, "."); got != "a.c.d" {
		t.Fatalf("path = %q, want a.c.d", got)
	}
	if diff := cmp.Diff(ms("b", 1, "c", ms("d", 2)), a.OriginalValue); diff != "" {
		t.Fatalf("OriginalValue mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNormalizesNullAndUndefined(t *testing.T) {
	forest := Build(ms("a", nil, "b", Undefined, "c", 5), BuildOptions{Allocator: NewIDAllocator()})

	want := []any{"null", "undefined", 5}
	wantOrig := []any{nil, Undefined, 5}
	for i, n := range forest {
		if n.Value != want[i] {
			t.Errorf("%s: Value = %#v, want %#v", n.ID, n.Value, want[i])
		}
		if n.OriginalValue != wantOrig[i] {
			t.Errorf("%s: OriginalValue = %#v, want %#v", n.ID, n.OriginalValue, wantOrig[i])
		}
		if !n.Leaf {
			t.Errorf("%s: expected leaf", n.ID)
		}
	}
}

func TestBuildKeepPrimitive(t *testing.T) {
	forest := Build(ms("a", nil, "b", Undefined), BuildOptions{KeepPrimitive: true, Allocator: NewIDAllocator()})
	if forest[0].Value != nil {
		t.Fatalf("a: Value = %#v, want nil", forest[0].Value)
	}
	if KindOf(forest[1].Value) != KindAbsent {
		t.Fatalf("b: Value kind = %s, want absent", KindOf(forest[1].Value))
	}
}

func TestBuildArraysBecomeIndexKeyedChildren(t *testing.T) {
	forest := Build(ms("servers", []any{"db1", ms("name", "db2")}), BuildOptions{Allocator: NewIDAllocator()})

	servers := forest[0]
	if servers.Leaf || len(servers.Children) != 2 {
		t.Fatalf("expected container with 2 children, got %+v", servers)
	}
	if servers.Children[0].ID != "0" || servers.Children[0].Value != "db1" {
		t.Fatalf("unexpected first element: %+v", servers.Children[0])
	}
	second := servers.Children[1]
	if second.ID != "1" || second.Leaf || second.Children[0].ID != "name" {
		t.Fatalf("unexpected second element: %+v", second)
	}
}

func TestBuildNonObjectYieldsEmptyForest(t *testing.T) {
	alloc := NewIDAllocator()
	for _, in := range []any{nil, 5, "text", Undefined, ms(), []any{}, map[string]any{}} {
		if forest := Build(in, BuildOptions{Allocator: alloc}); len(forest) != 0 {
			t.Errorf("Build(%#v) = %d nodes, want none", in, len(forest))
		}
	}
	if alloc.Last() != RootNodeID {
		t.Fatalf("allocator advanced to %d on empty input", alloc.Last())
	}
}

func TestBuildEmptyContainersAreLeaves(t *testing.T) {
	forest := Build(ms("a", ms(), "b", []any{}), BuildOptions{Allocator: NewIDAllocator()})
	for _, n := range forest {
		if !n.Leaf || n.Children != nil {
			t.Errorf("%s: expected leaf without children", n.ID)
		}
	}
}

func TestBuildSortsPlainMapKeys(t *testing.T) {
	forest := Build(map[string]any{"zeta": 1, "alpha": 2, "mid": map[string]any{"y": 1, "x": 2}}, BuildOptions{Allocator: NewIDAllocator()})
	var got []string
	for _, n := range Flatten(forest) {
		got = append(got, n.ID)
	}
	if want := []string{"alpha", "mid", "x", "y", "zeta"}; !cmp.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestBuildCopiesOriginalValue(t *testing.T) {
	inner := ms("count", 1)
	src := ms("log_throttling", inner)
	forest := Build(src, BuildOptions{Allocator: NewIDAllocator()})

	inner[0].Value = 99
	if diff := cmp.Diff(ms("count", 1), forest[0].OriginalValue); diff != "" {
		t.Fatalf("OriginalValue follows the source (-want +got):\n%s", diff)
	}
}

func TestBuildIDsStayUniqueAcrossBuilds(t *testing.T) {
	alloc := NewIDAllocator()
	first := Build(ms("a", ms("b", 1)), BuildOptions{Allocator: alloc})
	second := Build(ms("a", ms("b", 1)), BuildOptions{Allocator: alloc})

	seen := map[int]bool{}
	for _, id := range append(collectIDs(first), collectIDs(second)...) {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}

	alloc.Reset()
	third := Build(ms("a", 1), BuildOptions{Allocator: alloc})
	if third[0].NodeID != 1 {
		t.Fatalf("after Reset first id = %d, want 1", third[0].NodeID)
	}
}

func TestBuildAtLevelUnderParent(t *testing.T) {
	forest := Build(ms("x", 1), BuildOptions{Level: 3, ParentNodeID: 42, Allocator: NewIDAllocator()})
	if forest[0].Level != 3 || forest[0].ParentNodeID != 42 {
		t.Fatalf("unexpected node: %+v", forest[0])
	}
}

func TestNodeMarshalJSON(t *testing.T) {
	forest := Build(ms("a", ms("b", nil)), BuildOptions{Allocator: NewIDAllocator()})
	b, err := json.Marshal(forest)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	if got[0]["expanded"] != false {
		t.Fatalf("container should carry expanded=false: %s", b)
	}
	child := got[0]["children"].([]any)[0].(map[string]any)
	if _, ok := child["expanded"]; ok {
		t.Fatalf("leaf should not carry expanded: %s", b)
	}
	if child["value"] != "null" || child["originalValue"] != nil {
		t.Fatalf("unexpected leaf values: %s", b)
	}
}
