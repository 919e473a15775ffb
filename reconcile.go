package paramtree

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	gyaml "github.com/goccy/go-yaml"
	"github.com/golang/glog"
)

// ReconcileOptions configures Reconcile.
type ReconcileOptions struct {
	// MatchByPath places each edit by the node's full key path instead of by
	// its name alone. Without it, an edit lands on the first property with
	// the same name under the top-level ancestor (see UpdateNode).
	MatchByPath bool
}

// Reconcile folds changed leaves back into a patch keyed by top-level key.
// Each touched top-level branch is rebuilt from a fresh copy of its
// OriginalValue with every edit below it applied; untouched branches are not
// part of the patch. Edits that cannot be placed are logged and skipped.
func Reconcile(changed, forest []*Node, opts ReconcileOptions) *Patch {
	patch := &Patch{}
	if len(changed) == 0 {
		return patch
	}

	table := Index(Flatten(forest))
	buffers := map[int]any{}

	for _, node := range changed {
		if node.IsTopLevel() {
			patch.set(node.ID, cloneValue(node.Value))
			continue
		}

		ancestorID := FindAncestor(node, table)
		ancestor, ok := table[ancestorID]
		if !ok {
			glog.V(1).Infof("[reconcile] node %d (%s) has no known top-level ancestor\n", node.NodeID, node.ID)
			continue
		}

		buf, ok := buffers[ancestorID]
		if !ok {
			buf = cloneValue(ancestor.OriginalValue)
			buffers[ancestorID] = buf
		}
		if !applyEdit(buf, node, table, opts) {
			glog.V(1).Infof("[reconcile] %s not found under %s, edit of node %d is a no-op\n", node.ID, ancestor.ID, node.NodeID)
		}
		patch.set(ancestor.ID, buf)
	}
	return patch
}

func applyEdit(buf any, node *Node, table map[int]*Node, opts ReconcileOptions) bool {
	value := cloneValue(node.Value)
	if opts.MatchByPath {
		path := node.Path
		if len(path) == 0 {
			if known, ok := table[node.NodeID]; ok {
				path = known.Path
			}
		}
		if len(path) > 1 {
			return UpdateAtPath(buf, path[1:], value)
		}
	}
	return UpdateNode(buf, node.ID, value)
}

// Patch maps top-level keys to their rebuilt values, in the order the keys
// were first touched.
type Patch struct {
	keys   []string
	values map[string]any
}

func (p *Patch) set(key string, value any) {
	if p.values == nil {
		p.values = map[string]any{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Len returns the number of top-level keys in the patch.
func (p *Patch) Len() int {
	return len(p.keys)
}

func (p *Patch) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p *Patch) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// MapSlice returns the patch as an ordered mapping. Values are shared with
// the patch.
func (p *Patch) MapSlice() gyaml.MapSlice {
	out := make(gyaml.MapSlice, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, gyaml.MapItem{Key: k, Value: p.values[k]})
	}
	return out
}

func (p *Patch) MarshalJSON() ([]byte, error) {
	return marshalValue(p.MapSlice())
}

func (p *Patch) MarshalYAML() (any, error) {
	return yamlValue(p.MapSlice()), nil
}

// Operations expresses the patch as RFC 6902 operations, one "add" per
// top-level key. "add" replaces a member that already exists.
func (p *Patch) Operations() (jsonpatch.Patch, error) {
	if p.Len() == 0 {
		return jsonpatch.Patch{}, nil
	}
	raw := make([]operation, 0, len(p.keys))
	for _, k := range p.keys {
		value, err := marshalValue(p.values[k])
		if err != nil {
			return nil, err
		}
		raw = append(raw, operation{Op: "add", Path: "/" + escapePointer(k), Value: value})
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("paramtree: invalid JSON Patch: %w", err)
	}

	ops, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, fmt.Errorf("paramtree: invalid JSON Patch: %w", err)
	}
	return ops, nil
}

// ApplyTo applies the patch to a JSON object document.
func (p *Patch) ApplyTo(doc []byte) ([]byte, error) {
	ops, err := p.Operations()
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return doc, nil
	}
	out, err := ops.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("paramtree: failed to apply patch: %w", err)
	}
	return out, nil
}

type operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

// yamlValue swaps Undefined for nil so encoders write it as null, and turns
// json.Number into a number goccy will not quote.
func yamlValue(v any) any {
	switch vv := v.(type) {
	case undefined:
		return nil
	case json.Number:
		if i, err := vv.Int64(); err == nil {
			return i
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	case gyaml.MapSlice:
		out := make(gyaml.MapSlice, len(vv))
		for i, it := range vv {
			out[i] = gyaml.MapItem{Key: it.Key, Value: yamlValue(it.Value)}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = yamlValue(e)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = yamlValue(e)
		}
		return out
	}
	return v
}
