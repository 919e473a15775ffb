// Package paramtree turns nested configuration objects into flat trees of
// editable nodes and folds edited leaves back into sparse patches.
package paramtree

import (
	"bytes"
	"encoding/json"
	"fmt"

	gyaml "github.com/goccy/go-yaml"
)

// Node is one key of a configuration object.
//
// Container nodes (non-empty object or array values) have their Value cleared
// to "" and carry Children. OriginalValue always keeps a deep copy of the raw
// value the node was built from, so it can serve as the baseline for patches
// even after Value was edited.
type Node struct {
	NodeID        int
	ParentNodeID  int
	Level         int
	ID            string
	Value         any
	OriginalValue any
	Leaf          bool
	Expanded      bool
	Children      []*Node

	// Path holds the keys from the top-level ancestor down to this node,
	// inclusive. Reconcile uses it when matching by path.
	Path []string
}

// BuildOptions configures Build. The zero value builds a top-level forest with
// normalized values from DefaultAllocator.
type BuildOptions struct {
	// KeepPrimitive leaves nil and Undefined values untouched instead of
	// replacing them with their marker strings.
	KeepPrimitive bool
	Level         int
	ParentNodeID  int
	Allocator     *IDAllocator
}

// Build converts obj into a forest of nodes, one per key, in enumeration order.
// Ids are assigned in preorder. Anything that is not a non-empty object or
// array yields a nil forest. obj must be acyclic.
func Build(obj any, opts BuildOptions) []*Node {
	alloc := opts.Allocator
	if alloc == nil {
		alloc = DefaultAllocator
	}
	return build(obj, opts.KeepPrimitive, alloc, opts.Level, opts.ParentNodeID, nil)
}

func build(obj any, keepPrimitive bool, alloc *IDAllocator, level, parentNodeID int, path []string) []*Node {
	members, ok := entries(obj)
	if !ok || len(members) == 0 {
		return nil
	}

	forest := make([]*Node, 0, len(members))
	for _, m := range members {
		value := m.value
		if !keepPrimitive {
			value = Normalize(value)
		}

		node := &Node{
			NodeID:        alloc.Next(),
			ParentNodeID:  parentNodeID,
			Level:         level,
			ID:            m.key,
			Value:         value,
			OriginalValue: cloneValue(m.value),
			Path:          append(append([]string(nil), path...), m.key),
		}
		if hasChildren(value) {
			node.Value = ""
			node.Children = build(value, keepPrimitive, alloc, level+1, node.NodeID, node.Path)
		}
		node.Leaf = len(node.Children) == 0

		forest = append(forest, node)
	}
	return forest
}

// IsTopLevel reports whether n has no parent.
func (n *Node) IsTopLevel() bool {
	return n.ParentNodeID == RootNodeID
}

func (n *Node) clone() *Node {
	c := *n
	c.Value = cloneValue(n.Value)
	c.OriginalValue = cloneValue(n.OriginalValue)
	c.Path = append([]string(nil), n.Path...)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.clone()
		}
	}
	return &c
}

type nodeJSON struct {
	NodeID        int             `json:"nodeId"`
	ParentNodeID  int             `json:"parentNodeId"`
	Level         int             `json:"level"`
	ID            string          `json:"id"`
	Value         json.RawMessage `json:"value"`
	OriginalValue json.RawMessage `json:"originalValue"`
	Leaf          bool            `json:"leaf"`
	Expanded      *bool           `json:"expanded,omitempty"`
	Children      []*Node         `json:"children,omitempty"`
	Path          []string        `json:"path,omitempty"`
}

// MarshalJSON encodes the node the way a display layer consumes it: expanded
// and children only appear on containers.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		NodeID:       n.NodeID,
		ParentNodeID: n.ParentNodeID,
		Level:        n.Level,
		ID:           n.ID,
		Leaf:         n.Leaf,
		Path:         n.Path,
	}
	var err error
	if out.Value, err = marshalValue(n.Value); err != nil {
		return nil, err
	}
	if out.OriginalValue, err = marshalValue(n.OriginalValue); err != nil {
		return nil, err
	}
	if !n.Leaf {
		expanded := n.Expanded
		out.Expanded = &expanded
		out.Children = n.Children
	}
	return json.Marshal(out)
}

// marshalValue encodes a value of the tree value model as compact JSON,
// keeping MapSlice key order. Undefined encodes as null.
func marshalValue(v any) (json.RawMessage, error) {
	b, err := gyaml.MarshalWithOptions(yamlValue(v), gyaml.JSON())
	if err != nil {
		return nil, fmt.Errorf("paramtree: cannot encode %T: %w", v, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("paramtree: cannot encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}
