package paramtree

import (
	"fmt"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
)

// Edit returns a copy of the node with id nodeID in forest carrying value as
// its new Value, ready to be passed to Reconcile. It reports false when no
// such node exists.
func Edit(forest []*Node, nodeID int, value any) (*Node, bool) {
	for _, n := range Flatten(forest) {
		if n.NodeID == nodeID {
			n.Value = value
			return n, true
		}
	}
	return nil, false
}

// ParseAssignment splits "<nodeId>=<value>" and decodes the value as a YAML
// scalar, so "5" is a number, "true" a bool and "info" a string.
func ParseAssignment(s string) (int, any, error) {
	idStr, raw, ok := strings.Cut(s, "=")
	if !ok {
		return 0, nil, fmt.Errorf("paramtree: %w: %q", ErrInvalidAssignment, s)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil || id <= RootNodeID {
		return 0, nil, fmt.Errorf("paramtree: %w: bad node id %q", ErrInvalidAssignment, idStr)
	}
	if raw == "" {
		return id, "", nil
	}
	var value any
	if err := gyaml.Unmarshal([]byte(raw), &value); err != nil {
		return id, raw, nil
	}
	return id, value, nil
}
