package paramtree

import "errors"

var (
	// ErrNotMapping is returned by Parse when the top level of a document is
	// not a mapping.
	ErrNotMapping = errors.New("top-level YAML is not a mapping")

	// ErrInvalidAssignment is returned by ParseAssignment for input that is
	// not of the form <nodeId>=<value>.
	ErrInvalidAssignment = errors.New("invalid assignment")
)
