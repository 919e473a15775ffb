package paramtree

import "sync/atomic"

// RootNodeID is the parent id of every top-level node. Real ids start at 1.
const RootNodeID = 0

// IDAllocator hands out node ids. Ids only grow, so within one build a node
// always gets a smaller id than any of its descendants and than any node built
// after it.
type IDAllocator struct {
	last atomic.Int64
}

// DefaultAllocator is used by Build when BuildOptions.Allocator is nil.
var DefaultAllocator = &IDAllocator{}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next id.
func (a *IDAllocator) Next() int {
	return int(a.last.Add(1))
}

// Last returns the most recently allocated id, or RootNodeID if none.
func (a *IDAllocator) Last() int {
	return int(a.last.Load())
}

// Reset rewinds the allocator so the next id is 1 again. Forests built before
// the reset must not be mixed with forests built after it.
func (a *IDAllocator) Reset() {
	a.last.Store(RootNodeID)
}
