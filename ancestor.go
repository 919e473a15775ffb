package paramtree

// FindAncestor returns the id of node's top-level ancestor, looked up through
// table. Ids grow in preorder, so the top-level ancestor is the smallest id on
// the parent chain. It returns RootNodeID when node is itself top-level or is
// not in table.
func FindAncestor(node *Node, table map[int]*Node) int {
	ancestor := RootNodeID
	seen := map[int]bool{node.NodeID: true}

	parentID := parentOf(node.NodeID, table)
	for parentID != RootNodeID && !seen[parentID] {
		seen[parentID] = true
		if ancestor == RootNodeID || parentID < ancestor {
			ancestor = parentID
		}
		parentID = parentOf(parentID, table)
	}
	return ancestor
}

func parentOf(id int, table map[int]*Node) int {
	if n, ok := table[id]; ok {
		return n.ParentNodeID
	}
	return RootNodeID
}
