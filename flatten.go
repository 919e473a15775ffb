package paramtree

// Flatten returns every node of forest in preorder. It works on a deep copy:
// the returned nodes are new, and every container among them is marked
// Expanded. The caller's forest is left as it was.
func Flatten(forest []*Node) []*Node {
	var flat []*Node
	for _, n := range forest {
		flat = appendFlat(flat, n.clone())
	}
	return flat
}

func appendFlat(flat []*Node, n *Node) []*Node {
	if len(n.Children) > 0 {
		n.Expanded = true
		flat = append(flat, n)
		for _, ch := range n.Children {
			flat = appendFlat(flat, ch)
		}
		return flat
	}
	return append(flat, n)
}

// Index maps node ids to nodes.
func Index(nodes []*Node) map[int]*Node {
	table := make(map[int]*Node, len(nodes))
	for _, n := range nodes {
		table[n.NodeID] = n
	}
	return table
}

// Leaves returns the leaf nodes of forest in preorder, without copying them.
func Leaves(forest []*Node) []*Node {
	var out []*Node
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			if n.Leaf {
				out = append(out, n)
				continue
			}
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}
