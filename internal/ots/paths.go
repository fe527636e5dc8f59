package ots

// Path is an ordered operation sequence ending in a leaf. A tree is
// equivalent to its set of paths; the tree encoding compresses shared
// operation prefixes.
type Path struct {
	Ops  []Op
	Leaf Leaf
}

// Paths enumerates every (operations, leaf) pair of the tree. Leaves at a
// node precede the paths of its subtrees; edges are visited in insertion
// order. Barren subtrees (no reachable leaf) contribute nothing.
func (t *Tree) Paths() []Path {
	var out []Path
	t.appendPaths(nil, &out)
	return out
}

func (t *Tree) appendPaths(prefix []Op, out *[]Path) {
	for _, l := range t.Leaves.Slice() {
		ops := make([]Op, len(prefix))
		copy(ops, prefix)
		*out = append(*out, Path{Ops: ops, Leaf: l})
	}
	for _, e := range t.Edges.Slice() {
		e.Sub.appendPaths(append(prefix, e.Op), out)
	}
}

// PathsToTree folds a path list into a tree, walking each path's operation
// prefix and creating edges on demand, then inserting the leaf at the
// terminal node.
func PathsToTree(paths []Path) *Tree {
	root := NewTree()
	for _, p := range paths {
		node := root
		for _, op := range p.Ops {
			sub, ok := node.Edges.Get(op)
			if !ok {
				sub = NewTree()
				node.Edges.Add(op, sub)
			}
			node = sub
		}
		node.Leaves.Add(p.Leaf)
	}
	return root
}
