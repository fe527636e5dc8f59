package ots

// Normalization: rewriting operation sequences and trees into canonical
// representatives of their equivalence class.
//
// The operation algebra admits these equalities:
//
//	reverse . reverse         == identity
//	reverse . append(x)       == prepend(reverse(x)) . reverse
//	reverse . prepend(x)      == append(reverse(x)) . reverse
//	append(x) . prepend(y)    == prepend(y) . append(x)
//	append(x) . append(y)     == append(x || y)
//	prepend(x) . prepend(y)   == prepend(y || x)
//
// Hashes and hexlify are opaque: they terminate a segment. Within a
// segment the normal form is: single-byte prepends, then single-byte
// appends, then one reverse iff the segment's reverse count is odd.

// NormalizeOps rewrites ops into its canonical equivalent. The result
// applies to every message exactly as the input does, and normalizing
// twice is the same as normalizing once.
func NormalizeOps(ops []Op) []Op {
	var out []Op

	// Segment state: the composed transformation so far is
	// m -> reverse^parity(prefix || m || suffix).
	var prefix, suffix []byte
	parity := false

	flush := func() {
		for i := len(prefix) - 1; i >= 0; i-- {
			out = append(out, Prepend([]byte{prefix[i]}))
		}
		for i := 0; i < len(suffix); i++ {
			out = append(out, Append([]byte{suffix[i]}))
		}
		if parity {
			out = append(out, Op{Kind: OpReverse})
		}
		prefix, suffix, parity = nil, nil, false
	}

	for _, op := range ops {
		switch op.Kind {
		case OpAppend:
			if !parity {
				suffix = append(suffix, op.Operand...)
			} else {
				// reverse(S) || x == reverse(reverse(x) || S)
				prefix = append(reverseBytes(op.Operand), prefix...)
			}
		case OpPrepend:
			if !parity {
				prefix = append(append([]byte{}, op.Operand...), prefix...)
			} else {
				// x || reverse(S) == reverse(S || reverse(x))
				suffix = append(suffix, reverseBytes(op.Operand)...)
			}
		case OpReverse:
			parity = !parity
		default:
			flush()
			out = append(out, op)
		}
	}
	flush()
	return out
}

// coalescible reports whether node is a pure chain link for kind: no
// leaves and exactly one outgoing edge of that kind.
func coalescible(node *Tree, kind OpKind) (Op, *Tree, bool) {
	if node.Leaves.Len() != 0 || node.Edges.Len() != 1 {
		return Op{}, nil, false
	}
	e := node.Edges.Slice()[0]
	if e.Op.Kind != kind {
		return Op{}, nil, false
	}
	return e.Op, e.Sub, true
}

// Coalesce returns a copy of t in which chains of single same-kind
// append (resp. prepend) edges through leafless single-edge nodes are
// collapsed into one multi-byte edge. Applied before serializing.
func Coalesce(t *Tree) *Tree {
	out := NewTree()
	for _, l := range t.Leaves.Slice() {
		out.Leaves.Add(l)
	}
	for _, e := range t.Edges.Slice() {
		op, sub := e.Op, e.Sub
		if op.Kind.Binary() {
			for {
				subOp, subSub, ok := coalescible(sub, op.Kind)
				if !ok {
					break
				}
				if op.Kind == OpAppend {
					op = Append(concat(op.Operand, subOp.Operand))
				} else {
					op = Prepend(concat(subOp.Operand, op.Operand))
				}
				sub = subSub
			}
		}
		out.Edges.Add(op, Coalesce(sub))
	}
	return out
}

// Decoalesce returns a copy of t in which a single-byte append (resp.
// prepend) edge whose leafless child fans out into two or more edges all
// of the same kind is pushed into each child operand. Applied after
// parsing; this is the only reshaping the codec performs, so multi-byte
// wire operands otherwise survive verbatim until normalization.
func Decoalesce(t *Tree) *Tree {
	out := NewTree()
	for _, l := range t.Leaves.Slice() {
		out.Leaves.Add(l)
	}
	for _, e := range t.Edges.Slice() {
		op, sub := e.Op, Decoalesce(e.Sub)
		if op.Kind.Binary() && len(op.Operand) == 1 &&
			sub.Leaves.Len() == 0 && sub.Edges.Len() >= 2 && allEdgesOfKind(sub, op.Kind) {
			for _, child := range sub.Edges.Slice() {
				var pushed Op
				if op.Kind == OpAppend {
					pushed = Append(concat(op.Operand, child.Op.Operand))
				} else {
					pushed = Prepend(concat(child.Op.Operand, op.Operand))
				}
				out.Edges.Add(pushed, child.Sub)
			}
			continue
		}
		out.Edges.Add(op, sub)
	}
	return out
}

func allEdgesOfKind(t *Tree, kind OpKind) bool {
	for _, e := range t.Edges.Slice() {
		if e.Op.Kind != kind {
			return false
		}
	}
	return true
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// normalizeTree rewrites t bottom-up: subtrees normalize first, barren
// branches drop, and an edge into a leafless single-edge node fuses with
// that node's operation where the algebra allows. Returns nil when no
// leaf is reachable.
func normalizeTree(t *Tree) *Tree {
	out := NewTree()
	for _, l := range t.Leaves.Slice() {
		out.Leaves.Add(l)
	}

	for _, e := range t.Edges.Slice() {
		op := e.Op
		sub := normalizeTree(e.Sub)
		if sub == nil {
			continue
		}

		lifted := false
		for {
			if sub.Leaves.Len() != 0 || sub.Edges.Len() != 1 {
				break
			}
			inner := sub.Edges.Slice()[0]
			subOp, subSub := inner.Op, inner.Sub

			switch {
			case op.Kind == OpReverse && subOp.Kind == OpReverse:
				// reverse . reverse: lift the grandchild into this node.
				out.Merge(subSub)
				lifted = true
			case op.Kind == OpAppend && subOp.Kind == OpAppend:
				op = Append(concat(op.Operand, subOp.Operand))
				sub = subSub
				continue
			case op.Kind == OpPrepend && subOp.Kind == OpPrepend:
				op = Prepend(concat(subOp.Operand, op.Operand))
				sub = subSub
				continue
			case op.Kind == OpReverse && subOp.Kind == OpAppend:
				op = Prepend(reverseBytes(subOp.Operand))
				wrapped := NewTree()
				wrapped.Edges.Add(Op{Kind: OpReverse}, subSub)
				sub = wrapped
				continue
			case op.Kind == OpReverse && subOp.Kind == OpPrepend:
				op = Append(reverseBytes(subOp.Operand))
				wrapped := NewTree()
				wrapped.Edges.Add(Op{Kind: OpReverse}, subSub)
				sub = wrapped
				continue
			case op.Kind == OpPrepend && subOp.Kind == OpAppend:
				// Float the prepend below the append.
				wrapped := NewTree()
				wrapped.Edges.Add(Prepend(op.Operand), subSub)
				op = subOp
				sub = wrapped
				continue
			}
			break
		}
		if !lifted {
			out.Edges.Add(op, sub)
		}
	}

	if out.Empty() {
		return nil
	}
	return out
}

// Normalize returns the canonical form of ts. The tree of the result is
// empty when no leaf was reachable; the version and file hash are always
// preserved.
func Normalize(ts *Timestamp) *Timestamp {
	tree := normalizeTree(ts.Tree)
	if tree == nil {
		tree = NewTree()
	}
	value := make([]byte, len(ts.FileHash.Value))
	copy(value, ts.FileHash.Value)
	return &Timestamp{
		Ver:      ts.Ver,
		FileHash: FileHash{Algo: ts.FileHash.Algo, Value: value},
		Tree:     tree,
	}
}
