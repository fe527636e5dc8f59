package ots

// Predicates over timestamps and the shrink minimization.

// CanShrink reports whether ts has at least two paths and at least one of
// them terminates in a leaf on the given chain.
func CanShrink(ts *Timestamp, chain LeafKind) bool {
	paths := ts.Tree.Paths()
	if len(paths) < 2 {
		return false
	}
	for _, p := range paths {
		if p.Leaf.Kind == chain {
			return true
		}
	}
	return false
}

// CanUpgrade reports whether some path of ts ends in a pending leaf.
func CanUpgrade(ts *Timestamp) bool {
	for _, p := range ts.Tree.Paths() {
		if p.Leaf.Kind == LeafPending {
			return true
		}
	}
	return false
}

// CanVerify reports whether some path of ts ends in a non-pending leaf.
func CanVerify(ts *Timestamp) bool {
	for _, p := range ts.Tree.Paths() {
		if p.Leaf.Kind != LeafPending {
			return true
		}
	}
	return false
}

// Shrink reduces ts to the single path terminating on chain with the
// minimum block height, dropping every other path, and returns the
// normalized result. Ties on height keep the first path in enumeration
// order. When no path terminates on chain, ts is returned unchanged.
func Shrink(ts *Timestamp, chain LeafKind) *Timestamp {
	var best *Path
	for _, p := range ts.Tree.Paths() {
		if p.Leaf.Kind != chain {
			continue
		}
		if best == nil || p.Leaf.Height < best.Leaf.Height {
			p := p
			best = &p
		}
	}
	if best == nil {
		return ts
	}
	return Normalize(&Timestamp{
		Ver:      ts.Ver,
		FileHash: ts.FileHash,
		Tree:     PathsToTree([]Path{*best}),
	})
}
