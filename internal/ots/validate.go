package ots

import (
	"fmt"

	"github.com/javanhut/ots-go/internal/wire"
)

// Structural validation of externally supplied values. Timestamps built by
// the parser are valid by construction; hand-constructed values go through
// Validate before any equality-sensitive use.

// ValidateOp checks that op is one of the eight defined operations with a
// well-formed operand.
func ValidateOp(op Op) error {
	if !op.Kind.Known() {
		return fmt.Errorf("unknown operation 0x%02x", byte(op.Kind))
	}
	if op.Kind.Binary() {
		if len(op.Operand) == 0 {
			return fmt.Errorf("expected non-empty operand for %s", op.Kind)
		}
		return nil
	}
	if op.Operand != nil {
		return fmt.Errorf("unexpected operand for %s", op.Kind)
	}
	return nil
}

// ValidateLeaf checks that l is a well-formed attestation leaf.
func ValidateLeaf(l Leaf) error {
	switch l.Kind {
	case LeafBitcoin, LeafLitecoin, LeafEthereum:
		if l.Height < 0 || l.Height > wire.MaxSafeUint {
			return fmt.Errorf("%w for %s height, got %d", wire.ErrUnsafeValue, l.Kind, l.Height)
		}
		return nil
	case LeafPending:
		if _, err := ParseCalendarURL(l.URL); err != nil {
			return err
		}
		return nil
	case LeafUnknown:
		for _, known := range [][8]byte{HeaderBitcoin, HeaderLitecoin, HeaderEthereum, HeaderPending} {
			if l.Header == known {
				return fmt.Errorf("unknown leaf uses reserved header %x", l.Header[:])
			}
		}
		return nil
	default:
		return fmt.Errorf("expected one of [bitcoin litecoin ethereum pending unknown], got leaf kind %d", uint8(l.Kind))
	}
}

// ValidateFileHash checks the algorithm and that the value length matches
// it.
func ValidateFileHash(fh FileHash) error {
	if !fh.Algo.Known() {
		return fmt.Errorf("unknown hashing algorithm 0x%02x", byte(fh.Algo))
	}
	if len(fh.Value) != fh.Algo.Size() {
		return fmt.Errorf("expected %d byte hash for %s, got %d bytes",
			fh.Algo.Size(), fh.Algo, len(fh.Value))
	}
	return nil
}

// ValidateTree walks the tree and checks every operation and leaf.
func ValidateTree(t *Tree) error {
	if t == nil {
		return fmt.Errorf("expected non-null tree")
	}
	for _, l := range t.Leaves.Slice() {
		if err := ValidateLeaf(l); err != nil {
			return err
		}
	}
	for _, e := range t.Edges.Slice() {
		if err := ValidateOp(e.Op); err != nil {
			return err
		}
		if err := ValidateTree(e.Sub); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the whole timestamp: version, file hash, and tree. It
// returns the validated value so callers can chain.
func (ts *Timestamp) Validate() (*Timestamp, error) {
	if ts == nil {
		return nil, fmt.Errorf("expected non-null timestamp")
	}
	if ts.Ver != Version {
		return nil, fmt.Errorf("unrecognized version, got %d", ts.Ver)
	}
	if err := ValidateFileHash(ts.FileHash); err != nil {
		return nil, err
	}
	if err := ValidateTree(ts.Tree); err != nil {
		return nil, err
	}
	return ts, nil
}

// IsValid is the total predicate form of Validate.
func (ts *Timestamp) IsValid() bool {
	_, err := ts.Validate()
	return err == nil
}

// MustValidate is the asserting form of Validate; it panics on invalid
// input. Intended for construction sites that guarantee validity.
func (ts *Timestamp) MustValidate() *Timestamp {
	out, err := ts.Validate()
	if err != nil {
		panic(err)
	}
	return out
}
