// Package codec reads and writes the OpenTimestamps binary proof format.
//
// A serialized timestamp is:
//
//	magic || vlq(version) || fileHash || tree
//
// where the tree is a sequence of items (leaves and edges), each of the
// non-final items prefixed by 0xff. Items serialize in canonical order:
// leaves first, then edges, each group sorted.
//
// The codec reshapes trees only at the wire boundary: append/prepend
// chains coalesce into multi-byte operands on write, and a single-byte
// operand shared by a same-kind fan-out splits back on read. Everything
// else survives verbatim; canonicalization is the ots package's job.
package codec

import (
	"fmt"

	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

// Magic is the 31-byte literal every serialized timestamp begins with:
// "\x00OpenTimestamps\x00\x00Proof\x00" plus a fixed eight-byte suffix.
var Magic = []byte{
	0x00, 0x4f, 0x70, 0x65, 0x6e, 0x54, 0x69, 0x6d, 0x65, 0x73,
	0x74, 0x61, 0x6d, 0x70, 0x73, 0x00, 0x00, 0x50, 0x72, 0x6f,
	0x6f, 0x66, 0x00, 0xbf, 0x89, 0xe2, 0xe8, 0x84, 0xe8, 0x92, 0x94,
}

// Item tags.
const (
	tagAttestation = 0x00
	tagNonFinal    = 0xff
)

// FileExtension is the conventional extension of serialized proofs.
const FileExtension = ".ots"

// IsTimestamp reports whether data begins with the proof magic.
func IsTimestamp(data []byte) bool {
	if len(data) < len(Magic) {
		return false
	}
	for i, b := range Magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// WriteTimestamp serializes ts. The tree is coalesced for the wire; an
// empty tree yields a frame with no tree bytes, which is legal only at
// the top level.
func WriteTimestamp(ts *ots.Timestamp) ([]byte, error) {
	var w wire.Writer
	w.WriteBytes(Magic)
	if err := w.WriteUint(ts.Ver); err != nil {
		return nil, err
	}
	if err := ots.ValidateFileHash(ts.FileHash); err != nil {
		return nil, err
	}
	w.WriteByte(byte(ts.FileHash.Algo))
	w.WriteBytes(ts.FileHash.Value)
	if err := writeTree(&w, ots.Coalesce(ts.Tree)); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// WriteFragment serializes a bare tree in the calendar fragment format:
// the same item grammar with no magic, version, or file hash.
func WriteFragment(t *ots.Tree) ([]byte, error) {
	var w wire.Writer
	if err := writeTree(&w, ots.Coalesce(t)); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeTree(w *wire.Writer, t *ots.Tree) error {
	leaves := t.Leaves.SortedLeaves()
	edges := t.Edges.SortedEdges()
	total := len(leaves) + len(edges)

	written := 0
	for _, l := range leaves {
		written++
		if written < total {
			w.WriteByte(tagNonFinal)
		}
		if err := writeLeaf(w, l); err != nil {
			return err
		}
	}
	for _, e := range edges {
		written++
		if written < total {
			w.WriteByte(tagNonFinal)
		}
		if err := writeEdge(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeLeaf(w *wire.Writer, l ots.Leaf) error {
	w.WriteByte(tagAttestation)
	header := l.WireHeader()
	w.WriteBytes(header[:])

	var payload wire.Writer
	switch l.Kind {
	case ots.LeafBitcoin, ots.LeafLitecoin, ots.LeafEthereum:
		if err := payload.WriteUint(l.Height); err != nil {
			return err
		}
	case ots.LeafPending:
		if err := payload.WriteVarBytes([]byte(l.URL)); err != nil {
			return err
		}
	case ots.LeafUnknown:
		payload.WriteBytes(l.Payload)
	default:
		return fmt.Errorf("expected one of [bitcoin litecoin ethereum pending unknown], got leaf kind %d", uint8(l.Kind))
	}
	return w.WriteVarBytes(payload.Bytes())
}

func writeEdge(w *wire.Writer, e ots.Edge) error {
	if err := ots.ValidateOp(e.Op); err != nil {
		return err
	}
	w.WriteByte(byte(e.Op.Kind))
	if e.Op.Kind.Binary() {
		if err := w.WriteVarBytes(e.Op.Operand); err != nil {
			return err
		}
	}
	return writeTree(w, e.Sub)
}

// ReadTimestamp parses a serialized proof. Trailing bytes after the tree
// are rejected.
func ReadTimestamp(data []byte) (*ots.Timestamp, error) {
	r := wire.NewReader(data)
	if err := r.ExpectLiteral(Magic); err != nil {
		return nil, err
	}

	version, err := r.ReadUint()
	if err != nil {
		return nil, err
	}
	if version != ots.Version {
		return nil, fmt.Errorf("unrecognized version, got %d", version)
	}

	fh, err := readFileHash(r)
	if err != nil {
		return nil, err
	}

	tree := ots.NewTree()
	if r.Remaining() > 0 {
		tree, err = readTree(r)
		if err != nil {
			return nil, err
		}
	}
	if r.Remaining() > 0 {
		return nil, fmt.Errorf("garbage at EOF: %d trailing bytes at offset %d", r.Remaining(), r.Pos())
	}

	return &ots.Timestamp{Ver: int64(version), FileHash: fh, Tree: ots.Decoalesce(tree)}, nil
}

// ReadFragment parses a calendar response body: a bare tree with no
// magic, version, or file hash. Trailing bytes are rejected.
func ReadFragment(data []byte) (*ots.Tree, error) {
	r := wire.NewReader(data)
	tree, err := readTree(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() > 0 {
		return nil, fmt.Errorf("garbage at end of calendar response: %d trailing bytes at offset %d",
			r.Remaining(), r.Pos())
	}
	return ots.Decoalesce(tree), nil
}

func readFileHash(r *wire.Reader) (ots.FileHash, error) {
	pos := r.Pos()
	tag, err := r.ReadByte()
	if err != nil {
		return ots.FileHash{}, err
	}
	algo := ots.HashAlgo(tag)
	if !algo.Known() {
		return ots.FileHash{}, fmt.Errorf("unknown hashing algorithm 0x%02x at offset %d", tag, pos)
	}
	value, err := r.ReadBytes(algo.Size())
	if err != nil {
		return ots.FileHash{}, err
	}
	return ots.FileHash{Algo: algo, Value: value}, nil
}

// readTree parses one tree node: zero or more 0xff-prefixed items
// followed by exactly one unprefixed final item.
func readTree(r *wire.Reader) (*ots.Tree, error) {
	t := ots.NewTree()
	for {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if tag == tagNonFinal {
			tag, err = r.ReadByte()
			if err != nil {
				return nil, err
			}
			if err := readItem(r, tag, t); err != nil {
				return nil, err
			}
			continue
		}
		if err := readItem(r, tag, t); err != nil {
			return nil, err
		}
		return t, nil
	}
}

func readItem(r *wire.Reader, tag byte, t *ots.Tree) error {
	if tag == tagAttestation {
		leaf, err := readLeaf(r)
		if err != nil {
			return err
		}
		t.Leaves.Add(leaf)
		return nil
	}

	kind := ots.OpKind(tag)
	if !kind.Known() {
		return fmt.Errorf("unknown operation 0x%02x at offset %d", tag, r.Pos()-1)
	}
	op := ots.Op{Kind: kind}
	if kind.Binary() {
		operand, err := r.ReadVarBytes()
		if err != nil {
			return err
		}
		op.Operand = operand
		if err := ots.ValidateOp(op); err != nil {
			return fmt.Errorf("%w at offset %d", err, r.Pos())
		}
	}
	sub, err := readTree(r)
	if err != nil {
		return err
	}
	t.Edges.Add(op, sub)
	return nil
}

func readLeaf(r *wire.Reader) (ots.Leaf, error) {
	headerBytes, err := r.ReadBytes(8)
	if err != nil {
		return ots.Leaf{}, err
	}
	var header [8]byte
	copy(header[:], headerBytes)

	payloadStart := r.Pos()
	payload, err := r.ReadVarBytes()
	if err != nil {
		return ots.Leaf{}, err
	}

	switch header {
	case ots.HeaderBitcoin, ots.HeaderLitecoin, ots.HeaderEthereum:
		sub := wire.NewReader(payload)
		height, err := sub.ReadUint()
		if err != nil {
			return ots.Leaf{}, err
		}
		if sub.Remaining() > 0 {
			return ots.Leaf{}, fmt.Errorf("garbage at end of attestation payload: %d trailing bytes at offset %d",
				sub.Remaining(), payloadStart)
		}
		if height > wire.MaxSafeUint {
			return ots.Leaf{}, fmt.Errorf("%w for attestation height, got %d", wire.ErrUnsafeValue, height)
		}
		switch header {
		case ots.HeaderBitcoin:
			return ots.BitcoinLeaf(int64(height)), nil
		case ots.HeaderLitecoin:
			return ots.LitecoinLeaf(int64(height)), nil
		default:
			return ots.EthereumLeaf(int64(height)), nil
		}
	case ots.HeaderPending:
		sub := wire.NewReader(payload)
		urlBytes, err := sub.ReadVarBytes()
		if err != nil {
			return ots.Leaf{}, err
		}
		if sub.Remaining() > 0 {
			return ots.Leaf{}, fmt.Errorf("garbage at end of pending attestation payload: %d trailing bytes at offset %d",
				sub.Remaining(), payloadStart)
		}
		canonical, err := ots.ParseCalendarURL(string(urlBytes))
		if err != nil {
			return ots.Leaf{}, err
		}
		return ots.PendingLeaf(canonical), nil
	default:
		// Forward compatibility: preserve the header and payload verbatim.
		return ots.UnknownLeaf(header, payload), nil
	}
}
