// Package ots implements the in-memory model of an OpenTimestamps proof:
// operations, attestation leaves, file hashes, and the prefix-shared proof
// tree, together with the algebra that keeps a tree in canonical form.
//
// A proof is a set of verification paths. Each path starts at a known file
// hash, applies a sequence of byte transformations, and ends in a leaf: an
// attestation anchored at a blockchain block, a pending commitment held by a
// calendar server, or an opaque blob preserved for forward compatibility.
// The tree shares common operation prefixes across paths.
package ots

import (
	"fmt"

	"github.com/javanhut/ots-go/internal/wire"
)

// Version is the only supported timestamp version.
const Version = 1

// OpKind identifies an operation. The values are the one-byte wire tags.
type OpKind byte

const (
	OpSHA1      OpKind = 0x02
	OpRIPEMD160 OpKind = 0x03
	OpSHA256    OpKind = 0x08
	OpKeccak256 OpKind = 0x67
	OpAppend    OpKind = 0xf0
	OpPrepend   OpKind = 0xf1
	OpReverse   OpKind = 0xf2
	OpHexlify   OpKind = 0xf3
)

// String returns the operation name used in identity keys and diagnostics.
func (k OpKind) String() string {
	switch k {
	case OpSHA1:
		return "sha1"
	case OpRIPEMD160:
		return "ripemd160"
	case OpSHA256:
		return "sha256"
	case OpKeccak256:
		return "keccak256"
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpReverse:
		return "reverse"
	case OpHexlify:
		return "hexlify"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Binary reports whether the operation carries an operand (append/prepend).
func (k OpKind) Binary() bool {
	return k == OpAppend || k == OpPrepend
}

// Known reports whether k is one of the eight defined operations.
func (k OpKind) Known() bool {
	switch k {
	case OpSHA1, OpRIPEMD160, OpSHA256, OpKeccak256,
		OpAppend, OpPrepend, OpReverse, OpHexlify:
		return true
	}
	return false
}

// Op is one step of a verification path. Operand is set only for append and
// prepend; for all other kinds it must be nil.
type Op struct {
	Kind    OpKind
	Operand []byte
}

// Append returns an append operation with the given operand.
func Append(operand []byte) Op {
	return Op{Kind: OpAppend, Operand: operand}
}

// Prepend returns a prepend operation with the given operand.
func Prepend(operand []byte) Op {
	return Op{Kind: OpPrepend, Operand: operand}
}

// Key returns the identity string of the operation: the tag name, or
// "append:<hex>"/"prepend:<hex>" for operand-carrying operations.
func (o Op) Key() string {
	if o.Kind.Binary() {
		return o.Kind.String() + ":" + wire.ToHex(o.Operand)
	}
	return o.Kind.String()
}

// String renders the operation for diagnostics.
func (o Op) String() string {
	return o.Key()
}

// Equal reports whether two operations are identical.
func (o Op) Equal(other Op) bool {
	return o.Key() == other.Key()
}

// HashAlgo identifies a file-hash algorithm. The values are the one-byte
// wire tags shared with the corresponding operations.
type HashAlgo byte

const (
	SHA1      HashAlgo = 0x02
	RIPEMD160 HashAlgo = 0x03
	SHA256    HashAlgo = 0x08
	Keccak256 HashAlgo = 0x67
)

// String returns the algorithm name.
func (a HashAlgo) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case RIPEMD160:
		return "ripemd160"
	case SHA256:
		return "sha256"
	case Keccak256:
		return "keccak256"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(a))
	}
}

// Size returns the digest length in bytes, or 0 for unknown algorithms.
func (a HashAlgo) Size() int {
	switch a {
	case SHA1, RIPEMD160:
		return 20
	case SHA256, Keccak256:
		return 32
	default:
		return 0
	}
}

// Known reports whether a is one of the four supported algorithms.
func (a HashAlgo) Known() bool {
	return a.Size() != 0
}

// FileHash records the algorithm and digest of the original file being
// timestamped. Value must have exactly Algo.Size() bytes.
type FileHash struct {
	Algo  HashAlgo
	Value []byte
}

// String renders the file hash for diagnostics.
func (f FileHash) String() string {
	return f.Algo.String() + ":" + wire.ToHex(f.Value)
}

// LeafKind identifies the kind of a terminal leaf.
type LeafKind uint8

const (
	LeafBitcoin LeafKind = iota + 1
	LeafLitecoin
	LeafEthereum
	LeafPending
	LeafUnknown
)

// Attestation headers: the 8-byte discriminators of the wire format.
var (
	HeaderBitcoin  = [8]byte{0x05, 0x88, 0x96, 0x0d, 0x73, 0xd7, 0x19, 0x01}
	HeaderLitecoin = [8]byte{0x06, 0x86, 0x9a, 0x0d, 0x73, 0xd7, 0x1b, 0x45}
	HeaderEthereum = [8]byte{0x30, 0xfe, 0x80, 0x87, 0xb5, 0xc7, 0xea, 0xd7}
	HeaderPending  = [8]byte{0x83, 0xdf, 0xe3, 0x0d, 0x2e, 0xf9, 0x0c, 0x8e}
)

// String returns the leaf kind name.
func (k LeafKind) String() string {
	switch k {
	case LeafBitcoin:
		return "bitcoin"
	case LeafLitecoin:
		return "litecoin"
	case LeafEthereum:
		return "ethereum"
	case LeafPending:
		return "pending"
	case LeafUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// Chain reports whether the leaf kind is a blockchain attestation.
func (k LeafKind) Chain() bool {
	return k == LeafBitcoin || k == LeafLitecoin || k == LeafEthereum
}

// Leaf is a terminal node of the proof tree.
//
// For blockchain kinds Height is the attested block height. For pending
// leaves URL holds the canonical calendar URL. For unknown leaves Header is
// the unrecognized 8-byte header and Payload the opaque body, both preserved
// verbatim for forward compatibility.
type Leaf struct {
	Kind    LeafKind
	Height  int64
	URL     string
	Header  [8]byte
	Payload []byte
}

// BitcoinLeaf returns a bitcoin attestation at the given block height.
func BitcoinLeaf(height int64) Leaf {
	return Leaf{Kind: LeafBitcoin, Height: height}
}

// LitecoinLeaf returns a litecoin attestation at the given block height.
func LitecoinLeaf(height int64) Leaf {
	return Leaf{Kind: LeafLitecoin, Height: height}
}

// EthereumLeaf returns an ethereum attestation at the given block height.
func EthereumLeaf(height int64) Leaf {
	return Leaf{Kind: LeafEthereum, Height: height}
}

// PendingLeaf returns a pending attestation at the given calendar URL. The
// URL is stored as given; validate with ParseCalendarURL first.
func PendingLeaf(url string) Leaf {
	return Leaf{Kind: LeafPending, URL: url}
}

// UnknownLeaf returns a forward-compatibility leaf with an unrecognized
// header and an opaque payload.
func UnknownLeaf(header [8]byte, payload []byte) Leaf {
	return Leaf{Kind: LeafUnknown, Header: header, Payload: payload}
}

// WireHeader returns the 8-byte attestation header for the leaf.
func (l Leaf) WireHeader() [8]byte {
	switch l.Kind {
	case LeafBitcoin:
		return HeaderBitcoin
	case LeafLitecoin:
		return HeaderLitecoin
	case LeafEthereum:
		return HeaderEthereum
	case LeafPending:
		return HeaderPending
	default:
		return l.Header
	}
}

// Key returns the identity string of the leaf: blockchain leaves use the
// decimal height, pending leaves the canonical URL, unknown leaves the
// header and payload hex.
func (l Leaf) Key() string {
	switch l.Kind {
	case LeafBitcoin, LeafLitecoin, LeafEthereum:
		return fmt.Sprintf("%s:%d", l.Kind, l.Height)
	case LeafPending:
		return "pending:" + l.URL
	default:
		return fmt.Sprintf("unknown:%x:%s", l.Header[:], wire.ToHex(l.Payload))
	}
}

// String renders the leaf for diagnostics.
func (l Leaf) String() string {
	return l.Key()
}

// Equal reports whether two leaves carry the same attestation.
func (l Leaf) Equal(other Leaf) bool {
	return l.Key() == other.Key()
}

// Tree is a node of the prefix-shared proof tree: a duplicate-free set of
// leaves plus a duplicate-free map from operations to subtrees. Inserting a
// duplicate edge merges the two subtrees.
type Tree struct {
	Leaves *LeafSet
	Edges  *EdgeMap
}

// NewTree returns an empty tree node.
func NewTree() *Tree {
	return &Tree{Leaves: NewLeafSet(), Edges: NewEdgeMap()}
}

// Empty reports whether the node has no leaves and no edges.
func (t *Tree) Empty() bool {
	return t.Leaves.Len() == 0 && t.Edges.Len() == 0
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	out := NewTree()
	for _, l := range t.Leaves.Slice() {
		out.Leaves.Add(l)
	}
	for _, e := range t.Edges.Slice() {
		out.Edges.Add(e.Op, e.Sub.Clone())
	}
	return out
}

// Timestamp is the top-level proof value: a version, the hash of the
// original file, and the attestation tree. Timestamps are constructed by
// the parser or by submission and treated as immutable afterwards; the
// transformations in this package return new values.
type Timestamp struct {
	Ver      int64
	FileHash FileHash
	Tree     *Tree
}

// NewTimestamp returns a version-1 timestamp over the given file hash with
// an empty tree.
func NewTimestamp(fh FileHash) *Timestamp {
	return &Timestamp{Ver: Version, FileHash: fh, Tree: NewTree()}
}

// Clone returns a deep copy of the timestamp.
func (ts *Timestamp) Clone() *Timestamp {
	value := make([]byte, len(ts.FileHash.Value))
	copy(value, ts.FileHash.Value)
	return &Timestamp{
		Ver:      ts.Ver,
		FileHash: FileHash{Algo: ts.FileHash.Algo, Value: value},
		Tree:     ts.Tree.Clone(),
	}
}
