package ots

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// Operation execution: applying an operation sequence to the file hash
// yields the message a leaf commits to.

// Apply executes the operation on message and returns the new message. The
// input is never modified.
func (o Op) Apply(message []byte) []byte {
	switch o.Kind {
	case OpSHA1:
		sum := sha1.Sum(message)
		return sum[:]
	case OpRIPEMD160:
		h := ripemd160.New()
		h.Write(message)
		return h.Sum(nil)
	case OpSHA256:
		sum := sha256.Sum256(message)
		return sum[:]
	case OpKeccak256:
		// Keccak-256 with the original (pre-NIST) padding, not SHA3-256.
		h := sha3.NewLegacyKeccak256()
		h.Write(message)
		return h.Sum(nil)
	case OpReverse:
		out := make([]byte, len(message))
		for i, b := range message {
			out[len(message)-1-i] = b
		}
		return out
	case OpHexlify:
		out := make([]byte, hex.EncodedLen(len(message)))
		hex.Encode(out, message)
		return out
	case OpAppend:
		out := make([]byte, 0, len(message)+len(o.Operand))
		out = append(out, message...)
		return append(out, o.Operand...)
	case OpPrepend:
		out := make([]byte, 0, len(o.Operand)+len(message))
		out = append(out, o.Operand...)
		return append(out, message...)
	default:
		// Validation rejects unknown kinds before execution.
		return message
	}
}

// ApplyOps executes the sequence left to right on message.
func ApplyOps(ops []Op, message []byte) []byte {
	current := message
	for _, op := range ops {
		current = op.Apply(current)
	}
	return current
}

// reverseBytes returns a reversed copy of p.
func reverseBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[len(p)-1-i] = b
	}
	return out
}
