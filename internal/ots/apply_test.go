package ots

import (
	"bytes"
	"testing"

	"github.com/javanhut/ots-go/internal/wire"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	out, err := wire.ParseHex(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return out
}

func TestApplyHashes(t *testing.T) {
	abc := []byte("abc")
	cases := []struct {
		name string
		op   Op
		in   []byte
		want string
	}{
		{"sha1", Op{Kind: OpSHA1}, abc, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"sha256", Op{Kind: OpSHA256}, abc, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"ripemd160", Op{Kind: OpRIPEMD160}, abc, "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		// Keccak-256 of the empty string distinguishes legacy Keccak from
		// SHA3-256 (which would be a7ffc6f8...).
		{"keccak256", Op{Kind: OpKeccak256}, nil, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
	}

	for _, c := range cases {
		got := c.op.Apply(c.in)
		if !bytes.Equal(got, mustHex(t, c.want)) {
			t.Errorf("%s(%q) = %x, want %s", c.name, c.in, got, c.want)
		}
	}
}

func TestApplyByteTransforms(t *testing.T) {
	msg := []byte{0x01, 0x02, 0x03}

	if got := (Op{Kind: OpReverse}).Apply(msg); !bytes.Equal(got, []byte{0x03, 0x02, 0x01}) {
		t.Errorf("reverse = %x", got)
	}
	if got := (Op{Kind: OpHexlify}).Apply(msg); !bytes.Equal(got, []byte("010203")) {
		t.Errorf("hexlify = %q", got)
	}
	if got := Append([]byte{0xaa}).Apply(msg); !bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0xaa}) {
		t.Errorf("append = %x", got)
	}
	if got := Prepend([]byte{0xaa}).Apply(msg); !bytes.Equal(got, []byte{0xaa, 0x01, 0x02, 0x03}) {
		t.Errorf("prepend = %x", got)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	msg := []byte{0x01, 0x02}
	Append([]byte{0x03}).Apply(msg)
	Prepend([]byte{0x00}).Apply(msg)
	(Op{Kind: OpReverse}).Apply(msg)

	if !bytes.Equal(msg, []byte{0x01, 0x02}) {
		t.Errorf("input mutated: %x", msg)
	}
}

func TestApplyOpsSequence(t *testing.T) {
	// append 62, prepend 61, hexlify over "b" -> "ab" -> "6162"
	ops := []Op{Append([]byte("b")), Prepend([]byte("a")), {Kind: OpHexlify}}
	got := ApplyOps(ops, nil)
	if !bytes.Equal(got, []byte("6162")) {
		t.Errorf("ApplyOps = %q, want 6162", got)
	}
}
