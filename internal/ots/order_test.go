package ots

import (
	"testing"
)

func TestCompareOpsByTagThenOperand(t *testing.T) {
	cases := []struct {
		a, b Op
		want int
	}{
		{Op{Kind: OpSHA1}, Op{Kind: OpRIPEMD160}, -1},        // 0x02 < 0x03
		{Op{Kind: OpSHA256}, Op{Kind: OpKeccak256}, -1},      // 0x08 < 0x67
		{Op{Kind: OpKeccak256}, Op{Kind: OpAppend}, -1},      // 0x67 < 0xf0
		{Append([]byte{0x01}), Prepend([]byte{0x01}), -1},    // 0xf0 < 0xf1
		{Op{Kind: OpReverse}, Op{Kind: OpHexlify}, -1},       // 0xf2 < 0xf3
		{Append([]byte{0x01}), Append([]byte{0x02}), -1},     // operand order
		{Append([]byte{0x01}), Append([]byte{0x01, 0x00}), -1}, // prefix before extension
		{Append([]byte{0x01}), Append([]byte{0x01}), 0},
		{Op{Kind: OpSHA256}, Op{Kind: OpSHA256}, 0},
	}
	for _, c := range cases {
		if got := CompareOps(c.a, c.b); got != c.want {
			t.Errorf("CompareOps(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if c.want != 0 {
			if got := CompareOps(c.b, c.a); got != -c.want {
				t.Errorf("CompareOps(%v, %v) = %d, want %d", c.b, c.a, got, -c.want)
			}
		}
	}
}

func TestCompareLeavesByHeaderThenPayload(t *testing.T) {
	// Headers order: bitcoin 05.. < litecoin 06.. < ethereum 30.. <
	// pending 83.. < this unknown header.
	unknown := UnknownLeaf([8]byte{0xaa, 0, 0, 0, 0, 0, 0, 0}, []byte{0x01})

	ordered := []Leaf{
		BitcoinLeaf(99),
		LitecoinLeaf(1),
		EthereumLeaf(1),
		PendingLeaf("https://alice.btc.calendar.opentimestamps.org"),
		unknown,
	}
	for i := 0; i < len(ordered)-1; i++ {
		if CompareLeaves(ordered[i], ordered[i+1]) >= 0 {
			t.Errorf("%v should sort before %v", ordered[i], ordered[i+1])
		}
	}

	if CompareLeaves(BitcoinLeaf(1), BitcoinLeaf(2)) >= 0 {
		t.Error("same chain: lower height sorts first")
	}
	if CompareLeaves(PendingLeaf("https://a.example"), PendingLeaf("https://b.example")) >= 0 {
		t.Error("pending leaves order by URL bytes")
	}
	if CompareLeaves(unknown, UnknownLeaf(unknown.Header, []byte{0x02})) >= 0 {
		t.Error("unknown leaves with the same header order by payload")
	}
}

func TestSortedEnumerationDoesNotFollowInsertion(t *testing.T) {
	s := NewLeafSet()
	s.Add(LitecoinLeaf(1))
	s.Add(BitcoinLeaf(1))

	insertion := s.Slice()
	if insertion[0].Kind != LeafLitecoin {
		t.Error("Slice should preserve insertion order")
	}
	sorted := s.SortedLeaves()
	if sorted[0].Kind != LeafBitcoin {
		t.Error("SortedLeaves should order by header")
	}

	m := NewEdgeMap()
	m.Add(Prepend([]byte{0x01}), NewTree())
	m.Add(Op{Kind: OpSHA256}, NewTree())

	if m.Slice()[0].Op.Kind != OpPrepend {
		t.Error("Slice should preserve insertion order")
	}
	if m.SortedEdges()[0].Op.Kind != OpSHA256 {
		t.Error("SortedEdges should order by tag")
	}
}
