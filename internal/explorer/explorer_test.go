package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

const (
	rootHex  = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	hashHex  = "00000000000000000000000000000000000000000000000000000000000000aa"
	blockTop = 123
)

// reversedRoot returns the path message whose reversal equals the
// block's Merkle root.
func reversedRoot(t *testing.T) []byte {
	t.Helper()
	root, err := wire.ParseHex(rootHex)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(root))
	for i, b := range root {
		out[len(root)-1-i] = b
	}
	return out
}

func esploraServer(t *testing.T, merkleRoot string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == fmt.Sprintf("/block-height/%d", blockTop):
			fmt.Fprint(w, hashHex)
		case r.URL.Path == "/block/"+hashHex:
			fmt.Fprintf(w, `{"merkle_root":%q,"timestamp":%d}`, merkleRoot, blockTop)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestEsploraConfirmsMatchingRoot(t *testing.T) {
	server := esploraServer(t, rootHex)
	defer server.Close()

	v := NewEsplora(server.URL)
	unix, ok, err := v.Verify(context.Background(), reversedRoot(t), ots.BitcoinLeaf(blockTop))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("Verify did not apply")
	}
	if unix != blockTop {
		t.Errorf("unix = %d, want %d", unix, blockTop)
	}
}

func TestEsploraMerkleRootMismatch(t *testing.T) {
	server := esploraServer(t, strings.Repeat("ff", 32))
	defer server.Close()

	v := NewEsplora(server.URL)
	_, _, err := v.Verify(context.Background(), reversedRoot(t), ots.BitcoinLeaf(blockTop))
	if err == nil || !strings.Contains(err.Error(), "merkle root mismatch") {
		t.Errorf("mismatch = %v, want merkle root mismatch", err)
	}
	if err != nil && !strings.Contains(err.Error(), rootHex) {
		t.Errorf("mismatch error should report the expected root: %v", err)
	}
}

func TestEsploraMalformedBlockHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not-a-hash")
	}))
	defer server.Close()

	v := NewEsplora(server.URL)
	_, _, err := v.Verify(context.Background(), reversedRoot(t), ots.BitcoinLeaf(blockTop))
	if err == nil || !strings.Contains(err.Error(), "malformed block hash") {
		t.Errorf("bad hash = %v, want malformed block hash", err)
	}
}

func TestEsploraIgnoresOtherChains(t *testing.T) {
	v := NewEsplora("https://unused.invalid")
	_, ok, err := v.Verify(context.Background(), []byte{0x01}, ots.LitecoinLeaf(1))
	if err != nil || ok {
		t.Errorf("litecoin leaf: ok=%v err=%v, want not applicable", ok, err)
	}
}

func TestBlockchainInfoConfirmsMainChainBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := fmt.Sprintf("/block-height/%d", blockTop)
		if r.URL.Path != wantPath {
			http.NotFound(w, r)
			return
		}
		// An orphan precedes the main-chain block.
		fmt.Fprintf(w, `{"blocks":[{"mrkl_root":%q,"time":1,"main_chain":false},{"mrkl_root":%q,"time":%d,"main_chain":true}]}`,
			strings.Repeat("ee", 32), rootHex, blockTop)
	}))
	defer server.Close()

	v := NewBlockchainInfo(server.URL)
	unix, ok, err := v.Verify(context.Background(), reversedRoot(t), ots.BitcoinLeaf(blockTop))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok || unix != blockTop {
		t.Errorf("ok=%v unix=%d, want true/%d", ok, unix, blockTop)
	}
}

func TestBlockchainInfoMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"blocks": "nope"}`)
	}))
	defer server.Close()

	v := NewBlockchainInfo(server.URL)
	_, _, err := v.Verify(context.Background(), reversedRoot(t), ots.BitcoinLeaf(blockTop))
	if err == nil || !strings.Contains(err.Error(), "malformed response") {
		t.Errorf("bad json = %v, want malformed response", err)
	}
}
