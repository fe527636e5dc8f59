// Package explorer implements attestation verifiers backed by public
// Bitcoin block explorer APIs.
//
// A verifier fetches the block a leaf attests to, reads its Merkle root,
// and checks that the reversed path message equals it (Bitcoin displays
// hashes little-endian). Verifiers only handle bitcoin leaves; other leaf
// kinds report "does not apply" so the caller can try other verifiers.
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

const (
	// DefaultEsploraURL is the Blockstream Esplora API base.
	DefaultEsploraURL = "https://blockstream.info/api"

	// DefaultBlockchainInfoURL is the Blockchain.info API base.
	DefaultBlockchainInfoURL = "https://blockchain.info"

	defaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

// checkMerkleRoot compares the reversed path message against the block's
// Merkle root.
func checkMerkleRoot(message, root []byte) error {
	expected := make([]byte, len(message))
	for i, b := range message {
		expected[len(message)-1-i] = b
	}
	if !bytes.Equal(expected, root) {
		return fmt.Errorf("merkle root mismatch (expected %s but found %s)",
			wire.ToHex(expected), wire.ToHex(root))
	}
	return nil
}

// Esplora verifies bitcoin leaves against an Esplora-compatible API
// (Blockstream).
type Esplora struct {
	baseURL    string
	httpClient *http.Client
}

// NewEsplora creates an Esplora verifier. An empty baseURL selects the
// Blockstream instance.
func NewEsplora(baseURL string) *Esplora {
	if baseURL == "" {
		baseURL = DefaultEsploraURL
	}
	return &Esplora{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Name implements proof.Verifier.
func (e *Esplora) Name() string {
	return "blockstream"
}

// Verify implements proof.Verifier for bitcoin leaves.
func (e *Esplora) Verify(ctx context.Context, message []byte, leaf ots.Leaf) (int64, bool, error) {
	if leaf.Kind != ots.LeafBitcoin {
		return 0, false, nil
	}

	// Resolve the height to a block hash.
	hashBody, err := fetch(ctx, e.httpClient, fmt.Sprintf("%s/block-height/%d", e.baseURL, leaf.Height))
	if err != nil {
		return 0, false, err
	}
	blockHash := strings.TrimSpace(string(hashBody))
	if len(blockHash) != 64 {
		return 0, false, fmt.Errorf("malformed block hash %q", blockHash)
	}
	if _, err := wire.ParseHex(blockHash); err != nil {
		return 0, false, fmt.Errorf("malformed block hash %q: %w", blockHash, err)
	}

	// Fetch the block and check the Merkle root.
	blockBody, err := fetch(ctx, e.httpClient, e.baseURL+"/block/"+blockHash)
	if err != nil {
		return 0, false, err
	}
	var block struct {
		MerkleRoot string `json:"merkle_root"`
		Timestamp  int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(blockBody, &block); err != nil {
		return 0, false, fmt.Errorf("malformed response for block %s: %w", blockHash, err)
	}
	root, err := wire.ParseHex(block.MerkleRoot)
	if err != nil {
		return 0, false, fmt.Errorf("malformed response for block %s: %w", blockHash, err)
	}
	if err := checkMerkleRoot(message, root); err != nil {
		return 0, false, err
	}
	return block.Timestamp, true, nil
}

// BlockchainInfo verifies bitcoin leaves against the Blockchain.info
// block API.
type BlockchainInfo struct {
	baseURL    string
	httpClient *http.Client
}

// NewBlockchainInfo creates a BlockchainInfo verifier. An empty baseURL
// selects the public instance.
func NewBlockchainInfo(baseURL string) *BlockchainInfo {
	if baseURL == "" {
		baseURL = DefaultBlockchainInfoURL
	}
	return &BlockchainInfo{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Name implements proof.Verifier.
func (b *BlockchainInfo) Name() string {
	return "blockchain.info"
}

// Verify implements proof.Verifier for bitcoin leaves.
func (b *BlockchainInfo) Verify(ctx context.Context, message []byte, leaf ots.Leaf) (int64, bool, error) {
	if leaf.Kind != ots.LeafBitcoin {
		return 0, false, nil
	}

	body, err := fetch(ctx, b.httpClient, fmt.Sprintf("%s/block-height/%d?format=json", b.baseURL, leaf.Height))
	if err != nil {
		return 0, false, err
	}
	var response struct {
		Blocks []struct {
			MerkleRoot string `json:"mrkl_root"`
			Time       int64  `json:"time"`
			MainChain  bool   `json:"main_chain"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, false, fmt.Errorf("malformed response for height %d: %w", leaf.Height, err)
	}
	if len(response.Blocks) == 0 {
		return 0, false, fmt.Errorf("malformed response for height %d: no blocks", leaf.Height)
	}

	block := response.Blocks[0]
	for _, candidate := range response.Blocks {
		if candidate.MainChain {
			block = candidate
			break
		}
	}
	root, err := wire.ParseHex(block.MerkleRoot)
	if err != nil {
		return 0, false, fmt.Errorf("malformed response for height %d: %w", leaf.Height, err)
	}
	if err := checkMerkleRoot(message, root); err != nil {
		return 0, false, err
	}
	return block.Time, true, nil
}

// fetch issues one GET and returns the size-capped body.
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error retrieving response body from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned %d for %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error retrieving response body from %s: %w", url, err)
	}
	return data, nil
}
