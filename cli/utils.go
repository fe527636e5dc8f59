package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/javanhut/ots-go/internal/calendar"
	"github.com/javanhut/ots-go/internal/codec"
	"github.com/javanhut/ots-go/internal/config"
	"github.com/javanhut/ots-go/internal/explorer"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/proof"
	"github.com/javanhut/ots-go/internal/wire"
)

// hashFile computes the SHA-256 digest of the file at path.
func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// readProofFile reads and parses a .ots file.
func readProofFile(path string) (*ots.Timestamp, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if !codec.IsTimestamp(data) {
		return nil, nil, fmt.Errorf("%s is not an OpenTimestamps proof", path)
	}
	ts, err := codec.ReadTimestamp(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ts, data, nil
}

// writeProofFile serializes ts to path.
func writeProofFile(path string, ts *ots.Timestamp) ([]byte, error) {
	data, err := codec.WriteTimestamp(ts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return data, nil
}

// calendarClient builds the calendar client from config.
func calendarClient(cfg *config.Config) *calendar.Client {
	return calendar.NewClientWithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
}

// buildVerifiers resolves the configured explorer backends.
func buildVerifiers(cfg *config.Config) ([]proof.Verifier, error) {
	switch cfg.Explorer {
	case "blockstream":
		return []proof.Verifier{explorer.NewEsplora(cfg.EsploraURL)}, nil
	case "blockchain.info":
		return []proof.Verifier{explorer.NewBlockchainInfo("")}, nil
	case "all":
		return []proof.Verifier{
			explorer.NewEsplora(cfg.EsploraURL),
			explorer.NewBlockchainInfo(""),
		}, nil
	default:
		return nil, fmt.Errorf("unknown explorer %q (expected blockstream, blockchain.info, or all)", cfg.Explorer)
	}
}

// describeLeaf renders a leaf for command output.
func describeLeaf(l ots.Leaf) string {
	switch l.Kind {
	case ots.LeafBitcoin, ots.LeafLitecoin, ots.LeafEthereum:
		return fmt.Sprintf("%s block %d", l.Kind, l.Height)
	case ots.LeafPending:
		return "pending on " + l.URL
	default:
		return fmt.Sprintf("unknown attestation %x", l.Header[:])
	}
}

// describeOp renders an operation for command output.
func describeOp(o ots.Op) string {
	if o.Kind.Binary() {
		return fmt.Sprintf("%s %s", o.Kind, wire.ToHex(o.Operand))
	}
	return o.Kind.String()
}
