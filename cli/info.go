package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/ots-go/internal/colors"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE.ots",
	Short: "Show the structure of a proof",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, _, err := readProofFile(args[0])
		if err != nil {
			return err
		}
		normalized := ots.Normalize(ts)

		fmt.Printf("File hash: %s %s\n", colors.Bold(normalized.FileHash.Algo.String()),
			wire.ToHex(normalized.FileHash.Value))

		paths := normalized.Tree.Paths()
		fmt.Printf("Paths: %d\n", len(paths))
		for i, p := range paths {
			fmt.Printf("\n%s\n", colors.Detail(fmt.Sprintf("Path %d:", i+1)))
			message := normalized.FileHash.Value
			for _, op := range p.Ops {
				message = op.Apply(message)
				fmt.Printf("  %-12s -> %s\n", describeOp(op), colors.Gray(wire.ToHex(message)))
			}
			switch p.Leaf.Kind {
			case ots.LeafPending:
				fmt.Printf("  %s\n", colors.Pending(describeLeaf(p.Leaf)))
			case ots.LeafUnknown:
				fmt.Printf("  %s\n", colors.Gray(describeLeaf(p.Leaf)))
			default:
				fmt.Printf("  %s\n", colors.Confirmed(describeLeaf(p.Leaf)))
			}
		}
		return nil
	},
}
