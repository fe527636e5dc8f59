package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/javanhut/ots-go/internal/colors"
	"github.com/javanhut/ots-go/internal/config"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/proof"
)

var verifyOriginal string

var verifyCmd = &cobra.Command{
	Use:   "verify FILE.ots",
	Short: "Verify a proof against the blockchain",
	Long:  `Replays every verification path of the proof and checks the resulting commitments against block explorer data. With --file, also checks that the proof matches the original file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		verifiers, err := buildVerifiers(cfg)
		if err != nil {
			return err
		}

		ts, _, err := readProofFile(args[0])
		if err != nil {
			return err
		}

		if verifyOriginal != "" {
			if ts.FileHash.Algo != ots.SHA256 {
				return fmt.Errorf("--file requires a sha256 proof, this one uses %s", ts.FileHash.Algo)
			}
			digest, err := hashFile(verifyOriginal)
			if err != nil {
				return err
			}
			if !bytes.Equal(digest, ts.FileHash.Value) {
				return fmt.Errorf("%s does not match the proof: digest %x, proof commits to %x",
					verifyOriginal, digest, ts.FileHash.Value)
			}
		}

		if !ots.CanVerify(ts) {
			fmt.Printf("%s every path is still pending; run `ots upgrade` first\n", colors.Pending("Pending:"))
			return nil
		}

		result := proof.Verify(context.Background(), ts, verifiers)

		times := make([]int64, 0, len(result.Attestations))
		for unix := range result.Attestations {
			times = append(times, unix)
		}
		sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
		for _, unix := range times {
			when := time.Unix(unix, 0).UTC().Format(time.RFC3339)
			fmt.Printf("%s existed as of %s (confirmed by %v)\n",
				colors.Confirmed("Success:"), when, result.Attestations[unix])
		}
		for name, errs := range result.Errors {
			for _, e := range errs {
				fmt.Printf("%s %s: %v\n", colors.Failed("Error:"), name, e)
			}
		}

		if len(result.Attestations) == 0 {
			return fmt.Errorf("no attestation could be verified")
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyOriginal, "file", "", "Original file to check the proof against")
}
