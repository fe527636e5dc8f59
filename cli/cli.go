package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const OtsVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "ots",
	Short: "ots is an OpenTimestamps client",
	Long:  `ots creates, upgrades, and verifies OpenTimestamps proofs: blockchain-anchored evidence that a file existed before a point in time`,
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Printf("ots version %s\n", OtsVersion)
			os.Exit(0)
		}
		cmd.Help()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var version bool

func init() {
	rootCmd.Flags().BoolVar(&version, "version", false, "Print the ots version")

	rootCmd.AddCommand(stampCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(infoCmd)
}
