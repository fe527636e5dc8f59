package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/javanhut/ots-go/internal/cache"
	"github.com/javanhut/ots-go/internal/codec"
	"github.com/javanhut/ots-go/internal/colors"
	"github.com/javanhut/ots-go/internal/config"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/proof"
)

var upgradeAll bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [FILE.ots]",
	Short: "Upgrade pending proofs",
	Long:  `Asks each pending proof's calendar for the completed attestation path and rewrites the proof when the calendar has one. With --all, revisits every proof remembered by stamp.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if upgradeAll {
			return upgradeCached(cfg)
		}
		if len(args) != 1 {
			return fmt.Errorf("provide a proof file or --all")
		}
		return upgradeFile(cfg, args[0])
	},
}

func upgradeFile(cfg *config.Config, path string) error {
	ts, _, err := readProofFile(path)
	if err != nil {
		return err
	}
	if !ots.CanUpgrade(ts) {
		fmt.Printf("%s %s has no pending attestations\n", colors.Confirmed("Complete:"), path)
		return nil
	}

	upgraded, errs := proof.Upgrade(context.Background(), ts, calendarClient(cfg))
	for url, list := range errs {
		for _, e := range list {
			log.Printf("Warning: %s: %v", url, e)
		}
	}

	if _, err := writeProofFile(path, upgraded); err != nil {
		return err
	}
	if ots.CanUpgrade(upgraded) {
		fmt.Printf("%s %s still has pending attestations\n", colors.Pending("Pending:"), path)
	} else {
		fmt.Printf("%s %s\n", colors.Confirmed("Upgraded:"), path)
	}
	return nil
}

func upgradeCached(cfg *config.Config) error {
	storePath, err := cache.DefaultPath()
	if err != nil {
		return err
	}
	store, err := cache.Open(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No pending proofs cached")
		return nil
	}

	client := calendarClient(cfg)
	for _, entry := range entries {
		data, err := store.Get(entry.Key)
		if err != nil {
			log.Printf("Warning: %s: %v", entry.Key, err)
			continue
		}
		ts, err := codec.ReadTimestamp(data)
		if err != nil {
			log.Printf("Warning: %s: %v", entry.Source, err)
			continue
		}

		upgraded, errs := proof.Upgrade(context.Background(), ts, client)
		for url, list := range errs {
			for _, e := range list {
				log.Printf("Warning: %s: %v", url, e)
			}
		}
		if ots.CanUpgrade(upgraded) {
			fmt.Printf("%s %s\n", colors.Pending("Pending:"), entry.Source)
			continue
		}

		if entry.Source != "" {
			if _, err := writeProofFile(entry.Source, upgraded); err != nil {
				log.Printf("Warning: failed to rewrite %s: %v", entry.Source, err)
				continue
			}
		}
		if err := store.Delete(entry.Key); err != nil {
			log.Printf("Warning: failed to drop %s from cache: %v", entry.Key, err)
		}
		fmt.Printf("%s %s\n", colors.Confirmed("Upgraded:"), entry.Source)
	}
	return nil
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeAll, "all", false, "Upgrade every cached pending proof")
}
