package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/javanhut/ots-go/internal/cache"
	"github.com/javanhut/ots-go/internal/codec"
	"github.com/javanhut/ots-go/internal/colors"
	"github.com/javanhut/ots-go/internal/config"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/proof"
)

var stampCalendars []string

var stampCmd = &cobra.Command{
	Use:   "stamp FILE",
	Short: "Timestamp a file",
	Long:  `Hashes the file, submits the digest to the calendar servers, and writes the pending proof next to the file as FILE.ots`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		calendars := cfg.Calendars
		if len(stampCalendars) > 0 {
			calendars = stampCalendars
		}
		for _, u := range calendars {
			if _, err := ots.ParseCalendarURL(u); err != nil {
				return err
			}
		}

		path := args[0]
		digest, err := hashFile(path)
		if err != nil {
			return err
		}

		// A random nonce keeps the file hash out of calendar requests.
		fudge := make([]byte, 16)
		if _, err := rand.Read(fudge); err != nil {
			return fmt.Errorf("failed to generate nonce: %w", err)
		}

		ts, errs := proof.Submit(context.Background(), ots.SHA256, digest, fudge, calendarClient(cfg), calendars)
		for url, list := range errs {
			for _, e := range list {
				log.Printf("Warning: %s: %v", url, e)
			}
		}
		if ts == nil {
			return fmt.Errorf("no calendar accepted the digest")
		}

		outPath := path + codec.FileExtension
		data, err := writeProofFile(outPath, ts)
		if err != nil {
			return err
		}

		// Remember the pending proof so `ots upgrade --all` can find it.
		if storePath, err := cache.DefaultPath(); err == nil {
			if store, err := cache.Open(storePath); err == nil {
				if _, err := store.Put(data, outPath, time.Now()); err != nil {
					log.Printf("Warning: failed to cache pending proof: %v", err)
				}
				store.Close()
			}
		}

		fmt.Printf("%s %s\n", colors.Confirmed("Submitted:"), path)
		fmt.Printf("Proof written to %s (pending on %d calendar(s))\n", outPath, len(calendars)-len(errs))
		return nil
	},
}

func init() {
	stampCmd.Flags().StringArrayVar(&stampCalendars, "calendar", nil, "Calendar server URL (repeatable, overrides config)")
}
