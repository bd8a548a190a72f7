package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var liveCompact bool

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Print the venue's live status feed",
	Long:  "Fetch the raw live status JSON for the configured venue, useful for checking show IDs and showtimes.",
	RunE:  runLive,
}

func init() {
	liveCmd.Flags().BoolVar(&liveCompact, "compact", false, "print the feed as received")
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	body, err := newLiveClient(cfg).FetchLive(cmd.Context(), cfg.VenueID)
	if err != nil {
		return err
	}

	if !liveCompact {
		var indented bytes.Buffer
		if err := json.Indent(&indented, body, "", "  "); err != nil {
			return fmt.Errorf("live feed is not valid JSON: %w", err)
		}
		body = indented.Bytes()
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return err
}
