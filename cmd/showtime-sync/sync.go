package main

import (
	"github.com/spf13/cobra"
)

var syncNoProgress bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run once: find tonight's show, fetch its soundtrack and play it at showtime",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncNoProgress, "no-progress", false, "disable the countdown bar")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	syncer, cleanup, err := newSyncer(ctx, cfg, !syncNoProgress)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = syncer.Run(ctx)
	return err
}
