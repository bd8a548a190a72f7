package main

import (
	"github.com/spf13/cobra"

	"github.com/jaki95/showtime-sync/internal/service"
)

var watchRunNow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync every day on the configured schedule",
	Long:  "Stay in the foreground and run the sync on the cron schedule from the config file, evaluated in its timezone.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRunNow, "now", false, "also run once immediately")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	syncer, cleanup, err := newSyncer(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	var opts []service.WatcherOption
	if watchRunNow {
		opts = append(opts, service.WithRunOnStart())
	}

	watcher, err := service.NewWatcher(syncer, cfg.Watch.Schedule, cfg.Watch.Timezone, opts...)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
