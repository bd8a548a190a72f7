package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/jaki95/showtime-sync/config"
)

const defaultConfigPath = "./config/config.yaml"

var (
	configPath string
	venueFlag  string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "showtime-sync",
	Short: "Play a fireworks soundtrack in sync with the live show",
	Long: "showtime-sync looks up tonight's fireworks show on the park's live schedule, " +
		"fetches its soundtrack and starts playback at showtime, joining late if the show already began.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&venueFlag, "venue", "", "themeparks.wiki venue ID (overrides the config file)")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("Signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and sets up logging. A missing file at
// the default path falls back to built-in defaults.
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}
	if venueFlag != "" {
		cfg.VenueID = venueFlag
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)
	return nil
}
