package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaki95/showtime-sync/config"
	"github.com/jaki95/showtime-sync/internal/asset"
	"github.com/jaki95/showtime-sync/internal/audio"
	"github.com/jaki95/showtime-sync/internal/catalog"
	"github.com/jaki95/showtime-sync/internal/downloader"
	"github.com/jaki95/showtime-sync/internal/progress"
	"github.com/jaki95/showtime-sync/internal/resolver"
	"github.com/jaki95/showtime-sync/internal/scheduler"
	"github.com/jaki95/showtime-sync/internal/service"
	"github.com/jaki95/showtime-sync/internal/storage"
	"github.com/jaki95/showtime-sync/internal/themeparks"
)

func newLiveClient(cfg *config.Config) *themeparks.Client {
	return themeparks.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, cfg.Provider.UserAgent)
}

// newSyncer builds the production pipeline. The returned cleanup releases
// the mirror client when one was opened.
func newSyncer(ctx context.Context, cfg *config.Config, showProgress bool) (*service.Syncer, func(), error) {
	shows := catalog.Default()

	acquirerOpts := []asset.Option{}
	cleanup := func() {}
	if cfg.Mirror.Bucket != "" {
		mirror, err := storage.NewGCSMirror(ctx, cfg.Mirror.Bucket, cfg.Mirror.Prefix, cfg.Mirror.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open mirror: %w", err)
		}
		acquirerOpts = append(acquirerOpts, asset.WithMirror(mirror))
		cleanup = func() {
			if err := mirror.Close(); err != nil {
				slog.Warn("Failed to close mirror client", "error", err)
			}
		}
		slog.Info("Asset mirror enabled", "bucket", cfg.Mirror.Bucket, "prefix", cfg.Mirror.Prefix)
	}

	acquirer := asset.NewAcquirer(
		storage.NewLocalCache(nil, cfg.Audio.Dir),
		downloader.NewYtDlp(cfg.Audio.Downloader, cfg.Audio.DownloadTimeout),
		shows,
		asset.Options{
			Transcode:  cfg.Audio.TranscodeEnabled(),
			Codec:      cfg.Audio.Codec,
			Quality:    cfg.Audio.Quality,
			Transcoder: cfg.Audio.Transcoder,
		},
		acquirerOpts...,
	)

	sched := scheduler.New(
		audio.NewFFProbe(cfg.Audio.Prober),
		audio.NewPlayer(cfg.Audio.Player, cfg.Audio.FallbackPlayer),
		scheduler.WithPolicy(scheduler.Policy{
			MaxSleep:        cfg.Scheduler.MaxSleep,
			SettleTolerance: cfg.Scheduler.SettleTolerance,
			GraceWindow:     cfg.Scheduler.GraceWindow,
		}),
	)

	var opts []service.SyncerOption
	if showProgress {
		opts = append(opts, service.WithListener(progress.NewCountdownBar(nil).Listen))
	}

	syncer := service.NewSyncer(
		cfg.VenueID,
		resolver.New(newLiveClient(cfg), shows, nil),
		acquirer,
		sched,
		opts...,
	)
	return syncer, cleanup, nil
}
