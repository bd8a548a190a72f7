// Package service wires resolution, acquisition and scheduling into the
// single-shot sync run and the daily watcher around it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jaki95/showtime-sync/internal/domain"
	"github.com/jaki95/showtime-sync/internal/progress"
	"github.com/jaki95/showtime-sync/internal/resolver"
	"github.com/jaki95/showtime-sync/internal/scheduler"
)

type ShowResolver interface {
	ResolveTodayShow(ctx context.Context, venueID string) (*domain.ResolvedShow, error)
}

type AudioAcquirer interface {
	Acquire(ctx context.Context, canonicalName string) (*domain.AudioAsset, error)
}

type PlaybackScheduler interface {
	Run(ctx context.Context, m *scheduler.Machine, show *domain.ResolvedShow, asset *domain.AudioAsset) (*scheduler.Result, error)
}

// Report summarizes one run.
type Report struct {
	RunID string
	Show  *domain.ResolvedShow
	Asset *domain.AudioAsset
	// Nil when no plan was made
	Result  *scheduler.Result
	History []progress.Stage
}

// Played reports whether the player was started successfully.
func (r *Report) Played() bool {
	return r.Result != nil && r.Result.Plan.Kind != scheduler.KindAbort && r.Result.PlaybackErr == nil
}

type SyncerOption func(*Syncer)

// WithListener registers a listener on every run's progress tracker.
func WithListener(listener func(progress.Event)) SyncerOption {
	return func(s *Syncer) {
		s.listeners = append(s.listeners, listener)
	}
}

// Syncer performs one resolve, acquire and play cycle per call to Run.
type Syncer struct {
	venueID   string
	resolver  ShowResolver
	acquirer  AudioAcquirer
	scheduler PlaybackScheduler
	listeners []func(progress.Event)
}

func NewSyncer(venueID string, r ShowResolver, a AudioAcquirer, sched PlaybackScheduler, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		venueID:   venueID,
		resolver:  r,
		acquirer:  a,
		scheduler: sched,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a single sync. Having no show today, including an unreachable
// provider, is a normal outcome and returns a nil error. Acquisition failures
// and cancellation are returned.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := slog.With("run_id", report.RunID)

	tracker := progress.NewProgressTracker()
	tracker.AddListener(logListener(logger))
	for _, listener := range s.listeners {
		tracker.AddListener(listener)
	}

	m := scheduler.NewMachine(tracker)
	defer func() {
		report.History = m.History()
	}()

	logger.Info("Starting sync", "venue", s.venueID)

	show, err := s.resolver.ResolveTodayShow(ctx, s.venueID)
	switch {
	case errors.Is(err, resolver.ErrNoShowToday):
		logger.Info("No fireworks show today")
		return report, m.Transition(progress.StageDone, "no show today")
	case errors.Is(err, resolver.ErrProviderUnreachable):
		logger.Warn("Event status provider unreachable, treating as no show", "error", err)
		return report, m.Transition(progress.StageDone, "provider unreachable")
	case err != nil:
		m.Fail(err)
		return report, fmt.Errorf("failed to resolve show: %w", err)
	}
	report.Show = show

	if err := m.Transition(progress.StageResolved, fmt.Sprintf("%s at %s", show.CanonicalName, show.StartTime.Format(time.Kitchen))); err != nil {
		return report, err
	}

	asset, err := s.acquirer.Acquire(ctx, show.CanonicalName)
	if err != nil {
		m.Fail(err)
		return report, fmt.Errorf("failed to acquire audio: %w", err)
	}
	report.Asset = asset

	if err := m.Transition(progress.StageAssetReady, asset.FilePath); err != nil {
		return report, err
	}

	result, err := s.scheduler.Run(ctx, m, show, asset)
	report.Result = result
	if err != nil {
		m.Fail(err)
		return report, fmt.Errorf("playback scheduling: %w", err)
	}

	logger.Info("Sync finished",
		"show", show.CanonicalName,
		"plan", result.Plan.String(),
		"played", report.Played(),
	)
	return report, nil
}

// logListener logs stage changes. Countdown ticks are logged at debug level.
func logListener(logger *slog.Logger) func(progress.Event) {
	return func(event progress.Event) {
		switch {
		case event.Error != "":
			logger.Error("Run failed", "stage", event.Stage, "error", event.Error)
		case event.WaitDetails != nil:
			logger.Debug("Countdown", "remaining", event.WaitDetails.Remaining.Round(time.Second))
		default:
			logger.Info("Stage changed", "stage", event.Stage, "message", event.Message)
		}
	}
}
