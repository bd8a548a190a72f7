// Package scheduler turns a resolved show and its soundtrack into playback
// that lines up with the real-world start time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaki95/showtime-sync/internal/audio"
	"github.com/jaki95/showtime-sync/internal/domain"
	"github.com/jaki95/showtime-sync/internal/progress"
)

// Clock reads the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(s *Scheduler) {
		s.sleep = fn
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Scheduler) {
		s.policy = p.withDefaults()
	}
}

// Scheduler plans and performs playback.
type Scheduler struct {
	prober audio.DurationProber
	device audio.PlaybackDevice
	policy Policy
	clock  Clock
	sleep  SleepFunc
}

func New(prober audio.DurationProber, device audio.PlaybackDevice, opts ...Option) *Scheduler {
	s := &Scheduler{
		prober: prober,
		device: device,
		policy: DefaultPolicy(),
		clock:  systemClock{},
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result describes how a run ended.
type Result struct {
	Plan Plan
	// Set when the player could not be launched
	PlaybackErr error
}

// Run plans playback for show and drives m from asset_ready to done. The
// asset's duration is probed only when the show has already started.
// Cancellation while waiting is returned as an error; playback failures are
// reported in the result.
func (s *Scheduler) Run(ctx context.Context, m *Machine, show *domain.ResolvedShow, asset *domain.AudioAsset) (*Result, error) {
	now := s.clock.Now()
	if !show.StartTime.After(now) && !asset.DurationKnown && s.prober != nil {
		if d, ok := s.prober.Probe(ctx, asset.FilePath); ok {
			asset.SetDuration(d)
		}
	}

	plan := s.policy.ComputePlan(show.StartTime, now, asset.Duration, asset.DurationKnown)
	if err := m.Transition(progress.StagePlanned, plan.String()); err != nil {
		return nil, err
	}
	result := &Result{Plan: plan}

	switch plan.Kind {
	case KindAbort:
		slog.Info("Show already over, skipping playback",
			"show", show.CanonicalName,
			"started", humanAgo(now.Sub(show.StartTime)),
			"reason", plan.Reason,
			"duration_known", asset.DurationKnown,
		)
		if err := m.Transition(progress.StageAborted, plan.Reason); err != nil {
			return nil, err
		}

	case KindSeekThenPlay:
		slog.Info("Show already started, joining late",
			"show", show.CanonicalName,
			"started", humanAgo(plan.Offset),
			"offset", plan.Offset,
		)
		if err := m.Transition(progress.StageSeekPlaying, plan.String()); err != nil {
			return nil, err
		}
		result.PlaybackErr = s.play(ctx, asset, plan.Offset)

	case KindWaitThenPlay:
		slog.Info("Waiting for showtime",
			"show", show.CanonicalName,
			"start", show.StartTime.Format(time.RFC3339),
			"wait", plan.Wait.Round(time.Second),
		)
		if err := m.Transition(progress.StageWaiting, plan.String()); err != nil {
			return nil, err
		}
		if err := s.wait(ctx, m, show.StartTime, plan.Wait); err != nil {
			m.Fail(err)
			return result, err
		}
		if err := m.Transition(progress.StagePlaying, asset.FilePath); err != nil {
			return nil, err
		}
		result.PlaybackErr = s.play(ctx, asset, 0)
	}

	if err := m.Transition(progress.StageDone, string(plan.Kind)); err != nil {
		return nil, err
	}
	return result, nil
}

// wait sleeps in bounded steps, re-reading the clock after each one so that
// suspension or drift is absorbed.
func (s *Scheduler) wait(ctx context.Context, m *Machine, start time.Time, total time.Duration) error {
	remaining := total
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		step := min(remaining, s.policy.MaxSleep)
		if err := s.sleep(ctx, step); err != nil {
			return err
		}

		remaining = start.Sub(s.clock.Now())
		m.reportWait(total, remaining)
		slog.Debug("Waiting", "remaining", remaining.Round(time.Second))

		if remaining <= s.policy.SettleTolerance {
			break
		}
	}
	return nil
}

func (s *Scheduler) play(ctx context.Context, asset *domain.AudioAsset, offset time.Duration) error {
	if err := s.device.Play(ctx, asset.FilePath, offset); err != nil {
		slog.Error("Playback failed", "file", asset.FilePath, "offset", offset, "error", err)
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

func humanAgo(d time.Duration) string {
	return d.Round(time.Second).String() + " ago"
}
