package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner performs one sync.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

type WatcherOption func(*Watcher)

// WithRunOnStart performs one sync immediately before waiting for the
// schedule.
func WithRunOnStart() WatcherOption {
	return func(w *Watcher) {
		w.runOnStart = true
	}
}

// Watcher re-runs the sync on a cron schedule until its context ends.
// Runs never overlap: a tick that fires while a run is still waiting for
// showtime is skipped.
type Watcher struct {
	runner     Runner
	spec       string
	schedule   cron.Schedule
	location   *time.Location
	runOnStart bool
}

func NewWatcher(runner Runner, spec, timezone string, opts ...WatcherOption) (*Watcher, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	w := &Watcher{
		runner:   runner,
		spec:     spec,
		schedule: schedule,
		location: location,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Next returns the next scheduled run after t.
func (w *Watcher) Next(t time.Time) time.Time {
	return w.schedule.Next(t.In(w.location))
}

// Run blocks until ctx is cancelled, then waits for an in-flight run to end.
func (w *Watcher) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(w.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(w.schedule, cron.FuncJob(func() {
		w.runOnce(ctx)
	}))

	if w.runOnStart {
		w.runOnce(ctx)
	}
	if ctx.Err() != nil {
		return nil
	}

	c.Start()
	slog.Info("Watching for shows", "schedule", w.spec, "timezone", w.location.String(), "next", w.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	slog.Info("Stopping watcher")
	<-c.Stop().Done()
	return nil
}

func (w *Watcher) runOnce(ctx context.Context) {
	report, err := w.runner.Run(ctx)
	if err != nil {
		slog.Error("Sync run failed", "error", err)
		return
	}
	if report != nil {
		slog.Info("Sync run complete", "run_id", report.RunID, "played", report.Played())
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
