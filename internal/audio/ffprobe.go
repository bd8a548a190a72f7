package audio

import (
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// FFProbe reads durations with ffprobe.
type FFProbe struct {
	binary   string
	lookPath func(string) (string, error)
	run      runner
}

func NewFFProbe(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{
		binary:   binary,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Probe returns the container duration of path. A missing binary, a failed
// run or unparsable output all yield false.
func (p *FFProbe) Probe(ctx context.Context, path string) (time.Duration, bool) {
	bin, err := p.lookPath(p.binary)
	if err != nil {
		slog.Debug("Duration probe not available", "binary", p.binary)
		return 0, false
	}

	output, err := p.run(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		slog.Warn("Duration probe failed", "path", path, "error", err)
		return 0, false
	}

	duration, err := parseProbeDuration(string(output))
	if err != nil {
		slog.Warn("Unexpected duration probe output", "path", path, "error", err)
		return 0, false
	}

	slog.Debug("Probed duration", "path", path, "duration", duration)
	return duration, true
}
