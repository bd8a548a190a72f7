package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

var (
	ErrPlayerNotAvailable = errors.New("no audio player available")
	ErrSeekNotSupported   = errors.New("player cannot start at an offset")
)

// Player plays files through ffplay, falling back to a player without seek
// support (afplay on macOS) when ffplay is missing.
type Player struct {
	primary  string
	fallback string
	lookPath func(string) (string, error)
	run      runner
}

func NewPlayer(primary, fallback string) *Player {
	if primary == "" {
		primary = "ffplay"
	}
	return &Player{
		primary:  primary,
		fallback: fallback,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Play blocks until playback ends. The player's exit status is logged and
// otherwise ignored; only a failure to launch is returned.
func (p *Player) Play(ctx context.Context, path string, offset time.Duration) error {
	name, args, err := p.command(path, offset)
	if err != nil {
		return err
	}

	slog.Info("Starting playback", "player", name, "file", path, "offset", offset)

	_, err = p.run(ctx, name, args...)
	if err == nil {
		slog.Info("Playback finished", "file", path)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		slog.Warn("Player exited with non-zero status", "player", name, "code", exitErr.ExitCode(), "error", err)
		return nil
	}
	return fmt.Errorf("failed to launch %s: %w", name, err)
}

// command resolves the binary and arguments for a playback request.
func (p *Player) command(path string, offset time.Duration) (string, []string, error) {
	if bin, err := p.lookPath(p.primary); err == nil {
		args := []string{"-nodisp", "-autoexit"}
		if offset > 0 {
			args = append(args, "-ss", formatSeconds(offset))
		}
		return bin, append(args, path), nil
	}

	if p.fallback == "" {
		return "", nil, fmt.Errorf("%w: %s not found", ErrPlayerNotAvailable, p.primary)
	}
	bin, err := p.lookPath(p.fallback)
	if err != nil {
		return "", nil, fmt.Errorf("%w: neither %s nor %s found", ErrPlayerNotAvailable, p.primary, p.fallback)
	}
	if offset > 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrSeekNotSupported, p.fallback)
	}
	return bin, []string{path}, nil
}
