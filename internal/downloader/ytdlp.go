// Package downloader runs the external audio acquisition service (yt-dlp)
// that turns a search query into a file on disk.
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

const (
	defaultDownloadTimeout = 30 * time.Minute
	progressInterval       = 10 * time.Second

	searchPrefix = "ytsearch1:"
)

var (
	ErrDownloaderNotAvailable = errors.New("downloader not available")
	ErrDownloadTimeout        = errors.New("download timeout")
)

// YtDlp downloads the first search hit with yt-dlp.
type YtDlp struct {
	binary   string
	timeout  time.Duration
	lookPath func(string) (string, error)
}

func NewYtDlp(binary string, timeout time.Duration) *YtDlp {
	if binary == "" {
		binary = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}
	return &YtDlp{
		binary:   binary,
		timeout:  timeout,
		lookPath: exec.LookPath,
	}
}

// Download runs yt-dlp and waits for it, logging progress periodically.
func (d *YtDlp) Download(ctx context.Context, req Request) error {
	if req.Query == "" {
		return fmt.Errorf("invalid query: empty")
	}
	if req.OutputTemplate == "" {
		return fmt.Errorf("invalid output template: empty")
	}

	bin, err := d.lookPath(d.binary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloaderNotAvailable, err)
	}

	args := buildArgs(req)
	slog.Info("Executing downloader", "binary", bin, "args", args)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", d.binary, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	started := time.Now()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	timeout := time.NewTimer(d.timeout)
	defer timeout.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Error("Download failed",
					"error", err,
					"stderr", tail(stderrBuf.String()),
				)
				return fmt.Errorf("%s failed: %w\nstderr: %s", d.binary, err, tail(stderrBuf.String()))
			}
			slog.Info("Download completed", "query", req.Query, "output", tail(stdoutBuf.String()))
			return nil
		case <-timeout.C:
			slog.Error("Download timeout reached", "timeout", d.timeout, "pid", cmd.Process.Pid)
			if err := cmd.Process.Kill(); err != nil {
				slog.Error("Failed to kill process after timeout", "error", err)
			}
			<-done
			return fmt.Errorf("%w: %v", ErrDownloadTimeout, d.timeout)
		case <-ticker.C:
			slog.Info("Download still in progress",
				"pid", cmd.Process.Pid,
				"elapsed", time.Since(started).Round(time.Second),
			)
		}
	}
}

func buildArgs(req Request) []string {
	args := []string{
		"--format", "bestaudio/best",
		"--output", req.OutputTemplate,
		"--no-playlist",
		"--extractor-args", "youtube:player_client=android,web",
	}

	if req.Transcode {
		codec := req.Codec
		if codec == "" {
			codec = "mp3"
		}
		args = append(args, "--extract-audio", "--audio-format", codec)
		if req.Quality != "" {
			args = append(args, "--audio-quality", req.Quality)
		}
	}

	return append(args, searchPrefix+req.Query)
}

// tail keeps the last 200 bytes of tool output for logs.
func tail(output string) string {
	if len(output) > 200 {
		return "..." + output[len(output)-200:]
	}
	return output
}
