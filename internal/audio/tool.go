// Package audio wraps the external media tools used around playback:
// ffprobe for reading durations and ffplay/afplay for output.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// toolError wraps an external tool failure with its command line and output
type toolError struct {
	tool    string
	cmd     string
	output  string
	wrapped error
}

func (e *toolError) Error() string {
	return fmt.Sprintf("%s error: %s\nCommand: %s\nOutput: %s", e.tool, e.wrapped, e.cmd, e.output)
}

func (e *toolError) Unwrap() error {
	return e.wrapped
}

// newToolError creates a new toolError with a truncated command line
func newToolError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &toolError{
		tool:    toolName(cmd.Path),
		cmd:     cmdStr,
		output:  strings.TrimSpace(string(output)),
		wrapped: err,
	}
}

func toolName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// runner executes a command and returns its standard output.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newToolError(cmd, stderr.Bytes(), err)
	}
	return output, nil
}

// Available reports whether a tool can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
