package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/desertthunder/amjp/internal/shared"
)

var commandContext = exec.CommandContext

// Scripter runs one AppleScript program and returns its trimmed standard output.
type Scripter interface {
	Run(ctx context.Context, script string) (string, error)
}

// Option configures an [OSAScript].
type Option func(*OSAScript)

// WithBinary overrides the default osascript binary.
func WithBinary(binary string) Option {
	return func(o *OSAScript) {
		if binary != "" {
			o.binary = binary
		}
	}
}

// WithTimeout bounds each script invocation. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *OSAScript) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// OSAScript runs scripts through the osascript command-line tool.
type OSAScript struct {
	binary  string
	timeout time.Duration
}

// NewOSAScript constructs an OSAScript using defaults.
func NewOSAScript(opts ...Option) *OSAScript {
	o := &OSAScript{binary: "osascript"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes script as a single -e argument.
func (o *OSAScript) Run(ctx context.Context, script string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := commandContext(ctx, o.binary, "-e", script) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%w: %s timed out after %v", shared.ErrScriptFailed, o.binary, o.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %v: %s", shared.ErrScriptFailed, err, msg)
		}
		return out, fmt.Errorf("%w: %v", shared.ErrScriptFailed, err)
	}
	return out, nil
}
