// Package cmd provides helpers for executing shell commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/itg/internal/log"
)

// RunContext executes a command in dir and returns stderr in the error message if it fails.
// The command is echoed through the context logger in verbose mode.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	err := c.Run()
	done(time.Since(start))

	return commandError(ctx, err, &stderr)
}

// OutputContext executes a command in dir and returns stdout, with stderr in the error if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	output, err := c.Output()
	done(time.Since(start))

	if err := commandError(ctx, err, &stderr); err != nil {
		return nil, err
	}
	return output, nil
}

// commandError prefers the context error, then trimmed stderr, then the exec error.
func commandError(ctx context.Context, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
		return fmt.Errorf("%s", errMsg)
	}
	return err
}
