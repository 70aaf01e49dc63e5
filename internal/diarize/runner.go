package diarize

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes an external command. Tests inject a fake.
type Runner func(ctx context.Context, name string, args ...string) error

func defaultRun(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
