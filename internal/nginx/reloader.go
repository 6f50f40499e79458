package nginx

import (
	"context"
	"fmt"
	"os/exec"
)

// DefaultReloadCommand signals the master process to re-read its configuration
const DefaultReloadCommand = "nginx -s reload"

// Reloader runs the configured reload command through sh -c.
// A failed reload leaves the activated file in place.
type Reloader struct {
	Command string
}

// NewReloader creates a reloader, defaulting to DefaultReloadCommand
func NewReloader(command string) *Reloader {
	if command == "" {
		command = DefaultReloadCommand
	}
	return &Reloader{Command: command}
}

// Reload executes the reload command
func (r *Reloader) Reload(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", r.Command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("nginx reload failed: %w, output: %s", err, string(output))
	}
	return nil
}
