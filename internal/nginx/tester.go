package nginx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// ErrBinaryNotFound is returned when the nginx binary cannot be executed at all
var ErrBinaryNotFound = errors.New("nginx not available")

// Tester runs nginx's syntax check. An empty confPath checks the active configuration.
// output is the raw diagnostic text of the check.
type Tester interface {
	Test(ctx context.Context, confPath string) (output string, err error)
}

// CommandTester shells out to the nginx binary
type CommandTester struct {
	Bin string
}

// NewCommandTester returns a tester for bin, defaulting to "nginx" on PATH
func NewCommandTester(bin string) *CommandTester {
	if bin == "" {
		bin = "nginx"
	}
	return &CommandTester{Bin: bin}
}

// Test executes `nginx -t [-c confPath]` and captures combined output
func (t *CommandTester) Test(ctx context.Context, confPath string) (string, error) {
	args := []string{"-t"}
	if confPath != "" {
		args = append(args, "-c", confPath)
	}

	cmd := exec.CommandContext(ctx, t.Bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return string(output), fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
		}
		return string(output), fmt.Errorf("nginx test failed: %w", err)
	}
	return string(output), nil
}
