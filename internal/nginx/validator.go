package nginx

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// RejectedError means nginx refused a candidate. Diagnostics is the raw tool output.
type RejectedError struct {
	Diagnostics string
	Err         error
}

func (e *RejectedError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("configuration rejected: %v", e.Err)
	}
	return "configuration rejected: " + e.Diagnostics
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Validator checks candidate text before it may become live
type Validator struct {
	Tester     Tester
	StagingDir string
}

// NewValidator creates a validator staging candidates under dir ("" = os.TempDir)
func NewValidator(tester Tester, dir string) *Validator {
	return &Validator{Tester: tester, StagingDir: dir}
}

// Validate writes candidate to a private temp file, runs the tester against it
// and removes the file on every exit path. A rejection is a *RejectedError;
// other errors are local I/O failures.
func (v *Validator) Validate(ctx context.Context, candidate string) error {
	if v.StagingDir != "" {
		if err := os.MkdirAll(v.StagingDir, 0700); err != nil {
			return fmt.Errorf("failed to create staging dir: %w", err)
		}
	}

	f, err := os.CreateTemp(v.StagingDir, "candidate-*.conf")
	if err != nil {
		return fmt.Errorf("failed to create candidate file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(candidate); err != nil {
		f.Close()
		return fmt.Errorf("failed to write candidate file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close candidate file: %w", err)
	}

	output, err := v.Tester.Test(ctx, path)
	if err != nil {
		diagnostics := output
		if errors.Is(err, ErrBinaryNotFound) && diagnostics == "" {
			diagnostics = err.Error()
		}
		return &RejectedError{Diagnostics: diagnostics, Err: err}
	}
	return nil
}
