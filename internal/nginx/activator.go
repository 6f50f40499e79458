package nginx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const liveFileMode = 0644

// Activator swaps the live configuration file
type Activator struct {
	LivePath string
}

// NewActivator creates an activator for the live nginx.conf path
func NewActivator(livePath string) *Activator {
	return &Activator{LivePath: livePath}
}

// Activate replaces the live file with content. The data goes to a uniquely named
// sibling first and is renamed over the live path, so readers see either the
// previous file or the new one.
func (a *Activator) Activate(content string) error {
	dir := filepath.Dir(a.LivePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create live dir: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(a.LivePath)+"."+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}

	fail := func(step string, err error) error {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to %s: %w", step, err)
	}

	if _, err := f.WriteString(content); err != nil {
		return fail("write staging file", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync staging file", err)
	}
	if err := f.Chmod(liveFileMode); err != nil {
		return fail("chmod staging file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close staging file: %w", err)
	}

	if err := os.Rename(tmp, a.LivePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to swap live config: %w", err)
	}
	return nil
}

// Current returns the live file content, or "" when none exists yet
func (a *Activator) Current() (string, error) {
	data, err := os.ReadFile(a.LivePath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read live config: %w", err)
	}
	return string(data), nil
}
