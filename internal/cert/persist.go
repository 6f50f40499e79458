package cert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"go_ngxmgr/internal/model"
)

const (
	certFileMode = 0644
	keyFileMode  = 0600
)

// PersistError names the step of Persist that failed
type PersistError struct {
	Path string
	Step string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Step, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// CertPath returns <dir>/<name>.crt
func CertPath(dir, name string) string {
	return filepath.Join(dir, name+".crt")
}

// KeyPath returns <dir>/<name>.key
func KeyPath(dir, name string) string {
	return filepath.Join(dir, name+".key")
}

// Persist writes the certificate and key under dir and restricts the key to 0600.
// Each file is either complete or absent. A failure after the certificate was
// written leaves it in place; re-running Persist overwrites both files.
func Persist(c *model.Certificate, dir string) error {
	if err := checkName(c, dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PersistError{Path: dir, Step: "mkdir", Err: err}
	}

	certPath := CertPath(dir, c.Name)
	if err := writeFileAtomic(certPath, []byte(c.Certificate), certFileMode); err != nil {
		return &PersistError{Path: certPath, Step: "write certificate", Err: err}
	}

	keyPath := KeyPath(dir, c.Name)
	if err := writeFileAtomic(keyPath, []byte(c.PrivateKey), keyFileMode); err != nil {
		return &PersistError{Path: keyPath, Step: "write key", Err: err}
	}
	if err := os.Chmod(keyPath, keyFileMode); err != nil {
		return &PersistError{Path: keyPath, Step: "chmod key", Err: err}
	}

	return nil
}

// Remove deletes the certificate and key files of c under dir.
// Files that are already absent are not an error.
func Remove(c *model.Certificate, dir string) error {
	if err := checkName(c, dir); err != nil {
		return err
	}
	certPath := CertPath(dir, c.Name)
	if err := os.Remove(certPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistError{Path: certPath, Step: "remove certificate", Err: err}
	}
	keyPath := KeyPath(dir, c.Name)
	if err := os.Remove(keyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistError{Path: keyPath, Step: "remove key", Err: err}
	}
	return nil
}

// Files persists certificates into a fixed directory
type Files struct {
	Dir string
}

// Persist writes c under f.Dir
func (f Files) Persist(c *model.Certificate) error {
	return Persist(c, f.Dir)
}

func checkName(c *model.Certificate, dir string) error {
	if c.Name == "" || strings.ContainsAny(c.Name, `/\`) || c.Name == "." || c.Name == ".." {
		return &PersistError{Path: dir, Step: "name", Err: fmt.Errorf("unusable certificate name %q", c.Name)}
	}
	return nil
}

// writeFileAtomic writes to a sibling temp file and renames it over path
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
