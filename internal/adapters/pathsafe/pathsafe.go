// Package pathsafe confines untrusted file access to a single directory.
package pathsafe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/ghostrun/internal/domain/model"
)

// Validator accepts only regular files that sit directly inside root.
type Validator struct {
	root string
}

// New resolves root to its canonical absolute form. root must exist.
func New(root string) (*Validator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: resolve root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: resolve root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pathsafe: root %s: %w", resolved, ErrRootNotDirectory)
	}
	return &Validator{root: resolved}, nil
}

// Root returns the canonical root directory.
func (v *Validator) Root() string { return v.root }

// Check returns the canonical path of candidate, or an error wrapping
// model.ErrPathRejected. The raw string is inspected before cleaning so that
// traversal segments are refused even when they would resolve back inside root.
func (v *Validator) Check(candidate string) (string, error) {
	if candidate == "" {
		return "", reject(candidate, "empty path")
	}
	if strings.ContainsRune(candidate, '\\') {
		return "", reject(candidate, "alternate separator")
	}
	if strings.ContainsRune(candidate, 0) {
		return "", reject(candidate, "nul byte")
	}
	for _, seg := range strings.Split(candidate, "/") {
		if seg == ".." {
			return "", reject(candidate, "traversal segment")
		}
	}

	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", reject(candidate, err.Error())
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", reject(candidate, "parent does not resolve")
	}
	rel, err := filepath.Rel(v.root, dir)
	if err != nil || rel != "." {
		return "", reject(candidate, "outside root or in a subdirectory")
	}

	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return "", reject(candidate, "no file name")
	}
	full := filepath.Join(dir, name)

	info, err := os.Lstat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", reject(candidate, "does not exist")
	case err != nil:
		return "", reject(candidate, err.Error())
	case info.Mode()&fs.ModeSymlink != 0:
		return "", reject(candidate, "symbolic link")
	case !info.Mode().IsRegular():
		return "", reject(candidate, "not a regular file")
	}
	return full, nil
}

// CheckName validates a bare file name inside root.
func (v *Validator) CheckName(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", reject(name, "separator in name")
	}
	return v.Check(filepath.Join(v.root, name))
}

func reject(path, reason string) error {
	return fmt.Errorf("%q: %s: %w", path, reason, model.ErrPathRejected)
}
