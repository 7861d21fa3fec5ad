package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/avtally/internal/fs"
)

var (
	ErrEmptyInput   = errors.New("required input is empty")
	ErrNotExist     = errors.New("directory does not exist, choose another one")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNotReadable  = errors.New("directory is not readable, choose another one")
)

// ValidateDirectory checks that path is an existing, listable directory.
// It runs before any scan; scans themselves do not re-validate the root.
func ValidateDirectory(fsys fs.FS, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("directory: %w", ErrEmptyInput)
	}
	if !fsys.Exists(path) {
		return fmt.Errorf("%q: %w", path, ErrNotExist)
	}
	if !fsys.IsDir(path) {
		return fmt.Errorf("%q: %w", path, ErrNotDirectory)
	}
	if !fsys.CanRead(path) {
		return fmt.Errorf("%q: %w", path, ErrNotReadable)
	}
	return nil
}

// ValidateScanner checks the name of the anti-malware product under test.
func ValidateScanner(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("scanner name: %w", ErrEmptyInput)
	}
	return nil
}
