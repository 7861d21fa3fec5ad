package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/util"
)

// ErrEmptyContent is returned when there is nothing to export.
var ErrEmptyContent = errors.New("log is empty, nothing to export")

// Export writes content to dest as a plain text file.
func Export(fsys fs.FS, content, dest string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if dest == "" {
		return errors.New("export: no destination given")
	}
	if err := util.WriteAtomic(fsys, dest, []byte(content)); err != nil {
		return fmt.Errorf("export log to %q: %w", dest, err)
	}
	return nil
}
